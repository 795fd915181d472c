// Package memory is a process-local ledger store for single-instance development runs and tests.
// A transaction holds the store-wide write lock from Begin until Commit or Rollback, which gives
// the same mutual exclusion the postgres repos get from SELECT ... FOR UPDATE.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"fundflow/internal/core/domain"
	"fundflow/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrForeignTx        = errors.New("memory: transaction was not started by this store")
	ErrTxClosed         = errors.New("memory: transaction already closed")
	ErrDuplicateOrderID = fmt.Errorf("memory: duplicate gateway order id: %w", ports.ErrConflict)
	ErrAttemptInFlight  = fmt.Errorf("memory: transaction already has an in-flight attempt: %w", ports.ErrConflict)
)

// Store holds every table in maps. Reads outside a transaction see committed state only.
type Store struct {
	sem chan struct{}

	mu           sync.RWMutex
	transactions map[uuid.UUID]*domain.Transaction
	attempts     map[uuid.UUID]*domain.GatewayAttempt
	history      map[uuid.UUID][]domain.HistoryEntry
	gateways     map[uuid.UUID]*domain.GatewayConfig
	accounts     map[uuid.UUID]*domain.TradingAccount
	methods      map[uuid.UUID]*domain.PaymentMethod
	audits       []domain.AuditLog
}

func NewStore() *Store {
	return &Store{
		sem:          make(chan struct{}, 1),
		transactions: make(map[uuid.UUID]*domain.Transaction),
		attempts:     make(map[uuid.UUID]*domain.GatewayAttempt),
		history:      make(map[uuid.UUID][]domain.HistoryEntry),
		gateways:     make(map[uuid.UUID]*domain.GatewayConfig),
		accounts:     make(map[uuid.UUID]*domain.TradingAccount),
		methods:      make(map[uuid.UUID]*domain.PaymentMethod),
	}
}

// Begin implements ports.DBTransactor. It blocks while another transaction is open.
func (s *Store) Begin(ctx context.Context) (pgx.Tx, error) {
	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &memTx{
		store:        s,
		transactions: make(map[uuid.UUID]*domain.Transaction),
		attempts:     make(map[uuid.UUID]*domain.GatewayAttempt),
	}, nil
}

// memTx buffers writes until Commit. Only the methods the repos use are implemented;
// the embedded pgx.Tx is nil and any other call panics.
type memTx struct {
	pgx.Tx
	store *Store
	done  bool

	transactions map[uuid.UUID]*domain.Transaction
	attempts     map[uuid.UUID]*domain.GatewayAttempt
	history      []domain.HistoryEntry
}

func (t *memTx) Begin(context.Context) (pgx.Tx, error) {
	return nil, errors.New("memory: nested transactions are not supported")
}

func (t *memTx) Commit(context.Context) error {
	if t.done {
		return ErrTxClosed
	}
	defer t.release()

	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkConstraints(t); err != nil {
		return err
	}
	for id, tx := range t.transactions {
		s.transactions[id] = tx
	}
	for id, a := range t.attempts {
		s.attempts[id] = a
	}
	for _, e := range t.history {
		s.history[e.TransactionID] = append(s.history[e.TransactionID], e)
	}
	return nil
}

// Rollback is safe to call after Commit, matching pgx.
func (t *memTx) Rollback(context.Context) error {
	if t.done {
		return nil
	}
	t.release()
	return nil
}

func (t *memTx) release() {
	t.done = true
	<-t.store.sem
}

// checkConstraints enforces the unique order id and single in-flight attempt indexes
// against the state the commit would produce. Caller holds s.mu.
func (s *Store) checkConstraints(t *memTx) error {
	owner := make(map[string]uuid.UUID)
	claim := func(orderID string, rowID uuid.UUID) error {
		if orderID == "" {
			return nil
		}
		if prev, ok := owner[orderID]; ok && prev != rowID {
			return fmt.Errorf("%w: %s", ErrDuplicateOrderID, orderID)
		}
		owner[orderID] = rowID
		return nil
	}

	for id, tx := range s.transactions {
		if staged, ok := t.transactions[id]; ok {
			tx = staged
		}
		if tx.GatewayOrderID != nil {
			if err := claim(*tx.GatewayOrderID, tx.ID); err != nil {
				return err
			}
		}
	}
	for id, tx := range t.transactions {
		if _, ok := s.transactions[id]; ok || tx.GatewayOrderID == nil {
			continue
		}
		if err := claim(*tx.GatewayOrderID, tx.ID); err != nil {
			return err
		}
	}

	// An attempt shares its order id with the transaction that owns it.
	attemptOwner := make(map[string]uuid.UUID)
	inFlight := make(map[uuid.UUID]uuid.UUID)
	check := func(a *domain.GatewayAttempt) error {
		if prev, ok := attemptOwner[a.GatewayOrderID]; ok && prev != a.ID {
			return fmt.Errorf("%w: %s", ErrDuplicateOrderID, a.GatewayOrderID)
		}
		attemptOwner[a.GatewayOrderID] = a.ID
		if txID, ok := owner[a.GatewayOrderID]; ok && txID != a.TransactionID {
			return fmt.Errorf("%w: %s", ErrDuplicateOrderID, a.GatewayOrderID)
		}
		if a.InFlight {
			if prev, ok := inFlight[a.TransactionID]; ok && prev != a.ID {
				return fmt.Errorf("%w: %s", ErrAttemptInFlight, a.TransactionID)
			}
			inFlight[a.TransactionID] = a.ID
		}
		return nil
	}
	for id, a := range s.attempts {
		if staged, ok := t.attempts[id]; ok {
			a = staged
		}
		if err := check(a); err != nil {
			return err
		}
	}
	for id, a := range t.attempts {
		if _, ok := s.attempts[id]; ok {
			continue
		}
		if err := check(a); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) txFor(tx pgx.Tx) (*memTx, error) {
	t, ok := tx.(*memTx)
	if !ok || t.store != s {
		return nil, ErrForeignTx
	}
	if t.done {
		return nil, ErrTxClosed
	}
	return t, nil
}
