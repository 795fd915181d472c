package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"fundflow/internal/core/domain"
	"fundflow/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	_ ports.DBTransactor             = (*Store)(nil)
	_ ports.TransactionRepository    = (*TransactionRepo)(nil)
	_ ports.AttemptRepository        = (*AttemptRepo)(nil)
	_ ports.HistoryRepository        = (*HistoryRepo)(nil)
	_ ports.GatewayRepository        = (*GatewayRepo)(nil)
	_ ports.TradingAccountRepository = (*TradingAccountRepo)(nil)
	_ ports.PaymentMethodRepository  = (*PaymentMethodRepo)(nil)
	_ ports.AuditRepository          = (*AuditRepo)(nil)
)

func (s *Store) Transactions() *TransactionRepo       { return &TransactionRepo{s: s} }
func (s *Store) Attempts() *AttemptRepo               { return &AttemptRepo{s: s} }
func (s *Store) History() *HistoryRepo                { return &HistoryRepo{s: s} }
func (s *Store) Gateways() *GatewayRepo               { return &GatewayRepo{s: s} }
func (s *Store) TradingAccounts() *TradingAccountRepo { return &TradingAccountRepo{s: s} }
func (s *Store) PaymentMethods() *PaymentMethodRepo   { return &PaymentMethodRepo{s: s} }
func (s *Store) Audits() *AuditRepo                   { return &AuditRepo{s: s} }

// --- Transactions ---

type TransactionRepo struct{ s *Store }

func (r *TransactionRepo) Create(_ context.Context, tx pgx.Tx, t *domain.Transaction) error {
	mt, err := r.s.txFor(tx)
	if err != nil {
		return err
	}
	r.s.mu.RLock()
	_, exists := r.s.transactions[t.ID]
	r.s.mu.RUnlock()
	if _, staged := mt.transactions[t.ID]; exists || staged {
		return fmt.Errorf("insert transaction: duplicate id %s", t.ID)
	}
	mt.transactions[t.ID] = t.Clone()
	return nil
}

func (r *TransactionRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.transactions[id]
	if !ok || t.Deleted {
		return nil, nil
	}
	return t.Clone(), nil
}

// GetByIDForUpdate sees writes staged earlier in the same transaction.
func (r *TransactionRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Transaction, error) {
	mt, err := r.s.txFor(tx)
	if err != nil {
		return nil, err
	}
	if t, ok := mt.transactions[id]; ok {
		return t.Clone(), nil
	}
	return r.GetByID(ctx, id)
}

func (r *TransactionRepo) Update(_ context.Context, tx pgx.Tx, t *domain.Transaction) error {
	mt, err := r.s.txFor(tx)
	if err != nil {
		return err
	}
	if _, ok := mt.transactions[t.ID]; !ok {
		r.s.mu.RLock()
		_, ok = r.s.transactions[t.ID]
		r.s.mu.RUnlock()
		if !ok {
			return fmt.Errorf("transaction not found: %s", t.ID)
		}
	}
	mt.transactions[t.ID] = t.Clone()
	return nil
}

func (r *TransactionRepo) List(_ context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	r.s.mu.RLock()
	var result []domain.Transaction
	for _, t := range r.s.transactions {
		if t.Deleted || !matches(t, params) {
			continue
		}
		result = append(result, *t.Clone())
	}
	r.s.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	total := int64(len(result))

	start := (params.Page - 1) * params.PageSize
	if start < 0 || start >= len(result) {
		return []domain.Transaction{}, total, nil
	}
	end := start + params.PageSize
	if end > len(result) {
		end = len(result)
	}
	return result[start:end], total, nil
}

func matches(t *domain.Transaction, p ports.TransactionListParams) bool {
	switch {
	case p.Kind != nil && t.Kind != *p.Kind:
		return false
	case p.Status != nil && t.Status != *p.Status:
		return false
	case p.TradingStatus != nil && t.TradingStatus != *p.TradingStatus:
		return false
	case p.GatewayStatus != nil && t.GatewayStatus != *p.GatewayStatus:
		return false
	case p.InFlight != nil && t.InFlight != *p.InFlight:
		return false
	case p.CustomerID != nil && t.CustomerID != *p.CustomerID:
		return false
	}
	return true
}

func (r *TransactionRepo) ListInFlight(_ context.Context, olderThan time.Time, limit int) ([]domain.Transaction, error) {
	r.s.mu.RLock()
	var result []domain.Transaction
	for _, t := range r.s.transactions {
		if t.InFlight && !t.Deleted && t.UpdatedAt.Before(olderThan) {
			result = append(result, *t.Clone())
		}
	}
	r.s.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool { return result[i].UpdatedAt.Before(result[j].UpdatedAt) })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// --- Gateway attempts ---

type AttemptRepo struct{ s *Store }

func (r *AttemptRepo) Create(_ context.Context, tx pgx.Tx, a *domain.GatewayAttempt) error {
	mt, err := r.s.txFor(tx)
	if err != nil {
		return err
	}
	mt.attempts[a.ID] = a.Clone()
	return nil
}

func (r *AttemptRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.GatewayAttempt, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.attempts[id]
	if !ok {
		return nil, nil
	}
	return a.Clone(), nil
}

func (r *AttemptRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.GatewayAttempt, error) {
	mt, err := r.s.txFor(tx)
	if err != nil {
		return nil, err
	}
	if a, ok := mt.attempts[id]; ok {
		return a.Clone(), nil
	}
	return r.GetByID(ctx, id)
}

func (r *AttemptRepo) GetByOrderID(_ context.Context, orderID string) (*domain.GatewayAttempt, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, a := range r.s.attempts {
		if a.GatewayOrderID == orderID {
			return a.Clone(), nil
		}
	}
	return nil, nil
}

func (r *AttemptRepo) Update(_ context.Context, tx pgx.Tx, a *domain.GatewayAttempt) error {
	mt, err := r.s.txFor(tx)
	if err != nil {
		return err
	}
	if _, ok := mt.attempts[a.ID]; !ok {
		r.s.mu.RLock()
		_, ok = r.s.attempts[a.ID]
		r.s.mu.RUnlock()
		if !ok {
			return fmt.Errorf("gateway attempt not found: %s", a.ID)
		}
	}
	mt.attempts[a.ID] = a.Clone()
	return nil
}

func (r *AttemptRepo) ListByTransaction(_ context.Context, transactionID uuid.UUID) ([]domain.GatewayAttempt, error) {
	r.s.mu.RLock()
	var out []domain.GatewayAttempt
	for _, a := range r.s.attempts {
		if a.TransactionID == transactionID {
			out = append(out, *a.Clone())
		}
	}
	r.s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// OrderIDExists checks committed rows. An id staged by an open transaction is invisible here,
// exactly as it would be to a concurrent postgres session; the commit-time check catches it.
func (r *AttemptRepo) OrderIDExists(_ context.Context, orderID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, a := range r.s.attempts {
		if a.GatewayOrderID == orderID {
			return true, nil
		}
	}
	for _, t := range r.s.transactions {
		if t.GatewayOrderID != nil && *t.GatewayOrderID == orderID {
			return true, nil
		}
	}
	return false, nil
}

// --- History ---

type HistoryRepo struct{ s *Store }

func (r *HistoryRepo) Append(_ context.Context, tx pgx.Tx, e *domain.HistoryEntry) error {
	mt, err := r.s.txFor(tx)
	if err != nil {
		return err
	}
	mt.history = append(mt.history, *e)
	return nil
}

func (r *HistoryRepo) ListByTransaction(_ context.Context, transactionID uuid.UUID) ([]domain.HistoryEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return append([]domain.HistoryEntry(nil), r.s.history[transactionID]...), nil
}

// --- Gateways ---

type GatewayRepo struct{ s *Store }

func (r *GatewayRepo) Create(_ context.Context, g *domain.GatewayConfig) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *g
	c.Methods = append([]domain.MethodBand(nil), g.Methods...)
	r.s.gateways[g.ID] = &c
	return nil
}

func (r *GatewayRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.GatewayConfig, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	g, ok := r.s.gateways[id]
	if !ok {
		return nil, nil
	}
	c := *g
	return &c, nil
}

// GetDefault prefers a gateway dedicated to the direction over one serving both.
func (r *GatewayRepo) GetDefault(_ context.Context, direction domain.Direction) (*domain.GatewayConfig, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var best *domain.GatewayConfig
	for _, g := range r.s.gateways {
		if !g.Enabled || !g.IsDefault || !g.Serves(direction) {
			continue
		}
		switch {
		case best == nil:
			best = g
		case (g.Direction == direction) != (best.Direction == direction):
			if g.Direction == direction {
				best = g
			}
		case g.CreatedAt.Before(best.CreatedAt):
			best = g
		}
	}
	if best == nil {
		return nil, nil
	}
	c := *best
	return &c, nil
}

func (r *GatewayRepo) List(_ context.Context) ([]domain.GatewayConfig, error) {
	r.s.mu.RLock()
	var out []domain.GatewayConfig
	for _, g := range r.s.gateways {
		out = append(out, *g)
	}
	r.s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// --- Accounts ---

type TradingAccountRepo struct{ s *Store }

func (r *TradingAccountRepo) Create(_ context.Context, a *domain.TradingAccount) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *a
	r.s.accounts[a.ID] = &c
	return nil
}

func (r *TradingAccountRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.TradingAccount, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.accounts[id]
	if !ok {
		return nil, nil
	}
	c := *a
	return &c, nil
}

type PaymentMethodRepo struct{ s *Store }

func (r *PaymentMethodRepo) Create(_ context.Context, m *domain.PaymentMethod) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *m
	r.s.methods[m.ID] = &c
	return nil
}

func (r *PaymentMethodRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.PaymentMethod, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.methods[id]
	if !ok {
		return nil, nil
	}
	c := *m
	return &c, nil
}

func (r *PaymentMethodRepo) FindByAccountNumberEnc(_ context.Context, accountNumberEnc string) ([]domain.PaymentMethod, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.PaymentMethod
	for _, m := range r.s.methods {
		if m.AccountNumberEnc == accountNumberEnc {
			out = append(out, *m)
		}
	}
	return out, nil
}

// --- Audit ---

type AuditRepo struct{ s *Store }

func (r *AuditRepo) Create(_ context.Context, log *domain.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.audits = append(r.s.audits, *log)
	return nil
}

// Logs returns a copy of every recorded audit log.
func (r *AuditRepo) Logs() []domain.AuditLog {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return append([]domain.AuditLog(nil), r.s.audits...)
}
