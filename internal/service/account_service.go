package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fundflow/internal/core/domain"
	"fundflow/internal/core/ports"
	"fundflow/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AccountServiceImpl implements ports.AccountService. Payment details are stored under the
// deterministic cipher and decrypted only when a payout is built or an admin asks for them.
type AccountServiceImpl struct {
	accounts ports.TradingAccountRepository
	methods  ports.PaymentMethodRepository
	cipher   ports.AccountCipher
	engine   ports.TradingEngine
	group    string
	log      zerolog.Logger
}

func NewAccountService(
	accounts ports.TradingAccountRepository,
	methods ports.PaymentMethodRepository,
	cipher ports.AccountCipher,
	engine ports.TradingEngine,
	group string,
	log zerolog.Logger,
) *AccountServiceImpl {
	return &AccountServiceImpl{
		accounts: accounts,
		methods:  methods,
		cipher:   cipher,
		engine:   engine,
		group:    group,
		log:      log,
	}
}

// OpenTradingAccount registers an account on the trading engine and links it to the customer.
// The returned credentials are not stored.
func (s *AccountServiceImpl) OpenTradingAccount(ctx context.Context, req ports.OpenAccountRequest) (*ports.OpenAccountResult, error) {
	if req.CustomerID == uuid.Nil || strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" {
		return nil, apperror.Validation("customer_id, name and email are required")
	}

	creds, err := s.engine.Register(ctx, ports.TradingRegistration{Name: req.Name, Email: req.Email, Group: s.group})
	if err != nil {
		return nil, err
	}

	acct := &domain.TradingAccount{
		ID:         uuid.New(),
		CustomerID: req.CustomerID,
		Login:      creds.Login,
		Group:      s.group,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.accounts.Create(ctx, acct); err != nil {
		// The engine account exists; the login is logged so it can be linked by hand.
		s.log.Error().Err(err).Str("login", acct.Login).Str("customer_id", req.CustomerID.String()).
			Msg("trading account registered but not stored")
		return nil, apperror.ErrDatabaseError(fmt.Errorf("create trading account: %w", err))
	}

	s.log.Info().Str("account_id", acct.ID.String()).Str("login", acct.Login).Msg("trading account opened")
	return &ports.OpenAccountResult{Account: acct, Credentials: creds}, nil
}

func (s *AccountServiceImpl) AddPaymentMethod(ctx context.Context, customerID uuid.UUID, d domain.PaymentDetails) (*domain.PaymentMethod, error) {
	switch d.Kind {
	case domain.PaymentMethodBank:
		if d.AccountNumber == "" || d.IFSC == "" {
			return nil, apperror.Validation("bank payment method requires account_number and ifsc")
		}
	case domain.PaymentMethodUPI:
		if d.VPA == "" {
			return nil, apperror.Validation("upi payment method requires vpa")
		}
	default:
		return nil, apperror.Validation(fmt.Sprintf("unknown payment method kind %q", d.Kind))
	}

	m := &domain.PaymentMethod{
		ID:         uuid.New(),
		CustomerID: customerID,
		Kind:       d.Kind,
		CreatedAt:  time.Now().UTC(),
	}
	var err error
	for _, f := range []struct {
		dst *string
		val string
	}{
		{&m.HolderNameEnc, d.HolderName},
		{&m.AccountNumberEnc, d.AccountNumber},
		{&m.IFSCEnc, d.IFSC},
		{&m.VPAEnc, d.VPA},
	} {
		if *f.dst, err = s.cipher.Encrypt(f.val); err != nil {
			return nil, apperror.ErrEncryptionFailure(err)
		}
	}

	if err := s.methods.Create(ctx, m); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("create payment method: %w", err))
	}
	return m, nil
}

// PaymentDetails decrypts a payment method.
func (s *AccountServiceImpl) PaymentDetails(ctx context.Context, id uuid.UUID) (*domain.PaymentDetails, error) {
	m, err := s.methods.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get payment method: %w", err))
	}
	if m == nil {
		return nil, apperror.ErrNotFound("payment method")
	}

	d := &domain.PaymentDetails{Kind: m.Kind}
	for _, f := range []struct {
		dst *string
		val string
	}{
		{&d.HolderName, m.HolderNameEnc},
		{&d.AccountNumber, m.AccountNumberEnc},
		{&d.IFSC, m.IFSCEnc},
		{&d.VPA, m.VPAEnc},
	} {
		if *f.dst, err = s.cipher.Decrypt(f.val); err != nil {
			return nil, apperror.ErrEncryptionFailure(err)
		}
	}
	return d, nil
}

// SearchByAccountNumber finds payment methods by exact account number, comparing ciphertexts.
func (s *AccountServiceImpl) SearchByAccountNumber(ctx context.Context, accountNumber string) ([]domain.PaymentMethod, error) {
	accountNumber = strings.TrimSpace(accountNumber)
	if accountNumber == "" {
		return nil, apperror.Validation("account_number is required")
	}
	enc, err := s.cipher.Encrypt(accountNumber)
	if err != nil {
		return nil, apperror.ErrEncryptionFailure(err)
	}
	methods, err := s.methods.FindByAccountNumberEnc(ctx, enc)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("search payment methods: %w", err))
	}
	if methods == nil {
		methods = []domain.PaymentMethod{}
	}
	return methods, nil
}
