// Package transaction owns the transaction state machine and coordinates
// wallet resolution, idempotency, posting and gateway reconciliation.
package transaction

import (
	"context"
	stderrors "errors"
	"fmt"
	"log"

	"vaultpay/internal/errors"
	"vaultpay/internal/models"
	"vaultpay/internal/repositories"
	"vaultpay/internal/services/ledger"
	"vaultpay/internal/services/paystack"
	"vaultpay/internal/utils"

	"github.com/shopspring/decimal"
)

type Service interface {
	Transfer(ctx context.Context, userID uint, req TransferRequest) (*models.Transaction, error)
	InitiateFunding(ctx context.Context, userID uint, req FundRequest) (*models.Transaction, error)
	CompleteFunding(ctx context.Context, reference string, amount decimal.Decimal) (*models.Transaction, error)
	FailFunding(ctx context.Context, reference, reason string) (*models.Transaction, error)
	Withdraw(ctx context.Context, userID uint, req WithdrawRequest) (*models.Transaction, error)
	GetTransaction(ctx context.Context, reference string) (*Snapshot, error)
	GetHistory(ctx context.Context, walletID uint, limit, offset int) ([]Snapshot, int64, error)
	HandleGatewayEvent(ctx context.Context, event GatewayEvent) error
}

type service struct {
	txRepo     repositories.TransactionRepository
	walletRepo repositories.WalletRepository
	ledgerRepo repositories.LedgerRepository
	userRepo   repositories.UserRepository
	posting    ledger.Service
	gateway    paystack.Client
	pins       PINVerifier
	cache      WalletCacheInvalidator
}

// NewService creates the transaction orchestrator.
func NewService(
	txRepo repositories.TransactionRepository,
	walletRepo repositories.WalletRepository,
	ledgerRepo repositories.LedgerRepository,
	userRepo repositories.UserRepository,
	posting ledger.Service,
	gateway paystack.Client,
	pins PINVerifier,
	cache WalletCacheInvalidator,
) Service {
	if txRepo == nil || walletRepo == nil || ledgerRepo == nil {
		panic("repositories are required")
	}
	if posting == nil {
		panic("posting engine is required")
	}
	if cache == nil {
		cache = NoopInvalidator{}
	}
	return &service{
		txRepo:     txRepo,
		walletRepo: walletRepo,
		ledgerRepo: ledgerRepo,
		userRepo:   userRepo,
		posting:    posting,
		gateway:    gateway,
		pins:       pins,
		cache:      cache,
	}
}

func (s *service) Transfer(ctx context.Context, userID uint, req TransferRequest) (*models.Transaction, error) {
	if !req.Amount.IsPositive() {
		return nil, errors.ErrInvalidAmount
	}

	// A replayed idempotency key returns the stored outcome unchanged,
	// whatever its status; no second posting is attempted.
	if req.IdempotencyKey != "" {
		existing, err := s.txRepo.GetByIdempotencyKey(ctx, req.IdempotencyKey)
		if err == nil {
			return existing, nil
		}
		if !stderrors.Is(err, repositories.ErrTransactionNotFound) {
			return nil, err
		}
	}

	if s.pins != nil {
		if err := s.pins.VerifyTransactionPIN(ctx, userID, req.PIN); err != nil {
			return nil, err
		}
	}

	source, err := s.walletRepo.GetByID(ctx, req.SourceWalletID)
	if err != nil {
		return nil, translateWalletErr(err)
	}
	if source.UserID != userID {
		return nil, errors.ErrAccessDenied
	}
	dest, err := s.walletRepo.GetByNumber(ctx, req.DestWalletNumber)
	if err != nil {
		return nil, translateWalletErr(err)
	}
	if source.ID == dest.ID {
		return nil, errors.ErrSelfTransfer
	}
	if !source.IsActive() || !dest.IsActive() {
		return nil, errors.ErrWalletFrozen
	}
	if source.Currency != dest.Currency {
		return nil, errors.ErrCurrencyMismatch
	}

	txn := &models.Transaction{
		Reference:      utils.GenerateTransactionReference(),
		Type:           models.TransactionTypeTransfer,
		Status:         models.TransactionStatusPending,
		Amount:         req.Amount,
		Currency:       source.Currency,
		Description:    req.Description,
		SourceWalletID: &source.ID,
		DestWalletID:   &dest.ID,
	}
	if req.IdempotencyKey != "" {
		key := req.IdempotencyKey
		txn.IdempotencyKey = &key
	}

	// Persisting the key before any posting establishes at-most-once: a
	// concurrent duplicate loses the unique-index race and resolves to the
	// first submission's row.
	if err := s.txRepo.Create(ctx, txn); err != nil {
		if stderrors.Is(err, repositories.ErrDuplicateKey) && req.IdempotencyKey != "" {
			if existing, lookupErr := s.txRepo.GetByIdempotencyKey(ctx, req.IdempotencyKey); lookupErr == nil {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("failed to record transfer intent: %w", err)
	}

	sourceAccount, err := s.ledgerRepo.GetAccountByWalletID(ctx, source.ID)
	if err != nil {
		return s.fail(ctx, txn, err)
	}
	destAccount, err := s.ledgerRepo.GetAccountByWalletID(ctx, dest.ID)
	if err != nil {
		return s.fail(ctx, txn, err)
	}

	description := fmt.Sprintf("transfer %s -> %s", source.WalletNumber, dest.WalletNumber)
	entry, err := s.posting.Post(ctx, txn.Reference, description,
		ledger.TransferLines(sourceAccount.ID, destAccount.ID, req.Amount))
	if err != nil {
		return s.fail(ctx, txn, err)
	}

	s.complete(ctx, txn, entry)
	s.cache.Invalidate(ctx, source.ID, dest.ID)
	return txn, nil
}

func (s *service) InitiateFunding(ctx context.Context, userID uint, req FundRequest) (*models.Transaction, error) {
	if !req.Amount.IsPositive() {
		return nil, errors.ErrInvalidAmount
	}

	wallet, err := s.walletRepo.GetByID(ctx, req.WalletID)
	if err != nil {
		return nil, translateWalletErr(err)
	}
	if wallet.UserID != userID {
		return nil, errors.ErrAccessDenied
	}
	if !wallet.IsActive() {
		return nil, errors.ErrWalletFrozen
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user %d: %w", userID, err)
	}

	txn := &models.Transaction{
		Reference:    utils.GenerateDepositReference(),
		Type:         models.TransactionTypeFund,
		Status:       models.TransactionStatusPending,
		Amount:       req.Amount,
		Currency:     wallet.Currency,
		Description:  "wallet funding",
		DestWalletID: &wallet.ID,
	}
	if err := s.txRepo.Create(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to record funding intent: %w", err)
	}

	// No ledger posting happens here; the gateway is contacted before any
	// lock is taken and the posting waits for reconciliation.
	auth, err := s.gateway.InitializePayment(ctx, user.Email, req.Amount, txn.Reference, wallet.Currency)
	if err != nil {
		return s.fail(ctx, txn, err)
	}

	txn.Metadata = models.NewJSON(map[string]interface{}{
		"authorization_url": auth.AuthorizationURL,
		"access_code":       auth.AccessCode,
	})
	if err := s.txRepo.Update(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to store authorization handle: %w", err)
	}
	return txn, nil
}

func (s *service) CompleteFunding(ctx context.Context, reference string, amount decimal.Decimal) (*models.Transaction, error) {
	txn, err := s.txRepo.GetByReference(ctx, reference)
	if err != nil {
		return nil, translateTxErr(err)
	}
	if txn.IsTerminal() {
		log.Printf("funding %s already %s, ignoring settlement", reference, txn.Status)
		return txn, nil
	}
	if txn.DestWalletID == nil {
		return s.fail(ctx, txn, errors.ErrWalletNotFound)
	}
	if !amount.Equal(txn.Amount) {
		_, _ = s.fail(ctx, txn, errors.ErrAmountMismatch)
		return txn, errors.ErrAmountMismatch
	}

	walletAccount, err := s.ledgerRepo.GetAccountByWalletID(ctx, *txn.DestWalletID)
	if err != nil {
		return s.fail(ctx, txn, err)
	}
	liability, err := s.ledgerRepo.GetOrCreateSystemAccount(ctx, GatewayLiabilityAccount, models.AccountTypeLiability)
	if err != nil {
		return s.fail(ctx, txn, err)
	}

	entry, err := s.posting.Post(ctx, txn.Reference, "gateway funding settlement",
		ledger.FundingLines(walletAccount.ID, liability.ID, txn.Amount))
	if err != nil {
		return s.fail(ctx, txn, err)
	}

	s.complete(ctx, txn, entry)
	s.cache.Invalidate(ctx, *txn.DestWalletID)
	return txn, nil
}

func (s *service) FailFunding(ctx context.Context, reference, reason string) (*models.Transaction, error) {
	txn, err := s.txRepo.GetByReference(ctx, reference)
	if err != nil {
		return nil, translateTxErr(err)
	}
	if txn.IsTerminal() {
		log.Printf("funding %s already %s, ignoring failure event", reference, txn.Status)
		return txn, nil
	}

	txn.Status = models.TransactionStatusFailed
	txn.FailureReason = reason
	if err := s.txRepo.Update(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to mark funding %s failed: %w", reference, err)
	}
	return txn, nil
}

func (s *service) Withdraw(ctx context.Context, userID uint, req WithdrawRequest) (*models.Transaction, error) {
	if !req.Amount.IsPositive() {
		return nil, errors.ErrInvalidAmount
	}

	if s.pins != nil {
		if err := s.pins.VerifyTransactionPIN(ctx, userID, req.PIN); err != nil {
			return nil, err
		}
	}

	wallet, err := s.walletRepo.GetByID(ctx, req.WalletID)
	if err != nil {
		return nil, translateWalletErr(err)
	}
	if wallet.UserID != userID {
		return nil, errors.ErrAccessDenied
	}
	if !wallet.IsActive() {
		return nil, errors.ErrWalletFrozen
	}

	txn := &models.Transaction{
		Reference:      utils.GenerateWithdrawalReference(),
		Type:           models.TransactionTypeWithdraw,
		Status:         models.TransactionStatusPending,
		Amount:         req.Amount,
		Currency:       wallet.Currency,
		Description:    "wallet withdrawal",
		SourceWalletID: &wallet.ID,
	}
	if err := s.txRepo.Create(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to record withdrawal intent: %w", err)
	}

	walletAccount, err := s.ledgerRepo.GetAccountByWalletID(ctx, wallet.ID)
	if err != nil {
		return s.fail(ctx, txn, err)
	}
	liability, err := s.ledgerRepo.GetOrCreateSystemAccount(ctx, GatewayLiabilityAccount, models.AccountTypeLiability)
	if err != nil {
		return s.fail(ctx, txn, err)
	}

	// The obligation to pay out is recorded synchronously; settlement with
	// the bank is an external concern.
	entry, err := s.posting.Post(ctx, txn.Reference, "wallet withdrawal",
		ledger.WithdrawalLines(walletAccount.ID, liability.ID, req.Amount))
	if err != nil {
		return s.fail(ctx, txn, err)
	}

	s.complete(ctx, txn, entry)
	s.cache.Invalidate(ctx, wallet.ID)
	return txn, nil
}

func (s *service) GetTransaction(ctx context.Context, reference string) (*Snapshot, error) {
	txn, err := s.txRepo.GetByReference(ctx, reference)
	if err != nil {
		return nil, translateTxErr(err)
	}
	snapshot := s.snapshot(ctx, txn)
	return &snapshot, nil
}

func (s *service) GetHistory(ctx context.Context, walletID uint, limit, offset int) ([]Snapshot, int64, error) {
	txs, total, err := s.txRepo.ListByWallet(ctx, walletID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load history for wallet %d: %w", walletID, err)
	}

	snapshots := make([]Snapshot, 0, len(txs))
	for i := range txs {
		snapshots = append(snapshots, s.snapshot(ctx, &txs[i]))
	}
	return snapshots, total, nil
}

// fail moves a pending transaction to FAILED, keeping the row for audit.
// Terminal rows are never touched.
func (s *service) fail(ctx context.Context, txn *models.Transaction, cause error) (*models.Transaction, error) {
	if !txn.IsTerminal() {
		txn.Status = models.TransactionStatusFailed
		txn.FailureReason = cause.Error()
		if err := s.txRepo.Update(ctx, txn); err != nil {
			log.Printf("failed to mark transaction %s failed: %v", txn.Reference, err)
		}
	}

	var derr *errors.DomainError
	if stderrors.As(cause, &derr) {
		return nil, derr
	}
	if stderrors.Is(cause, repositories.ErrAccountNotFound) {
		return nil, errors.ErrAccountNotFound
	}
	return nil, fmt.Errorf("transaction %s failed: %w", txn.Reference, cause)
}

func (s *service) complete(ctx context.Context, txn *models.Transaction, entry *models.JournalEntry) {
	txn.JournalEntryID = &entry.ID
	txn.Status = models.TransactionStatusCompleted
	if err := s.txRepo.Update(ctx, txn); err != nil {
		// The journal entry committed; the status row catches up on the
		// next read or reconciliation pass.
		log.Printf("failed to mark transaction %s completed: %v", txn.Reference, err)
	}
}

func (s *service) snapshot(ctx context.Context, txn *models.Transaction) Snapshot {
	snap := Snapshot{
		Reference:     txn.Reference,
		Type:          txn.Type,
		Status:        txn.Status,
		Amount:        txn.Amount,
		Currency:      txn.Currency,
		Description:   txn.Description,
		FailureReason: txn.FailureReason,
		CreatedAt:     txn.CreatedAt,
	}
	if txn.SourceWalletID != nil {
		if w, err := s.walletRepo.GetByID(ctx, *txn.SourceWalletID); err == nil {
			snap.SourceWalletNumber = w.WalletNumber
		}
	}
	if txn.DestWalletID != nil {
		if w, err := s.walletRepo.GetByID(ctx, *txn.DestWalletID); err == nil {
			snap.DestWalletNumber = w.WalletNumber
		}
	}
	return snap
}

func translateWalletErr(err error) error {
	if stderrors.Is(err, repositories.ErrWalletNotFound) {
		return errors.ErrWalletNotFound
	}
	return err
}

func translateTxErr(err error) error {
	if stderrors.Is(err, repositories.ErrTransactionNotFound) {
		return errors.ErrTransactionNotFound
	}
	return err
}
