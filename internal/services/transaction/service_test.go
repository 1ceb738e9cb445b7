package transaction

import (
	"context"
	"sort"
	"sync"
	"testing"

	"vaultpay/internal/errors"
	"vaultpay/internal/models"
	"vaultpay/internal/repositories"
	"vaultpay/internal/services/ledger"
	"vaultpay/internal/services/paystack"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ---- in-memory fakes ----

type fakeLedgerStore struct {
	mu       sync.Mutex
	accounts map[uint]models.LedgerAccount
	entries  []models.JournalEntry
	next     uint
}

func newFakeLedgerStore(accounts ...models.LedgerAccount) *fakeLedgerStore {
	s := &fakeLedgerStore{accounts: make(map[uint]models.LedgerAccount)}
	for _, a := range accounts {
		s.accounts[a.ID] = a
	}
	return s
}

func (f *fakeLedgerStore) balance(id uint) decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.accounts[id].Balance
}

func (f *fakeLedgerStore) entryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

func (f *fakeLedgerStore) GetAccount(ctx context.Context, id uint) (*models.LedgerAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[id]
	if !ok {
		return nil, repositories.ErrAccountNotFound
	}
	return &account, nil
}

func (f *fakeLedgerStore) GetAccountForUpdate(ctx context.Context, id uint) (*models.LedgerAccount, error) {
	account, ok := f.accounts[id]
	if !ok {
		return nil, repositories.ErrAccountNotFound
	}
	return &account, nil
}

func (f *fakeLedgerStore) GetAccountByWalletID(ctx context.Context, walletID uint) (*models.LedgerAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, account := range f.accounts {
		if account.WalletID != nil && *account.WalletID == walletID {
			a := account
			return &a, nil
		}
	}
	return nil, repositories.ErrAccountNotFound
}

func (f *fakeLedgerStore) GetOrCreateSystemAccount(ctx context.Context, name, accountType string) (*models.LedgerAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, account := range f.accounts {
		if account.WalletID == nil && account.AccountName == name {
			a := account
			return &a, nil
		}
	}
	var maxID uint
	for id := range f.accounts {
		if id > maxID {
			maxID = id
		}
	}
	account := models.LedgerAccount{
		ID:          maxID + 1,
		AccountName: name,
		AccountType: accountType,
		Balance:     decimal.Zero,
	}
	f.accounts[account.ID] = account
	return &account, nil
}

func (f *fakeLedgerStore) CreateAccount(ctx context.Context, account *models.LedgerAccount) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[account.ID] = *account
	return nil
}

func (f *fakeLedgerStore) AppendJournalEntry(ctx context.Context, entry *models.JournalEntry, accounts []*models.LedgerAccount) error {
	f.next++
	entry.ID = f.next
	f.entries = append(f.entries, *entry)
	for _, account := range accounts {
		f.accounts[account.ID] = *account
	}
	return nil
}

func (f *fakeLedgerStore) WithinTransaction(ctx context.Context, fn func(repositories.LedgerRepository) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	stage := &fakeLedgerStore{accounts: make(map[uint]models.LedgerAccount, len(f.accounts)), next: f.next}
	for id, account := range f.accounts {
		stage.accounts[id] = account
	}
	if err := fn(&stagedLedgerStore{stage}); err != nil {
		return err
	}
	f.accounts = stage.accounts
	f.entries = append(f.entries, stage.entries...)
	f.next = stage.next
	return nil
}

// stagedLedgerStore skips the mutex; the root holds it for the whole unit
// of work.
type stagedLedgerStore struct {
	*fakeLedgerStore
}

func (s *stagedLedgerStore) GetAccountByWalletID(ctx context.Context, walletID uint) (*models.LedgerAccount, error) {
	for _, account := range s.accounts {
		if account.WalletID != nil && *account.WalletID == walletID {
			a := account
			return &a, nil
		}
	}
	return nil, repositories.ErrAccountNotFound
}

var _ repositories.LedgerRepository = (*fakeLedgerStore)(nil)

type fakeWalletRepo struct {
	mu      sync.Mutex
	wallets map[uint]models.Wallet
}

func newFakeWalletRepo(wallets ...models.Wallet) *fakeWalletRepo {
	r := &fakeWalletRepo{wallets: make(map[uint]models.Wallet)}
	for _, w := range wallets {
		r.wallets[w.ID] = w
	}
	return r
}

func (r *fakeWalletRepo) Create(ctx context.Context, wallet *models.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.wallets[wallet.ID] = *wallet
	return nil
}

func (r *fakeWalletRepo) GetByID(ctx context.Context, id uint) (*models.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[id]
	if !ok {
		return nil, repositories.ErrWalletNotFound
	}
	return &w, nil
}

func (r *fakeWalletRepo) GetByNumber(ctx context.Context, number string) (*models.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.wallets {
		if w.WalletNumber == number {
			copied := w
			return &copied, nil
		}
	}
	return nil, repositories.ErrWalletNotFound
}

func (r *fakeWalletRepo) GetByUserID(ctx context.Context, userID uint) ([]models.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Wallet
	for _, w := range r.wallets {
		if w.UserID == userID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (r *fakeWalletRepo) UpdateStatus(ctx context.Context, walletID uint, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[walletID]
	if !ok {
		return repositories.ErrWalletNotFound
	}
	w.Status = status
	r.wallets[walletID] = w
	return nil
}

type fakeTxRepo struct {
	mu             sync.Mutex
	rows           []models.Transaction
	nextID         uint
	missNextLookup bool // simulate losing the idempotency pre-check race
}

func newFakeTxRepo() *fakeTxRepo {
	return &fakeTxRepo{}
}

func (r *fakeTxRepo) Create(ctx context.Context, tx *models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tx.IdempotencyKey != nil {
		for _, row := range r.rows {
			if row.IdempotencyKey != nil && *row.IdempotencyKey == *tx.IdempotencyKey {
				return repositories.ErrDuplicateKey
			}
		}
	}
	r.nextID++
	tx.ID = r.nextID
	r.rows = append(r.rows, *tx)
	return nil
}

func (r *fakeTxRepo) Update(ctx context.Context, tx *models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if r.rows[i].ID == tx.ID {
			r.rows[i] = *tx
			return nil
		}
	}
	return repositories.ErrTransactionNotFound
}

func (r *fakeTxRepo) GetByReference(ctx context.Context, reference string) (*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if r.rows[i].Reference == reference {
			row := r.rows[i]
			return &row, nil
		}
	}
	return nil, repositories.ErrTransactionNotFound
}

func (r *fakeTxRepo) GetByIdempotencyKey(ctx context.Context, key string) (*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.missNextLookup {
		r.missNextLookup = false
		return nil, repositories.ErrTransactionNotFound
	}
	for i := range r.rows {
		if r.rows[i].IdempotencyKey != nil && *r.rows[i].IdempotencyKey == key {
			row := r.rows[i]
			return &row, nil
		}
	}
	return nil, repositories.ErrTransactionNotFound
}

func (r *fakeTxRepo) ListByWallet(ctx context.Context, walletID uint, limit, offset int) ([]models.Transaction, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []models.Transaction
	for _, row := range r.rows {
		if (row.SourceWalletID != nil && *row.SourceWalletID == walletID) ||
			(row.DestWalletID != nil && *row.DestWalletID == walletID) {
			matched = append(matched, row)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	matched = matched[offset:]
	if limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, total, nil
}

func (r *fakeTxRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

type fakeUserRepo struct {
	users map[uint]models.User
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error { return nil }

func (r *fakeUserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error { return nil }

func (r *fakeUserRepo) IncrementTokenVersion(ctx context.Context, userID uint) error { return nil }

type fakeGateway struct {
	mu          sync.Mutex
	initErr     error
	initialized []string // references passed to InitializePayment
}

func (g *fakeGateway) InitializePayment(ctx context.Context, email string, amount decimal.Decimal, reference, currency string) (*paystack.Authorization, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.initErr != nil {
		return nil, g.initErr
	}
	g.initialized = append(g.initialized, reference)
	return &paystack.Authorization{
		AuthorizationURL: "https://checkout.paystack.com/" + reference,
		AccessCode:       "access_" + reference,
		Reference:        reference,
	}, nil
}

func (g *fakeGateway) VerifyPayment(ctx context.Context, reference string) (*paystack.Verification, error) {
	return &paystack.Verification{Status: paystack.StatusSuccess}, nil
}

func (g *fakeGateway) VerifyWebhookSignature(payload []byte, signature string) bool { return true }

type fakePins struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (p *fakePins) VerifyTransactionPIN(ctx context.Context, userID uint, pin string) error {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	return p.err
}

func (p *fakePins) verifyCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// ---- test environment ----

type env struct {
	store   *fakeLedgerStore
	wallets *fakeWalletRepo
	txs     *fakeTxRepo
	users   *fakeUserRepo
	gateway *fakeGateway
	pins    *fakePins
	svc     Service
}

const (
	aliceWalletAccount = uint(1)
	bobWalletAccount   = uint(2)
)

func walletID(id uint) *uint { return &id }

// newEnv builds two users: alice (user 1, wallet 1, balance 100) and bob
// (user 2, wallet 2, balance 0).
func newEnv(t *testing.T) *env {
	t.Helper()

	store := newFakeLedgerStore(
		models.LedgerAccount{
			ID: 1, AccountName: "WALLET:VP1", AccountType: models.AccountTypeAsset,
			WalletID: walletID(1), Balance: decimal.NewFromInt(100),
		},
		models.LedgerAccount{
			ID: 2, AccountName: "WALLET:VP2", AccountType: models.AccountTypeAsset,
			WalletID: walletID(2), Balance: decimal.Zero,
		},
	)
	wallets := newFakeWalletRepo(
		models.Wallet{ID: 1, UserID: 1, WalletNumber: "VP1", Currency: "NGN",
			Balance: decimal.NewFromInt(100), Status: models.WalletStatusActive},
		models.Wallet{ID: 2, UserID: 2, WalletNumber: "VP2", Currency: "NGN",
			Balance: decimal.Zero, Status: models.WalletStatusActive},
	)
	txs := newFakeTxRepo()
	users := &fakeUserRepo{users: map[uint]models.User{
		1: {Model: gorm.Model{ID: 1}, Email: "alice@example.com"},
		2: {Model: gorm.Model{ID: 2}, Email: "bob@example.com"},
	}}
	gateway := &fakeGateway{}
	pins := &fakePins{}

	posting := ledger.NewService(store, 0)
	svc := NewService(txs, wallets, store, users, posting, gateway, pins, NoopInvalidator{})

	return &env{store: store, wallets: wallets, txs: txs, users: users,
		gateway: gateway, pins: pins, svc: svc}
}

// ---- transfers ----

func TestTransferHappyPath(t *testing.T) {
	e := newEnv(t)

	txn, err := e.svc.Transfer(context.Background(), 1, TransferRequest{
		SourceWalletID:   1,
		DestWalletNumber: "VP2",
		Amount:           decimal.NewFromInt(30),
		Description:      "lunch",
		PIN:              "1234",
	})
	require.NoError(t, err)

	assert.Equal(t, models.TransactionStatusCompleted, txn.Status)
	assert.Equal(t, models.TransactionTypeTransfer, txn.Type)
	assert.NotNil(t, txn.JournalEntryID)
	assert.Equal(t, "NGN", txn.Currency)
	assert.Equal(t, 1, e.pins.verifyCalls())

	assert.True(t, e.store.balance(aliceWalletAccount).Equal(decimal.NewFromInt(70)))
	assert.True(t, e.store.balance(bobWalletAccount).Equal(decimal.NewFromInt(30)))
	assert.Equal(t, 1, e.store.entryCount())
}

func TestTransferIdempotentReplay(t *testing.T) {
	e := newEnv(t)
	req := TransferRequest{
		SourceWalletID:   1,
		DestWalletNumber: "VP2",
		Amount:           decimal.NewFromInt(10),
		PIN:              "1234",
		IdempotencyKey:   "idem-1",
	}

	first, err := e.svc.Transfer(context.Background(), 1, req)
	require.NoError(t, err)

	// Replaying the same key any number of times returns the stored
	// outcome and never posts again.
	for i := 0; i < 3; i++ {
		again, err := e.svc.Transfer(context.Background(), 1, req)
		require.NoError(t, err)
		assert.Equal(t, first.Reference, again.Reference)
	}

	assert.Equal(t, 1, e.store.entryCount())
	assert.Equal(t, 1, e.txs.count())
	assert.True(t, e.store.balance(aliceWalletAccount).Equal(decimal.NewFromInt(90)))
}

func TestTransferDuplicateKeyInsertRace(t *testing.T) {
	e := newEnv(t)
	req := TransferRequest{
		SourceWalletID:   1,
		DestWalletNumber: "VP2",
		Amount:           decimal.NewFromInt(10),
		PIN:              "1234",
		IdempotencyKey:   "idem-race",
	}

	first, err := e.svc.Transfer(context.Background(), 1, req)
	require.NoError(t, err)

	// The pre-check misses but the unique index still holds the key: the
	// loser of the insert race resolves to the winner's row.
	e.txs.missNextLookup = true
	again, err := e.svc.Transfer(context.Background(), 1, req)
	require.NoError(t, err)
	assert.Equal(t, first.Reference, again.Reference)
	assert.Equal(t, 1, e.store.entryCount())
}

func TestTransferRefusedByPIN(t *testing.T) {
	e := newEnv(t)
	e.pins.err = errors.ErrInvalidPIN

	_, err := e.svc.Transfer(context.Background(), 1, TransferRequest{
		SourceWalletID:   1,
		DestWalletNumber: "VP2",
		Amount:           decimal.NewFromInt(10),
		PIN:              "0000",
	})

	assert.ErrorIs(t, err, errors.ErrInvalidPIN)
	assert.Zero(t, e.txs.count(), "a refused transfer records nothing")
	assert.Zero(t, e.store.entryCount())
	assert.True(t, e.store.balance(aliceWalletAccount).Equal(decimal.NewFromInt(100)))
}

func TestTransferValidation(t *testing.T) {
	tests := []struct {
		name    string
		userID  uint
		mutate  func(*env)
		req     TransferRequest
		wantErr *errors.DomainError
	}{
		{
			name:   "zero amount",
			userID: 1,
			req: TransferRequest{
				SourceWalletID: 1, DestWalletNumber: "VP2", Amount: decimal.Zero,
			},
			wantErr: errors.ErrInvalidAmount,
		},
		{
			name:   "not the wallet owner",
			userID: 2,
			req: TransferRequest{
				SourceWalletID: 1, DestWalletNumber: "VP2", Amount: decimal.NewFromInt(10),
			},
			wantErr: errors.ErrAccessDenied,
		},
		{
			name:   "transfer to itself",
			userID: 1,
			req: TransferRequest{
				SourceWalletID: 1, DestWalletNumber: "VP1", Amount: decimal.NewFromInt(10),
			},
			wantErr: errors.ErrSelfTransfer,
		},
		{
			name:   "frozen source wallet",
			userID: 1,
			mutate: func(e *env) {
				_ = e.wallets.UpdateStatus(context.Background(), 1, models.WalletStatusFrozen)
			},
			req: TransferRequest{
				SourceWalletID: 1, DestWalletNumber: "VP2", Amount: decimal.NewFromInt(10),
			},
			wantErr: errors.ErrWalletFrozen,
		},
		{
			name:   "currency mismatch",
			userID: 1,
			mutate: func(e *env) {
				w, _ := e.wallets.GetByID(context.Background(), 2)
				w.Currency = "USD"
				_ = e.wallets.Create(context.Background(), w)
			},
			req: TransferRequest{
				SourceWalletID: 1, DestWalletNumber: "VP2", Amount: decimal.NewFromInt(10),
			},
			wantErr: errors.ErrCurrencyMismatch,
		},
		{
			name:   "unknown destination",
			userID: 1,
			req: TransferRequest{
				SourceWalletID: 1, DestWalletNumber: "VP404", Amount: decimal.NewFromInt(10),
			},
			wantErr: errors.ErrWalletNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			if tt.mutate != nil {
				tt.mutate(e)
			}

			_, err := e.svc.Transfer(context.Background(), tt.userID, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, e.store.entryCount())
		})
	}
}

func TestTransferInsufficientFundsKeepsFailedRow(t *testing.T) {
	e := newEnv(t)

	_, err := e.svc.Transfer(context.Background(), 1, TransferRequest{
		SourceWalletID:   1,
		DestWalletNumber: "VP2",
		Amount:           decimal.NewFromInt(150),
		PIN:              "1234",
	})
	assert.ErrorIs(t, err, errors.ErrInsufficientFunds)

	// The intent row stays behind as a FAILED record for audit.
	require.Equal(t, 1, e.txs.count())
	row := e.txs.rows[0]
	assert.Equal(t, models.TransactionStatusFailed, row.Status)
	assert.NotEmpty(t, row.FailureReason)

	assert.Zero(t, e.store.entryCount())
	assert.True(t, e.store.balance(aliceWalletAccount).Equal(decimal.NewFromInt(100)))
	assert.True(t, e.store.balance(bobWalletAccount).Equal(decimal.Zero))
}

func TestTransferConcurrentSameSource(t *testing.T) {
	e := newEnv(t)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.svc.Transfer(context.Background(), 1, TransferRequest{
				SourceWalletID:   1,
				DestWalletNumber: "VP2",
				Amount:           decimal.NewFromInt(80),
				PIN:              "1234",
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var failed int
	for err := range results {
		if err != nil {
			assert.ErrorIs(t, err, errors.ErrInsufficientFunds)
			failed++
		}
	}
	assert.Equal(t, 1, failed, "two 80s cannot both leave a balance of 100")
	assert.True(t, e.store.balance(aliceWalletAccount).Equal(decimal.NewFromInt(20)))
	assert.Equal(t, 1, e.store.entryCount())
	assert.Equal(t, 2, e.pins.verifyCalls())
}

// ---- funding ----

func TestInitiateFunding(t *testing.T) {
	e := newEnv(t)

	txn, err := e.svc.InitiateFunding(context.Background(), 2, FundRequest{
		WalletID: 2,
		Amount:   decimal.NewFromInt(500),
	})
	require.NoError(t, err)

	assert.Equal(t, models.TransactionStatusPending, txn.Status)
	assert.Equal(t, models.TransactionTypeFund, txn.Type)
	assert.Equal(t, "https://checkout.paystack.com/"+txn.Reference, txn.Metadata["authorization_url"])
	assert.Equal(t, []string{txn.Reference}, e.gateway.initialized)

	// Nothing posts until the gateway settles.
	assert.Zero(t, e.store.entryCount())
	assert.True(t, e.store.balance(bobWalletAccount).Equal(decimal.Zero))
}

func TestInitiateFundingGatewayDown(t *testing.T) {
	e := newEnv(t)
	e.gateway.initErr = context.DeadlineExceeded

	_, err := e.svc.InitiateFunding(context.Background(), 2, FundRequest{
		WalletID: 2,
		Amount:   decimal.NewFromInt(500),
	})
	require.Error(t, err)

	require.Equal(t, 1, e.txs.count())
	assert.Equal(t, models.TransactionStatusFailed, e.txs.rows[0].Status)
	assert.Zero(t, e.store.entryCount())
}

func TestCompleteFundingSettles(t *testing.T) {
	e := newEnv(t)
	pending, err := e.svc.InitiateFunding(context.Background(), 2, FundRequest{
		WalletID: 2,
		Amount:   decimal.NewFromInt(500),
	})
	require.NoError(t, err)

	settled, err := e.svc.CompleteFunding(context.Background(), pending.Reference, decimal.NewFromInt(500))
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusCompleted, settled.Status)
	assert.NotNil(t, settled.JournalEntryID)

	assert.True(t, e.store.balance(bobWalletAccount).Equal(decimal.NewFromInt(500)))

	liability, err := e.store.GetOrCreateSystemAccount(context.Background(),
		GatewayLiabilityAccount, models.AccountTypeLiability)
	require.NoError(t, err)
	assert.True(t, liability.Balance.Equal(decimal.NewFromInt(500)),
		"gateway money owed back is carried as a liability")

	// Settling again changes nothing.
	again, err := e.svc.CompleteFunding(context.Background(), pending.Reference, decimal.NewFromInt(500))
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusCompleted, again.Status)
	assert.Equal(t, 1, e.store.entryCount())
	assert.True(t, e.store.balance(bobWalletAccount).Equal(decimal.NewFromInt(500)))
}

func TestCompleteFundingAmountMismatch(t *testing.T) {
	e := newEnv(t)
	pending, err := e.svc.InitiateFunding(context.Background(), 2, FundRequest{
		WalletID: 2,
		Amount:   decimal.NewFromInt(500),
	})
	require.NoError(t, err)

	_, err = e.svc.CompleteFunding(context.Background(), pending.Reference, decimal.NewFromInt(499))
	assert.ErrorIs(t, err, errors.ErrAmountMismatch)

	row, lookupErr := e.txs.GetByReference(context.Background(), pending.Reference)
	require.NoError(t, lookupErr)
	assert.Equal(t, models.TransactionStatusFailed, row.Status)
	assert.Zero(t, e.store.entryCount())
}

func TestFailFunding(t *testing.T) {
	e := newEnv(t)
	pending, err := e.svc.InitiateFunding(context.Background(), 2, FundRequest{
		WalletID: 2,
		Amount:   decimal.NewFromInt(500),
	})
	require.NoError(t, err)

	failed, err := e.svc.FailFunding(context.Background(), pending.Reference, "card declined")
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusFailed, failed.Status)
	assert.Equal(t, "card declined", failed.FailureReason)

	// A late success event cannot resurrect a failed funding.
	late, err := e.svc.CompleteFunding(context.Background(), pending.Reference, decimal.NewFromInt(500))
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusFailed, late.Status)
	assert.Zero(t, e.store.entryCount())
}

// ---- reconciliation intake ----

func TestHandleGatewayEvent(t *testing.T) {
	e := newEnv(t)
	pending, err := e.svc.InitiateFunding(context.Background(), 2, FundRequest{
		WalletID: 2,
		Amount:   decimal.NewFromInt(500),
	})
	require.NoError(t, err)

	event := GatewayEvent{
		Reference: pending.Reference,
		Status:    paystack.StatusSuccess,
		Amount:    decimal.NewFromInt(500),
	}
	require.NoError(t, e.svc.HandleGatewayEvent(context.Background(), event))
	assert.True(t, e.store.balance(bobWalletAccount).Equal(decimal.NewFromInt(500)))

	// At-least-once delivery: the duplicate is discarded without error.
	require.NoError(t, e.svc.HandleGatewayEvent(context.Background(), event))
	assert.Equal(t, 1, e.store.entryCount())
	assert.True(t, e.store.balance(bobWalletAccount).Equal(decimal.NewFromInt(500)))
}

func TestHandleGatewayEventFailure(t *testing.T) {
	e := newEnv(t)
	pending, err := e.svc.InitiateFunding(context.Background(), 2, FundRequest{
		WalletID: 2,
		Amount:   decimal.NewFromInt(500),
	})
	require.NoError(t, err)

	require.NoError(t, e.svc.HandleGatewayEvent(context.Background(), GatewayEvent{
		Reference: pending.Reference,
		Status:    paystack.StatusFailed,
		Amount:    decimal.NewFromInt(500),
	}))

	row, lookupErr := e.txs.GetByReference(context.Background(), pending.Reference)
	require.NoError(t, lookupErr)
	assert.Equal(t, models.TransactionStatusFailed, row.Status)
	assert.Equal(t, "gateway reported failed", row.FailureReason)
	assert.Zero(t, e.store.entryCount())
}

func TestHandleGatewayEventUnknownReference(t *testing.T) {
	e := newEnv(t)

	err := e.svc.HandleGatewayEvent(context.Background(), GatewayEvent{
		Reference: "DEP-nope",
		Status:    paystack.StatusSuccess,
		Amount:    decimal.NewFromInt(500),
	})
	assert.ErrorIs(t, err, errors.ErrTransactionNotFound)
}

// ---- withdrawals ----

func TestWithdraw(t *testing.T) {
	e := newEnv(t)

	txn, err := e.svc.Withdraw(context.Background(), 1, WithdrawRequest{
		WalletID: 1,
		Amount:   decimal.NewFromInt(40),
		PIN:      "1234",
	})
	require.NoError(t, err)

	assert.Equal(t, models.TransactionStatusCompleted, txn.Status)
	assert.Equal(t, models.TransactionTypeWithdraw, txn.Type)
	assert.True(t, e.store.balance(aliceWalletAccount).Equal(decimal.NewFromInt(60)))
	assert.Equal(t, 1, e.pins.verifyCalls())
}

func TestWithdrawInsufficientFunds(t *testing.T) {
	e := newEnv(t)

	_, err := e.svc.Withdraw(context.Background(), 2, WithdrawRequest{
		WalletID: 2,
		Amount:   decimal.NewFromInt(10),
		PIN:      "1234",
	})
	assert.ErrorIs(t, err, errors.ErrInsufficientFunds)

	require.Equal(t, 1, e.txs.count())
	assert.Equal(t, models.TransactionStatusFailed, e.txs.rows[0].Status)
	assert.True(t, e.store.balance(bobWalletAccount).Equal(decimal.Zero))
}

// ---- reads ----

func TestGetTransaction(t *testing.T) {
	e := newEnv(t)
	txn, err := e.svc.Transfer(context.Background(), 1, TransferRequest{
		SourceWalletID:   1,
		DestWalletNumber: "VP2",
		Amount:           decimal.NewFromInt(5),
		PIN:              "1234",
	})
	require.NoError(t, err)

	snap, err := e.svc.GetTransaction(context.Background(), txn.Reference)
	require.NoError(t, err)
	assert.Equal(t, "VP1", snap.SourceWalletNumber)
	assert.Equal(t, "VP2", snap.DestWalletNumber)
	assert.Equal(t, models.TransactionStatusCompleted, snap.Status)

	_, err = e.svc.GetTransaction(context.Background(), "TXN-missing")
	assert.ErrorIs(t, err, errors.ErrTransactionNotFound)
}

func TestGetHistoryPagination(t *testing.T) {
	e := newEnv(t)
	for i := 0; i < 5; i++ {
		_, err := e.svc.Transfer(context.Background(), 1, TransferRequest{
			SourceWalletID:   1,
			DestWalletNumber: "VP2",
			Amount:           decimal.NewFromInt(1),
			PIN:              "1234",
		})
		require.NoError(t, err)
	}

	page, total, err := e.svc.GetHistory(context.Background(), 1, 2, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	require.Len(t, page, 2)

	rest, _, err := e.svc.GetHistory(context.Background(), 1, 10, 2)
	require.NoError(t, err)
	assert.Len(t, rest, 3)
}
