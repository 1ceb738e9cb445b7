package ledger

import (
	"context"
	stderrors "errors"
	"fmt"
	"sort"
	"time"

	"vaultpay/internal/errors"
	"vaultpay/internal/models"
	"vaultpay/internal/repositories"

	"github.com/shopspring/decimal"
)

// Service posts balanced journal entries.
type Service interface {
	Post(ctx context.Context, reference, description string, lines []Movement) (*models.JournalEntry, error)
}

type service struct {
	repo    repositories.LedgerRepository
	timeout time.Duration
}

// NewService creates a posting engine over the given ledger store.
func NewService(repo repositories.LedgerRepository, timeout time.Duration) Service {
	if repo == nil {
		panic("ledger repository is required")
	}
	if timeout <= 0 {
		timeout = DefaultPostingTimeout
	}
	return &service{repo: repo, timeout: timeout}
}

func (s *service) Post(ctx context.Context, reference, description string, lines []Movement) (*models.JournalEntry, error) {
	if err := validateLines(lines); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	entry := &models.JournalEntry{
		Reference:   reference,
		Description: description,
	}

	err := s.repo.WithinTransaction(ctx, func(tx repositories.LedgerRepository) error {
		// Lock every distinct account in ascending id order. Any two
		// postings over overlapping sets request locks in the same
		// relative order, so no cycle can form.
		accounts := make(map[uint]*models.LedgerAccount, len(lines))
		for _, id := range distinctAccountIDs(lines) {
			account, err := tx.GetAccountForUpdate(ctx, id)
			if err != nil {
				if stderrors.Is(err, repositories.ErrAccountNotFound) {
					return errors.ErrAccountNotFound
				}
				return err
			}
			accounts[id] = account
		}

		// Apply deltas to the balances re-read under lock; balances read
		// before locking may be stale.
		for _, line := range lines {
			account := accounts[line.AccountID]
			account.Balance = account.Balance.Add(deltaFor(account, line))
			entry.Entries = append(entry.Entries, models.LedgerEntry{
				LedgerAccountID: line.AccountID,
				EntryType:       line.EntryType,
				Amount:          line.Amount,
			})
		}

		ordered := make([]*models.LedgerAccount, 0, len(accounts))
		for _, id := range distinctAccountIDs(lines) {
			account := accounts[id]
			if account.AccountType == models.AccountTypeAsset && account.Balance.IsNegative() {
				return errors.ErrInsufficientFunds
			}
			ordered = append(ordered, account)
		}

		return tx.AppendJournalEntry(ctx, entry, ordered)
	})
	if err != nil {
		var derr *errors.DomainError
		if stderrors.As(err, &derr) {
			return nil, derr
		}
		if stderrors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return nil, errors.ErrLockTimeout
		}
		return nil, fmt.Errorf("posting %s failed: %w", reference, err)
	}

	return entry, nil
}

func validateLines(lines []Movement) error {
	if len(lines) < 2 {
		return errors.ErrUnbalancedEntry
	}

	debits, credits := decimal.Zero, decimal.Zero
	for _, line := range lines {
		if !line.Amount.IsPositive() {
			return errors.ErrUnbalancedEntry
		}
		switch line.EntryType {
		case models.EntryTypeDebit:
			debits = debits.Add(line.Amount)
		case models.EntryTypeCredit:
			credits = credits.Add(line.Amount)
		default:
			return errors.ErrUnbalancedEntry
		}
	}
	if !debits.Equal(credits) {
		return errors.ErrUnbalancedEntry
	}
	return nil
}

func distinctAccountIDs(lines []Movement) []uint {
	seen := make(map[uint]struct{}, len(lines))
	ids := make([]uint, 0, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.AccountID]; ok {
			continue
		}
		seen[line.AccountID] = struct{}{}
		ids = append(ids, line.AccountID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func deltaFor(account *models.LedgerAccount, line Movement) decimal.Decimal {
	if (line.EntryType == models.EntryTypeDebit) == account.DebitIncreases() {
		return line.Amount
	}
	return line.Amount.Neg()
}
