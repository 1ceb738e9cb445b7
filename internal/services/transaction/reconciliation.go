package transaction

import (
	"context"
	"log"

	"vaultpay/internal/services/paystack"
)

// HandleGatewayEvent applies one signature-verified gateway event to its
// pending transaction. Events for transactions already in a terminal state
// are discarded, which makes at-least-once webhook delivery safe; balances
// can only ever change once per reference.
func (s *service) HandleGatewayEvent(ctx context.Context, event GatewayEvent) error {
	txn, err := s.txRepo.GetByReference(ctx, event.Reference)
	if err != nil {
		return translateTxErr(err)
	}
	if txn.IsTerminal() {
		log.Printf("duplicate gateway event for %s (already %s), discarded", event.Reference, txn.Status)
		return nil
	}

	switch event.Status {
	case paystack.StatusSuccess:
		_, err := s.CompleteFunding(ctx, event.Reference, event.Amount)
		return err
	default:
		_, err := s.FailFunding(ctx, event.Reference, "gateway reported "+event.Status)
		return err
	}
}
