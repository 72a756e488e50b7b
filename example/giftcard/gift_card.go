// Package giftcard is the reference domain for the eventbus substrate: a
// GiftCard aggregate root that batches its events until Save, and a plain
// Transaction entity whose events are published immediately.
package giftcard

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/adyshev/eventbus/aggregate"
	"github.com/adyshev/eventbus/entity"
	"github.com/adyshev/eventbus/event"
	"github.com/adyshev/eventbus/topic"
)

// GiftCardTopic is the stable tag the GiftCard entity type is registered under.
const GiftCardTopic = "GiftCard"

// ErrInvalidAmount is returned when a debit amount is not positive.
var ErrInvalidAmount = errors.New("debit amount must be positive")

// ErrInsufficientBalance is returned when a debit exceeds the card balance.
var ErrInsufficientBalance = errors.New("debit amount exceeds card balance")

// GiftCard is an aggregate root: commands trigger events that mutate it in
// place and queue up in the pending queue until Save flushes them to the bus.
type GiftCard struct {
	aggregate.Root

	Holder       string
	Balance      int64
	Transactions []*Transaction
}

// Register wires the topic factories of this domain into the registry.
// It must be called once at process start, before any Issue call.
func Register(registry *topic.Registry) error {
	if err := registry.Register(GiftCardTopic, newGiftCard); err != nil {
		return err
	}

	return registry.Register(TransactionTopic, newTransaction)
}

// newGiftCard is the topic factory for GiftCardTopic. It type-checks the
// required creation attributes.
func newGiftCard(created event.Created) (any, error) {
	holder, ok := created.Attribute("holder").(string)
	if !ok {
		return nil, fmt.Errorf("creation attribute %q must be a string", "holder")
	}

	balance, ok := created.Attribute("balance").(int64)
	if !ok {
		return nil, fmt.Errorf("creation attribute %q must be an int64", "balance")
	}

	return &GiftCard{
		Root:    aggregate.NewRoot(created),
		Holder:  holder,
		Balance: balance,
	}, nil
}

// Issue creates a new GiftCard with a fresh identity. The Created event is
// queued in the pending queue, not published, until the first Save.
func Issue(
	ctx context.Context,
	resolver entity.FactoryResolver,
	publisher entity.Publisher,
	holder string,
	balance int64,
) (*GiftCard, error) {

	return entity.Create[*GiftCard](ctx, resolver, publisher, GiftCardTopic, uuid.Nil, map[string]any{
		"holder":  holder,
		"balance": balance,
	})
}

// Debit creates a Transaction entity (whose Created event is published to
// the bus immediately) and triggers an AmountDebited event carrying it
// (queued until Save).
func (c *GiftCard) Debit(ctx context.Context, resolver entity.FactoryResolver, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidAmount, amount)
	}

	if amount > c.Balance {
		return fmt.Errorf("%w: amount %d, balance %d", ErrInsufficientBalance, amount, c.Balance)
	}

	transaction, err := createTransaction(ctx, resolver, c.Publisher(), amount)
	if err != nil {
		return err
	}

	return entity.Trigger(ctx, c, BuildAmountDebited(entity.NextStamp(c), transaction))
}

// ChangeHolder changes the card holder by triggering an AttributeChanged event.
func (c *GiftCard) ChangeHolder(ctx context.Context, holder string) error {
	return entity.ChangeAttribute(ctx, c, "Holder", holder)
}

// Deactivate discards the card; any further command fails.
func (c *GiftCard) Deactivate(ctx context.Context) error {
	return entity.Discard(ctx, c)
}
