package giftcard

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/adyshev/eventbus/entity"
	"github.com/adyshev/eventbus/event"
)

// TransactionTopic is the stable tag the Transaction entity type is registered under.
const TransactionTopic = "GiftCardTransaction"

// Transaction is a plain entity: it does not batch events, so its Created
// event reaches the bus the moment the transaction is created.
type Transaction struct {
	entity.Base
	entity.Versioned
	entity.Timestamped

	Amount int64
}

// newTransaction is the topic factory for TransactionTopic.
func newTransaction(created event.Created) (any, error) {
	amount, ok := created.Attribute("amount").(int64)
	if !ok {
		return nil, fmt.Errorf("creation attribute %q must be an int64", "amount")
	}

	return &Transaction{
		Base:        entity.NewBase(created),
		Versioned:   entity.NewVersioned(created),
		Timestamped: entity.NewTimestamped(created),
		Amount:      amount,
	}, nil
}

func createTransaction(
	ctx context.Context,
	resolver entity.FactoryResolver,
	publisher entity.Publisher,
	amount int64,
) (*Transaction, error) {

	return entity.Create[*Transaction](ctx, resolver, publisher, TransactionTopic, uuid.Nil, map[string]any{
		"amount": amount,
	})
}
