package giftcard

import (
	"fmt"

	"github.com/adyshev/eventbus/event"
)

// AmountDebitedEventType is the event type identifier.
const AmountDebitedEventType = "GiftCardAmountDebited"

// AmountDebited is triggered when an amount is debited from a gift card.
// It carries the Transaction entity created for the debit.
type AmountDebited struct {
	event.Stamp

	transaction *Transaction
}

// BuildAmountDebited creates a new AmountDebited event.
func BuildAmountDebited(stamp event.Stamp, transaction *Transaction) AmountDebited {
	return AmountDebited{Stamp: stamp, transaction: transaction}
}

// EventType returns the event type identifier.
func (e AmountDebited) EventType() string {
	return AmountDebitedEventType
}

// Transaction returns the transaction created for the debit.
func (e AmountDebited) Transaction() *Transaction {
	return e.transaction
}

// Attributes returns the stamp fields plus the transaction identity and amount.
func (e AmountDebited) Attributes() map[string]any {
	attrs := e.Stamp.Attributes()
	attrs["transaction_id"] = e.transaction.ID()
	attrs["amount"] = e.transaction.Amount

	return attrs
}

// Mutate reduces the card balance and records the transaction.
func (e AmountDebited) Mutate(obj any) error {
	card, ok := obj.(*GiftCard)
	if !ok {
		return fmt.Errorf("AmountDebited mutates a *GiftCard, got %T", obj)
	}

	card.Balance -= e.transaction.Amount
	card.Transactions = append(card.Transactions, e.transaction)

	return nil
}
