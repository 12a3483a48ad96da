package faction

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// BankLedger is a simple non-negative treasury guarded against
// overdraft; amounts are normalized to their absolute value
type BankLedger struct {
	registry *Registry
	logger   *zap.Logger
}

// NewBankLedger initializes a new bank ledger
func NewBankLedger(r *Registry) (*BankLedger, error) {
	if r == nil {
		return nil, ErrNilRegistry
	}

	return &BankLedger{registry: r}, nil
}

// SetLogger assigns a logger for this ledger
func (b *BankLedger) SetLogger(logger *zap.Logger) error {
	if logger != nil {
		logger = logger.Named("[bank]")
	}

	b.logger = logger

	return nil
}

// Logger returns primary logger if is set, otherwise initializing and returning
func (b *BankLedger) Logger() *zap.Logger {
	if b.logger == nil {
		l, err := zap.NewDevelopment()
		if err != nil {
			panic(fmt.Errorf("failed to initialize bank ledger logger: %s", err))
		}

		b.logger = l
	}

	return b.logger
}

// Balance returns the current treasury balance
func (b *BankLedger) Balance(factionID string) (int64, error) {
	unlock := b.registry.rlockFaction(factionID)
	defer unlock()

	f := b.registry.faction(factionID)
	if f == nil {
		return 0, ErrFactionNotFound
	}

	return f.Bank, nil
}

// Deposit adds to the faction treasury
func (b *BankLedger) Deposit(ctx context.Context, factionID string, amount int64) error {
	unlock := b.registry.lockFaction(factionID)
	defer unlock()

	f := b.registry.faction(factionID)
	if f == nil {
		return ErrFactionNotFound
	}

	if amount < 0 {
		amount = -amount
	}

	f.Bank += amount

	return b.registry.Update(ctx, factionID, BankUpdate{Bank: f.Bank})
}

// Withdraw subtracts from the faction treasury; refused without
// mutation when it would drive the balance negative
func (b *BankLedger) Withdraw(ctx context.Context, factionID string, amount int64) error {
	unlock := b.registry.lockFaction(factionID)
	defer unlock()

	f := b.registry.faction(factionID)
	if f == nil {
		return ErrFactionNotFound
	}

	if amount < 0 {
		amount = -amount
	}

	if f.Bank-amount < 0 {
		return ErrInsufficientFunds
	}

	f.Bank -= amount

	return b.registry.Update(ctx, factionID, BankUpdate{Bank: f.Bank})
}
