package commands

import (
	"errors"

	"grabbit/internal/pkg/errs"
	"grabbit/internal/pkg/guard"
)

var ErrExpireOrdersCommandIsNotConstructed = errors.New(
	"ExpireOrdersCommand must be created via NewExpireOrdersCommand constructor",
)

// MaxExpiryBatch bounds how many orders a single sweep transaction touches.
const MaxExpiryBatch = 1000

// ExpireOrdersCommand triggers one eager expiry sweep of up to batchSize orders.
type ExpireOrdersCommand struct {
	batchSize int

	guard guard.ConstructorGuard
}

func NewExpireOrdersCommand(batchSize int) (ExpireOrdersCommand, error) {
	if batchSize < 1 || batchSize > MaxExpiryBatch {
		return ExpireOrdersCommand{}, errs.NewValueIsOutOfRangeError("batch size", batchSize, 1, MaxExpiryBatch)
	}
	return ExpireOrdersCommand{
		batchSize: batchSize,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c ExpireOrdersCommand) Validate() error {
	return c.guard.Validate(ErrExpireOrdersCommandIsNotConstructed)
}

func (c ExpireOrdersCommand) BatchSize() int {
	return c.batchSize
}
