package commands

import (
	"errors"

	"grabbit/internal/pkg/errs"
	"grabbit/internal/pkg/guard"
)

var ErrPublishOutboxCommandIsNotConstructed = errors.New(
	"PublishOutboxCommand must be created via NewPublishOutboxCommand constructor",
)

// MaxOutboxBatch bounds how many messages a single relay transaction claims.
const MaxOutboxBatch = 500

// PublishOutboxCommand triggers one relay pass over up to batchSize pending messages.
type PublishOutboxCommand struct {
	batchSize int

	guard guard.ConstructorGuard
}

func NewPublishOutboxCommand(batchSize int) (PublishOutboxCommand, error) {
	if batchSize < 1 || batchSize > MaxOutboxBatch {
		return PublishOutboxCommand{}, errs.NewValueIsOutOfRangeError("batch size", batchSize, 1, MaxOutboxBatch)
	}
	return PublishOutboxCommand{
		batchSize: batchSize,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c PublishOutboxCommand) Validate() error {
	return c.guard.Validate(ErrPublishOutboxCommandIsNotConstructed)
}

func (c PublishOutboxCommand) BatchSize() int {
	return c.batchSize
}
