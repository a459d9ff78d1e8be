package commands_test

import (
	"testing"
	"time"

	"grabbit/internal/core/application/usecases/commands"
	"grabbit/internal/core/domain/model/kernel"
	"grabbit/internal/core/domain/model/order"
	"grabbit/internal/pkg/clock"
	"grabbit/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewAdvanceStatusCommand(t *testing.T) {
	cmd, err := commands.NewAdvanceStatusCommand(kernel.NewUUID(), kernel.NewUUID(), order.InProgress)
	require.NoError(t, err)
	assert.Equal(t, order.InProgress, cmd.Target())

	_, err = commands.NewAdvanceStatusCommand(kernel.NewUUID(), kernel.NewUUID(), order.Unknown)
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestAdvanceStatusCommandHandler_Handle_ToReadyForPickup(t *testing.T) {
	ctx := t.Context()
	carrierID := kernel.NewUUID()
	o, a := assignedOrder(t, carrierID)
	require.NoError(t, o.Advance(carrierID, order.InProgress, t0))
	require.NoError(t, a.Mirror(o, t0))
	o.PullEvents()

	cmd, err := commands.NewAdvanceStatusCommand(o.ID(), carrierID, order.ReadyForPickup)
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	assignmentRepo := new(MockAssignmentRepository)
	uow := new(MockUoW)
	factory := new(MockUoWFactory)

	mock.InOrder(
		factory.On("Create").Return(uow).Once(),
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		uow.On("AssignmentRepository").Return(assignmentRepo).Once(),
		orderRepo.On("GetForUpdate", ctx, o.ID()).Return(o, nil).Once(),
		assignmentRepo.On("GetByOrder", ctx, o.ID()).Return(a, nil).Once(),
		orderRepo.On("Update", ctx, o).Return(nil).Once(),
		assignmentRepo.On("Update", ctx, a).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	at := t0.Add(20 * time.Minute)
	handler := commands.NewAdvanceStatusCommandHandler(factory, clock.NewFakeClock(at))
	status, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, order.ReadyForPickup, status)
	assert.Equal(t, order.ReadyForPickup, a.Status())
	require.NotNil(t, a.ReadyAt())
	assert.Equal(t, at, *a.ReadyAt())
	assert.Nil(t, a.CompletedAt())
	uow.AssertExpectations(t)
	orderRepo.AssertExpectations(t)
	assignmentRepo.AssertExpectations(t)
}

func TestAdvanceStatusCommandHandler_Handle_Rejections(t *testing.T) {
	carrierID := kernel.NewUUID()

	tests := []struct {
		name    string
		carrier kernel.UUID
		target  order.Status
		wantErr error
	}{
		{"foreign carrier", kernel.NewUUID(), order.InProgress, errs.ErrForbidden},
		{"skipping in_progress", carrierID, order.ReadyForPickup, order.ErrInvalidTransition},
		{"backward to open", carrierID, order.Open, order.ErrInvalidTransition},
		{"straight to completed", carrierID, order.Completed, order.ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := t.Context()
			o, _ := assignedOrder(t, carrierID)
			cmd, err := commands.NewAdvanceStatusCommand(o.ID(), tt.carrier, tt.target)
			require.NoError(t, err)

			orderRepo := new(MockOrderRepository)
			assignmentRepo := new(MockAssignmentRepository)
			uow := new(MockUoW)
			factory := new(MockUoWFactory)

			mock.InOrder(
				factory.On("Create").Return(uow).Once(),
				uow.On("Begin", ctx).Return(nil).Once(),
				uow.On("OrderRepository").Return(orderRepo).Once(),
				uow.On("AssignmentRepository").Return(assignmentRepo).Once(),
				orderRepo.On("GetForUpdate", ctx, o.ID()).Return(o, nil).Once(),
				uow.On("Rollback", ctx).Return(nil).Once(),
			)

			handler := commands.NewAdvanceStatusCommandHandler(factory, clock.NewFakeClock(t0))
			status, err := handler.Handle(ctx, cmd)

			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, order.Unknown, status)
			assert.Equal(t, order.Assigned, o.Status())
			uow.AssertNotCalled(t, "Commit", ctx)
			assignmentRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		})
	}
}

func TestAdvanceStatusCommandHandler_Handle_NotFound(t *testing.T) {
	ctx := t.Context()
	orderID := kernel.NewUUID()
	cmd, err := commands.NewAdvanceStatusCommand(orderID, kernel.NewUUID(), order.InProgress)
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	uow := new(MockUoW)
	factory := new(MockUoWFactory)

	factory.On("Create").Return(uow).Once()
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("OrderRepository").Return(orderRepo).Once()
	uow.On("AssignmentRepository").Return(new(MockAssignmentRepository)).Once()
	orderRepo.On("GetForUpdate", ctx, orderID).Return(nil, errs.NewObjectNotFoundError("order", orderID)).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	handler := commands.NewAdvanceStatusCommandHandler(factory, clock.NewFakeClock(t0))
	_, err = handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrObjectNotFound)
	uow.AssertExpectations(t)
}
