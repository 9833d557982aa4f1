package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/restoscan/resto-app/models"
)

func TestCanTransitionKitchen(t *testing.T) {
	assert.True(t, CanTransition(ActorKitchen, models.OrderPending, models.OrderPreparing))
	assert.True(t, CanTransition(ActorKitchen, models.OrderPreparing, models.OrderReady))
	// Drag-and-drop among the kitchen columns, both directions.
	assert.True(t, CanTransition(ActorKitchen, models.OrderReady, models.OrderPending))

	// The kitchen never serves, pays or cancels.
	assert.False(t, CanTransition(ActorKitchen, models.OrderReady, models.OrderServed))
	assert.False(t, CanTransition(ActorKitchen, models.OrderPending, models.OrderCancelled))
	assert.False(t, CanTransition(ActorKitchen, models.OrderServed, models.OrderPaid))
}

func TestCanTransitionServer(t *testing.T) {
	assert.True(t, CanTransition(ActorServer, models.OrderReady, models.OrderServed))
	assert.True(t, CanTransition(ActorServer, models.OrderPending, models.OrderCancelled))

	assert.False(t, CanTransition(ActorServer, models.OrderPending, models.OrderPreparing))
	assert.False(t, CanTransition(ActorServer, models.OrderPreparing, models.OrderCancelled))
	assert.False(t, CanTransition(ActorServer, models.OrderServed, models.OrderPaid))
}

func TestCanTransitionCustomer(t *testing.T) {
	assert.True(t, CanTransition(ActorCustomer, models.OrderPending, models.OrderCancelled))

	assert.False(t, CanTransition(ActorCustomer, models.OrderPreparing, models.OrderCancelled))
	assert.False(t, CanTransition(ActorCustomer, models.OrderPending, models.OrderPreparing))
}

func TestCanTransitionAdminOverride(t *testing.T) {
	// pending -> served directly is only reachable via the admin board.
	assert.True(t, CanTransition(ActorAdmin, models.OrderPending, models.OrderServed))
	assert.True(t, CanTransition(ActorAdmin, models.OrderServed, models.OrderPending))

	assert.False(t, CanTransition(ActorKitchen, models.OrderPending, models.OrderServed))
	assert.False(t, CanTransition(ActorServer, models.OrderPending, models.OrderServed))
	assert.False(t, CanTransition(ActorAdmin, models.OrderServed, models.OrderPaid))
	assert.False(t, CanTransition(ActorAdmin, models.OrderPending, models.OrderCancelled))
}

func TestCanTransitionBillingMarksAnyActiveOrderPaid(t *testing.T) {
	assert.True(t, CanTransition(actorBilling, models.OrderServed, models.OrderPaid))
	assert.True(t, CanTransition(actorBilling, models.OrderPending, models.OrderPaid))
	assert.False(t, CanTransition(actorBilling, models.OrderCancelled, models.OrderPaid))
}

func TestTransitionIdempotent(t *testing.T) {
	db := setupTestDB(t)
	table := seedTable(t, db, "5", 4)
	order := seedOrder(t, db, &table, models.OrderPreparing,
		models.OrderItem{MenuID: 1, Name: "Poulet Braisé", Price: 4500, Qty: 1})

	flow := NewOrderFlowService(db)
	updated, err := flow.Transition(order.ID, ActorKitchen, models.OrderPreparing)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderPreparing, updated.Status)
}

func TestTransitionCustomerCancelBoundary(t *testing.T) {
	db := setupTestDB(t)
	table := seedTable(t, db, "5", 4)
	flow := NewOrderFlowService(db)

	pending := seedOrder(t, db, &table, models.OrderPending,
		models.OrderItem{MenuID: 1, Name: "Poulet Braisé", Price: 4500, Qty: 1})
	updated, err := flow.Transition(pending.ID, ActorCustomer, models.OrderCancelled)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, updated.Status)

	preparing := seedOrder(t, db, &table, models.OrderPreparing,
		models.OrderItem{MenuID: 1, Name: "Coca Cola", Price: 1000, Qty: 1})
	_, err = flow.Transition(preparing.ID, ActorCustomer, models.OrderCancelled)
	assert.ErrorIs(t, err, ErrCancelTooLate)

	var reloaded models.Order
	assert.NoError(t, db.First(&reloaded, preparing.ID).Error)
	assert.Equal(t, models.OrderPreparing, reloaded.Status)
}

func TestTransitionIllegalForActor(t *testing.T) {
	db := setupTestDB(t)
	table := seedTable(t, db, "5", 4)
	order := seedOrder(t, db, &table, models.OrderPending,
		models.OrderItem{MenuID: 1, Name: "Poulet Braisé", Price: 4500, Qty: 1})

	flow := NewOrderFlowService(db)
	_, err := flow.Transition(order.ID, ActorServer, models.OrderServed)

	var illegal *IllegalTransitionError
	assert.True(t, errors.As(err, &illegal))
	assert.Equal(t, models.OrderPending, illegal.From)
}

func TestTransitionWritesNotificationTrail(t *testing.T) {
	db := setupTestDB(t)
	table := seedTable(t, db, "5", 4)
	order := seedOrder(t, db, &table, models.OrderPreparing,
		models.OrderItem{MenuID: 1, Name: "Poulet Braisé", Price: 4500, Qty: 1})

	flow := NewOrderFlowService(db)
	_, err := flow.Transition(order.ID, ActorKitchen, models.OrderReady)
	assert.NoError(t, err)

	var count int64
	db.Model(&models.Notification{}).Where("order_id = ?", order.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}
