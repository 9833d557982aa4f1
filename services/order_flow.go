package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/restoscan/resto-app/models"
	"github.com/restoscan/resto-app/realtime"
	"github.com/restoscan/resto-app/utils"
)

// Actors driving order status transitions. Each actor sees a different
// slice of the lifecycle; legality lives here, not in the handlers, so it
// can be checked without a live backend.
const (
	ActorKitchen  = "kitchen"
	ActorServer   = "server"
	ActorCustomer = "customer"
	ActorAdmin    = "admin"
	// actorBilling is internal: invoice consolidation marks every
	// contributing order paid regardless of its kitchen stage.
	actorBilling = "billing"
)

var kitchenColumns = []string{models.OrderPending, models.OrderPreparing, models.OrderReady}
var adminColumns = []string{models.OrderPending, models.OrderPreparing, models.OrderReady, models.OrderServed}

// ErrCancelTooLate is customer-facing: once the kitchen started,
// cancellation is blocked.
var ErrCancelTooLate = errors.New("la commande est déjà en préparation et ne peut plus être annulée")

type IllegalTransitionError struct {
	Actor string
	From  string
	To    string
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("transition %s -> %s not allowed for %s", e.From, e.To, e.Actor)
}

// CanTransition reports whether the actor may move an order from one
// status to another. Same-status moves are allowed everywhere: every
// update is idempotent and last-write-wins.
func CanTransition(actor, from, to string) bool {
	if from == to {
		return true
	}
	switch actor {
	case ActorKitchen:
		// Single-step advance buttons plus free drag among the three
		// kitchen-visible columns.
		return contains(kitchenColumns, from) && contains(kitchenColumns, to)
	case ActorServer:
		if from == models.OrderReady && to == models.OrderServed {
			return true
		}
		return from == models.OrderPending && to == models.OrderCancelled
	case ActorCustomer:
		return from == models.OrderPending && to == models.OrderCancelled
	case ActorAdmin:
		// Manual override board: free drag among the four columns.
		return contains(adminColumns, from) && contains(adminColumns, to)
	case actorBilling:
		return from != models.OrderCancelled && from != models.OrderPaid && to == models.OrderPaid
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

type OrderFlowService struct {
	DB *gorm.DB
}

func NewOrderFlowService(db *gorm.DB) *OrderFlowService {
	return &OrderFlowService{DB: db}
}

// Transition moves an order to a new status on behalf of an actor. The
// write is a single-field update with no locking; concurrent writers
// last-write-wins by design.
func (s *OrderFlowService) Transition(orderID uint, actor, to string) (*models.Order, error) {
	var order models.Order
	if err := s.DB.Preload("Items").First(&order, orderID).Error; err != nil {
		return nil, err
	}

	if order.Status == to {
		return &order, nil
	}

	if !CanTransition(actor, order.Status, to) {
		if actor == ActorCustomer && to == models.OrderCancelled {
			return nil, ErrCancelTooLate
		}
		return nil, &IllegalTransitionError{Actor: actor, From: order.Status, To: to}
	}

	from := order.Status
	order.Status = to
	if err := s.DB.Model(&models.Order{}).Where("id = ?", orderID).
		Update("status", to).Error; err != nil {
		return nil, err
	}

	// Observational side effects only: subscribers derive their own
	// notifications from the status change, nothing feeds back into state.
	realtime.BroadcastOrderUpdate(order)
	s.notify(&order, to)

	utils.InfoLogger.Printf("Order %d: %s -> %s (%s)", order.ID, from, to, actor)
	return &order, nil
}

// notify persists the customer-facing notification trail for the stages
// customers care about.
func (s *OrderFlowService) notify(order *models.Order, status string) {
	var message string
	switch status {
	case models.OrderPreparing:
		message = fmt.Sprintf("Votre commande n°%d est en préparation", order.ID)
	case models.OrderReady:
		message = fmt.Sprintf("Votre commande n°%d est prête", order.ID)
	case models.OrderServed:
		message = fmt.Sprintf("Votre commande n°%d a été servie", order.ID)
	default:
		return
	}
	notif := models.Notification{
		Message:   message,
		OrderID:   &order.ID,
		TableID:   order.TableDocID,
		CreatedAt: time.Now(),
	}
	if err := s.DB.Create(&notif).Error; err != nil {
		utils.ErrorLogger.Printf("Failed to persist notification for order %d: %v", order.ID, err)
	}
}

// OrdersByStatus synthesizes a board column by querying live status; drag
// position inside a column is a display concern with no persisted field.
func (s *OrderFlowService) OrdersByStatus(statuses ...string) ([]models.Order, error) {
	var orders []models.Order
	err := s.DB.Preload("Items").
		Where("status IN ?", statuses).
		Order("created_at ASC").
		Find(&orders).Error
	return orders, err
}
