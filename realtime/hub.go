package realtime

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/restoscan/resto-app/models"
)

// Event types pushed to subscribed devices. These are observational: they
// mirror state already committed to the store and never drive transitions
// themselves.
const (
	EventOrderUpdate      = "order_update"
	EventTableUpdate      = "table_update"
	EventServiceRequest   = "service_request"
	EventInvoiceGenerated = "invoice_generated"
	EventSessionReset     = "session_reset"
	EventDashboardUpdate  = "dashboard_update"
	EventMenuUpdate       = "menu_update"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub holds every live subscriber (kitchen, server, admin boards and
// customer devices) keyed by role.
type Hub struct {
	clients map[*websocket.Conn]string // conn -> role
	mutex   sync.Mutex
}

var hub = Hub{
	clients: make(map[*websocket.Conn]string),
}

// RegisterClient adds a connection under a role.
func RegisterClient(conn *websocket.Conn, role string) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	hub.clients[conn] = role
}

// UnregisterClient drops and closes a connection.
func UnregisterClient(conn *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	delete(hub.clients, conn)
	conn.Close()
}

// BroadcastOrderUpdate pushes an order's new state to every subscriber;
// kitchen/server boards re-query their columns from it, customer devices
// derive their "ready"/"served" notifications from it.
func BroadcastOrderUpdate(order models.Order) {
	broadcast(Message{Event: EventOrderUpdate, Data: order})
}

// BroadcastTableUpdate pushes table state, including session epoch moves
// that devices use for reset detection.
func BroadcastTableUpdate(table models.Table) {
	broadcast(Message{Event: EventTableUpdate, Data: table})
}

// BroadcastServiceRequest notifies staff that a table called for service
// or for the bill.
func BroadcastServiceRequest(table models.Table) {
	broadcast(Message{Event: EventServiceRequest, Data: table})
}

// BroadcastInvoiceGenerated announces a consolidated invoice.
func BroadcastInvoiceGenerated(invoice models.Invoice) {
	broadcast(Message{Event: EventInvoiceGenerated, Data: invoice})
}

// BroadcastSessionReset tells devices a table's session was force-closed.
func BroadcastSessionReset(table models.Table) {
	broadcast(Message{Event: EventSessionReset, Data: table})
}

// BroadcastMenuUpdate pushes catalog edits to open menus.
func BroadcastMenuUpdate(menu models.Menu) {
	broadcast(Message{Event: EventMenuUpdate, Data: menu})
}

// BroadcastMessage broadcasts an arbitrary message.
func BroadcastMessage(msg Message) {
	broadcast(msg)
}

func broadcast(msg Message) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}

	for conn := range hub.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("Error sending message to client: %v", err)
			continue
		}
	}
}
