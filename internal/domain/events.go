package domain

import "time"

// EventType names a realtime event pushed to dashboards and brokers.
type EventType string

const (
	EventOrderCreated   EventType = "pedido_nuevo"
	EventOrderUpdated   EventType = "pedido_actualizado"
	EventStateChanged   EventType = "estado_cambiado"
	EventOrderDeleted   EventType = "pedido_eliminado"
	EventCommentCreated EventType = "comentario_nuevo"
)

// SubscribableEvents lists the events a dashboard receives after subscribing.
func SubscribableEvents() []EventType {
	return []EventType{EventOrderCreated, EventOrderUpdated, EventStateChanged}
}

// Event is the payload shared by the websocket hub, the Redis bridge and
// the AMQP queue.
type Event struct {
	Type          EventType     `json:"type"`
	Order         *Order        `json:"pedido,omitempty"`
	OrderID       uint          `json:"pedido_id,omitempty"`
	PreviousState State         `json:"estado_anterior,omitempty"`
	NewState      State         `json:"estado_nuevo,omitempty"`
	Comment       *OrderComment `json:"comentario,omitempty"`
	OccurredAt    time.Time     `json:"timestamp"`
}

// NewOrderEvent builds a pedido_nuevo or pedido_actualizado event.
func NewOrderEvent(t EventType, o *Order) Event {
	return Event{Type: t, Order: o, OrderID: o.ID, OccurredAt: time.Now().UTC()}
}

// NewStateEvent builds an estado_cambiado event.
func NewStateEvent(orderID uint, prev, next State) Event {
	return Event{Type: EventStateChanged, OrderID: orderID, PreviousState: prev, NewState: next, OccurredAt: time.Now().UTC()}
}
