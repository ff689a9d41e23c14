package ledger

import (
	"fmt"
)

// Status is a lifecycle state of an order, job or shipment.
type Status string

// Lifecycle is a closed set of statuses with the transitions allowed between
// them. Terminal statuses have no outgoing transitions.
type Lifecycle struct {
	name        string
	initial     Status
	transitions map[Status][]Status
}

// NewLifecycle builds a lifecycle. Every status must appear as a key of
// transitions, terminal ones with no targets.
func NewLifecycle(name string, initial Status, transitions map[Status][]Status) Lifecycle {
	return Lifecycle{name: name, initial: initial, transitions: transitions}
}

// Initial is the status new items start in.
func (l Lifecycle) Initial() Status { return l.initial }

// Parse validates s against the lifecycle.
func (l Lifecycle) Parse(s string) (Status, error) {
	st := Status(s)
	if _, ok := l.transitions[st]; !ok {
		return "", fmt.Errorf("%w: %s %q", ErrUnknownStatus, l.name, s)
	}
	return st, nil
}

// IsTerminal reports whether no transition leaves st.
func (l Lifecycle) IsTerminal(st Status) bool {
	return len(l.transitions[st]) == 0
}

// CanTransition reports whether from → to is allowed.
func (l Lifecycle) CanTransition(from, to Status) bool {
	for _, next := range l.transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition validates from → to and returns to.
func (l Lifecycle) Transition(from, to Status) (Status, error) {
	if _, ok := l.transitions[to]; !ok {
		return from, fmt.Errorf("%w: %s %q", ErrUnknownStatus, l.name, to)
	}
	if !l.CanTransition(from, to) {
		return from, fmt.Errorf("%w: %s %s -> %s", ErrInvalidTransition, l.name, from, to)
	}
	return to, nil
}

// Next lists the statuses reachable from st.
func (l Lifecycle) Next(st Status) []Status {
	out := make([]Status, len(l.transitions[st]))
	copy(out, l.transitions[st])
	return out
}

// WhatsApp order statuses.
const (
	OrderNew       Status = "new"
	OrderConfirmed Status = "confirmed"
	OrderPacked    Status = "packed"
	OrderShipped   Status = "shipped"
	OrderDelivered Status = "delivered"
	OrderCancelled Status = "cancelled"
)

// OrderLifecycle: new → confirmed → packed → shipped → delivered, cancellable
// until delivered.
var OrderLifecycle = NewLifecycle("order", OrderNew, map[Status][]Status{
	OrderNew:       {OrderConfirmed, OrderCancelled},
	OrderConfirmed: {OrderPacked, OrderCancelled},
	OrderPacked:    {OrderShipped, OrderCancelled},
	OrderShipped:   {OrderDelivered, OrderCancelled},
	OrderDelivered: nil,
	OrderCancelled: nil,
})

// Saree printing job statuses.
const (
	JobPending    Status = "pending"
	JobInProgress Status = "in_progress"
	JobCompleted  Status = "completed"
	JobDelivered  Status = "delivered"
	JobCancelled  Status = "cancelled"
)

// PrintJobLifecycle: pending → in_progress → completed → delivered.
var PrintJobLifecycle = NewLifecycle("print job", JobPending, map[Status][]Status{
	JobPending:    {JobInProgress, JobCancelled},
	JobInProgress: {JobCompleted, JobCancelled},
	JobCompleted:  {JobDelivered, JobCancelled},
	JobDelivered:  nil,
	JobCancelled:  nil,
})

// Courier shipment statuses.
const (
	ShipmentBooked    Status = "booked"
	ShipmentInTransit Status = "in_transit"
	ShipmentDelivered Status = "delivered"
	ShipmentCancelled Status = "cancelled"
)

// ShipmentLifecycle: booked → in_transit → delivered; only a booked shipment
// can be cancelled.
var ShipmentLifecycle = NewLifecycle("shipment", ShipmentBooked, map[Status][]Status{
	ShipmentBooked:    {ShipmentInTransit, ShipmentCancelled},
	ShipmentInTransit: {ShipmentDelivered},
	ShipmentDelivered: nil,
	ShipmentCancelled: nil,
})
