// Package domain provides the domain layer for the dashboard.
// It contains the record model, per-vertical status enumerations,
// and the snapshot/diff value objects.
package domain

import (
	"fmt"
	"time"
)

// Status is one value of a vertical's closed status enumeration.
type Status string

// Barbershop appointment statuses.
const (
	StatusPending   Status = "Pending"
	StatusCompleted Status = "Completed"
	StatusNoShow    Status = "NoShow"
	StatusCancelled Status = "Cancelled"
)

// Food-cart order statuses.
const (
	StatusPreparing Status = "Preparing"
	StatusReady     Status = "Ready"
	StatusDelivered Status = "Delivered"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// Vertical describes one business vertical: its record collection on the
// remote system, its closed status set, the allowed status transitions,
// and the polling cadence. One generic component set serves every
// vertical; adding a vertical means adding a descriptor, not new code.
type Vertical struct {
	// Name identifies the vertical ("barberia", "carrito").
	Name string
	// RecordsKey is the JSON key under which the remote list endpoint
	// returns the record array ("citas", "pedidos").
	RecordsKey string
	// BasePath is the remote resource path for this vertical's records.
	BasePath string
	// Statuses is the closed enumeration of valid status values.
	Statuses []Status
	// Transitions maps each status to the statuses it may move to.
	// A status absent from the map is terminal.
	Transitions map[Status][]Status
	// PollPeriod is the reconciliation interval for this vertical.
	PollPeriod time.Duration
}

// Barbershop is the appointments vertical: pending appointments are
// resolved to completed or no-show, both terminal. Polled every 15s.
var Barbershop = Vertical{
	Name:       "barberia",
	RecordsKey: "citas",
	BasePath:   "/citas",
	Statuses:   []Status{StatusPending, StatusCompleted, StatusNoShow, StatusCancelled},
	Transitions: map[Status][]Status{
		StatusPending: {StatusCompleted, StatusNoShow},
	},
	PollPeriod: 15 * time.Second,
}

// FoodCart is the orders vertical: a linear pipeline terminal at
// delivered. Polled every 10s.
var FoodCart = Vertical{
	Name:       "carrito",
	RecordsKey: "pedidos",
	BasePath:   "/pedidos",
	Statuses:   []Status{StatusPreparing, StatusReady, StatusDelivered},
	Transitions: map[Status][]Status{
		StatusPreparing: {StatusReady},
		StatusReady:     {StatusDelivered},
	},
	PollPeriod: 10 * time.Second,
}

// VerticalByName returns the built-in vertical with the given name.
func VerticalByName(name string) (Vertical, error) {
	switch name {
	case Barbershop.Name:
		return Barbershop, nil
	case FoodCart.Name:
		return FoodCart, nil
	default:
		return Vertical{}, fmt.Errorf("unknown vertical: %s", name)
	}
}

// IsValid reports whether s belongs to the vertical's status set.
func (v Vertical) IsValid(s Status) bool {
	for _, valid := range v.Statuses {
		if valid == s {
			return true
		}
	}
	return false
}

// CanTransition reports whether moving from one status to another is
// allowed by the vertical's transition table.
func (v Vertical) CanTransition(from, to Status) bool {
	for _, allowed := range v.Transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// NextStatuses returns the statuses reachable from the given status.
// Terminal statuses return nil.
func (v Vertical) NextStatuses(from Status) []Status {
	return v.Transitions[from]
}
