// Package invalidation marks read-side views stale after item mutations.
//
// A Signal names the views a successful mutation made stale. The item service
// emits exactly one Signal per successful create, update or delete, after the
// store has applied the change and before the result is returned.
package invalidation

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// ViewKind distinguishes the owner's list view from one item's detail view.
type ViewKind string

const (
	// ListView is the owner's item list, including its totals.
	ListView ViewKind = "list"
	// DetailView is a single item's detail view.
	DetailView ViewKind = "detail"
)

// View identifies one read-side view.
type View struct {
	Kind    ViewKind `json:"kind"`
	OwnerID string   `json:"owner_id"`
	ItemID  string   `json:"item_id,omitempty"`
}

// ListOf returns the list view of an owner.
func ListOf(ownerID string) View {
	return View{Kind: ListView, OwnerID: ownerID}
}

// DetailOf returns the detail view of one item.
func DetailOf(ownerID, itemID string) View {
	return View{Kind: DetailView, OwnerID: ownerID, ItemID: itemID}
}

// Key is the stable identifier of the view.
func (v View) Key() string {
	if v.Kind == DetailView {
		return fmt.Sprintf("items/%s/%s", v.OwnerID, v.ItemID)
	}
	return fmt.Sprintf("items/%s", v.OwnerID)
}

// Operation is the kind of mutation that produced a signal.
type Operation string

// Mutations that emit signals.
const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// Signal reports that Views are no longer guaranteed fresh.
type Signal struct {
	ID        string    `json:"id"`
	Origin    string    `json:"origin,omitempty"`
	Operation Operation `json:"operation"`
	OwnerID   string    `json:"owner_id"`
	ItemID    string    `json:"item_id"`
	Views     []View    `json:"views"`
	EmittedAt time.Time `json:"emitted_at"`
}

// NewSignal builds the signal of a mutation. Create only stales the list
// view; update and delete also stale the item's detail view.
func NewSignal(op Operation, ownerID, itemID string) Signal {
	views := []View{ListOf(ownerID)}
	if op != OpCreate {
		views = append(views, DetailOf(ownerID, itemID))
	}
	return Signal{
		ID:        ulid.Make().String(),
		Operation: op,
		OwnerID:   ownerID,
		ItemID:    itemID,
		Views:     views,
		EmittedAt: time.Now().UTC(),
	}
}

// Coordinator receives invalidation signals. Invalidate must not block on
// external systems indefinitely and cannot fail the mutation that caused it.
type Coordinator interface {
	Invalidate(ctx context.Context, signal Signal)
}

// CoordinatorFunc adapts a function to Coordinator.
type CoordinatorFunc func(ctx context.Context, signal Signal)

// Invalidate calls f.
func (f CoordinatorFunc) Invalidate(ctx context.Context, signal Signal) {
	f(ctx, signal)
}

// Fanout delivers each signal to every coordinator, in order.
type Fanout []Coordinator

// Invalidate forwards signal to all members.
func (f Fanout) Invalidate(ctx context.Context, signal Signal) {
	for _, c := range f {
		if c != nil {
			c.Invalidate(ctx, signal)
		}
	}
}

// Discard ignores every signal.
var Discard Coordinator = CoordinatorFunc(func(context.Context, Signal) {})
