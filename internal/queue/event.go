// Package queue defines message payloads exchanged over the broker and
// the background consumer that drains them.
package queue

// CatalogChangedEvent is published whenever an admin mutates the material
// catalog or its category tree. Downstream consumers (audit logging,
// cache invalidation, analytics) get enough context to act without
// querying the primary database.
type CatalogChangedEvent struct {
	Entity      string `json:"entity"` // "category" or "material"
	Action      string `json:"action"` // "created", "updated" or "deleted"
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	SoftDeleted bool   `json:"soft_deleted,omitempty"`
	OccurredAt  string `json:"occurred_at"`
}
