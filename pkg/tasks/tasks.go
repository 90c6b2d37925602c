// Package tasks defines the structure for events that are sent to Kafka.
package tasks

import "time"

const (
	ActionTaxonomyCommitted = "taxonomy.committed"
	ActionNodeCreated       = "node.created"
)

// TaxonomyEvent represents a change made through the taxonomy editor.
// Ids of unset ranks are omitted from the payload rather than sent as null.
type TaxonomyEvent struct {
	EventID    string    `json:"event_id"`
	Action     string    `json:"action"`
	Editor     string    `json:"editor"`
	RowID      *uint     `json:"row_id,omitempty"`
	Rank       string    `json:"rank,omitempty"`
	NodeID     *uint     `json:"node_id,omitempty"`
	NodeName   string    `json:"node_name,omitempty"`
	ParentID   *uint     `json:"parent_id,omitempty"`
	OrderID    *uint     `json:"order_id,omitempty"`
	FamilyID   *uint     `json:"family_id,omitempty"`
	GenusID    *uint     `json:"genus_id,omitempty"`
	KindID     *uint     `json:"kind_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
