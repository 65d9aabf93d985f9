package feed

import "time"

// Tables carried by the change feed. One Kafka topic per table,
// "<prefix>.<table>"; consumers refetch the whole list on any event.
const (
	TableCommandes = "commandes"
	TablePaiements = "paiements"
	TableCreneaux  = "creneaux"
	TableAudit     = "audit_logs"
)

// Ops mirrored from the mutation that triggered the event.
const (
	OpInsert = "INSERT"
	OpUpdate = "UPDATE"
	OpDelete = "DELETE"
)

// ChangeEvent is one row-change notification. Deliberately thin: the feed
// signals "something changed", it does not carry the row.
type ChangeEvent struct {
	EventID string    `json:"event_id"`
	Table   string    `json:"table"`
	Op      string    `json:"op"`
	RowID   string    `json:"row_id"`
	At      time.Time `json:"at"`

	// Extra carries a few denormalized fields the notifier needs to render
	// messages without a database round trip (ticket number, amount...).
	Extra map[string]string `json:"extra,omitempty"`
}
