package audit

import "time"

// Entry is one audit_logs row. Append-only: nothing in the application
// updates or deletes these except the full admin reset.
type Entry struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Categorie string    `gorm:"size:32;index;not null"` // commande, paiement, caisse, creneau, admin
	Action    string    `gorm:"size:64;not null"`
	Details   string    `gorm:"size:512"` // human-readable free text
	ActorID   string    `gorm:"size:36;index"`
	ActorNom  string    `gorm:"size:128"`
	Role      string    `gorm:"size:16"`
	Metadata  string    `gorm:"type:text"` // arbitrary JSON
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
}
