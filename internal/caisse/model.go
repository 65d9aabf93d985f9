package caisse

import "time"

// Payment methods handled at the till.
const (
	MethodeEspeces = "especes"
	MethodeCB      = "cb"
	MethodeCheque  = "cheque"
)

// Payment row statuses. A void flips the status and appends the reason to
// Details; rows are never deleted.
const (
	StatutEncaisse = "encaisse"
	StatutAnnule   = "annule"
)

// Paiement is one cash-register entry (paiements table).
type Paiement struct {
	ID          string    `gorm:"primaryKey;size:36"`
	CommandeID  string    `gorm:"index;size:36;not null"`
	Montant     float64   `gorm:"type:decimal(10,2);not null"`
	Methode     string    `gorm:"size:16;not null"` // especes | cb | cheque
	Statut      string    `gorm:"size:16;index;not null;default:'encaisse'"`
	Details     string    `gorm:"size:512"` // free text, carries the void reason once voided
	OperatorID  string    `gorm:"index;size:36"`
	OperatorNom string    `gorm:"size:128"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

// MethodeValide reports whether m is one of the three till methods.
func MethodeValide(m string) bool {
	switch m {
	case MethodeEspeces, MethodeCB, MethodeCheque:
		return true
	}
	return false
}
