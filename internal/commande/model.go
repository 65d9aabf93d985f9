package commande

import "time"

// Statut is the order lifecycle status (persisted as a string).
type Statut string

const (
	StatutEnAttente    Statut = "en_attente"    // reserved, deposit not yet captured
	StatutPaiementRecu Statut = "paiement_recu" // deposit captured by the provider
	StatutValidee      Statut = "validee"       // accepted by a seller
	StatutRefusee      Statut = "refusee"       // rejected by a seller (terminal)
	StatutAnnulee      Statut = "annulee"       // payment failed or reservation cancelled (terminal)
	StatutBouclee      Statut = "bouclee"       // tagged at pickup
	StatutTerminee     Statut = "terminee"      // fully closed (terminal)
)

// Commande is the commandes GORM model. PrixTotal captures the tariff price
// at booking time; later tariff edits never touch existing orders.
type Commande struct {
	ID           string `gorm:"primaryKey;size:36"`
	NumeroBillet int    `gorm:"uniqueIndex;not null"` // sequential human-readable ticket number

	// Contact
	Nom       string `gorm:"size:128;not null"`
	Telephone string `gorm:"size:32"`
	Email     string `gorm:"size:128"`

	// Category captured at booking time
	TarifID  string `gorm:"size:8;not null"` // tariff letter
	TarifNom string `gorm:"size:64"`

	// Amounts (EUR)
	PrixTotal   float64 `gorm:"type:decimal(10,2);not null"`
	MontantPaye float64 `gorm:"type:decimal(10,2);not null;default:0"` // running sum of captured, non-voided payments

	Statut    Statut  `gorm:"type:varchar(16);index;not null"`
	CreneauID *string `gorm:"index;size:36"` // pickup slot, detached on cancellation

	// Tagging
	NumeroBoucle *int       // mirrors NumeroBillet once tagged
	DateBouclage *time.Time // set once, never cleared

	UserID string `gorm:"index;size:36"` // owner account

	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
	DateValidation *time.Time
	DateAnnulation *time.Time
}

// Compteur is a named sequence row (compteurs table). The ticket number
// sequence is bumped under a row lock so concurrent reservations never get
// the same number.
type Compteur struct {
	Nom    string `gorm:"primaryKey;size:32"`
	Valeur int    `gorm:"not null;default:0"`
}

// CompteurBillets is the ticket number sequence name.
const CompteurBillets = "numero_billet"
