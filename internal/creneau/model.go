package creneau

import (
	"errors"
	"time"
)

// ErrComplet rejects a reservation or assignment against a full slot.
var ErrComplet = errors.New("creneau complet")

// Creneau is a bounded-capacity pickup interval (creneaux table).
type Creneau struct {
	ID         string    `gorm:"primaryKey;size:36"`
	Date       string    `gorm:"size:10;index;not null"` // YYYY-MM-DD
	HeureDebut string    `gorm:"size:5;not null"`        // HH:MM
	HeureFin   string    `gorm:"size:5;not null"`        // HH:MM
	Capacite   int       `gorm:"not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

// PlacesRestantes computes remaining seats: capacity minus the number of
// orders referencing the slot, floored at zero. Payment status is
// irrelevant; cancelled orders are detached from the slot instead.
func PlacesRestantes(capacite int, occupees int64) int {
	rest := capacite - int(occupees)
	if rest < 0 {
		return 0
	}
	return rest
}

// AvecPlaces is the list-view shape: the slot plus its derived occupancy.
type AvecPlaces struct {
	Creneau
	PlacesRestantes int `json:"places_restantes"`
}
