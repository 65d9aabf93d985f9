package tarif

import "time"

// Tarif is a priced animal category (tarifs table). The id is the category
// letter shown on tickets.
type Tarif struct {
	ID          string    `gorm:"primaryKey;size:8"` // category letter
	Nom         string    `gorm:"size:64;not null"`
	Description string    `gorm:"size:255"`
	Prix        float64   `gorm:"type:decimal(10,2);not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}
