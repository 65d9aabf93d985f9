package caisse

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/reservaid/reservaid/internal/common/database"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) withCtx(ctx context.Context) *gorm.DB {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.WithContext(ctx)
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Paiement, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var p Paiement
	if err := db.Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByCommande returns a ticket's register entries, oldest first.
func (r *Repo) ListByCommande(ctx context.Context, commandeID string) ([]Paiement, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var paiements []Paiement
	if err := db.Where("commande_id = ?", commandeID).Order("created_at ASC").Find(&paiements).Error; err != nil {
		return nil, err
	}
	return paiements, nil
}

// ListRange returns entries for an operator within [from, to]. An empty
// operatorID means all operators.
func (r *Repo) ListRange(ctx context.Context, operatorID string, from, to time.Time) ([]Paiement, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	q := db.Where("created_at >= ? AND created_at <= ?", from, to)
	if operatorID != "" {
		q = q.Where("operator_id = ?", operatorID)
	}
	var paiements []Paiement
	if err := q.Order("created_at ASC").Find(&paiements).Error; err != nil {
		return nil, err
	}
	return paiements, nil
}

// List returns the newest entries for the register view.
func (r *Repo) List(ctx context.Context, offset, limit int) ([]Paiement, int64, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, 0, fmt.Errorf("repo db is nil")
	}
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	var total int64
	if err := db.Model(&Paiement{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var paiements []Paiement
	if err := db.Model(&Paiement{}).Order("created_at DESC").Offset(offset).Limit(limit).Find(&paiements).Error; err != nil {
		return nil, 0, err
	}
	return paiements, total, nil
}

// LockForUpdate reloads a payment row under FOR UPDATE inside tx.
func LockForUpdate(tx *gorm.DB, id string) (*Paiement, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx is nil")
	}
	var p Paiement
	if err := database.ForUpdate(tx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}
