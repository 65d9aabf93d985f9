package creneau

import (
	"context"
	"fmt"

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

func (r *Repo) Create(ctx context.Context, c *Creneau) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Create(c).Error
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Creneau, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var c Creneau
	if err := db.Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns slots ordered by date then start time.
func (r *Repo) List(ctx context.Context) ([]Creneau, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var creneaux []Creneau
	if err := db.Order("date ASC, heure_debut ASC").Find(&creneaux).Error; err != nil {
		return nil, err
	}
	return creneaux, nil
}

// LockForUpdate reloads a slot under FOR UPDATE inside tx; reservation and
// bulk assignment serialize per slot on this lock.
func LockForUpdate(tx *gorm.DB, id string) (*Creneau, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx is nil")
	}
	var c Creneau
	if err := database.ForUpdate(tx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// CountOccupees counts orders referencing a slot. Queried through the table
// name to keep this package independent from the commande package.
func CountOccupees(tx *gorm.DB, creneauID string) (int64, error) {
	if tx == nil {
		return 0, fmt.Errorf("tx is nil")
	}
	var n int64
	err := tx.Table("commandes").Where("creneau_id = ?", creneauID).Count(&n).Error
	return n, err
}

func (r *Repo) Delete(tx *gorm.DB, id string) error {
	if tx == nil {
		return fmt.Errorf("tx is nil")
	}
	return tx.Where("id = ?", id).Delete(&Creneau{}).Error
}
