package commande

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

func (r *Repo) Create(ctx context.Context, o *Commande) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Create(o).Error
}

func (r *Repo) Update(ctx context.Context, o *Commande) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Save(o).Error
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Commande, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var o Commande
	if err := db.Where("id = ?", id).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// GetByNumeroBillet looks an order up by its human-readable ticket number.
func (r *Repo) GetByNumeroBillet(ctx context.Context, numero int) (*Commande, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var o Commande
	if err := db.Where("numero_billet = ?", numero).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// ListFilter narrows List results.
type ListFilter struct {
	UserID    string
	Statut    Statut
	CreneauID string
	Recherche string // matches nom / telephone / email
	Offset    int
	Limit     int
}

// List supports filtering and pagination, newest first.
func (r *Repo) List(ctx context.Context, f ListFilter) ([]Commande, int64, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, 0, fmt.Errorf("repo db is nil")
	}
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	q := db.Model(&Commande{})
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.Statut != "" {
		q = q.Where("statut = ?", f.Statut)
	}
	if f.CreneauID != "" {
		q = q.Where("creneau_id = ?", f.CreneauID)
	}
	if f.Recherche != "" {
		like := "%" + f.Recherche + "%"
		q = q.Where("nom LIKE ? OR telephone LIKE ? OR email LIKE ?", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var commandes []Commande
	if err := q.Order("created_at DESC").Offset(f.Offset).Limit(f.Limit).Find(&commandes).Error; err != nil {
		return nil, 0, err
	}
	return commandes, total, nil
}

// CountByCreneau counts orders referencing a slot, regardless of payment
// status. Cancelled orders do not count because cancellation detaches them
// from the slot.
func CountByCreneau(tx *gorm.DB, creneauID string) (int64, error) {
	if tx == nil {
		return 0, fmt.Errorf("tx is nil")
	}
	var n int64
	err := tx.Model(&Commande{}).Where("creneau_id = ?", creneauID).Count(&n).Error
	return n, err
}

// LockForUpdate reloads an order under FOR UPDATE inside tx.
func LockForUpdate(tx *gorm.DB, id string) (*Commande, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx is nil")
	}
	var o Commande
	if err := database.ForUpdate(tx).Where("id = ?", id).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// NextNumeroBillet bumps the ticket sequence under a row lock and returns
// the new value. Must run inside tx.
func NextNumeroBillet(tx *gorm.DB) (int, error) {
	if tx == nil {
		return 0, fmt.Errorf("tx is nil")
	}
	var c Compteur
	err := database.ForUpdate(tx).Where("nom = ?", CompteurBillets).First(&c).Error
	if err == gorm.ErrRecordNotFound {
		c = Compteur{Nom: CompteurBillets, Valeur: 0}
		if err := tx.Create(&c).Error; err != nil {
			return 0, err
		}
	} else if err != nil {
		return 0, err
	}

	c.Valeur++
	if err := tx.Save(&c).Error; err != nil {
		return 0, err
	}
	return c.Valeur, nil
}
