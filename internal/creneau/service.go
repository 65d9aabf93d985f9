package creneau

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service covers slot administration and the occupancy view.
type Service struct {
	db   *gorm.DB
	repo *Repo
}

func NewService(db *gorm.DB, repo *Repo) *Service {
	return &Service{db: db, repo: repo}
}

// CreateInput describes a new slot.
type CreateInput struct {
	Date       string
	HeureDebut string
	HeureFin   string
	Capacite   int
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Creneau, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	if strings.TrimSpace(in.Date) == "" || strings.TrimSpace(in.HeureDebut) == "" || strings.TrimSpace(in.HeureFin) == "" {
		return nil, fmt.Errorf("date/heure_debut/heure_fin required")
	}
	if in.Capacite <= 0 {
		return nil, fmt.Errorf("capacite must be positive")
	}

	c := &Creneau{
		ID:         uuid.NewString(),
		Date:       strings.TrimSpace(in.Date),
		HeureDebut: strings.TrimSpace(in.HeureDebut),
		HeureFin:   strings.TrimSpace(in.HeureFin),
		Capacite:   in.Capacite,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ListAvecPlaces returns every slot with its remaining seats, recomputed on
// each call (refetch-on-change model, nothing incremental).
func (s *Service) ListAvecPlaces(ctx context.Context) ([]AvecPlaces, error) {
	if s == nil || s.repo == nil || s.db == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	creneaux, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]AvecPlaces, 0, len(creneaux))
	for i := range creneaux {
		c := creneaux[i]
		occupees, err := CountOccupees(s.db.WithContext(ctx), c.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, AvecPlaces{
			Creneau:         c,
			PlacesRestantes: PlacesRestantes(c.Capacite, occupees),
		})
	}
	return out, nil
}

// DeleteSafely detaches every attached order from the slot and deletes it
// in a single transaction, so no order is left pointing at a missing slot.
func (s *Service) DeleteSafely(ctx context.Context, id string) error {
	if s == nil || s.db == nil || s.repo == nil {
		return fmt.Errorf("service not initialized")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("id required")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := LockForUpdate(tx, id); err != nil {
			return err
		}
		if err := tx.Table("commandes").Where("creneau_id = ?", id).Update("creneau_id", nil).Error; err != nil {
			return err
		}
		return s.repo.Delete(tx, id)
	})
}
