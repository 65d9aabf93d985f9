package audit

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/reservaid/reservaid/internal/common/logger"
)

// Actor identifies who performed the audited action.
type Actor struct {
	ID   string
	Nom  string
	Role string
}

// Service records significant actions. Recording failures are logged and
// swallowed: an audit hiccup must never fail the action it describes.
type Service struct {
	repo *Repo
	log  logger.Logger
}

func NewService(repo *Repo, log logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Record appends one entry. metadata may be nil.
func (s *Service) Record(ctx context.Context, categorie, action, details string, actor Actor, metadata map[string]any) {
	if s == nil || s.repo == nil {
		return
	}

	meta := ""
	if len(metadata) > 0 {
		if b, err := json.Marshal(metadata); err == nil {
			meta = string(b)
		}
	}

	e := &Entry{
		ID:        uuid.NewString(),
		Categorie: categorie,
		Action:    action,
		Details:   details,
		ActorID:   actor.ID,
		ActorNom:  actor.Nom,
		Role:      actor.Role,
		Metadata:  meta,
	}
	if err := s.repo.Create(ctx, e); err != nil && s.log != nil {
		s.log.Warnf("failed to record audit entry action=%s: %v", action, err)
	}
}
