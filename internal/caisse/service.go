package caisse

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/reservaid/reservaid/internal/audit"
	"github.com/reservaid/reservaid/internal/commande"
	"github.com/reservaid/reservaid/internal/feed"
)

// ErrConfirmationRequise blocks a void not explicitly confirmed by the
// operator.
var ErrConfirmationRequise = fmt.Errorf("confirmation requise")

// Service covers till entries: record, void, and the order paid-total they
// maintain.
type Service struct {
	db    *gorm.DB
	repo  *Repo
	audit *audit.Service
	feed  *feed.Publisher
}

func NewService(db *gorm.DB, repo *Repo, auditSvc *audit.Service, pub *feed.Publisher) *Service {
	return &Service{db: db, repo: repo, audit: auditSvc, feed: pub}
}

// AjouterInput describes one till payment.
type AjouterInput struct {
	CommandeID string
	Montant    float64
	Methode    string
	Details    string
	Actor      audit.Actor
}

// Ajouter records a payment and updates the order's paid total in the same
// transaction. The order status is untouched: "settled" is a derived view,
// never a stored state.
func (s *Service) Ajouter(ctx context.Context, in AjouterInput) (*Paiement, error) {
	if s == nil || s.db == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	in.CommandeID = strings.TrimSpace(in.CommandeID)
	if in.CommandeID == "" {
		return nil, fmt.Errorf("commande_id required")
	}
	if in.Montant <= 0 {
		return nil, fmt.Errorf("montant must be positive")
	}
	if !MethodeValide(in.Methode) {
		return nil, fmt.Errorf("methode must be one of especes/cb/cheque")
	}

	p := &Paiement{
		ID:          uuid.NewString(),
		CommandeID:  in.CommandeID,
		Montant:     in.Montant,
		Methode:     in.Methode,
		Statut:      StatutEncaisse,
		Details:     strings.TrimSpace(in.Details),
		OperatorID:  in.Actor.ID,
		OperatorNom: in.Actor.Nom,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		o, err := commande.LockForUpdate(tx, in.CommandeID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return commande.ErrBilletInconnu
			}
			return err
		}
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		o.MontantPaye += p.Montant
		return tx.Save(o).Error
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, "paiement", "encaissement",
		fmt.Sprintf("Paiement %s de %.2f€ sur commande %s", p.Methode, p.Montant, p.CommandeID),
		in.Actor, map[string]any{"paiement_id": p.ID, "methode": p.Methode, "montant": p.Montant})
	s.feed.PublishChange(ctx, feed.TablePaiements, feed.OpInsert, p.ID, map[string]string{
		"commande_id": p.CommandeID,
		"montant":     fmt.Sprintf("%.2f", p.Montant),
		"methode":     p.Methode,
	})

	return p, nil
}

// Annuler voids a payment: the row keeps its amount but stops counting
// toward the order's paid total, and the void reason is appended to the
// Details text (which is what the Z close later pattern-matches on).
// Requires the operator's explicit confirmation.
func (s *Service) Annuler(ctx context.Context, paiementID, raison string, confirme bool, actor audit.Actor) (*Paiement, error) {
	if s == nil || s.db == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	paiementID = strings.TrimSpace(paiementID)
	if paiementID == "" {
		return nil, fmt.Errorf("paiement_id required")
	}
	if !confirme {
		return nil, ErrConfirmationRequise
	}

	var voided *Paiement
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := LockForUpdate(tx, paiementID)
		if err != nil {
			return err
		}
		if p.Statut == StatutAnnule {
			return fmt.Errorf("paiement deja annule")
		}

		o, err := commande.LockForUpdate(tx, p.CommandeID)
		if err != nil {
			return err
		}

		p.Statut = StatutAnnule
		detail := fmt.Sprintf("Annulation paiement %s de %.2f€", p.Methode, p.Montant)
		if raison = strings.TrimSpace(raison); raison != "" {
			detail += " - " + raison
		}
		if p.Details != "" {
			p.Details += " | "
		}
		p.Details += detail
		if err := tx.Save(p).Error; err != nil {
			return err
		}

		// The paid total drops by exactly this payment's amount; other
		// orders are untouched.
		o.MontantPaye -= p.Montant
		if o.MontantPaye < 0 {
			o.MontantPaye = 0
		}
		if err := tx.Save(o).Error; err != nil {
			return err
		}

		voided = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, "paiement", "annulation",
		voided.Details, actor,
		map[string]any{"paiement_id": voided.ID, "methode": voided.Methode, "montant": voided.Montant})
	s.feed.PublishChange(ctx, feed.TablePaiements, feed.OpUpdate, voided.ID, map[string]string{
		"commande_id": voided.CommandeID,
		"statut":      StatutAnnule,
	})

	return voided, nil
}
