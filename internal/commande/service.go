package commande

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/reservaid/reservaid/internal/audit"
	"github.com/reservaid/reservaid/internal/creneau"
	"github.com/reservaid/reservaid/internal/feed"
	"github.com/reservaid/reservaid/internal/tarif"
)

// PhraseReset is the typed confirmation required by the full data reset.
const PhraseReset = "SUPPRIMER TOUTES LES DONNEES"

// ErrConfirmationInvalide rejects a reset without the exact phrase.
var ErrConfirmationInvalide = fmt.Errorf("phrase de confirmation invalide")

// Service drives the order lifecycle. All multi-row steps (seat counting,
// ticket numbering, slot assignment) run in one transaction with row locks,
// so concurrent reservations never share a seat or a ticket number.
type Service struct {
	db       *gorm.DB
	repo     *Repo
	tarifs   *tarif.Repo
	creneaux *creneau.Repo
	audit    *audit.Service
	feed     *feed.Publisher
}

func NewService(db *gorm.DB, repo *Repo, tarifs *tarif.Repo, creneaux *creneau.Repo, auditSvc *audit.Service, pub *feed.Publisher) *Service {
	return &Service{db: db, repo: repo, tarifs: tarifs, creneaux: creneaux, audit: auditSvc, feed: pub}
}

// ReserverInput is the reservation request.
type ReserverInput struct {
	Nom       string
	Telephone string
	Email     string
	TarifID   string
	CreneauID string // optional at booking; assignable later from stock
	UserID    string
	Actor     audit.Actor
}

// Reserver allocates the next ticket atomically: slot row locked, seats
// counted, sequence bumped, order inserted, all or nothing. The caller is
// then redirected to the payment relay for the deposit.
func (s *Service) Reserver(ctx context.Context, in ReserverInput) (*Commande, error) {
	if s == nil || s.db == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	in.Nom = strings.TrimSpace(in.Nom)
	in.Telephone = strings.TrimSpace(in.Telephone)
	if in.Nom == "" || in.Telephone == "" {
		return nil, fmt.Errorf("nom/telephone required")
	}
	in.TarifID = strings.TrimSpace(in.TarifID)
	if in.TarifID == "" {
		return nil, fmt.Errorf("tarif required")
	}

	t, err := s.tarifs.GetByID(ctx, in.TarifID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("tarif inconnu: %s", in.TarifID)
		}
		return nil, err
	}

	o := &Commande{
		ID:        uuid.NewString(),
		Nom:       in.Nom,
		Telephone: in.Telephone,
		Email:     strings.TrimSpace(in.Email),
		TarifID:   t.ID,
		TarifNom:  t.Nom,
		PrixTotal: t.Prix,
		Statut:    StatutEnAttente,
		UserID:    strings.TrimSpace(in.UserID),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if id := strings.TrimSpace(in.CreneauID); id != "" {
			c, err := creneau.LockForUpdate(tx, id)
			if err != nil {
				if err == gorm.ErrRecordNotFound {
					return fmt.Errorf("creneau inconnu: %s", id)
				}
				return err
			}
			occupees, err := CountByCreneau(tx, c.ID)
			if err != nil {
				return err
			}
			if creneau.PlacesRestantes(c.Capacite, occupees) <= 0 {
				return creneau.ErrComplet
			}
			o.CreneauID = &c.ID
		}

		numero, err := NextNumeroBillet(tx)
		if err != nil {
			return err
		}
		o.NumeroBillet = numero

		return tx.Create(o).Error
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, "commande", "reservation",
		fmt.Sprintf("Reservation billet n°%d (%s, %.2f€)", o.NumeroBillet, o.TarifNom, o.PrixTotal),
		in.Actor, map[string]any{"commande_id": o.ID, "numero_billet": o.NumeroBillet})
	s.publish(ctx, feed.OpInsert, o)

	return o, nil
}

// MarquerPaiementSucces records the captured deposit: status moves to
// paiement_recu and the deposit joins the paid total. Idempotent per
// order: provider return pages get refreshed, and a replay must not count
// the deposit twice.
func (s *Service) MarquerPaiementSucces(ctx context.Context, id string, montant float64) (*Commande, error) {
	return s.mutate(ctx, id, func(o *Commande) error {
		if o.Statut == StatutPaiementRecu {
			return nil
		}
		if err := ApplyTransition(o, StatutPaiementRecu, time.Now()); err != nil {
			return err
		}
		if montant > 0 {
			o.MontantPaye += montant
		}
		return nil
	})
}

// MarquerPaiementEchec cancels the order after a failed or abandoned
// checkout and releases its seat.
func (s *Service) MarquerPaiementEchec(ctx context.Context, id string) (*Commande, error) {
	return s.mutate(ctx, id, func(o *Commande) error {
		if err := ApplyTransition(o, StatutAnnulee, time.Now()); err != nil {
			return err
		}
		o.CreneauID = nil // seat released
		return nil
	})
}

// Annuler cancels a reservation on request and releases its seat.
func (s *Service) Annuler(ctx context.Context, id string, actor audit.Actor) (*Commande, error) {
	o, err := s.mutate(ctx, id, func(o *Commande) error {
		if err := ApplyTransition(o, StatutAnnulee, time.Now()); err != nil {
			return err
		}
		o.CreneauID = nil
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, "commande", "annulation",
		fmt.Sprintf("Annulation billet n°%d", o.NumeroBillet), actor,
		map[string]any{"commande_id": o.ID})
	return o, nil
}

// Valider is the seller acceptance.
func (s *Service) Valider(ctx context.Context, id string, actor audit.Actor) (*Commande, error) {
	o, err := s.mutate(ctx, id, func(o *Commande) error {
		return ApplyTransition(o, StatutValidee, time.Now())
	})
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, "commande", "validation",
		fmt.Sprintf("Validation billet n°%d", o.NumeroBillet), actor,
		map[string]any{"commande_id": o.ID})
	return o, nil
}

// Refuser is the seller rejection (terminal).
func (s *Service) Refuser(ctx context.Context, id string, actor audit.Actor) (*Commande, error) {
	o, err := s.mutate(ctx, id, func(o *Commande) error {
		return ApplyTransition(o, StatutRefusee, time.Now())
	})
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, "commande", "refus",
		fmt.Sprintf("Refus billet n°%d", o.NumeroBillet), actor,
		map[string]any{"commande_id": o.ID})
	return o, nil
}

// Boucler applies the tag at pickup. All three preconditions are
// re-checked under the row lock; the tag number mirrors the ticket number.
func (s *Service) Boucler(ctx context.Context, id string, actor audit.Actor) (*Commande, error) {
	o, err := s.mutate(ctx, id, func(o *Commande) error {
		if err := CheckBouclage(o); err != nil {
			return err
		}
		if err := ApplyTransition(o, StatutBouclee, time.Now()); err != nil {
			return err
		}
		numero := o.NumeroBillet
		o.NumeroBoucle = &numero
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, "commande", "bouclage",
		fmt.Sprintf("Bouclage billet n°%d, boucle n°%d", o.NumeroBillet, *o.NumeroBoucle), actor,
		map[string]any{"commande_id": o.ID, "numero_boucle": *o.NumeroBoucle})
	return o, nil
}

// Terminer closes a tagged order for reporting.
func (s *Service) Terminer(ctx context.Context, id string, actor audit.Actor) (*Commande, error) {
	o, err := s.mutate(ctx, id, func(o *Commande) error {
		return ApplyTransition(o, StatutTerminee, time.Now())
	})
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, "commande", "terminaison",
		fmt.Sprintf("Cloture billet n°%d", o.NumeroBillet), actor,
		map[string]any{"commande_id": o.ID})
	return o, nil
}

// Recherche is the till lookup result: the order plus the derived flags
// the check-in screen renders. Only blocking conditions stop the flow; a
// missing slot is a warning.
type Recherche struct {
	Commande       *Commande `json:"commande"`
	StatutAffiche  string    `json:"statut_affiche"`
	BalanceDue     float64   `json:"balance_due"`
	Avertissements []string  `json:"avertissements,omitempty"`
	Blocages       []string  `json:"blocages,omitempty"`
}

// RechercherParBillet resolves a ticket number for the till screen.
// Unknown and cancelled tickets are errors; the other conditions come back
// as distinct flags.
func (s *Service) RechercherParBillet(ctx context.Context, numero int) (*Recherche, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	o, err := s.repo.GetByNumeroBillet(ctx, numero)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrBilletInconnu
		}
		return nil, err
	}
	if o.Statut == StatutAnnulee || o.Statut == StatutRefusee {
		return nil, ErrBilletAnnule
	}

	r := &Recherche{
		Commande:      o,
		StatutAffiche: StatutAffiche(o),
		BalanceDue:    BalanceDue(o.PrixTotal, o.MontantPaye),
	}
	if o.DateBouclage != nil {
		r.Blocages = append(r.Blocages, ErrDejaBouclee.Error())
	}
	if o.CreneauID == nil || *o.CreneauID == "" {
		r.Avertissements = append(r.Avertissements, ErrSansCreneau.Error())
	}
	if r.BalanceDue > Epsilon {
		r.Blocages = append(r.Blocages, ErrSoldeRestant.Error())
	}
	return r, nil
}

// AssignerCreneau attaches one order to a slot under the capacity lock.
func (s *Service) AssignerCreneau(ctx context.Context, commandeID, creneauID string) (*Commande, error) {
	out, err := s.AssignerCreneauLot(ctx, []string{commandeID}, creneauID)
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// AssignerCreneauLot attaches a batch of orders to a slot. The whole batch
// must fit in the remaining capacity or nothing is assigned.
func (s *Service) AssignerCreneauLot(ctx context.Context, commandeIDs []string, creneauID string) ([]*Commande, error) {
	if s == nil || s.db == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	creneauID = strings.TrimSpace(creneauID)
	if creneauID == "" || len(commandeIDs) == 0 {
		return nil, fmt.Errorf("creneau_id and commande_ids required")
	}

	var out []*Commande
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := creneau.LockForUpdate(tx, creneauID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("creneau inconnu: %s", creneauID)
			}
			return err
		}
		occupees, err := CountByCreneau(tx, c.ID)
		if err != nil {
			return err
		}
		if creneau.PlacesRestantes(c.Capacite, occupees) < len(commandeIDs) {
			return creneau.ErrComplet
		}

		for _, id := range commandeIDs {
			o, err := LockForUpdate(tx, strings.TrimSpace(id))
			if err != nil {
				if err == gorm.ErrRecordNotFound {
					return ErrBilletInconnu
				}
				return err
			}
			if o.Statut == StatutAnnulee || o.Statut == StatutRefusee {
				return ErrBilletAnnule
			}
			o.CreneauID = &c.ID
			if err := tx.Save(o).Error; err != nil {
				return err
			}
			out = append(out, o)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, o := range out {
		s.publish(ctx, feed.OpUpdate, o)
	}
	s.feed.PublishChange(ctx, feed.TableCreneaux, feed.OpUpdate, creneauID, nil)
	return out, nil
}

// RetirerCreneau detaches an order from its slot.
func (s *Service) RetirerCreneau(ctx context.Context, commandeID string) (*Commande, error) {
	return s.mutate(ctx, commandeID, func(o *Commande) error {
		o.CreneauID = nil
		return nil
	})
}

// Get returns one order.
func (s *Service) Get(ctx context.Context, id string) (*Commande, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("id required")
	}
	return s.repo.GetByID(ctx, id)
}

// List proxies the repo filter.
func (s *Service) List(ctx context.Context, f ListFilter) ([]Commande, int64, error) {
	if s == nil || s.repo == nil {
		return nil, 0, fmt.Errorf("service not initialized")
	}
	return s.repo.List(ctx, f)
}

// ResetTout wipes all application data. Admin-only at the transport layer;
// the exact confirmation phrase is still required here.
func (s *Service) ResetTout(ctx context.Context, phrase string, actor audit.Actor) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("service not initialized")
	}
	if strings.TrimSpace(phrase) != PhraseReset {
		return ErrConfirmationInvalide
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range []string{"paiements", "commandes", "creneaux", "audit_logs", "compteurs"} {
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.audit.Record(ctx, "admin", "reset",
		"Remise a zero complete des donnees", actor, nil)
	return nil
}

// mutate loads an order under FOR UPDATE, applies fn and saves, in one
// transaction; the change event fires after commit.
func (s *Service) mutate(ctx context.Context, id string, fn func(o *Commande) error) (*Commande, error) {
	if s == nil || s.db == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("id required")
	}

	var out *Commande
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		o, err := LockForUpdate(tx, id)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrBilletInconnu
			}
			return err
		}
		if err := fn(o); err != nil {
			return err
		}
		if err := tx.Save(o).Error; err != nil {
			return err
		}
		out = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, feed.OpUpdate, out)
	return out, nil
}

func (s *Service) publish(ctx context.Context, op string, o *Commande) {
	if o == nil {
		return
	}
	s.feed.PublishChange(ctx, feed.TableCommandes, op, o.ID, map[string]string{
		"numero_billet": fmt.Sprintf("%d", o.NumeroBillet),
		"statut":        string(o.Statut),
		"nom":           o.Nom,
		"email":         o.Email,
		"telephone":     o.Telephone,
		"prix_total":    fmt.Sprintf("%.2f", o.PrixTotal),
		"montant_paye":  fmt.Sprintf("%.2f", o.MontantPaye),
	})
}
