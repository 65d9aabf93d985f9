package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/reservaid/reservaid/internal/caisse"
	"github.com/reservaid/reservaid/internal/commande"
)

// Service streams CSV snapshots of the main tables for offline reporting.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func fmtTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return fmtTime(*t)
}

// Commandes writes every order as CSV, oldest first.
func (s *Service) Commandes(ctx context.Context, w io.Writer) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("service not initialized")
	}
	var commandes []commande.Commande
	if err := s.db.WithContext(ctx).Order("numero_billet ASC").Find(&commandes).Error; err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"numero_billet", "nom", "telephone", "email", "tarif", "prix_total",
		"montant_paye", "statut", "creneau_id", "numero_boucle", "date_bouclage", "created_at",
	}); err != nil {
		return err
	}
	for _, o := range commandes {
		creneauID := ""
		if o.CreneauID != nil {
			creneauID = *o.CreneauID
		}
		boucle := ""
		if o.NumeroBoucle != nil {
			boucle = strconv.Itoa(*o.NumeroBoucle)
		}
		if err := cw.Write([]string{
			strconv.Itoa(o.NumeroBillet),
			o.Nom,
			o.Telephone,
			o.Email,
			o.TarifID,
			fmt.Sprintf("%.2f", o.PrixTotal),
			fmt.Sprintf("%.2f", o.MontantPaye),
			string(o.Statut),
			creneauID,
			boucle,
			fmtTimePtr(o.DateBouclage),
			fmtTime(o.CreatedAt),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Paiements writes every till entry as CSV, oldest first. Voided rows are
// included so the export reconciles against the Z reports.
func (s *Service) Paiements(ctx context.Context, w io.Writer) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("service not initialized")
	}
	var paiements []caisse.Paiement
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&paiements).Error; err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"id", "commande_id", "montant", "methode", "statut", "details", "operateur", "created_at",
	}); err != nil {
		return err
	}
	for _, p := range paiements {
		if err := cw.Write([]string{
			p.ID,
			p.CommandeID,
			fmt.Sprintf("%.2f", p.Montant),
			p.Methode,
			p.Statut,
			p.Details,
			p.OperatorNom,
			fmtTime(p.CreatedAt),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
