package caisse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/reservaid/reservaid/internal/audit"
	"github.com/reservaid/reservaid/internal/commande"
)

// newTestService wires the till service against an in-memory sqlite
// database with one order to pay against (250€, nothing paid yet).
func newTestService(t *testing.T) (*Service, *gorm.DB, *commande.Commande) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&Paiement{}, &commande.Commande{}, &audit.Entry{}))

	o := &commande.Commande{
		ID:           "cmd-1",
		NumeroBillet: 1,
		Nom:          "Dupont",
		Telephone:    "0600000000",
		TarifID:      "A",
		PrixTotal:    250,
		Statut:       commande.StatutValidee,
	}
	require.NoError(t, db.Create(o).Error)

	svc := NewService(db, NewRepo(db), audit.NewService(audit.NewRepo(db), nil), nil)
	return svc, db, o
}

func paidTotal(t *testing.T, db *gorm.DB, id string) float64 {
	t.Helper()
	var o commande.Commande
	require.NoError(t, db.Where("id = ?", id).First(&o).Error)
	return o.MontantPaye
}

func TestAjouterCumuleMontantPaye(t *testing.T) {
	svc, db, o := newTestService(t)
	ctx := context.Background()
	actor := audit.Actor{ID: "u-caisse", Nom: "Caissier", Role: "admin_site"}

	_, err := svc.Ajouter(ctx, AjouterInput{CommandeID: o.ID, Montant: 60, Methode: MethodeEspeces, Actor: actor})
	require.NoError(t, err)
	_, err = svc.Ajouter(ctx, AjouterInput{CommandeID: o.ID, Montant: 40, Methode: MethodeCB, Actor: actor})
	require.NoError(t, err)

	assert.Equal(t, 100.0, paidTotal(t, db, o.ID))
}

func TestAnnulerRetireExactementLeMontant(t *testing.T) {
	svc, db, o := newTestService(t)
	ctx := context.Background()
	actor := audit.Actor{ID: "u-caisse", Nom: "Caissier", Role: "admin_site"}

	_, err := svc.Ajouter(ctx, AjouterInput{CommandeID: o.ID, Montant: 60, Methode: MethodeEspeces, Actor: actor})
	require.NoError(t, err)
	cb, err := svc.Ajouter(ctx, AjouterInput{CommandeID: o.ID, Montant: 40, Methode: MethodeCB, Actor: actor})
	require.NoError(t, err)

	voided, err := svc.Annuler(ctx, cb.ID, "erreur de saisie", true, actor)
	require.NoError(t, err)

	// Only the voided payment drops out of the paid total.
	assert.Equal(t, 60.0, paidTotal(t, db, o.ID))
	assert.Equal(t, StatutAnnule, voided.Statut)
	assert.Contains(t, voided.Details, "Annulation paiement cb de 40.00€ - erreur de saisie")

	// The row survives with its amount; Z reads it later.
	var row Paiement
	require.NoError(t, db.Where("id = ?", cb.ID).First(&row).Error)
	assert.Equal(t, 40.0, row.Montant)

	// Voiding twice is refused.
	_, err = svc.Annuler(ctx, cb.ID, "", true, actor)
	assert.Error(t, err)
	assert.Equal(t, 60.0, paidTotal(t, db, o.ID))
}

func TestAnnulerExigeConfirmation(t *testing.T) {
	svc, db, o := newTestService(t)
	ctx := context.Background()
	actor := audit.Actor{ID: "u-caisse", Nom: "Caissier", Role: "admin_site"}

	p, err := svc.Ajouter(ctx, AjouterInput{CommandeID: o.ID, Montant: 60, Methode: MethodeEspeces, Actor: actor})
	require.NoError(t, err)

	_, err = svc.Annuler(ctx, p.ID, "doublon", false, actor)
	assert.ErrorIs(t, err, ErrConfirmationRequise)
	assert.Equal(t, 60.0, paidTotal(t, db, o.ID))
}
