package commande

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/reservaid/reservaid/internal/audit"
	"github.com/reservaid/reservaid/internal/creneau"
	"github.com/reservaid/reservaid/internal/tarif"
)

// newTestService wires the order service against an in-memory sqlite
// database, with one tariff seeded. One connection only: every transaction
// sees the same database.
func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&Commande{}, &Compteur{}, &creneau.Creneau{}, &tarif.Tarif{}, &audit.Entry{}))
	require.NoError(t, db.Create(&tarif.Tarif{ID: "A", Nom: "Agneau", Prix: 250}).Error)

	svc := NewService(db, NewRepo(db), tarif.NewRepo(db), creneau.NewRepo(db),
		audit.NewService(audit.NewRepo(db), nil), nil)
	return svc, db
}

func reserver(t *testing.T, svc *Service, in ReserverInput) *Commande {
	t.Helper()
	if in.Nom == "" {
		in.Nom = "Dupont"
	}
	if in.Telephone == "" {
		in.Telephone = "0600000000"
	}
	if in.TarifID == "" {
		in.TarifID = "A"
	}
	o, err := svc.Reserver(context.Background(), in)
	require.NoError(t, err)
	return o
}

func TestReserverNumerosSequentiels(t *testing.T) {
	svc, _ := newTestService(t)

	for want := 1; want <= 3; want++ {
		o := reserver(t, svc, ReserverInput{})
		assert.Equal(t, want, o.NumeroBillet)
		assert.Equal(t, StatutEnAttente, o.Statut)
	}
}

func TestReserverCreneauComplet(t *testing.T) {
	svc, db := newTestService(t)
	require.NoError(t, db.Create(&creneau.Creneau{
		ID: "cr-1", Date: "2026-05-27", HeureDebut: "08:00", HeureFin: "09:00", Capacite: 1,
	}).Error)

	first := reserver(t, svc, ReserverInput{CreneauID: "cr-1"})
	require.NotNil(t, first.CreneauID)

	_, err := svc.Reserver(context.Background(), ReserverInput{
		Nom: "Martin", Telephone: "0611111111", TarifID: "A", CreneauID: "cr-1",
	})
	assert.ErrorIs(t, err, creneau.ErrComplet)

	// The rejected reservation left nothing behind: no order row, no hold
	// on the slot.
	var n int64
	require.NoError(t, db.Model(&Commande{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestPaiementSuccesRejoue(t *testing.T) {
	svc, _ := newTestService(t)
	o := reserver(t, svc, ReserverInput{})

	_, err := svc.MarquerPaiementSucces(context.Background(), o.ID, 50)
	require.NoError(t, err)

	// The provider return page got refreshed: same callback, same amount.
	out, err := svc.MarquerPaiementSucces(context.Background(), o.ID, 50)
	require.NoError(t, err)

	assert.Equal(t, StatutPaiementRecu, out.Statut)
	assert.Equal(t, 50.0, out.MontantPaye)
}

func TestCycleCompletJusquATerminee(t *testing.T) {
	svc, db := newTestService(t)
	require.NoError(t, db.Create(&creneau.Creneau{
		ID: "cr-1", Date: "2026-05-27", HeureDebut: "08:00", HeureFin: "09:00", Capacite: 5,
	}).Error)

	o := reserver(t, svc, ReserverInput{CreneauID: "cr-1"})
	ctx := context.Background()
	actor := audit.Actor{ID: "u-vendeur", Nom: "Vendeur", Role: "vendeur"}

	_, err := svc.MarquerPaiementSucces(ctx, o.ID, 250)
	require.NoError(t, err)
	_, err = svc.Valider(ctx, o.ID, actor)
	require.NoError(t, err)

	tagged, err := svc.Boucler(ctx, o.ID, actor)
	require.NoError(t, err)
	require.NotNil(t, tagged.NumeroBoucle)
	assert.Equal(t, tagged.NumeroBillet, *tagged.NumeroBoucle)
	require.NotNil(t, tagged.DateBouclage)

	done, err := svc.Terminer(ctx, o.ID, actor)
	require.NoError(t, err)
	assert.Equal(t, StatutTerminee, done.Statut)

	// Terminee is terminal.
	_, err = svc.Valider(ctx, o.ID, actor)
	assert.Error(t, err)
}
