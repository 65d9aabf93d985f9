package commande

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBalanceDue(t *testing.T) {
	assert.Equal(t, 50.0, BalanceDue(100.0, 50.0))
	assert.Equal(t, 0.0, BalanceDue(100.0, 100.0))
	// Overpayment never shows a negative balance.
	assert.Equal(t, 0.0, BalanceDue(100.0, 120.0))
}

func TestEstSoldee(t *testing.T) {
	assert.False(t, EstSoldee(100.0, 50.0))
	assert.True(t, EstSoldee(100.0, 100.0))
	// Within the rounding tolerance counts as settled.
	assert.True(t, EstSoldee(100.0, 99.96))
	assert.False(t, EstSoldee(100.0, 99.90))
	// A zero-priced order is never settled.
	assert.False(t, EstSoldee(0, 0))
}

func TestStatutAffiche(t *testing.T) {
	assert.Equal(t, AfficheAPayer, StatutAffiche(&Commande{PrixTotal: 100, MontantPaye: 50}))
	assert.Equal(t, AfficheSoldee, StatutAffiche(&Commande{PrixTotal: 100, MontantPaye: 100}))
	assert.Equal(t, "", StatutAffiche(nil))
}

func TestCheckBouclage(t *testing.T) {
	creneauID := "cr-1"
	paid := func() *Commande {
		return &Commande{
			Statut:      StatutValidee,
			PrixTotal:   100.0,
			MontantPaye: 100.0,
			CreneauID:   &creneauID,
		}
	}

	assert.NoError(t, CheckBouclage(paid()))

	// Deposit only: blocked until the balance is settled.
	o := paid()
	o.MontantPaye = 50.0
	assert.ErrorIs(t, CheckBouclage(o), ErrSoldeRestant)
	o.MontantPaye = 100.0
	assert.NoError(t, CheckBouclage(o))

	o = paid()
	o.Statut = StatutAnnulee
	assert.ErrorIs(t, CheckBouclage(o), ErrBilletAnnule)

	o = paid()
	now := time.Now()
	o.DateBouclage = &now
	assert.ErrorIs(t, CheckBouclage(o), ErrDejaBouclee)

	o = paid()
	o.CreneauID = nil
	assert.ErrorIs(t, CheckBouclage(o), ErrSansCreneau)

	// Rejection order: cancellation wins over the missing slot and balance.
	o = paid()
	o.Statut = StatutRefusee
	o.CreneauID = nil
	o.MontantPaye = 0
	assert.ErrorIs(t, CheckBouclage(o), ErrBilletAnnule)

	assert.ErrorIs(t, CheckBouclage(nil), ErrBilletInconnu)
}
