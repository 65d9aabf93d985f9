package commande

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Statut
		want     bool
	}{
		{StatutEnAttente, StatutPaiementRecu, true},
		{StatutEnAttente, StatutValidee, true},
		{StatutEnAttente, StatutAnnulee, true},
		// Tagging works from any live status, not just validee.
		{StatutEnAttente, StatutBouclee, true},
		{StatutPaiementRecu, StatutBouclee, true},
		{StatutValidee, StatutBouclee, true},
		{StatutBouclee, StatutTerminee, true},
		// Terminal statuses go nowhere.
		{StatutRefusee, StatutValidee, false},
		{StatutAnnulee, StatutEnAttente, false},
		{StatutTerminee, StatutBouclee, false},
		// No going back.
		{StatutValidee, StatutEnAttente, false},
		{StatutBouclee, StatutValidee, false},
		// Self-transition is a no-op, always allowed.
		{StatutValidee, StatutValidee, true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestApplyTransitionTimestamps(t *testing.T) {
	now := time.Date(2025, 6, 6, 9, 0, 0, 0, time.UTC)

	o := &Commande{Statut: StatutPaiementRecu}
	require.NoError(t, ApplyTransition(o, StatutValidee, now))
	require.NotNil(t, o.DateValidation)
	assert.Equal(t, now, *o.DateValidation)

	require.NoError(t, ApplyTransition(o, StatutBouclee, now.Add(time.Hour)))
	require.NotNil(t, o.DateBouclage)
	assert.Equal(t, now.Add(time.Hour), *o.DateBouclage)

	// A later pass never overwrites the first timestamp.
	require.NoError(t, ApplyTransition(o, StatutBouclee, now.Add(2*time.Hour)))
	assert.Equal(t, now.Add(time.Hour), *o.DateBouclage)
}

func TestApplyTransitionRejected(t *testing.T) {
	o := &Commande{Statut: StatutAnnulee}
	err := ApplyTransition(o, StatutValidee, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid commande status transition")
	assert.Equal(t, StatutAnnulee, o.Statut)
}
