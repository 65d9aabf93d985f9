package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPanelsFor(t *testing.T) {
	assert.Equal(t, []string{PanelReservation, PanelMesBillets}, PanelsFor(RoleClient))
	assert.Equal(t, []string{PanelValidation, PanelCaisse}, PanelsFor(RoleVendeur))
	assert.Nil(t, PanelsFor("inconnu"))

	// admin_global sees every panel.
	all := PanelsFor(RoleAdminGlobal)
	for _, p := range []string{PanelReservation, PanelValidation, PanelCaisse, PanelStock, PanelRapports, PanelAdmin} {
		assert.Contains(t, all, p)
	}
}

func TestRoleSeparation(t *testing.T) {
	// A customer never sees staff panels.
	for _, p := range []string{PanelValidation, PanelCaisse, PanelStock, PanelRapports, PanelAdmin} {
		assert.False(t, IsAllowed(RoleClient, p), "client should not see %s", p)
	}
	// Staff roles never see the customer booking panel.
	assert.False(t, IsAllowed(RoleVendeur, PanelReservation))
	assert.False(t, IsAllowed(RoleAdminSite, PanelMesBillets))
}

func TestDefaultAndFallbackPanel(t *testing.T) {
	assert.Equal(t, PanelReservation, DefaultPanel(RoleClient))
	assert.Equal(t, PanelValidation, DefaultPanel(RoleVendeur))
	assert.Equal(t, "", DefaultPanel("inconnu"))

	// Active panel kept while permitted.
	assert.Equal(t, PanelCaisse, FallbackPanel(RoleVendeur, PanelCaisse))
	// Role change drops a now-forbidden panel back to the new default.
	assert.Equal(t, PanelReservation, FallbackPanel(RoleClient, PanelCaisse))
}
