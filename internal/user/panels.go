package user

// Panel names of the SPA, in display order.
const (
	PanelReservation = "reservation"
	PanelMesBillets  = "mes_billets"
	PanelValidation  = "validation"
	PanelCaisse      = "caisse"
	PanelStock       = "stock"
	PanelRapports    = "rapports"
	PanelAdmin       = "admin"
)

// panelsByRole is the ordered set of panels each role may open.
// admin_global sees everything.
var panelsByRole = map[string][]string{
	RoleClient:      {PanelReservation, PanelMesBillets},
	RoleVendeur:     {PanelValidation, PanelCaisse},
	RoleAdminSite:   {PanelValidation, PanelCaisse, PanelStock, PanelRapports},
	RoleAdminGlobal: {PanelReservation, PanelMesBillets, PanelValidation, PanelCaisse, PanelStock, PanelRapports, PanelAdmin},
}

// PanelsFor returns the ordered permitted panels for a role. Unknown roles
// get nothing.
func PanelsFor(role string) []string {
	panels, ok := panelsByRole[role]
	if !ok {
		return nil
	}
	out := make([]string, len(panels))
	copy(out, panels)
	return out
}

// IsAllowed reports whether a role may open a panel.
func IsAllowed(role, panel string) bool {
	for _, p := range PanelsFor(role) {
		if p == panel {
			return true
		}
	}
	return false
}

// DefaultPanel is the first permitted panel.
func DefaultPanel(role string) string {
	panels := PanelsFor(role)
	if len(panels) == 0 {
		return ""
	}
	return panels[0]
}

// FallbackPanel keeps the active panel when still permitted, otherwise
// falls back to the role's default (covers role changes while a panel is
// open).
func FallbackPanel(role, active string) string {
	if IsAllowed(role, active) {
		return active
	}
	return DefaultPanel(role)
}
