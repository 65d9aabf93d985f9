package commande

import (
	"fmt"
	"time"
)

// AllowTransition is the directed graph of permitted status transitions.
// Bouclage is reachable from en_attente and paiement_recu as well as
// validee: the till tags fully-paid orders the seller never explicitly
// validated.
var AllowTransition = map[Statut][]Statut{
	StatutEnAttente:    {StatutPaiementRecu, StatutValidee, StatutRefusee, StatutAnnulee, StatutBouclee},
	StatutPaiementRecu: {StatutValidee, StatutRefusee, StatutAnnulee, StatutBouclee},
	StatutValidee:      {StatutBouclee, StatutAnnulee},
	StatutBouclee:      {StatutTerminee},
	// Terminal: no transitions out of refusee / annulee / terminee.
	StatutRefusee:  {},
	StatutAnnulee:  {},
	StatutTerminee: {},
}

// CanTransition reports whether from -> to is a permitted transition.
func CanTransition(from, to Statut) bool {
	if from == to {
		return true
	}
	allowed, ok := AllowTransition[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// ApplyTransition applies a status change and maintains the associated
// timestamp fields. Callers check the bouclage preconditions separately
// (see CheckBouclage); this only enforces graph reachability.
func ApplyTransition(o *Commande, to Statut, now time.Time) error {
	if o == nil {
		return fmt.Errorf("commande is nil")
	}
	from := o.Statut
	if !CanTransition(from, to) {
		return fmt.Errorf("invalid commande status transition: %s -> %s", from, to)
	}

	o.Statut = to

	switch to {
	case StatutValidee:
		if o.DateValidation == nil {
			t := now
			o.DateValidation = &t
		}
	case StatutAnnulee, StatutRefusee:
		if o.DateAnnulation == nil {
			t := now
			o.DateAnnulation = &t
		}
	case StatutBouclee:
		if o.DateBouclage == nil {
			t := now
			o.DateBouclage = &t
		}
	}
	return nil
}
