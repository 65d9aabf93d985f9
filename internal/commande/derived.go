package commande

import "errors"

// Epsilon tolerates floating rounding when comparing paid totals against
// prices (0.05 currency units).
const Epsilon = 0.05

// Business-rule blocks are expected outcomes, not failures; each gets its
// own sentinel so the transport layer can render a distinct message.
var (
	ErrBilletInconnu = errors.New("billet inconnu")
	ErrBilletAnnule  = errors.New("billet annule")
	ErrDejaBouclee   = errors.New("commande deja bouclee")
	ErrSansCreneau   = errors.New("aucun creneau assigne")
	ErrSoldeRestant  = errors.New("paiement incomplet")
)

// BalanceDue is the amount still owed: max(0, total - paid).
func BalanceDue(prixTotal, montantPaye float64) float64 {
	due := prixTotal - montantPaye
	if due < 0 {
		return 0
	}
	return due
}

// EstSoldee reports whether the order is settled: balance within Epsilon
// and a positive price (a zero-priced order is never "settled").
func EstSoldee(prixTotal, montantPaye float64) bool {
	return prixTotal > 0 && prixTotal-montantPaye <= Epsilon
}

// StatutAffiche values derived for list views.
const (
	AfficheSoldee = "solde"
	AfficheAPayer = "a_payer"
)

// StatutAffiche computes the view-level payment state from the stored
// fields. Never persisted: the stored statut, the amounts and the tag
// timestamp stay the only sources of truth.
func StatutAffiche(o *Commande) string {
	if o == nil {
		return ""
	}
	if EstSoldee(o.PrixTotal, o.MontantPaye) {
		return AfficheSoldee
	}
	return AfficheAPayer
}

// CheckBouclage verifies the tagging preconditions, returning the first
// violated one:
// - a cancelled or rejected ticket cannot be tagged
// - an already tagged order cannot be tagged twice
// - a slot must be assigned
// - the balance must be settled
func CheckBouclage(o *Commande) error {
	if o == nil {
		return ErrBilletInconnu
	}
	if o.Statut == StatutAnnulee || o.Statut == StatutRefusee {
		return ErrBilletAnnule
	}
	if o.DateBouclage != nil || o.Statut == StatutBouclee {
		return ErrDejaBouclee
	}
	if o.CreneauID == nil || *o.CreneauID == "" {
		return ErrSansCreneau
	}
	if BalanceDue(o.PrixTotal, o.MontantPaye) > Epsilon {
		return ErrSoldeRestant
	}
	return nil
}
