package notify

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Message is one rendered notification.
type Message struct {
	Title string `yaml:"title"`
	Body  string `yaml:"body"`
}

// Template keys, one per customer-facing lifecycle event.
const (
	TplReservation  = "reservation"
	TplPaiementRecu = "paiement_recu"
	TplValidee      = "validee"
	TplRefusee      = "refusee"
	TplBouclee      = "bouclee"
	TplEncaissement = "encaissement"
)

// Templates maps event keys to message templates. Placeholders use the
// {nom} form and are substituted from the event's extra fields.
type Templates map[string]Message

// DefaultTemplates are the built-in French messages.
func DefaultTemplates() Templates {
	return Templates{
		TplReservation: {
			Title: "Réservation enregistrée",
			Body:  "Bonjour {nom}, votre réservation billet n°{numero_billet} ({prix_total}€) est enregistrée. Elle sera confirmée à réception de l'acompte.",
		},
		TplPaiementRecu: {
			Title: "Acompte reçu",
			Body:  "Bonjour {nom}, nous avons bien reçu votre acompte pour le billet n°{numero_billet}. Votre réservation est en cours de validation.",
		},
		TplValidee: {
			Title: "Réservation confirmée",
			Body:  "Bonjour {nom}, votre réservation billet n°{numero_billet} est confirmée. Présentez ce numéro au retrait.",
		},
		TplRefusee: {
			Title: "Réservation refusée",
			Body:  "Bonjour {nom}, votre réservation billet n°{numero_billet} n'a pas pu être acceptée. Contactez-nous pour le remboursement.",
		},
		TplBouclee: {
			Title: "Retrait enregistré",
			Body:  "Billet n°{numero_billet} bouclé. Merci {nom} !",
		},
		TplEncaissement: {
			Title: "Paiement encaissé",
			Body:  "Paiement de {montant}€ ({methode}) enregistré sur la commande {commande_id}.",
		},
	}
}

// LoadTemplates reads YAML overrides from path and merges them over the
// defaults. A missing file just means defaults.
func LoadTemplates(path string) (Templates, error) {
	tpls := DefaultTemplates()
	if strings.TrimSpace(path) == "" {
		return tpls, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return tpls, nil
		}
		return nil, fmt.Errorf("failed to read templates file: %w", err)
	}

	var overrides Templates
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse templates file: %w", err)
	}
	for k, v := range overrides {
		tpls[k] = v
	}
	return tpls, nil
}

// Render substitutes {key} placeholders from vars. Unknown placeholders are
// left as-is so a bad template stays visible instead of silently vanishing.
func Render(tpl string, vars map[string]string) string {
	if len(vars) == 0 {
		return tpl
	}
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tpl)
}

// RenderMessage renders one template by key; ok is false for unknown keys.
func (t Templates) RenderMessage(key string, vars map[string]string) (Message, bool) {
	tpl, ok := t[key]
	if !ok {
		return Message{}, false
	}
	return Message{
		Title: Render(tpl.Title, vars),
		Body:  Render(tpl.Body, vars),
	}, true
}
