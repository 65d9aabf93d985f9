package notify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reservaid/reservaid/internal/feed"
)

func TestRenderSubstitutesPlaceholders(t *testing.T) {
	out := Render("Bonjour {nom}, billet n°{numero_billet}", map[string]string{
		"nom":           "Karim",
		"numero_billet": "42",
	})
	assert.Equal(t, "Bonjour Karim, billet n°42", out)
}

func TestRenderKeepsUnknownPlaceholders(t *testing.T) {
	out := Render("Solde: {solde}", map[string]string{"nom": "Karim"})
	assert.Equal(t, "Solde: {solde}", out)
}

func TestRenderMessage(t *testing.T) {
	tpls := DefaultTemplates()

	msg, ok := tpls.RenderMessage(TplValidee, map[string]string{
		"nom":           "Karim",
		"numero_billet": "42",
	})
	require.True(t, ok)
	assert.Equal(t, "Réservation confirmée", msg.Title)
	assert.Contains(t, msg.Body, "billet n°42")

	_, ok = tpls.RenderMessage("inconnu", nil)
	assert.False(t, ok)
}

func TestLoadTemplatesMergesOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"validee:\n  title: Confirmé\n  body: \"OK {numero_billet}\"\n"), 0644))

	tpls, err := LoadTemplates(path)
	require.NoError(t, err)

	// Overridden key replaced, others untouched.
	assert.Equal(t, "Confirmé", tpls[TplValidee].Title)
	assert.Equal(t, DefaultTemplates()[TplRefusee], tpls[TplRefusee])
}

func TestLoadTemplatesMissingFile(t *testing.T) {
	tpls, err := LoadTemplates("/nonexistent/templates.yaml")
	require.NoError(t, err)
	assert.Equal(t, DefaultTemplates(), tpls)
}

func TestTemplateFor(t *testing.T) {
	cases := []struct {
		evt  feed.ChangeEvent
		want string
	}{
		{feed.ChangeEvent{Table: feed.TableCommandes, Op: feed.OpInsert}, TplReservation},
		{feed.ChangeEvent{Table: feed.TableCommandes, Op: feed.OpUpdate, Extra: map[string]string{"statut": "validee"}}, TplValidee},
		{feed.ChangeEvent{Table: feed.TableCommandes, Op: feed.OpUpdate, Extra: map[string]string{"statut": "bouclee"}}, TplBouclee},
		// Intermediate statuses stay silent.
		{feed.ChangeEvent{Table: feed.TableCommandes, Op: feed.OpUpdate, Extra: map[string]string{"statut": "terminee"}}, ""},
		{feed.ChangeEvent{Table: feed.TablePaiements, Op: feed.OpInsert}, TplEncaissement},
		{feed.ChangeEvent{Table: feed.TableCreneaux, Op: feed.OpUpdate}, ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, templateFor(tc.evt), "table=%s op=%s", tc.evt.Table, tc.evt.Op)
	}
}
