package notify

import (
	"context"

	"github.com/reservaid/reservaid/internal/commande"
	"github.com/reservaid/reservaid/internal/common/logger"
	"github.com/reservaid/reservaid/internal/feed"
)

// Notifier turns change-feed events into customer notifications: push for
// everything, email on payment received, and an SMS channel that only logs
// (no SMS provider is wired up yet).
type Notifier struct {
	tpls  Templates
	push  *PushSender
	email *EmailSender
	log   logger.Logger
}

func NewNotifier(tpls Templates, push *PushSender, email *EmailSender, log logger.Logger) *Notifier {
	return &Notifier{tpls: tpls, push: push, email: email, log: log}
}

// templateFor maps an event to a template key, or "" when the event is not
// customer-facing (slot edits, audit rows, intermediate statuses).
func templateFor(evt feed.ChangeEvent) string {
	switch evt.Table {
	case feed.TableCommandes:
		if evt.Op == feed.OpInsert {
			return TplReservation
		}
		switch commande.Statut(evt.Extra["statut"]) {
		case commande.StatutPaiementRecu:
			return TplPaiementRecu
		case commande.StatutValidee:
			return TplValidee
		case commande.StatutRefusee:
			return TplRefusee
		case commande.StatutBouclee:
			return TplBouclee
		}
	case feed.TablePaiements:
		if evt.Op == feed.OpInsert {
			return TplEncaissement
		}
	}
	return ""
}

// Handle processes one event. Delivery failures are logged per channel and
// never stop the consumer loop.
func (n *Notifier) Handle(ctx context.Context, evt feed.ChangeEvent) {
	if n == nil {
		return
	}
	key := templateFor(evt)
	if key == "" {
		return
	}

	vars := evt.Extra
	if vars == nil {
		vars = map[string]string{}
	}
	vars["commande_id"] = evt.RowID

	msg, ok := n.tpls.RenderMessage(key, vars)
	if !ok {
		return
	}

	if err := n.push.Send(ctx, msg); err != nil && n.log != nil {
		n.log.Warnf("push delivery failed event=%s: %v", evt.EventID, err)
	}

	if key == TplPaiementRecu {
		if err := n.email.Send(vars["email"], msg); err != nil && n.log != nil {
			n.log.Warnf("email delivery failed event=%s: %v", evt.EventID, err)
		}
	}

	// SMS channel: simulated, the message is only logged.
	if tel := vars["telephone"]; tel != "" && n.log != nil {
		n.log.Infof("[sms-simulation] to=%s msg=%q", tel, msg.Body)
	}
}
