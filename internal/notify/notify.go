package notify

import (
	"context"
	"time"

	"github.com/itfy/evoting/internal/providers/email"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const sendTimeout = 10 * time.Second

// Notifier delivers voter-facing email in the background. Delivery is
// best effort: failures are logged and never surface to the caller.
type Notifier struct {
	email email.Provider
	log   *zap.Logger
}

type Params struct {
	fx.In

	Email email.Provider
	Log   *zap.Logger
}

func New(p Params) *Notifier {
	return &Notifier{
		email: p.Email,
		log:   p.Log.Named("notify"),
	}
}

func (n *Notifier) VoteConfirmation(to, candidateName, eventName string) {
	n.send("vote_confirmation", to, map[string]interface{}{
		"candidate_name": candidateName,
		"event_name":     eventName,
	})
}

func (n *Notifier) PaymentReceipt(to, reference, eventName string, amount, discount int64, votes int) {
	n.send("payment_receipt", to, map[string]interface{}{
		"reference":  reference,
		"event_name": eventName,
		"amount":     amount,
		"discount":   discount,
		"votes":      votes,
	})
}

func (n *Notifier) send(templateName, to string, data map[string]interface{}) {
	if to == "" {
		return
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				n.log.Error("notification panic", zap.Any("panic", r))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()

		if err := n.email.SendTemplate(ctx, []string{to}, templateName, data); err != nil {
			n.log.Warn("notification delivery failed",
				zap.String("template", templateName),
				zap.Error(err),
			)
		}
	}()
}

var Module = fx.Module("notify",
	fx.Provide(New),
)
