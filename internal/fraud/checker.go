package fraud

import (
	"context"
	"strings"

	"github.com/itfy/evoting/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	FlagNone            = ""
	FlagIPVelocity      = "ip_velocity"
	FlagDisposableEmail = "disposable_email"
)

// disposableDomains is a static blocklist of throwaway mail providers.
var disposableDomains = map[string]struct{}{
	"mailinator.com":    {},
	"guerrillamail.com": {},
	"10minutemail.com":  {},
	"tempmail.com":      {},
	"temp-mail.org":     {},
	"yopmail.com":       {},
	"trashmail.com":     {},
	"sharklasers.com":   {},
	"getnada.com":       {},
	"dispostable.com":   {},
}

// Assessment is advisory unless Reject is set. Flagged payments still
// settle; the flag travels with the payment record for later review.
type Assessment struct {
	Flag   string
	Reject bool
	Reason string
}

type Params struct {
	fx.In

	Config config.Config
	Log    *zap.Logger
	Redis  *redis.Client `optional:"true"`
}

type Checker struct {
	cfg config.FraudConfig
	log *zap.Logger
	rdb *redis.Client
}

func New(p Params) *Checker {
	return &Checker{
		cfg: p.Config.Fraud,
		log: p.Log.Named("fraud"),
		rdb: p.Redis,
	}
}

// CheckPayment runs the pre-gateway heuristics. The redis counter is
// not authoritative; when redis is down the check degrades to the
// email heuristic alone.
func (c *Checker) CheckPayment(ctx context.Context, ip, email string) Assessment {
	if assessment := c.checkEmail(email); assessment.Flag != FlagNone {
		return assessment
	}
	return c.checkIPVelocity(ctx, ip)
}

func (c *Checker) checkEmail(email string) Assessment {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return Assessment{}
	}
	domain := strings.ToLower(strings.TrimSpace(email[at+1:]))
	if _, ok := disposableDomains[domain]; ok {
		return Assessment{Flag: FlagDisposableEmail, Reason: "disposable email domain"}
	}
	return Assessment{}
}

func (c *Checker) checkIPVelocity(ctx context.Context, ip string) Assessment {
	if c.rdb == nil || ip == "" {
		return Assessment{}
	}

	key := "fraud:payment_ip:" + ip
	count, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		c.log.Warn("ip velocity counter unavailable", zap.Error(err))
		return Assessment{}
	}
	if count == 1 {
		if err := c.rdb.Expire(ctx, key, c.cfg.IPWindow).Err(); err != nil {
			c.log.Warn("ip velocity expiry failed", zap.Error(err))
		}
	}

	if c.cfg.RejectOverIP > 0 && count > int64(c.cfg.RejectOverIP) {
		return Assessment{
			Flag:   FlagIPVelocity,
			Reject: true,
			Reason: "too many payment attempts from this address",
		}
	}
	if c.cfg.IPMaxPayments > 0 && count > int64(c.cfg.IPMaxPayments) {
		return Assessment{Flag: FlagIPVelocity, Reason: "elevated payment rate from this address"}
	}
	return Assessment{}
}

var Module = fx.Module("fraud",
	fx.Provide(New),
)
