package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/itfy/evoting/internal/audit"
	auditdomain "github.com/itfy/evoting/internal/audit/domain"
	"github.com/itfy/evoting/internal/bundle"
	bundledomain "github.com/itfy/evoting/internal/bundle/domain"
	"github.com/itfy/evoting/internal/candidate"
	candidatedomain "github.com/itfy/evoting/internal/candidate/domain"
	"github.com/itfy/evoting/internal/category"
	categorydomain "github.com/itfy/evoting/internal/category/domain"
	"github.com/itfy/evoting/internal/config"
	"github.com/itfy/evoting/internal/coupon"
	coupondomain "github.com/itfy/evoting/internal/coupon/domain"
	"github.com/itfy/evoting/internal/event"
	eventdomain "github.com/itfy/evoting/internal/event/domain"
	"github.com/itfy/evoting/internal/fraud"
	"github.com/itfy/evoting/internal/notify"
	"github.com/itfy/evoting/internal/observability"
	obsmetrics "github.com/itfy/evoting/internal/observability/metrics"
	obstracing "github.com/itfy/evoting/internal/observability/tracing"
	"github.com/itfy/evoting/internal/payment"
	paymentdomain "github.com/itfy/evoting/internal/payment/domain"
	"github.com/itfy/evoting/internal/payment/gateway/paystack"
	"github.com/itfy/evoting/internal/providers/email"
	"github.com/itfy/evoting/internal/vote"
	votedomain "github.com/itfy/evoting/internal/vote/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	audit.Module,
	email.Module,
	notify.Module,
	fraud.Module,
	event.Module,
	category.Module,
	candidate.Module,
	bundle.Module,
	coupon.Module,
	vote.Module,
	paystack.Module,
	payment.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(metrics *obsmetrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obstracing.GinMiddleware())
	r.Use(metrics.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", metrics.Handler())

	return r
}

func registerGin(_ observability.Config, metrics *obsmetrics.Metrics) *gin.Engine {
	return NewEngine(metrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	genID        *snowflake.Node
	eventSvc     eventdomain.Service
	categorySvc  categorydomain.Service
	candidateSvc candidatedomain.Service
	bundleSvc    bundledomain.Service
	couponSvc    coupondomain.Service
	voteSvc      votedomain.Service
	paymentSvc   paymentdomain.Service
	webhookSvc   paymentdomain.WebhookService
	auditSvc     auditdomain.Recorder
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	GenID        *snowflake.Node
	EventSvc     eventdomain.Service
	CategorySvc  categorydomain.Service
	CandidateSvc candidatedomain.Service
	BundleSvc    bundledomain.Service
	CouponSvc    coupondomain.Service
	VoteSvc      votedomain.Service
	PaymentSvc   paymentdomain.Service
	WebhookSvc   paymentdomain.WebhookService
	AuditSvc     auditdomain.Recorder
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		genID:        p.GenID,
		eventSvc:     p.EventSvc,
		categorySvc:  p.CategorySvc,
		candidateSvc: p.CandidateSvc,
		bundleSvc:    p.BundleSvc,
		couponSvc:    p.CouponSvc,
		voteSvc:      p.VoteSvc,
		paymentSvc:   p.PaymentSvc,
		webhookSvc:   p.WebhookSvc,
		auditSvc:     p.AuditSvc,
	}

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	v1 := s.engine.Group("/v1")

	events := v1.Group("/events")
	events.POST("", s.CreateEvent)
	events.GET("", s.ListEvents)
	events.GET("/:id", s.GetEvent)
	events.PATCH("/:id", s.UpdateEvent)
	events.POST("/:id/transition", s.TransitionEvent)
	events.GET("/:id/results", s.EventResults)
	events.POST("/:id/categories", s.CreateCategory)
	events.GET("/:id/categories", s.ListCategories)
	events.GET("/:id/bundles", s.ListBundleDefinitions)
	events.GET("/:id/payments", s.ListEventPayments)

	candidates := v1.Group("/candidates")
	candidates.POST("", s.RegisterCandidate)
	candidates.GET("", s.ListCandidates)
	candidates.GET("/:id", s.GetCandidate)
	candidates.POST("/:id/approve", s.ApproveCandidate)
	candidates.POST("/:id/reject", s.RejectCandidate)
	candidates.GET("/code/:code", s.GetCandidateByCode)

	bundles := v1.Group("/bundles")
	bundles.POST("", s.CreateBundleDefinition)
	bundles.GET("/:id", s.GetBundleDefinition)
	bundles.POST("/:id/deactivate", s.DeactivateBundleDefinition)
	bundles.GET("/code/:code", s.GetBundleByCode)

	coupons := v1.Group("/coupons")
	coupons.POST("", s.CreateCoupon)
	coupons.GET("/:code", s.GetCoupon)

	v1.POST("/votes", s.CastVote)

	payments := v1.Group("/payments")
	payments.POST("/initialize", s.InitializePayment)
	payments.GET("/verify/:reference", s.VerifyPayment)
	payments.GET("/:reference", s.GetPayment)
	payments.POST("/:reference/refund", s.RefundPayment)

	s.engine.POST("/webhooks/paystack", s.HandlePaystackWebhook)
}
