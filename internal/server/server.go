package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/commission/internal/account"
	accountdomain "github.com/smallbiznis/commission/internal/account/domain"
	"github.com/smallbiznis/commission/internal/charge"
	chargedomain "github.com/smallbiznis/commission/internal/charge/domain"
	"github.com/smallbiznis/commission/internal/commit"
	commitdomain "github.com/smallbiznis/commission/internal/commit/domain"
	"github.com/smallbiznis/commission/internal/config"
	"github.com/smallbiznis/commission/internal/deal"
	"github.com/smallbiznis/commission/internal/fee"
	feedomain "github.com/smallbiznis/commission/internal/fee/domain"
	"github.com/smallbiznis/commission/internal/journal"
	journaldomain "github.com/smallbiznis/commission/internal/journal/domain"
	"github.com/smallbiznis/commission/internal/ledger"
	ledgerdomain "github.com/smallbiznis/commission/internal/ledger/domain"
	"github.com/smallbiznis/commission/internal/lock"
	"github.com/smallbiznis/commission/internal/observability"
	obsmiddleware "github.com/smallbiznis/commission/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/commission/internal/observability/metrics"
	obstracing "github.com/smallbiznis/commission/internal/observability/tracing"
	"github.com/smallbiznis/commission/internal/period"
	perioddomain "github.com/smallbiznis/commission/internal/period/domain"
	"github.com/smallbiznis/commission/internal/producer"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	producer.Module,
	deal.Module,
	account.Module,
	journal.Module,
	fee.Module,
	period.Module,
	charge.Module,
	ledger.Module,
	lock.Module,
	commit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

// maxUploadBytes bounds multipart statement uploads.
const maxUploadBytes = 32 << 20

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = maxUploadBytes
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
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
	engine     *gin.Engine
	cfg        config.Config
	journalSvc journaldomain.Service
	commitSvc  commitdomain.Service
	feeSvc     feedomain.Service
	periodSvc  perioddomain.Service
	accountSvc accountdomain.Service
	chargeSvc  chargedomain.Service
	ledgerSvc  ledgerdomain.Service
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	JournalSvc journaldomain.Service
	CommitSvc  commitdomain.Service
	FeeSvc     feedomain.Service
	PeriodSvc  perioddomain.Service
	AccountSvc accountdomain.Service
	ChargeSvc  chargedomain.Service
	LedgerSvc  ledgerdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:     p.Gin,
		cfg:        p.Cfg,
		journalSvc: p.JournalSvc,
		commitSvc:  p.CommitSvc,
		feeSvc:     p.FeeSvc,
		periodSvc:  p.PeriodSvc,
		accountSvc: p.AccountSvc,
		chargeSvc:  p.ChargeSvc,
		ledgerSvc:  p.LedgerSvc,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")
	api.Use(OrgContext())

	api.POST("/journals", s.IngestJournal)
	api.GET("/journals/:id", s.GetJournal)
	api.GET("/journals/:id/line-items", s.ListJournalLineItems)
	api.GET("/journals/:id/fees", s.ListJournalFees)
	api.GET("/journals/:id/ledger", s.ListJournalLedger)
	api.POST("/journals/:id/commit", s.CommitJournal)

	api.GET("/periods/current", s.GetCurrentPeriod)
	api.POST("/periods/rollover", s.RolloverPeriod)
	api.GET("/periods/:id/fees", s.ListPeriodFees)

	api.GET("/accounts/unallocated", s.ListUnallocatedAccounts)
	api.PUT("/accounts/:id/deal", s.AssignAccountDeal)

	api.GET("/charges/open", s.ListOpenCharges)
}
