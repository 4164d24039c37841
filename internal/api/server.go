package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/justinas/alice"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/budget-manager-api/infrastructure/database/postgres"
	"github.com/vfg2006/budget-manager-api/internal/api/handler"
	"github.com/vfg2006/budget-manager-api/internal/api/handler/router"
	"github.com/vfg2006/budget-manager-api/internal/config"
	"github.com/vfg2006/budget-manager-api/internal/scheduler"
	"github.com/vfg2006/budget-manager-api/internal/usecases/authenticating"
	"github.com/vfg2006/budget-manager-api/internal/usecases/budgeting"
	"github.com/vfg2006/budget-manager-api/internal/usecases/dayparting"
	"github.com/vfg2006/budget-manager-api/internal/usecases/reconciling"
	"github.com/vfg2006/budget-manager-api/internal/usecases/spending"
	"github.com/vfg2006/budget-manager-api/pkg/metrics"
	"github.com/vfg2006/budget-manager-api/pkg/middleware"
)

type Server struct {
	httpServer *http.Server
}

func New(
	config *config.Config,
	conn postgres.Conn,
	ledger spending.Ledger,
	budgetService budgeting.BudgetService,
	daypartingService dayparting.DaypartingService,
	reconciler reconciling.Reconciler,
	authenticator authenticating.Authenticator,
	sweepService *scheduler.ReconciliationSweepService,
	resetService *scheduler.BudgetResetService,
	m *metrics.Metrics,
) (*Server, error) {
	cronServices := handler.CronJobServices{
		ReconciliationSweepService: sweepService,
		BudgetResetService:         resetService,
	}

	rt := router.New(
		router.WithRoutes(handler.Healthcheck(conn)...),
		router.WithRoutes(handler.Metrics()...),
		router.WithRoutes(handler.Authentication(authenticator)...),
		router.WithRoutes(handler.Spends(ledger)...),
		router.WithRoutes(handler.Budgets(budgetService)...),
		router.WithRoutes(handler.Dayparting(daypartingService)...),
		router.WithRoutes(handler.Campaigns(reconciler)...),
		router.WithRoutes(handler.Brands(reconciler)...),
		router.WithRoutes(handler.CronJobs(cronServices)...),
	)

	middlewares := []alice.Constructor{
		middleware.LogPanicMiddleware(),
		middleware.LoggingMiddleware(),
		middleware.MetricsMiddleware(m),
		middleware.Cors(),
		middleware.AuthMiddleware(authenticator),
	}

	chained := alice.New(middlewares...).Then(rt)

	srv := &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port),
			Handler:           chained,
			ReadHeaderTimeout: 2 * time.Second,
		},
	}

	return srv, nil
}

func (s Server) Run(ctx context.Context) error {
	go func() {
		logrus.WithFields(logrus.Fields{
			"address": s.httpServer.Addr,
		}).Info("Servidor iniciando")

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Error("Erro durante a execução do servidor")
		}
	}()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	select {
	case <-done:
		logrus.Info("Sinal de interrupção recebido")
	case <-ctx.Done():
		logrus.Info("Contexto de aplicação cancelado")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	logrus.WithFields(logrus.Fields{
		"timeout": "15s",
	}).Info("Iniciando desligamento gracioso do servidor")

	if err := s.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Erro durante o desligamento do servidor")
		return err
	}

	logrus.Info("Servidor desligado com sucesso")
	return nil
}

func (s Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if err != nil {
		return err
	}

	logrus.Info("Servidor HTTP desligado com sucesso")
	return nil
}
