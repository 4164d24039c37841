package main

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/budget-manager-api/infrastructure/database/postgres"
	"github.com/vfg2006/budget-manager-api/infrastructure/migration"
	"github.com/vfg2006/budget-manager-api/infrastructure/repository"
	"github.com/vfg2006/budget-manager-api/internal/api"
	"github.com/vfg2006/budget-manager-api/internal/config"
	"github.com/vfg2006/budget-manager-api/internal/scheduler"
	"github.com/vfg2006/budget-manager-api/internal/usecases/authenticating"
	"github.com/vfg2006/budget-manager-api/internal/usecases/budgeting"
	"github.com/vfg2006/budget-manager-api/internal/usecases/dayparting"
	"github.com/vfg2006/budget-manager-api/internal/usecases/reconciling"
	"github.com/vfg2006/budget-manager-api/internal/usecases/spending"
	"github.com/vfg2006/budget-manager-api/pkg/metrics"
)

func main() {
	configureLogger()

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	logLevel, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		logrus.Warnf("Nível de log inválido: %s, usando 'info'", cfg.App.LogLevel)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)
	logrus.Infof("Nível de log configurado para: %s", logLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Database.MigrateOnBoot {
		if err := migration.Run(cfg.Database.DSN); err != nil {
			logrus.WithError(err).Fatal("Erro ao aplicar migrações do banco de dados")
		}
	}

	pgConn := pgconn(ctx, cfg.Database)
	defer pgConn.Close()

	brandRepo := repository.NewBrandRepository(pgConn)
	campaignRepo := repository.NewCampaignRepository(pgConn)
	spendRepo := repository.NewSpendRepository(pgConn)
	scheduleRepo := repository.NewDaypartingScheduleRepository(pgConn)
	userRepo := repository.NewUserRepository(pgConn)

	m := metrics.New()

	authenticator := authenticating.NewService(userRepo, cfg)
	budgetService := budgeting.NewService(pgConn, brandRepo, campaignRepo)
	daypartingService := dayparting.NewService(pgConn, campaignRepo, scheduleRepo)
	reconciler := reconciling.NewService(pgConn, brandRepo, campaignRepo, scheduleRepo, m)
	ledger := spending.NewService(pgConn, brandRepo, campaignRepo, spendRepo, scheduleRepo, m)

	sweepService := scheduler.NewReconciliationSweepService(reconciler, cfg)
	resetService := scheduler.NewBudgetResetService(reconciler, cfg)

	if err := sweepService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador da varredura de reconciliação")
	} else {
		logrus.Info("Agendador da varredura de reconciliação iniciado com sucesso")
	}

	if err := resetService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador de resets de orçamento")
	} else {
		logrus.Info("Agendador de resets de orçamento iniciado com sucesso")
	}

	server, err := api.New(
		cfg,
		pgConn,
		ledger,
		budgetService,
		daypartingService,
		reconciler,
		authenticator,
		sweepService,
		resetService,
		m,
	)
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}

// configureLogger configura o formato e comportamento dos logs
func configureLogger() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
}

// pgconn cria uma conexão com o banco de dados
func pgconn(ctx context.Context, dbConfig config.Database) *postgres.Connection {
	conn, err := postgres.NewConnection(ctx, dbConfig)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao PostgreSQL")
	}

	err = conn.Ping(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao testar conexão com PostgreSQL")
	}

	logrus.Info("Conexão com PostgreSQL estabelecida com sucesso")
	return conn
}
