package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	App                 App                 `mapstructure:",squash"`
	Server              Server              `mapstructure:",squash"`
	Database            Database            `mapstructure:",squash"`
	ReconciliationSweep ReconciliationSweep `mapstructure:",squash"`
	BudgetReset         BudgetReset         `mapstructure:",squash"`
	SecretKey           string              `mapstructure:"secret_key"`
}

type App struct {
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

type Server struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type Database struct {
	DSN           string `mapstructure:"-"`
	Driver        string `mapstructure:"database_driver"`
	Password      string `mapstructure:"database_password"`
	URL           string `mapstructure:"database_url"`
	User          string `mapstructure:"database_user"`
	MigrateOnBoot bool   `mapstructure:"database_migrate_on_boot"`
}

type ReconciliationSweep struct {
	CronSchedule        string `mapstructure:"reconciliation_sweep_cron"`
	MaxConcurrentBrands int    `mapstructure:"reconciliation_sweep_max_concurrent_brands"`
	Enabled             bool   `mapstructure:"reconciliation_sweep_enabled"`
}

type BudgetReset struct {
	DailyCronSchedule   string `mapstructure:"budget_reset_daily_cron"`
	MonthlyCronSchedule string `mapstructure:"budget_reset_monthly_cron"`
	Enabled             bool   `mapstructure:"budget_reset_enabled"`
}

func SetDefaults() {
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("LOG_LEVEL", "debug")

	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)

	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "localhost:5432/budget_manager?sslmode=disable")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "root")
	viper.SetDefault("DATABASE_MIGRATE_ON_BOOT", true)

	viper.SetDefault("SECRET_KEY", "your_secret_key")

	// Defaults da varredura de reconciliação
	viper.SetDefault("RECONCILIATION_SWEEP_CRON", "*/15 * * * *")     // A cada 15 minutos
	viper.SetDefault("RECONCILIATION_SWEEP_MAX_CONCURRENT_BRANDS", 4) // 4 marcas em paralelo
	viper.SetDefault("RECONCILIATION_SWEEP_ENABLED", true)            // Habilitar varredura periódica

	// Defaults dos resets de período
	viper.SetDefault("BUDGET_RESET_DAILY_CRON", "0 0 * * *")   // Todos os dias à meia-noite UTC
	viper.SetDefault("BUDGET_RESET_MONTHLY_CRON", "0 0 1 * *") // No primeiro dia de cada mês à meia-noite UTC
	viper.SetDefault("BUDGET_RESET_ENABLED", true)             // Habilitar resets automáticos
}

func NewConfig() (*Config, error) {
	// Primeiro carregar o arquivo .env usando godotenv
	loadEnvFile() // ONLY LOCAL

	config := &Config{}

	// Configurar valores padrão
	SetDefaults()

	// Configurar o Viper
	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv() // Isso permite que o Viper leia variáveis de ambiente

	// Tentar ler o arquivo .env com o Viper (opcional, já que usamos godotenv)
	if err := viper.ReadInConfig(); err != nil {
		logrus.Info("Usando variáveis carregadas pelo godotenv (viper não conseguiu ler .env):", err)
	} else {
		logrus.Info("Arquivo .env lido pelo Viper com sucesso")
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	config.Database.DSN = fmt.Sprintf(
		"%s://%s:%s@%s",
		config.Database.Driver,
		config.Database.User,
		config.Database.Password,
		config.Database.URL,
	)

	return config, nil
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	// Obter diretório atual
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	// Tentar várias localizações possíveis para o arquivo .env
	locations := []string{
		filepath.Join(cwd, ".env"),               // Diretório atual
		filepath.Join(filepath.Dir(cwd), ".env"), // Diretório pai
		filepath.Join(cwd, "../.env"),            // Diretório acima
		filepath.Join(cwd, "../../.env"),         // Dois diretórios acima
	}

	for _, location := range locations {
		logrus.Info("Tentando carregar .env de:", location)
		err := godotenv.Load(location)
		if err == nil {
			logrus.Info("Arquivo .env carregado com sucesso de:", location)
			return
		}
	}

	logrus.Warn("Não foi possível carregar o arquivo .env de nenhuma localização conhecida")
}
