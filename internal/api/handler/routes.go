package handler

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vfg2006/budget-manager-api/infrastructure/database/postgres"
	"github.com/vfg2006/budget-manager-api/internal/api/handler/router"
	"github.com/vfg2006/budget-manager-api/internal/usecases/authenticating"
	"github.com/vfg2006/budget-manager-api/internal/usecases/budgeting"
	"github.com/vfg2006/budget-manager-api/internal/usecases/dayparting"
	"github.com/vfg2006/budget-manager-api/internal/usecases/reconciling"
	"github.com/vfg2006/budget-manager-api/internal/usecases/spending"
	"github.com/vfg2006/budget-manager-api/pkg/middleware"
)

func Healthcheck(conn postgres.Conn) []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(conn),
		},
	}
}

func Metrics() []router.Route {
	return []router.Route{
		{
			Path:    "/metrics",
			Method:  http.MethodGet,
			Handler: promhttp.Handler(),
		},
	}
}

func Authentication(service authenticating.Authenticator) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/login",
			Method:  http.MethodPost,
			Handler: Login(service),
		},
		{
			Path:        "/v1/me",
			Method:      http.MethodGet,
			Handler:     GetMe(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
	}
}

func Spends(service spending.Ledger) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/spends",
			Method:      http.MethodPost,
			Handler:     RecordSpend(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
	}
}

func Budgets(service budgeting.BudgetService) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/budgets/status",
			Method:      http.MethodGet,
			Handler:     GetBudgetStatus(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
	}
}

func Dayparting(service dayparting.DaypartingService) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/dayparting/status",
			Method:      http.MethodGet,
			Handler:     GetDaypartingStatus(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
		{
			Path:        "/v1/dayparting/validate",
			Method:      http.MethodPost,
			Handler:     ValidateDaypartingSchedule(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
	}
}

func Campaigns(service reconciling.Reconciler) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/campaigns/:id/dayparting/refresh",
			Method:      http.MethodPost,
			Handler:     RefreshCampaignDayparting(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
	}
}

func Brands(service reconciling.Reconciler) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/brands/:id/reset",
			Method:      http.MethodPost,
			Handler:     ForceBrandReset(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOnly()},
		},
	}
}

func CronJobs(services CronJobServices) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/cron/:type/run",
			Method:      http.MethodPost,
			Handler:     RunCronJob(services),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOnly()},
		},
		{
			Path:        "/v1/cron/status",
			Method:      http.MethodGet,
			Handler:     GetCronStatus(services),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOrSupervisor()},
		},
	}
}
