package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics agrupa os coletores Prometheus do serviço, expostos em /metrics.
type Metrics struct {
	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Negócio
	SpendEvents              *prometheus.CounterVec
	SpendAmount              prometheus.Histogram
	CampaignStateTransitions *prometheus.CounterVec
	ReconciliationRuns       *prometheus.CounterVec
	ReconciliationDuration   *prometheus.HistogramVec
	BrandsInViolation        *prometheus.GaugeVec
}

// New registra todos os coletores no registro default do Prometheus.
func New() *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budget_manager_http_requests_total",
				Help: "Total de requisições HTTP recebidas",
			},
			[]string{"method", "path", "status_code"},
		),

		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "budget_manager_http_request_duration_seconds",
				Help:    "Duração das requisições HTTP em segundos",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		SpendEvents: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budget_manager_spend_events_total",
				Help: "Total de eventos de gasto recebidos, por resultado",
			},
			[]string{"status"},
		),

		SpendAmount: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "budget_manager_spend_amount",
				Help:    "Distribuição dos valores de gasto registrados",
				Buckets: prometheus.ExponentialBuckets(0.01, 10, 7),
			},
		),

		CampaignStateTransitions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budget_manager_campaign_state_transitions_total",
				Help: "Transições de estado de campanhas aplicadas pelo reconciliador",
			},
			[]string{"reason", "direction"},
		),

		ReconciliationRuns: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budget_manager_reconciliation_runs_total",
				Help: "Execuções dos lotes de reconciliação, por job e resultado",
			},
			[]string{"job", "status"},
		),

		ReconciliationDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "budget_manager_reconciliation_duration_seconds",
				Help:    "Duração dos lotes de reconciliação em segundos",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"job"},
		),

		BrandsInViolation: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "budget_manager_brands_in_violation",
				Help: "Quantidade de marcas atualmente em violação de orçamento",
			},
			[]string{"period"},
		),
	}
}
