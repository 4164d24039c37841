package handler

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/budget-manager-api/infrastructure/database/postgres"
	"github.com/vfg2006/budget-manager-api/pkg/apiErrors"
)

// HealthcheckHandler responde à sonda de liveness e verifica a conexão com o
// banco: sem ele o motor não consegue registrar gastos nem reconciliar.
func HealthcheckHandler(conn postgres.Conn) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := conn.Ping(r.Context()); err != nil {
			logrus.WithError(err).Error("Healthcheck: banco de dados indisponível")
			apiErrors.WriteError(w, apiErrors.ErrStoreUnavailable, "Banco de dados indisponível", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		response := map[string]string{
			"status":    "ok",
			"database":  "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			logrus.WithError(err).Warn("Erro ao responder healthcheck")
		}
	})
}
