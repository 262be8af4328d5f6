package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/iota-uz/orgchart/pkg/application"
	"github.com/iota-uz/orgchart/pkg/composables"
	"github.com/iota-uz/orgchart/pkg/httpapi"
)

type HealthController struct {
	app application.Application
}

func NewHealthController(app application.Application) application.Controller {
	return &HealthController{app: app}
}

func (c *HealthController) Key() string {
	return "/health"
}

func (c *HealthController) Register(r *mux.Router) {
	r.HandleFunc("/health", c.Health).Methods(http.MethodGet)
}

func (c *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	dbStatus := "ok"
	status := http.StatusOK
	if err := c.app.Pool().Ping(ctx); err != nil {
		composables.UseLogger(ctx).WithError(err).Error("database ping failed")
		dbStatus = err.Error()
		status = http.StatusServiceUnavailable
	}
	_ = httpapi.WriteJSON(w, status, map[string]string{
		"status":   http.StatusText(status),
		"database": dbStatus,
	})
}
