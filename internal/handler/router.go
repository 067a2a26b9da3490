package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/zhouzirui/fruitstand/backend/internal/config"
	"github.com/zhouzirui/fruitstand/backend/internal/handler/fruit"
	middlewarePkg "github.com/zhouzirui/fruitstand/backend/internal/middleware"
	fruitService "github.com/zhouzirui/fruitstand/backend/internal/service/fruit"
	"github.com/zhouzirui/fruitstand/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(fruitSvc *fruitService.Service, serverCfg config.ServerConfig, log logrus.FieldLogger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middlewarePkg.EchoRequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.Logger(log))
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(serverCfg.AllowedOrigins))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondError(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]any{
			"status": "ok",
			"fruits": fruitSvc.Count(),
		})
	})

	fruitHandler := fruit.New(fruitSvc, serverCfg.FeedBuffer, log)
	fruitHandler.RegisterRoutes(r)

	return r
}
