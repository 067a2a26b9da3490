package fruit

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/zhouzirui/fruitstand/backend/internal/model/fruit"
	fruitservice "github.com/zhouzirui/fruitstand/backend/internal/service/fruit"
	"github.com/zhouzirui/fruitstand/backend/pkg/utils"
)

const maxBodyBytes = 1 << 20

// Handler serves the fruit REST endpoints and live feeds.
type Handler struct {
	svc        *fruitservice.Service
	feedBuffer int
	upgrader   websocket.Upgrader
	log        logrus.FieldLogger
}

// New creates the fruit handler. feedBuffer sizes each live subscriber's queue.
func New(svc *fruitservice.Service, feedBuffer int, log logrus.FieldLogger) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{
		svc:        svc,
		feedBuffer: feedBuffer,
		log:        log.WithField("component", "fruit-handler"),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes mounts the fruit routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/fruits", h.handleCreate)
	r.Get("/fruits", h.handleList)
	r.Get("/fruits/{id}", h.handleGet)

	r.Get("/ws/fruits", h.handleWebSocket)
	r.Get("/events/fruits", h.handleSSE)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.RespondError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	draft, err := fruit.DecodeDraft(body)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	created, err := h.svc.Create(r.Context(), draft)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, items)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := fruitservice.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	item, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, item)
}

// respondServiceError maps domain errors onto status codes.
func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	var verr *fruit.ValidationError
	switch {
	case errors.As(err, &verr):
		utils.RespondErrorDetails(w, http.StatusUnprocessableEntity, "validation failed", verr.Violations)
	case errors.Is(err, fruitservice.ErrInvalidID), errors.Is(err, fruitservice.ErrFruitNotFound):
		utils.RespondError(w, http.StatusNotFound, fruitservice.ErrFruitNotFound.Error())
	default:
		h.log.WithError(err).Error("unexpected fruit service error")
		utils.RespondError(w, http.StatusInternalServerError, "internal error")
	}
}
