package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/anicoll/huawei-solar-integration/internal/pkg/inverter"
	"github.com/anicoll/huawei-solar-integration/internal/pkg/model"
)

// Inverter is the read side of one polled inverter.
type Inverter interface {
	Name() string
	Status() inverter.Status
	Snapshot() model.Snapshot
	Device() (model.Device, bool)
}

type historyStore interface {
	GetProperties(ctx context.Context, identifier, slug string, from, to *time.Time) (model.Properties, error)
}

type Config struct {
	// Secret signs API tokens. The API is open when it is empty.
	Secret       string
	PasswordHash string
	TokenTTL     time.Duration
}

type server struct {
	cfg       Config
	inverters map[string]Inverter
	order     []string
	history   historyStore
	ws        http.Handler
	logger    *zap.Logger
	now       func() time.Time
}

// New builds the API. history and ws may be nil, their routes then
// answer 503.
func New(cfg Config, inverters []Inverter, history historyStore, ws http.Handler) *server {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = DefaultTokenTTL
	}
	s := &server{
		cfg:       cfg,
		inverters: make(map[string]Inverter, len(inverters)),
		history:   history,
		ws:        ws,
		logger:    zap.L(),
		now:       time.Now,
	}
	for _, inv := range inverters {
		s.inverters[inv.Name()] = inv
		s.order = append(s.order, inv.Name())
	}
	return s
}

func (s *server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(recoveryMiddleware)

	r.Post("/auth/token", s.handleToken)

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Get("/ws", s.handleWebsocket)
		r.Route("/inverters", func(r chi.Router) {
			r.Get("/", s.handleListInverters)
			r.Route("/{name}", func(r chi.Router) {
				r.Get("/", s.handleGetInverter)
				r.Get("/sensors/{register}", s.handleGetSensor)
				r.Get("/history/{slug}", s.handleHistory)
			})
		})
	})
	return r
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().Error("failed to write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
