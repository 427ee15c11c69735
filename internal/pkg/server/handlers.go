package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/anicoll/huawei-solar-integration/internal/pkg/model"
	"github.com/anicoll/huawei-solar-integration/internal/pkg/poller"
)

var (
	errInverterNotFound = errors.New("inverter not found")
	errSensorNotFound   = errors.New("register has no value")
	errNotIdentified    = errors.New("inverter identity not read yet")
	errUnavailable      = errors.New("not configured")
)

type inverterSummary struct {
	Name       string `json:"name"`
	Identifier string `json:"identifier,omitempty"`
	Available  bool   `json:"available"`
}

type sensorResponse struct {
	Register string  `json:"register"`
	Value    any     `json:"value"`
	Unit     string  `json:"unit,omitempty"`
	Text     *string `json:"text,omitempty"`
}

func (s *server) inverter(w http.ResponseWriter, r *http.Request) (Inverter, bool) {
	inv, ok := s.inverters[chi.URLParam(r, "name")]
	if !ok {
		writeError(w, http.StatusNotFound, errInverterNotFound)
		return nil, false
	}
	return inv, true
}

func (s *server) handleListInverters(w http.ResponseWriter, _ *http.Request) {
	out := make([]inverterSummary, 0, len(s.order))
	for _, name := range s.order {
		inv := s.inverters[name]
		summary := inverterSummary{Name: name, Available: inv.Snapshot().Available}
		if device, ok := inv.Device(); ok {
			summary.Identifier = device.Identifier()
		}
		out = append(out, summary)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) handleGetInverter(w http.ResponseWriter, r *http.Request) {
	inv, ok := s.inverter(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, inv.Status())
}

// handleGetSensor looks the register up in the state, the child sensor
// states and the attributes, in that order.
func (s *server) handleGetSensor(w http.ResponseWriter, r *http.Request) {
	inv, ok := s.inverter(w, r)
	if !ok {
		return
	}
	register := chi.URLParam(r, "register")
	snap := inv.Snapshot()

	v, found := lookup(snap, register)
	if !found {
		writeError(w, http.StatusNotFound, fmt.Errorf("%w: %s", errSensorNotFound, register))
		return
	}
	resp := sensorResponse{Register: register, Value: v.Data, Unit: v.Unit}
	if !v.IsNumeric() {
		text := v.String()
		resp.Text = &text
	}
	writeJSON(w, http.StatusOK, resp)
}

func lookup(snap model.Snapshot, register string) (model.Value, bool) {
	if register == poller.StateRegister && snap.State != nil {
		return *snap.State, true
	}
	if v, ok := snap.SensorState(register); ok {
		return v, true
	}
	return snap.Attribute(register)
}

func (s *server) handleHistory(w http.ResponseWriter, r *http.Request) {
	inv, ok := s.inverter(w, r)
	if !ok {
		return
	}
	if s.history == nil {
		writeError(w, http.StatusServiceUnavailable, fmt.Errorf("history: %w", errUnavailable))
		return
	}
	device, ok := inv.Device()
	if !ok {
		writeError(w, http.StatusNotFound, errNotIdentified)
		return
	}

	from, err := parseTime(r, "from")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	to, err := parseTime(r, "to")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	properties, err := s.history.GetProperties(r.Context(), device.Identifier(), chi.URLParam(r, "slug"), from, to)
	if err != nil {
		s.logger.Error("failed to read history", zap.Error(err), zap.String("request_id", requestID(r)))
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, properties)
}

func parseTime(r *http.Request, key string) (*time.Time, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", key, err)
	}
	return &t, nil
}

func (s *server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	if s.ws == nil {
		writeError(w, http.StatusServiceUnavailable, fmt.Errorf("websocket: %w", errUnavailable))
		return
	}
	s.ws.ServeHTTP(w, r)
}
