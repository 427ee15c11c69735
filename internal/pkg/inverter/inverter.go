// Package inverter ties one poller to the publishing pipeline.
package inverter

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/anicoll/huawei-solar-integration/internal/pkg/model"
	"github.com/anicoll/huawei-solar-integration/internal/pkg/poller"
	"github.com/anicoll/huawei-solar-integration/internal/pkg/sensor"
)

const SnapshotMessage = "snapshot"

type publisher interface {
	PublishData(ctx context.Context, deviceStatusMap map[model.Device][]model.DeviceStatus) error
	RegisterDevice(ctx context.Context, device model.Device, entities []model.Entity) error
}

type broadcaster interface {
	Broadcast(msgType string, payload any) error
}

type updater interface {
	Update(ctx context.Context)
	Snapshot() model.Snapshot
	Options() poller.Options
}

// Status is the presentation view of one inverter after a cycle.
type Status struct {
	Name         string               `json:"name"`
	Identifier   string               `json:"identifier,omitempty"`
	Model        string               `json:"model,omitempty"`
	SerialNumber string               `json:"serial_number,omitempty"`
	Available    bool                 `json:"available"`
	State        *model.Value         `json:"state"`
	Attributes   map[string]any       `json:"attributes"`
	Sensors      []model.DeviceStatus `json:"sensors"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

type Service struct {
	name        string
	poller      updater
	publisher   publisher
	broadcaster broadcaster
	logger      *zap.Logger

	mu         sync.RWMutex
	device     *model.Device
	entities   []model.Entity
	registered bool
}

func New(name string, p updater, publisher publisher) *Service {
	return &Service{
		name:      name,
		poller:    p,
		publisher: publisher,
		logger:    zap.L().With(zap.String("inverter", name)),
	}
}

func (s *Service) WithBroadcaster(b broadcaster) *Service {
	s.broadcaster = b
	return s
}

func (s *Service) Name() string {
	return s.name
}

// Run performs one poll cycle and hands the result to the publishers and
// websocket clients. Nothing is published until the inverter's identity
// registers have been read.
func (s *Service) Run(ctx context.Context) error {
	s.poller.Update(ctx)
	snap := s.poller.Snapshot()

	device, ok := s.resolveDevice(snap)
	if !ok {
		s.logger.Warn("inverter identity not known yet, skipping publish")
		s.broadcast(s.status(snap))
		return nil
	}

	s.register(ctx, device)

	status := s.status(snap)
	var err error
	if len(status.Sensors) > 0 {
		err = s.publisher.PublishData(ctx, map[model.Device][]model.DeviceStatus{device: status.Sensors})
		if err != nil {
			s.logger.Error("failed to publish cycle", zap.Error(err))
		}
	}
	s.broadcast(status)
	return err
}

// Status renders the current poller state without running a cycle.
func (s *Service) Status() Status {
	return s.status(s.poller.Snapshot())
}

func (s *Service) Snapshot() model.Snapshot {
	return s.poller.Snapshot()
}

func (s *Service) Device() (model.Device, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.device == nil {
		return model.Device{}, false
	}
	return *s.device, true
}

func (s *Service) Entities() []model.Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entities
}

func (s *Service) resolveDevice(snap model.Snapshot) (model.Device, bool) {
	if device, ok := s.Device(); ok {
		return device, true
	}
	modelName, ok := snap.Attribute(poller.ModelNameRegister)
	if !ok {
		return model.Device{}, false
	}
	serial, ok := snap.Attribute(poller.SerialNumberRegister)
	if !ok {
		return model.Device{}, false
	}

	device := model.Device{
		ID:           s.name,
		Model:        modelName.String(),
		SerialNumber: serial.String(),
	}
	s.mu.Lock()
	s.device = &device
	s.entities = sensor.Entities(device, s.poller.Options())
	s.mu.Unlock()
	s.logger = s.logger.With(zap.String("device", device.Identifier()))
	s.logger.Info("inverter identified", zap.String("model", device.Model), zap.String("serial_number", device.SerialNumber))
	return device, true
}

// register announces the device until one attempt succeeds.
func (s *Service) register(ctx context.Context, device model.Device) {
	s.mu.RLock()
	registered := s.registered
	entities := s.entities
	s.mu.RUnlock()
	if registered {
		return
	}
	if err := s.publisher.RegisterDevice(ctx, device, entities); err != nil {
		s.logger.Error("failed to register device, retrying next cycle", zap.Error(err))
		return
	}
	s.mu.Lock()
	s.registered = true
	s.mu.Unlock()
}

func (s *Service) status(snap model.Snapshot) Status {
	opts := s.poller.Options()
	status := Status{
		Name:       s.name,
		Available:  snap.Available,
		State:      snap.State,
		Attributes: sensor.MainAttributes(snap, opts),
		Sensors:    []model.DeviceStatus{},
		UpdatedAt:  snap.TakenAt,
	}
	if device, ok := s.Device(); ok {
		status.Identifier = device.Identifier()
		status.Model = device.Model
		status.SerialNumber = device.SerialNumber
		status.Sensors = sensor.Statuses(s.Entities(), snap, opts)
	}
	return status
}

func (s *Service) broadcast(status Status) {
	if s.broadcaster == nil {
		return
	}
	if err := s.broadcaster.Broadcast(SnapshotMessage, status); err != nil {
		s.logger.Warn("failed to broadcast snapshot", zap.Error(err))
	}
}
