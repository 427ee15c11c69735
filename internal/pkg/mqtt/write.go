package mqtt

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/anicoll/huawei-solar-integration/internal/pkg/model"
)

const (
	manufacturer  = "Huawei"
	discoveryRoot = "homeassistant/sensor"
	online        = "online"
	offline       = "offline"
)

func deviceTopic(identifier string) string {
	return fmt.Sprintf("%s/%s", discoveryRoot, identifier)
}

func availabilityTopic(identifier string) string {
	return deviceTopic(identifier) + "/availability"
}

func stateTopic(identifier, slug string) string {
	return fmt.Sprintf("%s/%s/state", deviceTopic(identifier), slug)
}

func attributesTopic(identifier, slug string) string {
	return fmt.Sprintf("%s/%s/attributes", deviceTopic(identifier), slug)
}

// RegisterDevice publishes one retained discovery message per entity.
// Devices are announced once per process.
func (s *service) RegisterDevice(ctx context.Context, device model.Device, entities []model.Entity) error {
	identifier := device.Identifier()
	s.mu.Lock()
	_, exists := s.configured[identifier]
	s.mu.Unlock()
	if exists {
		return nil
	}

	for _, e := range entities {
		if err := ctx.Err(); err != nil {
			return err
		}
		payload, err := json.Marshal(registerMsg(device, e))
		if err != nil {
			return err
		}
		topic := fmt.Sprintf("%s/%s/config", deviceTopic(identifier), e.Slug)
		if err := s.publish(topic, 1, true, payload); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.configured[identifier] = struct{}{}
	s.mu.Unlock()
	s.logger.Info("registered device", zap.String("device", identifier), zap.Int("entities", len(entities)))
	return nil
}

// Write publishes state for every reading. Availability and the attribute
// document ride along with the main entity.
func (s *service) Write(ctx context.Context, readings []model.Reading) error {
	for _, r := range readings {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.PublishData(r); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) PublishData(r model.Reading) error {
	if r.Main {
		status := offline
		if r.Available {
			status = online
		}
		if err := s.publish(availabilityTopic(r.Identifier), 1, true, []byte(status)); err != nil {
			return err
		}
		if r.Attributes != nil {
			attrs, err := json.Marshal(r.Attributes)
			if err != nil {
				return err
			}
			if err := s.publish(attributesTopic(r.Identifier, r.Slug), 0, false, attrs); err != nil {
				return err
			}
		}
	}

	if r.Value == nil {
		return nil
	}
	payload := map[string]string{
		"value": *r.Value,
	}
	if r.Unit != "" {
		payload["unit_of_measurement"] = r.Unit
	}
	if r.LastReset != nil {
		payload["last_reset"] = *r.LastReset
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return s.publish(stateTopic(r.Identifier, r.Slug), 0, false, data)
}

func registerMsg(device model.Device, e model.Entity) model.RegisterMessage {
	identifier := device.Identifier()
	msg := model.RegisterMessage{
		Tilda:             deviceTopic(identifier),
		Name:              e.Name,
		ID:                e.Slug,
		ObjectID:          e.Slug,
		StateTopic:        fmt.Sprintf("~/%s/state", e.Slug),
		AvailabilityTopic: "~/availability",
		ValueTemplate:     "{{ value_json.value }}",
		UnitOfMeasurement: e.Unit,
		DeviceClass:       e.DeviceClass,
		StateClass:        e.StateClass,
		Icon:              e.Icon,
		Device: model.RegisterDevice{
			Name:         fmt.Sprintf("%s %s", device.Model, device.SerialNumber),
			Identifiers:  []string{identifier},
			Model:        device.Model,
			Manufacturer: manufacturer,
			SerialNumber: device.SerialNumber,
		},
	}
	if e.Main {
		msg.JSONAttributesTopic = fmt.Sprintf("~/%s/attributes", e.Slug)
	}
	if e.Reset != model.ResetNone {
		msg.LastResetTemplate = "{{ value_json.last_reset }}"
	}
	return msg
}
