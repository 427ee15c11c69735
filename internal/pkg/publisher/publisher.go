package publisher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/anicoll/huawei-solar-integration/internal/pkg/model"
)

var errAlreadyRegistered = errors.New("publisher already registered")

var (
	registeredPublishers = make(map[string]publisher)
	sensors              sync.Map
	now                  = time.Now
)

type publisher interface {
	// Write hands the changed readings of one cycle to the adapter.
	Write(ctx context.Context, readings []model.Reading) error
	RegisterDevice(ctx context.Context, device model.Device, entities []model.Entity) error
}

// RegisterPublisher must be called before any data is published.
func RegisterPublisher(name string, publisher publisher) error {
	if _, ok := registeredPublishers[name]; ok {
		return errAlreadyRegistered
	}
	registeredPublishers[name] = publisher
	return nil
}

func PublishData(ctx context.Context, deviceStatusMap map[model.Device][]model.DeviceStatus) error {
	ts := now()
	readings := make([]model.Reading, 0)
	for device, statuses := range deviceStatusMap {
		identifier := device.Identifier()
		for _, status := range statuses {
			readings = append(readings, model.Reading{
				Identifier: identifier,
				Slug:       status.Slug,
				Value:      status.Value,
				Unit:       status.Unit,
				Available:  status.Available,
				Main:       status.Main,
				LastReset:  status.LastReset,
				Attributes: status.Attributes,
				Timestamp:  ts,
			})
		}
	}

	var errs []error
	for name, publisher := range registeredPublishers {
		changed, fingerprints := pending(name, readings)
		if len(changed) == 0 {
			continue
		}
		// fingerprints are only kept once the adapter accepted the batch,
		// a failed write is retried on the next cycle
		if err := publisher.Write(ctx, changed); err != nil {
			zap.L().Error("failed to publish data", zap.Error(err), zap.String("publisher", name))
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		for key, fp := range fingerprints {
			sensors.Store(key, fp)
		}
		zap.L().Debug("updated sensors", zap.Int("count", len(changed)), zap.String("publisher", name))
	}
	return errors.Join(errs...)
}

func RegisterDevice(ctx context.Context, device model.Device, entities []model.Entity) error {
	var errs []error
	for name, publisher := range registeredPublishers {
		if err := publisher.RegisterDevice(ctx, device, entities); err != nil {
			zap.L().Error("failed to register device", zap.Error(err), zap.String("publisher", name))
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		zap.L().Debug("registered device", zap.String("device", device.SerialNumber), zap.String("publisher", name))
	}
	return errors.Join(errs...)
}

// fingerprint covers everything an adapter renders, so a change in
// availability or in any main entity attribute is published even when
// the state itself did not move.
func fingerprint(r model.Reading) string {
	value := "<nil>"
	if r.Value != nil {
		value = *r.Value
	}
	lastReset := ""
	if r.LastReset != nil {
		lastReset = *r.LastReset
	}
	return fmt.Sprintf("%s|%t|%s|%v", value, r.Available, lastReset, r.Attributes)
}

// pending returns the readings whose fingerprint differs from the last
// one publisherName accepted, along with the fingerprints to store.
func pending(publisherName string, readings []model.Reading) ([]model.Reading, map[string]string) {
	changed := make([]model.Reading, 0, len(readings))
	fingerprints := make(map[string]string, len(readings))
	for _, r := range readings {
		key := fmt.Sprintf("%s_%s_%s", publisherName, r.Identifier, r.Slug)
		fp := fingerprint(r)
		oldValue, exists := sensors.Load(key)
		if exists && fp == oldValue.(string) {
			continue
		}
		if !exists {
			zap.L().Info("configured sensor",
				zap.String("publisher", publisherName),
				zap.String("device", r.Identifier),
				zap.String("sensor", r.Slug),
			)
		}
		changed = append(changed, r)
		fingerprints[key] = fp
	}
	return changed, fingerprints
}

// Registry exposes the package level registry to services that take a
// publisher dependency.
type Registry struct{}

func (Registry) PublishData(ctx context.Context, deviceStatusMap map[model.Device][]model.DeviceStatus) error {
	return PublishData(ctx, deviceStatusMap)
}

func (Registry) RegisterDevice(ctx context.Context, device model.Device, entities []model.Entity) error {
	return RegisterDevice(ctx, device, entities)
}
