package cmd

import (
	"context"

	"github.com/anicoll/huawei-solar-integration/internal/pkg/inverter"
	"github.com/anicoll/huawei-solar-integration/internal/pkg/model"
)

// MockInverterService is a mock implementation of the InverterService interface.
type MockInverterService struct {
	NameValue    string
	RunFunc      func(ctx context.Context) error
	StatusFunc   func() inverter.Status
	SnapshotFunc func() model.Snapshot
	DeviceFunc   func() (model.Device, bool)
}

func (m *MockInverterService) Name() string {
	return m.NameValue
}

func (m *MockInverterService) Run(ctx context.Context) error {
	if m.RunFunc != nil {
		return m.RunFunc(ctx)
	}
	return nil
}

func (m *MockInverterService) Status() inverter.Status {
	if m.StatusFunc != nil {
		return m.StatusFunc()
	}
	return inverter.Status{Name: m.NameValue}
}

func (m *MockInverterService) Snapshot() model.Snapshot {
	if m.SnapshotFunc != nil {
		return m.SnapshotFunc()
	}
	return model.Snapshot{}
}

func (m *MockInverterService) Device() (model.Device, bool) {
	if m.DeviceFunc != nil {
		return m.DeviceFunc()
	}
	return model.Device{}, false
}

// MockCleaner is a mock implementation of the Cleaner interface.
type MockCleaner struct {
	CleanupFunc func(ctx context.Context) error
}

func (m *MockCleaner) Cleanup(ctx context.Context) error {
	if m.CleanupFunc != nil {
		return m.CleanupFunc(ctx)
	}
	return nil
}
