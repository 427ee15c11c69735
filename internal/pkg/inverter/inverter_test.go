package inverter

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/anicoll/huawei-solar-integration/internal/pkg/model"
	"github.com/anicoll/huawei-solar-integration/internal/pkg/poller"
)

type fakeUpdater struct {
	updates int
	snap    model.Snapshot
	opts    poller.Options
}

func (f *fakeUpdater) Update(context.Context)   { f.updates++ }
func (f *fakeUpdater) Snapshot() model.Snapshot { return f.snap.Clone() }
func (f *fakeUpdater) Options() poller.Options  { return f.opts }

type fakePublisher struct {
	published   []map[model.Device][]model.DeviceStatus
	registered  []model.Device
	entities    [][]model.Entity
	registerErr error
	publishErr  error
}

func (f *fakePublisher) PublishData(_ context.Context, data map[model.Device][]model.DeviceStatus) error {
	f.published = append(f.published, data)
	return f.publishErr
}

func (f *fakePublisher) RegisterDevice(_ context.Context, device model.Device, entities []model.Entity) error {
	f.registered = append(f.registered, device)
	f.entities = append(f.entities, entities)
	return f.registerErr
}

type fakeBroadcaster struct {
	messages []Status
}

func (f *fakeBroadcaster) Broadcast(msgType string, payload any) error {
	if msgType == SnapshotMessage {
		f.messages = append(f.messages, payload.(Status))
	}
	return nil
}

func identified() model.Snapshot {
	return model.Snapshot{
		State:     &model.Value{Data: 1500.0, Unit: "W"},
		Available: true,
		Attributes: map[string]model.Value{
			poller.ModelNameRegister:    {Data: "SUN2000-5KTL-L1"},
			poller.SerialNumberRegister: {Data: "HV2050012345"},
		},
		SensorStates: map[string]model.Value{
			poller.DailyYieldRegister: {Data: 12.5, Unit: "kWh"},
		},
	}
}

func newTestService(t *testing.T, up *fakeUpdater, pub *fakePublisher) (*Service, *fakeBroadcaster) {
	b := &fakeBroadcaster{}
	s := New("roof", up, pub).WithBroadcaster(b)
	s.logger = zaptest.NewLogger(t)
	return s, b
}

func TestRun_UnknownIdentity(t *testing.T) {
	up := &fakeUpdater{snap: model.Snapshot{Attributes: map[string]model.Value{}}}
	pub := &fakePublisher{}
	s, b := newTestService(t, up, pub)

	require.NoError(t, s.Run(context.Background()))

	assert.Equal(t, 1, up.updates)
	assert.Empty(t, pub.registered)
	assert.Empty(t, pub.published)
	require.Len(t, b.messages, 1)
	assert.Equal(t, "roof", b.messages[0].Name)
	assert.Empty(t, b.messages[0].Identifier)
	_, ok := s.Device()
	assert.False(t, ok)
}

func TestRun_PublishesCycle(t *testing.T) {
	up := &fakeUpdater{snap: identified()}
	pub := &fakePublisher{}
	s, b := newTestService(t, up, pub)

	require.NoError(t, s.Run(context.Background()))
	require.NoError(t, s.Run(context.Background()))

	device, ok := s.Device()
	require.True(t, ok)
	assert.Equal(t, model.Device{ID: "roof", Model: "SUN2000-5KTL-L1", SerialNumber: "HV2050012345"}, device)

	require.Len(t, pub.registered, 1, "device is registered once")
	assert.Len(t, pub.entities[0], 3)

	require.Len(t, pub.published, 2)
	statuses := pub.published[0][device]
	require.Len(t, statuses, 3)
	assert.Equal(t, "1500", *statuses[0].Value)
	assert.Equal(t, "12.5", *statuses[1].Value)

	require.Len(t, b.messages, 2)
	assert.Equal(t, "sun2000_5ktl_l1_hv2050012345", b.messages[1].Identifier)
	assert.True(t, b.messages[1].Available)
}

func TestRun_RegistrationRetried(t *testing.T) {
	up := &fakeUpdater{snap: identified()}
	pub := &fakePublisher{registerErr: errors.New("broker down")}
	s, _ := newTestService(t, up, pub)

	require.NoError(t, s.Run(context.Background()))
	pub.registerErr = nil
	require.NoError(t, s.Run(context.Background()))
	require.NoError(t, s.Run(context.Background()))

	assert.Len(t, pub.registered, 2)
	assert.Len(t, pub.published, 3, "state is published even before registration succeeds")
}

func TestRun_PublishError(t *testing.T) {
	up := &fakeUpdater{snap: identified()}
	pub := &fakePublisher{publishErr: errors.New("db down")}
	s, b := newTestService(t, up, pub)

	assert.ErrorContains(t, s.Run(context.Background()), "db down")
	assert.Len(t, b.messages, 1, "websocket clients still get the snapshot")
}

func TestStatus(t *testing.T) {
	snap := identified()
	snap.Available = false
	up := &fakeUpdater{snap: snap}
	s, _ := newTestService(t, up, &fakePublisher{})
	require.NoError(t, s.Run(context.Background()))

	status := s.Status()

	assert.False(t, status.Available)
	assert.Equal(t, "HV2050012345", status.SerialNumber)
	assert.Equal(t, "HV2050012345", status.Attributes[poller.SerialNumberRegister])
	for _, sensor := range status.Sensors {
		assert.False(t, sensor.Available)
	}
}
