package huawei

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/goburrow/modbus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anicoll/huawei-solar-integration/internal/pkg/model"
)

type fakeSession struct {
	connectErr error
	connects   int
	closes     int
}

func (f *fakeSession) Connect() error {
	f.connects++
	return f.connectErr
}

func (f *fakeSession) Close() error {
	f.closes++
	return nil
}

type fakeReader struct {
	data  map[uint16][]byte
	err   error
	reads []uint16
}

func (f *fakeReader) ReadHoldingRegisters(address, quantity uint16) ([]byte, error) {
	f.reads = append(f.reads, address)
	if f.err != nil {
		return nil, f.err
	}
	return f.data[address], nil
}

func u16(v uint16) []byte {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, v)
	return b
}

func u32(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

func TestClient_Get(t *testing.T) {
	reader := &fakeReader{data: map[uint16][]byte{
		32080: u32(1500),
		32085: u16(4998),
		42000: u16(19),
		32089: u16(0x0200),
		30071: u16(3),
		32018: u16(4123),
		30015: append([]byte("HV2050012345"), make([]byte, 8)...),
		40000: u32(1625135400),
	}}
	session := &fakeSession{}
	c := newClient(Config{Host: "inverter"}, session, reader)
	ctx := context.Background()

	v, err := c.Get(ctx, "active_power")
	require.NoError(t, err)
	assert.Equal(t, model.Value{Data: 1500.0, Unit: "W"}, v)

	v, err = c.Get(ctx, "grid_frequency")
	require.NoError(t, err)
	assert.InDelta(t, 49.98, v.Data, 0.0001)
	assert.Equal(t, "Hz", v.Unit)

	v, err = c.Get(ctx, "grid_code")
	require.NoError(t, err)
	assert.Equal(t, model.GridCode{Standard: "AS4777", Country: "Australia"}, v.Data)

	v, err = c.Get(ctx, "device_status")
	require.NoError(t, err)
	assert.Equal(t, "On-grid", v.Data)

	v, err = c.Get(ctx, "nb_pv_strings")
	require.NoError(t, err)
	assert.Equal(t, 3, v.Data)

	v, err = c.Get(ctx, "pv_02_voltage")
	require.NoError(t, err)
	assert.InDelta(t, 412.3, v.Data, 0.0001)

	v, err = c.Get(ctx, "serial_number")
	require.NoError(t, err)
	assert.Equal(t, "HV2050012345", v.Data)

	v, err = c.Get(ctx, "system_time")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2021, 7, 1, 10, 30, 0, 0, time.UTC), v.Data)

	assert.Equal(t, 1, session.connects, "session is opened once and reused")
}

func TestClient_Get_UnknownRegister(t *testing.T) {
	reader := &fakeReader{}
	c := newClient(Config{}, &fakeSession{}, reader)

	_, err := c.Get(context.Background(), "pv_25_voltage")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRead)
	assert.ErrorIs(t, err, ErrUnknownRegister)
	assert.Empty(t, reader.reads)
}

func TestClient_Get_ErrorClassification(t *testing.T) {
	tests := map[string]struct {
		readErr       error
		want          error
		wantReconnect bool
	}{
		"modbus exception is a read error": {
			readErr: &modbus.ModbusError{FunctionCode: 0x83, ExceptionCode: modbus.ExceptionCodeIllegalDataAddress},
			want:    ErrRead,
		},
		"eof is a connection error": {
			readErr:       io.EOF,
			want:          ErrConnection,
			wantReconnect: true,
		},
		"unclassified failure is a read error": {
			readErr: errors.New("modbus: response data size '2' does not match count '4'"),
			want:    ErrRead,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			session := &fakeSession{}
			reader := &fakeReader{err: tt.readErr}
			c := newClient(Config{}, session, reader)

			_, err := c.Get(context.Background(), "grid_frequency")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, tt.readErr)

			reader.err = nil
			_, _ = c.Get(context.Background(), "grid_frequency")
			if tt.wantReconnect {
				assert.Equal(t, 2, session.connects)
				assert.Equal(t, 1, session.closes)
			} else {
				assert.Equal(t, 1, session.connects)
			}
		})
	}
}

func TestClient_Get_CancelledContext(t *testing.T) {
	reader := &fakeReader{data: map[uint16][]byte{32080: u32(1500)}}
	session := &fakeSession{}
	c := newClient(Config{}, session, reader)

	_, err := c.Get(context.Background(), "active_power")
	require.NoError(t, err)
	require.Len(t, reader.reads, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Get(ctx, "active_power")
	assert.ErrorIs(t, err, ErrConnection)
	assert.ErrorIs(t, err, context.Canceled)

	var cerr *ConnectionError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "active_power", cerr.Register)
	assert.Len(t, reader.reads, 1)
	assert.Equal(t, 0, session.closes)
}

func TestClient_Get_ConnectFailure(t *testing.T) {
	session := &fakeSession{connectErr: errors.New("dial tcp 10.0.0.9:502: connect: connection refused")}
	reader := &fakeReader{}
	c := newClient(Config{}, session, reader)

	_, err := c.Get(context.Background(), "active_power")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnection)

	var cerr *ConnectionError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "active_power", cerr.Register)
	assert.Empty(t, reader.reads)
}

func TestDecode_ShortResponse(t *testing.T) {
	reg, ok := lookup("active_power")
	require.True(t, ok)
	_, err := decode(reg, []byte{0x01})
	assert.Error(t, err)
}

func TestDecode_UnknownLabels(t *testing.T) {
	reg, _ := lookup("grid_code")
	v, err := decode(reg, u16(999))
	require.NoError(t, err)
	assert.Equal(t, model.GridCode{Standard: "unknown", Country: "unknown"}, v.Data)

	reg, _ = lookup("device_status")
	v, err = decode(reg, u16(0x0BAD))
	require.NoError(t, err)
	assert.Equal(t, "unknown (0x0bad)", v.Data)
}

func TestDecode_Signed(t *testing.T) {
	reg, _ := lookup("storage_charge_discharge_power")
	v, err := decode(reg, u32(uint32(0xFFFFFC18))) // -1000
	require.NoError(t, err)
	assert.Equal(t, -1000.0, v.Data)
}

func TestLookup_PVStrings(t *testing.T) {
	r, ok := lookup("pv_01_voltage")
	require.True(t, ok)
	assert.Equal(t, uint16(32016), r.address)

	r, ok = lookup("pv_03_current")
	require.True(t, ok)
	assert.Equal(t, uint16(32021), r.address)

	assert.False(t, Known("pv_00_voltage"))
	assert.False(t, Known("pv_1_voltage"))
	assert.True(t, Known("storage_lcoe"))
}
