package model

import (
	"maps"
	"time"
)

// Snapshot is a read-only copy of one inverter's poll state taken after a cycle.
type Snapshot struct {
	State        *Value           `json:"state"`
	Available    bool             `json:"available"`
	Attributes   map[string]Value `json:"attributes"`
	SensorStates map[string]Value `json:"sensor_states"`
	PVVoltage    []*Value         `json:"pv_voltage"`
	PVCurrent    []*Value         `json:"pv_current"`
	TakenAt      time.Time        `json:"taken_at"`
}

func (s Snapshot) Attribute(register string) (Value, bool) {
	v, ok := s.Attributes[register]
	return v, ok
}

func (s Snapshot) SensorState(register string) (Value, bool) {
	v, ok := s.SensorStates[register]
	return v, ok
}

// Clone returns a deep copy so the receiver can keep mutating its own maps.
func (s Snapshot) Clone() Snapshot {
	out := s
	if s.State != nil {
		v := *s.State
		out.State = &v
	}
	out.Attributes = maps.Clone(s.Attributes)
	out.SensorStates = maps.Clone(s.SensorStates)
	out.PVVoltage = cloneValues(s.PVVoltage)
	out.PVCurrent = cloneValues(s.PVCurrent)
	return out
}

func cloneValues(in []*Value) []*Value {
	if in == nil {
		return nil
	}
	out := make([]*Value, len(in))
	for i, v := range in {
		if v == nil {
			continue
		}
		c := *v
		out[i] = &c
	}
	return out
}
