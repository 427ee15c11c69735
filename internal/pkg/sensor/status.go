package sensor

import (
	"time"

	"github.com/anicoll/huawei-solar-integration/internal/pkg/model"
	"github.com/anicoll/huawei-solar-integration/internal/pkg/poller"
)

// Statuses renders every entity against one snapshot. Child entities
// share the main entity's availability.
func Statuses(entities []model.Entity, snap model.Snapshot, opts poller.Options) []model.DeviceStatus {
	statuses := make([]model.DeviceStatus, 0, len(entities))
	for _, e := range entities {
		status := model.DeviceStatus{
			Name:      e.Name,
			Slug:      e.Slug,
			Unit:      e.Unit,
			Available: snap.Available,
			Main:      e.Main,
		}

		var (
			v  model.Value
			ok bool
		)
		if e.Main {
			if snap.State != nil {
				v, ok = *snap.State, true
			}
			status.Attributes = MainAttributes(snap, opts)
		} else {
			v, ok = snap.SensorState(e.Register)
		}
		if ok {
			s := v.String()
			status.Value = &s
			if status.Unit == "" {
				status.Unit = v.Unit
			}
		}

		if reset := LastReset(e, snap); reset != nil {
			s := reset.Format(time.RFC3339)
			status.LastReset = &s
		}
		statuses = append(statuses, status)
	}
	return statuses
}
