// Package sensor maps poll snapshots onto the entities exposed to Home
// Assistant and the other publishers.
package sensor

import (
	"fmt"
	"time"

	"github.com/anicoll/huawei-solar-integration/internal/pkg/model"
	"github.com/anicoll/huawei-solar-integration/internal/pkg/poller"
)

const icon = "mdi:solar-power"

// Entities lists the main entity followed by its child sensors. Battery
// sensors are only present when a battery is installed.
func Entities(device model.Device, opts poller.Options) []model.Entity {
	entities := []model.Entity{
		{
			Name:        device.Model + "_" + device.SerialNumber,
			Slug:        device.Identifier(),
			Register:    poller.StateRegister,
			Unit:        model.UnitWatt,
			DeviceClass: model.DeviceClassPower,
			StateClass:  model.StateClassMeasurement,
			Icon:        icon,
			Main:        true,
		},
		child(device, "daily_yield", poller.DailyYieldRegister, model.UnitKiloWattHour, model.DeviceClassEnergy, model.ResetDaily),
		child(device, "total_yield", poller.AccumulatedYieldRegister, model.UnitKiloWattHour, model.DeviceClassEnergy, model.ResetEpoch),
	}

	if opts.BatteryInstalled {
		entities = append(entities,
			child(device, "", poller.StorageChargeDischargePowerRegister, model.UnitWatt, model.DeviceClassPower, model.ResetNone),
			child(device, "", poller.StorageTotalChargeRegister, model.UnitKiloWattHour, model.DeviceClassEnergy, model.ResetEpoch),
			child(device, "", poller.StorageTotalDischargeRegister, model.UnitKiloWattHour, model.DeviceClassEnergy, model.ResetEpoch),
		)
	}
	return entities
}

// child builds a sensor named after prefix, or after the register when
// prefix is empty, suffixed with the serial number.
func child(device model.Device, prefix, register, unit, deviceClass string, reset model.ResetKind) model.Entity {
	if prefix == "" {
		prefix = register
	}
	name := fmt.Sprintf("%s_%s", prefix, device.SerialNumber)
	stateClass := model.StateClassMeasurement
	if reset != model.ResetNone {
		stateClass = model.StateClassTotal
	}
	return model.Entity{
		Name:        name,
		Slug:        model.Slugify(name),
		Register:    register,
		Unit:        unit,
		DeviceClass: deviceClass,
		StateClass:  stateClass,
		Icon:        icon,
		Reset:       reset,
	}
}

// LastReset reports when the entity's counter last restarted. Daily
// counters restart at midnight of the inverter's clock, so nothing is
// reported until system_time has been read.
func LastReset(e model.Entity, snap model.Snapshot) *time.Time {
	switch e.Reset {
	case model.ResetDaily:
		v, ok := snap.Attribute(poller.SystemTimeRegister)
		if !ok {
			return nil
		}
		t, ok := v.Time()
		if !ok {
			return nil
		}
		midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		return &midnight
	case model.ResetEpoch:
		epoch := time.Unix(0, 0).UTC()
		return &epoch
	}
	return nil
}
