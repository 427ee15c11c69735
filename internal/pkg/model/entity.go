package model

import (
	"strings"

	"github.com/gosimple/slug"
)

type ResetKind int

const (
	ResetNone ResetKind = iota
	// ResetDaily counters restart at midnight of the inverter's own clock.
	ResetDaily
	// ResetEpoch counters accumulate over the device lifetime.
	ResetEpoch
)

const (
	DeviceClassPower   = "power"
	DeviceClassEnergy  = "energy"
	DeviceClassVoltage = "voltage"
	DeviceClassCurrent = "current"

	StateClassMeasurement     = "measurement"
	StateClassTotal           = "total"
	StateClassTotalIncreasing = "total_increasing"

	UnitWatt         = "W"
	UnitKiloWattHour = "kWh"
)

// Entity describes one sensor exposed to the presentation layer.
type Entity struct {
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Register    string    `json:"register"`
	Unit        string    `json:"unit_of_measurement"`
	DeviceClass string    `json:"device_class"`
	StateClass  string    `json:"state_class"`
	Icon        string    `json:"icon"`
	Reset       ResetKind `json:"-"`
	Main        bool      `json:"main"`
}

// Slugify turns a name into the snake_case form used by Home Assistant object ids.
func Slugify(name string) string {
	return strings.ReplaceAll(slug.Make(name), "-", "_")
}
