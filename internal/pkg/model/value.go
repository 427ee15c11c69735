package model

import (
	"strconv"
	"time"
)

// GridCode is the composite grid_code register: the grid standard the
// inverter runs under and the country it was certified for.
type GridCode struct {
	Standard string `json:"standard"`
	Country  string `json:"country"`
}

func (g GridCode) String() string {
	return g.Standard + " (" + g.Country + ")"
}

// Value is a decoded register reading.
// Data holds one of float64, int, string, time.Time or GridCode.
type Value struct {
	Data any    `json:"value"`
	Unit string `json:"unit,omitempty"`
}

func (v Value) Float() (float64, bool) {
	switch d := v.Data.(type) {
	case float64:
		return d, true
	case float32:
		return float64(d), true
	case int:
		return float64(d), true
	case int32:
		return float64(d), true
	case int64:
		return float64(d), true
	case uint16:
		return float64(d), true
	case uint32:
		return float64(d), true
	}
	return 0, false
}

func (v Value) Int() (int, bool) {
	switch d := v.Data.(type) {
	case int:
		return d, true
	case float64:
		return int(d), true
	case uint16:
		return int(d), true
	case uint32:
		return int(d), true
	case int32:
		return int(d), true
	case int64:
		return int(d), true
	}
	return 0, false
}

func (v Value) Time() (time.Time, bool) {
	t, ok := v.Data.(time.Time)
	return t, ok
}

func (v Value) GridCode() (GridCode, bool) {
	g, ok := v.Data.(GridCode)
	return g, ok
}

// String renders the value the way it is published to Home Assistant.
func (v Value) String() string {
	switch d := v.Data.(type) {
	case nil:
		return ""
	case string:
		return d
	case time.Time:
		return d.Format(time.RFC3339)
	case GridCode:
		return d.String()
	case int:
		return strconv.Itoa(d)
	}
	if f, ok := v.Float(); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return ""
}

// IsNumeric reports whether the value can be treated as a measurement.
func (v Value) IsNumeric() bool {
	_, ok := v.Float()
	return ok
}
