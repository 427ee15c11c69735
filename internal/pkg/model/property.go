package model

import (
	"strconv"
	"time"
)

// Property is one stored sensor reading.
type Property struct {
	ID         int64     `json:"id"`
	TimeStamp  time.Time `json:"timestamp"`
	Unit       string    `json:"unit_of_measurement"`
	Value      string    `json:"value"`
	Identifier string    `json:"identifier"`
	Slug       string    `json:"slug"`
}

type Properties []Property

// Float parses the stored value, false for text sensors.
func (p Property) Float() (float64, bool) {
	f, err := strconv.ParseFloat(p.Value, 64)
	return f, err == nil
}
