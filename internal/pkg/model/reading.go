package model

import (
	"strconv"
	"time"
)

// Reading is one entity state as handed to the publishing adapters.
type Reading struct {
	Identifier string         `json:"identifier"`
	Slug       string         `json:"slug"`
	Value      *string        `json:"value"`
	Unit       string         `json:"unit_of_measurement"`
	Available  bool           `json:"available"`
	Main       bool           `json:"main"`
	LastReset  *string        `json:"last_reset,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}

// Float parses the reading value. Non-numeric and missing values report false.
func (r Reading) Float() (float64, bool) {
	if r.Value == nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(*r.Value, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
