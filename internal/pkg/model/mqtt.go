package model

type RegisterDevice struct {
	Name         string   `json:"name"`
	Identifiers  []string `json:"identifiers"`
	Model        string   `json:"model"`
	Manufacturer string   `json:"manufacturer"`
	SerialNumber string   `json:"serial_number,omitempty"`
}

// RegisterMessage is the Home Assistant MQTT discovery payload for one sensor.
type RegisterMessage struct {
	Tilda               string         `json:"~"`
	Name                string         `json:"name"`
	ID                  string         `json:"unique_id"`
	ObjectID            string         `json:"object_id,omitempty"`
	StateTopic          string         `json:"state_topic"`
	AvailabilityTopic   string         `json:"availability_topic"`
	JSONAttributesTopic string         `json:"json_attributes_topic,omitempty"`
	ValueTemplate       string         `json:"value_template"`
	LastResetTemplate   string         `json:"last_reset_value_template,omitempty"`
	UnitOfMeasurement   string         `json:"unit_of_measurement,omitempty"`
	DeviceClass         string         `json:"device_class,omitempty"`
	StateClass          string         `json:"state_class,omitempty"`
	Icon                string         `json:"icon,omitempty"`
	Device              RegisterDevice `json:"device"`
}

type Device struct {
	ID           string
	Model        string
	SerialNumber string
}

// Identifier is the stable per-device prefix used for topics, unique ids and storage rows.
func (d Device) Identifier() string {
	return Slugify(d.Model + "_" + d.SerialNumber)
}

type DeviceStatus struct {
	Name       string         `json:"name"`
	Slug       string         `json:"slug"`
	Value      *string        `json:"value"`
	Unit       string         `json:"unit"`
	Available  bool           `json:"available"`
	Main       bool           `json:"main"`
	LastReset  *string        `json:"last_reset,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
}
