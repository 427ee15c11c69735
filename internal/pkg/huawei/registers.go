package huawei

import (
	"regexp"
	"strconv"
)

type registerType int

const (
	typeU16 registerType = iota
	typeI16
	typeU32
	typeI32
	typeString
	typeTimestamp
	typeGridCode
	typeEnum
)

// register locates a named datum in the SUN2000 holding register space.
// A gain of 0 marks an integer count, anything else divides the raw value.
type register struct {
	address  uint16
	quantity uint16
	kind     registerType
	gain     float64
	unit     string
	labels   map[int]string
}

const (
	maxPVStrings    = 24
	pvVoltageOffset = 32016
	pvCurrentOffset = 32017
)

var pvPattern = regexp.MustCompile(`^pv_(\d{2})_(voltage|current)$`)

var registers = map[string]register{
	"model_name":    {address: 30000, quantity: 15, kind: typeString},
	"serial_number": {address: 30015, quantity: 10, kind: typeString},
	"model_id":      {address: 30070, quantity: 1, kind: typeU16},
	"nb_pv_strings": {address: 30071, quantity: 1, kind: typeU16},
	"nb_mpp_tracks": {address: 30072, quantity: 1, kind: typeU16},
	"rated_power":   {address: 30073, quantity: 2, kind: typeU32, gain: 1, unit: "W"},

	"input_power":           {address: 32064, quantity: 2, kind: typeI32, gain: 1, unit: "W"},
	"grid_voltage":          {address: 32066, quantity: 1, kind: typeU16, gain: 10, unit: "V"},
	"line_voltage_A_B":      {address: 32066, quantity: 1, kind: typeU16, gain: 10, unit: "V"},
	"line_voltage_B_C":      {address: 32067, quantity: 1, kind: typeU16, gain: 10, unit: "V"},
	"line_voltage_C_A":      {address: 32068, quantity: 1, kind: typeU16, gain: 10, unit: "V"},
	"phase_A_voltage":       {address: 32069, quantity: 1, kind: typeU16, gain: 10, unit: "V"},
	"phase_B_voltage":       {address: 32070, quantity: 1, kind: typeU16, gain: 10, unit: "V"},
	"phase_C_voltage":       {address: 32071, quantity: 1, kind: typeU16, gain: 10, unit: "V"},
	"grid_current":          {address: 32072, quantity: 2, kind: typeI32, gain: 1000, unit: "A"},
	"phase_A_current":       {address: 32072, quantity: 2, kind: typeI32, gain: 1000, unit: "A"},
	"phase_B_current":       {address: 32074, quantity: 2, kind: typeI32, gain: 1000, unit: "A"},
	"phase_C_current":       {address: 32076, quantity: 2, kind: typeI32, gain: 1000, unit: "A"},
	"day_active_power_peak": {address: 32078, quantity: 2, kind: typeI32, gain: 1, unit: "W"},
	"active_power":          {address: 32080, quantity: 2, kind: typeI32, gain: 1, unit: "W"},
	"reactive_power":        {address: 32082, quantity: 2, kind: typeI32, gain: 1, unit: "var"},
	"power_factor":          {address: 32084, quantity: 1, kind: typeI16, gain: 1000},
	"grid_frequency":        {address: 32085, quantity: 1, kind: typeU16, gain: 100, unit: "Hz"},
	"efficiency":            {address: 32086, quantity: 1, kind: typeU16, gain: 100, unit: "%"},
	"internal_temperature":  {address: 32087, quantity: 1, kind: typeI16, gain: 10, unit: "°C"},
	"insulation_resistance": {address: 32088, quantity: 1, kind: typeU16, gain: 1000, unit: "MΩ"},
	"device_status":         {address: 32089, quantity: 1, kind: typeEnum, labels: deviceStatuses},
	"fault_code":            {address: 32090, quantity: 1, kind: typeU16},
	"startup_time":          {address: 32091, quantity: 2, kind: typeTimestamp},
	"shutdown_time":         {address: 32093, quantity: 2, kind: typeTimestamp},

	"accumulated_yield_energy": {address: 32106, quantity: 2, kind: typeU32, gain: 100, unit: "kWh"},
	"daily_yield_energy":       {address: 32114, quantity: 2, kind: typeU32, gain: 100, unit: "kWh"},

	"grid_A_voltage":           {address: 37101, quantity: 2, kind: typeI32, gain: 10, unit: "V"},
	"grid_B_voltage":           {address: 37103, quantity: 2, kind: typeI32, gain: 10, unit: "V"},
	"grid_C_voltage":           {address: 37105, quantity: 2, kind: typeI32, gain: 10, unit: "V"},
	"active_grid_A_current":    {address: 37107, quantity: 2, kind: typeI32, gain: 100, unit: "A"},
	"active_grid_B_current":    {address: 37109, quantity: 2, kind: typeI32, gain: 100, unit: "A"},
	"active_grid_C_current":    {address: 37111, quantity: 2, kind: typeI32, gain: 100, unit: "A"},
	"power_meter_active_power": {address: 37113, quantity: 2, kind: typeI32, gain: 1, unit: "W"},
	"active_grid_power_factor": {address: 37117, quantity: 1, kind: typeI16, gain: 1000},
	"active_grid_frequency":    {address: 37118, quantity: 1, kind: typeI16, gain: 100, unit: "Hz"},
	"grid_exported_energy":     {address: 37119, quantity: 2, kind: typeI32, gain: 100, unit: "kWh"},
	"grid_accumulated_energy":  {address: 37121, quantity: 2, kind: typeU32, gain: 100, unit: "kWh"},
	"active_grid_A_B_voltage":  {address: 37126, quantity: 2, kind: typeI32, gain: 10, unit: "V"},
	"active_grid_B_C_voltage":  {address: 37128, quantity: 2, kind: typeI32, gain: 10, unit: "V"},
	"active_grid_C_A_voltage":  {address: 37130, quantity: 2, kind: typeI32, gain: 10, unit: "V"},
	"active_grid_A_power":      {address: 37132, quantity: 2, kind: typeI32, gain: 1, unit: "W"},
	"active_grid_B_power":      {address: 37134, quantity: 2, kind: typeI32, gain: 1, unit: "W"},
	"active_grid_C_power":      {address: 37136, quantity: 2, kind: typeI32, gain: 1, unit: "W"},

	"nb_optimizers":        {address: 37200, quantity: 1, kind: typeU16},
	"nb_online_optimizers": {address: 37201, quantity: 1, kind: typeU16},

	"storage_unit_1_working_mode_b":          {address: 37006, quantity: 1, kind: typeEnum, labels: storageWorkingModesB},
	"storage_state_of_capacity":              {address: 37760, quantity: 1, kind: typeU16, gain: 10, unit: "%"},
	"storage_running_status":                 {address: 37762, quantity: 1, kind: typeEnum, labels: storageStatuses},
	"storage_charge_discharge_power":         {address: 37765, quantity: 2, kind: typeI32, gain: 1, unit: "W"},
	"storage_total_charge":                   {address: 37780, quantity: 2, kind: typeU32, gain: 100, unit: "kWh"},
	"storage_total_discharge":                {address: 37782, quantity: 2, kind: typeU32, gain: 100, unit: "kWh"},
	"storage_current_day_charge_capacity":    {address: 37784, quantity: 2, kind: typeU32, gain: 100, unit: "kWh"},
	"storage_current_day_discharge_capacity": {address: 37786, quantity: 2, kind: typeU32, gain: 100, unit: "kWh"},
	"storage_working_mode_a":                 {address: 47004, quantity: 1, kind: typeEnum, labels: storageWorkingModesA},
	"storage_time_of_use_price":              {address: 47027, quantity: 1, kind: typeU16},
	"storage_lcoe":                           {address: 47069, quantity: 2, kind: typeU32, gain: 1000},
	"storage_maximum_charging_power":         {address: 47075, quantity: 2, kind: typeU32, gain: 1, unit: "W"},
	"storage_maximum_discharging_power":      {address: 47077, quantity: 2, kind: typeU32, gain: 1, unit: "W"},
	"storage_power_limit_grid_tied_point":    {address: 47079, quantity: 2, kind: typeI32, gain: 1, unit: "W"},
	"storage_charging_cutoff_capacity":       {address: 47081, quantity: 1, kind: typeU16, gain: 10, unit: "%"},
	"storage_discharging_cutoff_capacity":    {address: 47082, quantity: 1, kind: typeU16, gain: 10, unit: "%"},

	"storage_forced_charging_and_discharging_period": {address: 47083, quantity: 1, kind: typeU16, gain: 1, unit: "min"},
	"storage_forced_charging_and_discharging_power":  {address: 47084, quantity: 2, kind: typeI32, gain: 1, unit: "W"},

	"system_time": {address: 40000, quantity: 2, kind: typeTimestamp},
	"grid_code":   {address: 42000, quantity: 1, kind: typeGridCode},
}

// lookup resolves a register name, including the per-string pv_NN_voltage/current family.
func lookup(name string) (register, bool) {
	if r, ok := registers[name]; ok {
		return r, true
	}
	m := pvPattern.FindStringSubmatch(name)
	if m == nil {
		return register{}, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 || n > maxPVStrings {
		return register{}, false
	}
	offset := uint16(2 * (n - 1))
	if m[2] == "voltage" {
		return register{address: pvVoltageOffset + offset, quantity: 1, kind: typeI16, gain: 10, unit: "V"}, true
	}
	return register{address: pvCurrentOffset + offset, quantity: 1, kind: typeI16, gain: 100, unit: "A"}, true
}

// Known reports whether the client can read the named register.
func Known(name string) bool {
	_, ok := lookup(name)
	return ok
}
