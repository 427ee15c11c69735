package poller

import "fmt"

const (
	// StateRegister drives the main entity's state and availability.
	StateRegister = "active_power"

	GridCodeRegister      = "grid_code"
	GridStandardAttribute = "grid_standard"
	GridCountryAttribute  = "grid_country"

	ModelNameRegister      = "model_name"
	SerialNumberRegister   = "serial_number"
	NbPVStringsRegister    = "nb_pv_strings"
	SystemTimeRegister     = "system_time"
	NbOptimizersRegister   = "nb_optimizers"
	NbOnlineOptimizersAttr = "nb_online_optimizers"

	DailyYieldRegister       = "daily_yield_energy"
	AccumulatedYieldRegister = "accumulated_yield_energy"

	StorageChargeDischargePowerRegister = "storage_charge_discharge_power"
	StorageTotalChargeRegister          = "storage_total_charge"
	StorageTotalDischargeRegister       = "storage_total_discharge"

	// BatteryPrefix is shared by every battery register.
	BatteryPrefix = "storage_"
)

// StaticAttributes are read once and never refreshed after a successful read.
var StaticAttributes = []string{
	"model_id",
	ModelNameRegister,
	SerialNumberRegister,
	"rated_power",
	NbPVStringsRegister,
}

var GridAttributes = []string{
	GridStandardAttribute,
	GridCountryAttribute,
}

var DynamicAttributes = []string{
	"day_active_power_peak",
	"reactive_power",
	"power_factor",
	"efficiency",
	"grid_frequency",
	"grid_voltage",
	"grid_current",
	"line_voltage_A_B",
	"line_voltage_B_C",
	"line_voltage_C_A",
	"phase_A_voltage",
	"phase_B_voltage",
	"phase_C_voltage",
	"phase_A_current",
	"phase_B_current",
	"phase_C_current",
	"power_meter_active_power",
	"input_power",
	"grid_A_voltage",
	"grid_B_voltage",
	"grid_C_voltage",
	"active_grid_A_current",
	"active_grid_B_current",
	"active_grid_C_current",
	"active_grid_power_factor",
	"active_grid_frequency",
	"grid_exported_energy",
	"grid_accumulated_energy",
	"active_grid_A_B_voltage",
	"active_grid_B_C_voltage",
	"active_grid_C_A_voltage",
	"active_grid_A_power",
	"active_grid_B_power",
	"active_grid_C_power",
	"startup_time",
	"shutdown_time",
	"internal_temperature",
	"device_status",
	SystemTimeRegister,
}

var OptimizerAttributes = []string{
	NbOptimizersRegister,
	NbOnlineOptimizersAttr,
}

// EntitySensors back child sensors and land in the sensor state map.
var EntitySensors = []string{
	DailyYieldRegister,
	AccumulatedYieldRegister,
}

var BatteryEntitySensors = []string{
	StorageChargeDischargePowerRegister,
	StorageTotalChargeRegister,
	StorageTotalDischargeRegister,
}

var BatteryAttributes = []string{
	"storage_running_status",
	"storage_current_day_charge_capacity",
	"storage_current_day_discharge_capacity",
	"storage_working_mode_a",
	"storage_unit_1_working_mode_b",
	"storage_time_of_use_price",
	"storage_lcoe",
	"storage_maximum_charging_power",
	"storage_maximum_discharging_power",
	"storage_power_limit_grid_tied_point",
	"storage_charging_cutoff_capacity",
	"storage_discharging_cutoff_capacity",
	"storage_forced_charging_and_discharging_period",
	"storage_forced_charging_and_discharging_power",
	"storage_state_of_capacity",
}

// PVVoltageRegister names the voltage register of the zero-based string index i.
func PVVoltageRegister(i int) string {
	return fmt.Sprintf("pv_%02d_voltage", i+1)
}

func PVCurrentRegister(i int) string {
	return fmt.Sprintf("pv_%02d_current", i+1)
}
