package sensor

import (
	"fmt"

	"github.com/anicoll/huawei-solar-integration/internal/pkg/model"
	"github.com/anicoll/huawei-solar-integration/internal/pkg/poller"
)

// AttributeNames is the attribute set of the main entity for the given
// options, excluding the per-string PV entries.
func AttributeNames(opts poller.Options) []string {
	names := make([]string, 0, len(poller.DynamicAttributes)+len(poller.StaticAttributes)+8)
	names = append(names, poller.DynamicAttributes...)
	names = append(names, poller.StaticAttributes...)
	names = append(names, poller.GridAttributes...)
	if opts.OptimizersInstalled {
		names = append(names, poller.OptimizerAttributes...)
	}
	if opts.BatteryInstalled {
		names = append(names, poller.BatteryAttributes...)
	}
	return names
}

// MainAttributes renders the main entity's attribute view. Registers that
// were never read are present with a nil value.
func MainAttributes(snap model.Snapshot, opts poller.Options) map[string]any {
	names := AttributeNames(opts)
	out := make(map[string]any, len(names)+2*len(snap.PVVoltage))
	for _, name := range names {
		out[name] = attributeValue(snap.Attributes, name)
	}
	for i := range snap.PVVoltage {
		out[fmt.Sprintf("pv_string_%02d_voltage", i+1)] = valueData(snap.PVVoltage[i])
		if i < len(snap.PVCurrent) {
			out[fmt.Sprintf("pv_string_%02d_current", i+1)] = valueData(snap.PVCurrent[i])
		}
	}
	return out
}

func attributeValue(attrs map[string]model.Value, name string) any {
	v, ok := attrs[name]
	if !ok {
		return nil
	}
	return v.Data
}

func valueData(v *model.Value) any {
	if v == nil {
		return nil
	}
	return v.Data
}
