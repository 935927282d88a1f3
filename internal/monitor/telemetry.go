// Package monitor turns per-port sensor samples into what the dashboard shows:
// a colored fixed-width readout, a proportional fill offset and a
// show/hide decision for the port panel.
//
// Nothing in this package can fail and nothing blocks. All I/O goes through
// the collaborator interfaces in presenter.go.
package monitor

// Telemetry is one reading of a port.
type Telemetry struct {
	VoltageV  float64
	CurrentMA float64
	PowerMW   float64
}

// NewTelemetry builds a sample and derives power from voltage and current
// (V * mA = mW).
func NewTelemetry(voltageV, currentMA float64) Telemetry {
	return Telemetry{
		VoltageV:  voltageV,
		CurrentMA: currentMA,
		PowerMW:   voltageV * currentMA,
	}
}

// Gate reports whether a bus voltage counts as a live port.
// Exactly-at-threshold is valid.
func Gate(voltageV, thresholdV float64) bool {
	return voltageV >= thresholdV
}

// MapRange clamps v into [oldMin, oldMax] and rescales it linearly onto
// [newMin, newMax]. Equal old bounds are a caller bug.
func MapRange(v, oldMin, oldMax, newMin, newMax float64) float64 {
	if oldMax == oldMin {
		panic("monitor: MapRange with empty source range")
	}
	if v < oldMin {
		v = oldMin
	}
	if v > oldMax {
		v = oldMax
	}
	return (newMax-newMin)*(v-oldMin)/(oldMax-oldMin) + newMin
}
