package monitor

// Summary is the bus-wide readout, rebuilt from scratch every tick.
type Summary struct {
	VoltageV     float64
	TotalPowerMW float64
}

// Summarize folds the ports into one voltage and one power total.
//
// The voltage is taken from the last valid port in order. With no valid port
// it falls back to the first port's voltage. Power is summed over every
// port, valid or not.
func Summarize(ports []*Presenter) Summary {
	var s Summary
	if len(ports) == 0 {
		return s
	}
	s.VoltageV = ports[0].Telemetry().VoltageV
	for _, p := range ports {
		t := p.Telemetry()
		s.TotalPowerMW += t.PowerMW
		if p.Valid() {
			s.VoltageV = t.VoltageV
		}
	}
	return s
}

func (s Summary) VoltageText() string { return FormatVolts(s.VoltageV) }
func (s Summary) PowerText() string   { return FormatWatts(s.TotalPowerMW) }
