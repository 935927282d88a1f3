package app

import (
	"time"

	"pdmon/internal/ina219"
	"pdmon/internal/monitor"
)

// Config is the monitor's fixed configuration.
type Config struct {
	// Addresses lists the sensor of each port, in display order.
	Addresses   []uint16
	Calibration ina219.Calibration

	ThresholdV   float64
	MaxCurrentMA float64
	ActiveColor  string
	DimColor     string

	// MaskFrom is the mask offset at zero current, MaskTo at MaxCurrentMA.
	MaskFrom int16
	MaskTo   int16
	MaskAnim time.Duration

	Refresh        time.Duration
	RenderPeriod   time.Duration
	BacklightDelay time.Duration

	// Console replaces the dashboard with a plain text page.
	Console bool
}

// DefaultConfig returns the hub board settings.
func DefaultConfig() Config {
	return Config{
		Addresses: []uint16{
			ina219.AddressPort1,
			ina219.AddressPort2,
			ina219.AddressPort3,
			ina219.AddressPort4,
		},
		Calibration: ina219.Cal32V2A,

		ThresholdV:   2.7,
		MaxCurrentMA: 1500,
		ActiveColor:  "e8e8e8",
		DimColor:     "BBBBBB",

		MaskFrom: -168,
		MaskTo:   0,
		MaskAnim: monitor.DefaultMaskAnim,

		Refresh:        500 * time.Millisecond,
		RenderPeriod:   20 * time.Millisecond,
		BacklightDelay: 270 * time.Millisecond,
	}
}

func (c Config) portConfig() monitor.Config {
	return monitor.Config{
		ActiveColor:  c.ActiveColor,
		DimColor:     c.DimColor,
		ThresholdV:   c.ThresholdV,
		MaxCurrentMA: c.MaxCurrentMA,
		MaskFrom:     c.MaskFrom,
		MaskTo:       c.MaskTo,
		MaskAnim:     c.MaskAnim,
	}
}

func (c Config) maskWidth() int16 {
	w := c.MaskTo - c.MaskFrom
	if w < 0 {
		w = -w
	}
	return w
}
