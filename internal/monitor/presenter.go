package monitor

import (
	"time"

	"pdmon/internal/anim"
)

// Sensor reads one port. It always returns a value; I/O problems show up
// as zero readings.
type Sensor interface {
	ReadVoltageCurrent() (voltageV, currentMA float64)
}

// TextSink displays recolor markup.
type TextSink interface {
	SetMarkupText(s string)
}

// Panel is the port's container widget. Show and Hide start an animated
// transition and return immediately. Visible probes the widget itself, so a
// panel hidden or shown by someone else is seen as it really is.
type Panel interface {
	Show()
	Hide()
	Visible() bool
}

// MaskAnimator moves the proportional mask. A call replaces any running
// animation.
type MaskAnimator interface {
	Animate(from, to int16, d time.Duration, path anim.Path)
}

// State is the presenter's lifecycle state.
type State uint8

const (
	StateNoData State = iota
	StateEnabled
	StateDisabled
)

func (s State) String() string {
	switch s {
	case StateNoData:
		return "no-data"
	case StateEnabled:
		return "enabled"
	case StateDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// Config is fixed at construction.
type Config struct {
	ActiveColor  string
	DimColor     string
	ThresholdV   float64
	MaxCurrentMA float64

	// MaskFrom is the mask offset at zero current, MaskTo at MaxCurrentMA.
	MaskFrom int16
	MaskTo   int16
	// MaskAnim is the mask transition time. Zero selects DefaultMaskAnim; a
	// negative value moves the mask at once.
	MaskAnim time.Duration
}

// DefaultMaskAnim is the mask transition time.
const DefaultMaskAnim = 490 * time.Millisecond

// Presenter drives one port's widgets from its sensor.
type Presenter struct {
	cfg Config

	sensor Sensor
	text   TextSink
	panel  Panel
	mask   MaskAnimator

	state     State
	telemetry Telemetry
	ratio     float64
}

// NewPresenter binds a port's sensor and widgets. The presenter never owns
// the widgets; it only calls them.
func NewPresenter(cfg Config, sensor Sensor, text TextSink, panel Panel, mask MaskAnimator) *Presenter {
	switch {
	case cfg.MaskAnim == 0:
		cfg.MaskAnim = DefaultMaskAnim
	case cfg.MaskAnim < 0:
		cfg.MaskAnim = 0
	}
	return &Presenter{
		cfg:    cfg,
		sensor: sensor,
		text:   text,
		panel:  panel,
		mask:   mask,
	}
}

// Tick runs one refresh cycle: sample, format, animate the mask, gate the panel.
func (p *Presenter) Tick() {
	v, ma := p.sensor.ReadVoltageCurrent()
	p.telemetry = NewTelemetry(v, ma)

	if p.text != nil {
		p.text.SetMarkupText(FormatReadout(p.telemetry.CurrentMA, p.telemetry.PowerMW, p.cfg.ActiveColor, p.cfg.DimColor))
	}

	ratio := p.telemetry.CurrentMA / p.cfg.MaxCurrentMA
	if ratio != p.ratio {
		if p.mask != nil {
			from := p.maskOffset(p.ratio)
			to := p.maskOffset(ratio)
			p.mask.Animate(from, to, p.cfg.MaskAnim, anim.PathLinear)
		}
		p.ratio = ratio
	}

	enabled := Gate(p.telemetry.VoltageV, p.cfg.ThresholdV)
	if p.panel != nil && enabled != p.panel.Visible() {
		if enabled {
			p.panel.Show()
		} else {
			p.panel.Hide()
		}
	}
	if enabled {
		p.state = StateEnabled
	} else {
		p.state = StateDisabled
	}
}

func (p *Presenter) maskOffset(ratio float64) int16 {
	return int16(MapRange(ratio, 0, 1, float64(p.cfg.MaskFrom), float64(p.cfg.MaskTo)))
}

// Valid applies the gate to the latest sample. Before the first tick there
// is no sample and the port is not valid.
func (p *Presenter) Valid() bool {
	if p.state == StateNoData {
		return false
	}
	return Gate(p.telemetry.VoltageV, p.cfg.ThresholdV)
}

func (p *Presenter) State() State         { return p.state }
func (p *Presenter) Telemetry() Telemetry { return p.telemetry }
func (p *Presenter) Ratio() float64       { return p.ratio }
func (p *Presenter) Config() Config       { return p.cfg }
