// Package app wires the sensors, the per-port presenters and the dashboard
// onto a HAL and drives them from the kernel timers.
package app

import (
	"errors"
	"fmt"
	"time"

	"pdmon/hal"
	"pdmon/internal/buildinfo"
	"pdmon/internal/ina219"
	"pdmon/internal/monitor"
	"pdmon/internal/ui"
	"pdmon/kernel"
)

// ErrHalted is returned by the step function after a fault.
var ErrHalted = errors.New("app: halted after fault")

type port struct {
	name   string
	sensor *ina219.Device
	pres   *monitor.Presenter
	state  monitor.State
	ioErr  error
}

type system struct {
	h   hal.HAL
	cfg Config
	k   *kernel.Kernel
	log hal.Logger

	ports   []*port
	screen  *ui.Screen
	console *console
	ticks   <-chan uint64

	err    error
	halted bool
}

// New initializes the monitor with the default config and returns its step
// function.
func New(h hal.HAL) func() error {
	return NewWithConfig(h, DefaultConfig())
}

// NewWithConfig initializes the monitor and returns its step function. The
// caller runs step from a single loop; it consumes pending ticks and runs
// the timers that are due.
func NewWithConfig(h hal.HAL, cfg Config) func() error {
	return newSystem(h, cfg).step
}

// Run starts the monitor and blocks forever (TinyGo entrypoint).
func Run(h hal.HAL) {
	RunWithConfig(h, DefaultConfig())
}

func RunWithConfig(h hal.HAL, cfg Config) {
	step := NewWithConfig(h, cfg)
	for {
		if err := step(); err != nil {
			select {}
		}
		time.Sleep(time.Millisecond)
	}
}

func newSystem(h hal.HAL, cfg Config) *system {
	s := &system{
		h:   h,
		cfg: cfg,
		k:   kernel.New(),
		log: h.Logger(),
	}
	s.logf("pdmon %s begin", buildinfo.Short())

	if bl := h.Backlight(); bl != nil {
		bl.Set(false)
	}

	var fb hal.Framebuffer
	if d := h.Display(); d != nil {
		fb = d.Framebuffer()
	}
	if fb != nil {
		if cfg.Console {
			s.console = newConsole(fb)
		} else {
			s.screen = ui.NewScreen(fb, len(cfg.Addresses), cfg.maskWidth(), cfg.MaskFrom, s.k.Now)
		}
	}

	pcfg := cfg.portConfig()
	for i, addr := range cfg.Addresses {
		dev := ina219.New(h.I2C(), addr)
		p := &port{name: fmt.Sprintf("port%d", i+1), sensor: dev}
		if err := dev.Configure(cfg.Calibration); err != nil {
			s.logf("%s: %v", p.name, err)
		} else {
			s.logf("%s: ina219 0x%02x ready", p.name, addr)
		}

		var (
			text  monitor.TextSink
			panel monitor.Panel
			mask  monitor.MaskAnimator
		)
		if s.screen != nil {
			pv := s.screen.Ports[i]
			text, panel, mask = pv.Readout, pv.Panel, pv.Mask
		}
		p.pres = monitor.NewPresenter(pcfg, dev, text, panel, mask)
		s.ports = append(s.ports, p)
	}

	refresh, _ := s.k.AddTimer(cfg.Refresh, kernel.RepeatForever, s.refresh)
	s.k.Ready(refresh)
	if s.screen != nil {
		s.k.AddTimer(cfg.RenderPeriod, kernel.RepeatForever, s.render)
	}
	s.k.AddTimer(cfg.BacklightDelay, 1, func(uint64) {
		if bl := h.Backlight(); bl != nil {
			bl.Set(true)
		}
	})

	if ht := h.Time(); ht != nil {
		s.ticks = ht.Ticks()
	}
	return s
}

func (s *system) step() (err error) {
	if s.halted {
		return ErrHalted
	}
	defer func() {
		if r := recover(); r != nil {
			s.halted = true
			s.fault(r)
			err = ErrHalted
		}
	}()

	s.k.Drain(s.ticks)
	s.k.Step()

	err, s.err = s.err, nil
	return err
}

func (s *system) refresh(now uint64) {
	presenters := make([]*monitor.Presenter, len(s.ports))
	for i, p := range s.ports {
		p.pres.Tick()
		presenters[i] = p.pres
		s.logEdges(p)
	}

	sum := monitor.Summarize(presenters)
	if s.screen != nil {
		s.screen.Voltage.SetMarkupText(sum.VoltageText())
		s.screen.Power.SetMarkupText(sum.PowerText())
	}
	if s.console != nil {
		if err := s.console.show(s.ports, sum, time.Duration(now)*time.Millisecond); err != nil && s.err == nil {
			s.err = err
		}
		for i, p := range s.ports {
			t := p.pres.Telemetry()
			s.logf("%s", ina219.DebugLine(time.Duration(now)*time.Millisecond, i+1,
				uint16(t.VoltageV*1000+0.5), uint16(t.CurrentMA)))
		}
	}
}

// logEdges logs enable/disable transitions and sensor errors, once each.
func (s *system) logEdges(p *port) {
	if err := p.sensor.Err(); err != nil {
		if p.ioErr == nil {
			s.logf("%s: %v", p.name, err)
		}
	} else if p.ioErr != nil {
		s.logf("%s: sensor back", p.name)
	}
	p.ioErr = p.sensor.Err()

	st := p.pres.State()
	if st == p.state {
		return
	}
	p.state = st
	t := p.pres.Telemetry()
	switch st {
	case monitor.StateEnabled:
		s.logf("%s: enabled (%.3f V)", p.name, t.VoltageV)
	case monitor.StateDisabled:
		s.logf("%s: disabled (%.3f V < %.3f V)", p.name, t.VoltageV, s.cfg.ThresholdV)
	}
}

func (s *system) render(now uint64) {
	if !s.screen.Step(now) {
		return
	}
	if _, err := s.screen.Render(); err != nil && s.err == nil {
		s.err = err
	}
}

func (s *system) logf(format string, args ...any) {
	if s.log == nil {
		return
	}
	s.log.WriteLineString(fmt.Sprintf(format, args...))
}
