package app

import (
	"errors"
	"strings"
	"testing"
	"time"

	"pdmon/hal"
	"pdmon/internal/monitor"

	"tinygo.org/x/drivers"
)

type fakeLogger struct {
	lines []string
}

func (l *fakeLogger) WriteLineString(s string) { l.lines = append(l.lines, s) }
func (l *fakeLogger) WriteLineBytes(b []byte)  { l.lines = append(l.lines, string(b)) }

func (l *fakeLogger) contains(sub string) bool {
	for _, s := range l.lines {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

type fakeFB struct {
	w, h     int
	buf      []byte
	presents int
}

func newFakeFB(w, h int) *fakeFB {
	return &fakeFB{w: w, h: h, buf: make([]byte, w*h*2)}
}

func (f *fakeFB) Width() int              { return f.w }
func (f *fakeFB) Height() int             { return f.h }
func (f *fakeFB) Format() hal.PixelFormat { return hal.PixelFormatRGB565 }
func (f *fakeFB) StrideBytes() int        { return f.w * 2 }
func (f *fakeFB) Buffer() []byte          { return f.buf }

func (f *fakeFB) Present() error {
	f.presents++
	return nil
}

func (f *fakeFB) ClearRGB(r, g, b uint8) {
	p := hal.RGB565(r, g, b)
	for i := 0; i < len(f.buf); i += 2 {
		f.buf[i] = byte(p)
		f.buf[i+1] = byte(p >> 8)
	}
}

type fakeDisplay struct{ fb *fakeFB }

func (d fakeDisplay) Framebuffer() hal.Framebuffer { return d.fb }

type fakeBacklight struct {
	on   bool
	sets int
}

func (b *fakeBacklight) Set(on bool) {
	b.on = on
	b.sets++
}

type fakeTime struct{ ch chan uint64 }

func (t fakeTime) Ticks() <-chan uint64 { return t.ch }

type reading struct {
	mv, ma uint16
}

// fakeBus answers INA219 register reads from a table of readings.
type fakeBus struct {
	ports map[uint16]reading
	fail  map[uint16]bool
}

var errBus = errors.New("nack")

func (b *fakeBus) Tx(addr uint16, w, r []byte) error {
	if b.fail[addr] {
		return errBus
	}
	rd, ok := b.ports[addr]
	if !ok {
		return errBus
	}
	if len(r) < 2 || len(w) == 0 {
		return nil
	}
	var v uint16
	switch w[0] {
	case 0x01:
		v = rd.ma * 10
	case 0x02:
		v = (rd.mv / 4) << 3
	}
	r[0], r[1] = byte(v>>8), byte(v)
	return nil
}

func (b *fakeBus) ReadRegister(addr uint8, reg uint8, buf []byte) error {
	return b.Tx(uint16(addr), []byte{reg}, buf)
}

func (b *fakeBus) WriteRegister(addr uint8, reg uint8, buf []byte) error {
	return b.Tx(uint16(addr), append([]byte{reg}, buf...), nil)
}

type fakeHAL struct {
	log *fakeLogger
	fb  *fakeFB
	bl  *fakeBacklight
	t   fakeTime
	bus *fakeBus
}

func newFakeHAL() *fakeHAL {
	return &fakeHAL{
		log: &fakeLogger{},
		fb:  newFakeFB(hal.ScreenWidth, hal.ScreenHeight),
		bl:  &fakeBacklight{},
		t:   fakeTime{ch: make(chan uint64, 64)},
		bus: &fakeBus{
			ports: map[uint16]reading{
				0x40: {mv: 5080, ma: 820},
				0x41: {mv: 0, ma: 0},
				0x44: {mv: 5020, ma: 15},
				0x45: {mv: 4952, ma: 200},
			},
			fail: map[uint16]bool{},
		},
	}
}

func (h *fakeHAL) Logger() hal.Logger       { return h.log }
func (h *fakeHAL) Display() hal.Display     { return fakeDisplay{fb: h.fb} }
func (h *fakeHAL) Backlight() hal.Backlight { return h.bl }
func (h *fakeHAL) Time() hal.Time           { return h.t }
func (h *fakeHAL) I2C() drivers.I2C         { return h.bus }

// advance feeds ms ticks one at a time and steps after each.
func advance(t *testing.T, h *fakeHAL, step func() error, from, ms uint64) uint64 {
	t.Helper()
	for i := uint64(1); i <= ms; i++ {
		h.t.ch <- from + i
		if err := step(); err != nil {
			t.Fatalf("step at %d: %v", from+i, err)
		}
	}
	return from + ms
}

func TestFirstStepRefreshesAllPorts(t *testing.T) {
	h := newFakeHAL()
	s := newSystem(h, DefaultConfig())

	if err := s.step(); err != nil {
		t.Fatal(err)
	}
	if len(s.ports) != 4 {
		t.Fatalf("ports = %d, want 4", len(s.ports))
	}
	want := []monitor.State{monitor.StateEnabled, monitor.StateDisabled, monitor.StateEnabled, monitor.StateEnabled}
	for i, p := range s.ports {
		if got := p.pres.State(); got != want[i] {
			t.Fatalf("%s state = %v, want %v", p.name, got, want[i])
		}
	}

	if got := s.screen.Voltage.Text(); got != "04.952 V" {
		t.Fatalf("voltage label = %q, want %q", got, "04.952 V")
	}
	// 5.08*820 + 5.02*15 + 4.952*200 mW
	if got := s.screen.Power.Text(); got != "05.231 W" {
		t.Fatalf("power label = %q, want %q", got, "05.231 W")
	}
	if got := s.screen.Ports[0].Readout.Text(); got != "#BBBBBB 0##e8e8e8 820mA# #BBBBBB ##e8e8e8 4165mW#" {
		t.Fatalf("port1 readout = %q", got)
	}
	if !h.log.contains("port2: disabled (0.000 V < 2.700 V)") {
		t.Fatalf("missing disable edge in log: %q", h.log.lines)
	}
	if !h.log.contains("port1: enabled (5.080 V)") {
		t.Fatalf("missing enable edge in log: %q", h.log.lines)
	}
}

func TestBacklightComesOnAfterDelay(t *testing.T) {
	h := newFakeHAL()
	step := NewWithConfig(h, DefaultConfig())

	now := advance(t, h, step, 0, 269)
	if h.bl.on {
		t.Fatal("backlight on before 270 ms")
	}
	advance(t, h, step, now, 1)
	if !h.bl.on {
		t.Fatal("backlight still off at 270 ms")
	}
}

func TestRenderPresentsFrames(t *testing.T) {
	h := newFakeHAL()
	step := NewWithConfig(h, DefaultConfig())

	advance(t, h, step, 0, 20)
	if h.fb.presents != 1 {
		t.Fatalf("presents after first render = %d, want 1", h.fb.presents)
	}
}

func TestRefreshLogsEdgesOnce(t *testing.T) {
	h := newFakeHAL()
	s := newSystem(h, DefaultConfig())
	step := s.step

	now := advance(t, h, step, 0, 10)
	n := len(h.log.lines)

	// Unplug port 3 and let two refreshes run.
	h.bus.ports[0x44] = reading{mv: 400}
	now = advance(t, h, step, now, 1000)
	disabled := 0
	for _, l := range h.log.lines[n:] {
		if strings.HasPrefix(l, "port3: disabled") {
			disabled++
		}
	}
	if disabled != 1 {
		t.Fatalf("port3 disabled logged %d times, want 1: %q", disabled, h.log.lines[n:])
	}
	if s.ports[2].pres.State() != monitor.StateDisabled {
		t.Fatalf("port3 state = %v, want disabled", s.ports[2].pres.State())
	}
	if s.screen.Ports[2].Panel.Visible() {
		t.Fatal("port3 panel still visible")
	}

	// The hide slide finishes well within a second.
	advance(t, h, step, now, 1000)
	if !s.screen.Ports[2].Panel.Hidden() {
		t.Fatal("port3 panel not hidden after slide")
	}
}

func TestSensorErrorLoggedOnce(t *testing.T) {
	h := newFakeHAL()
	h.bus.fail[0x45] = true
	s := newSystem(h, DefaultConfig())

	advance(t, h, s.step, 0, 1100)
	count := 0
	for _, l := range h.log.lines {
		if strings.HasPrefix(l, "port4: ina219 0x45: read reg") {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("port4 read error logged %d times, want 1: %q", count, h.log.lines)
	}
	if got := s.ports[3].pres.Telemetry(); got.VoltageV != 0 || got.CurrentMA != 0 {
		t.Fatalf("failed port telemetry = %+v, want zeros", got)
	}
}

func TestConsoleMode(t *testing.T) {
	h := newFakeHAL()
	cfg := DefaultConfig()
	cfg.Console = true
	s := newSystem(h, cfg)

	if s.screen != nil {
		t.Fatal("dashboard built in console mode")
	}
	if err := s.step(); err != nil {
		t.Fatal(err)
	}
	if h.fb.presents != 1 {
		t.Fatalf("presents = %d, want 1", h.fb.presents)
	}
	if !h.log.contains("INA219_01 vbus:5.080  curr:820.000mA") {
		t.Fatalf("missing debug line: %q", h.log.lines)
	}
}

func TestFaultHaltsStep(t *testing.T) {
	h := newFakeHAL()
	cfg := DefaultConfig()
	s := newSystem(h, cfg)
	s.k.AddTimer(time.Millisecond, 1, func(uint64) { panic("boom") })

	h.t.ch <- 1
	if err := s.step(); !errors.Is(err, ErrHalted) {
		t.Fatalf("step() = %v, want ErrHalted", err)
	}
	if err := s.step(); !errors.Is(err, ErrHalted) {
		t.Fatalf("second step() = %v, want ErrHalted", err)
	}
	if !h.log.contains("pdmon fault: boom") {
		t.Fatalf("fault not logged: %q", h.log.lines)
	}
	if !h.bl.on {
		t.Fatal("backlight off on fault screen")
	}
}

func TestTakeRunes(t *testing.T) {
	tests := []struct {
		s          string
		n          int16
		head, tail string
	}{
		{"hello", 10, "hello", ""},
		{"hello", 2, "he", "llo"},
		{"héllo", 2, "hé", "llo"},
		{"x", 0, "", "x"},
	}
	for _, tt := range tests {
		head, tail := takeRunes(tt.s, tt.n)
		if head != tt.head || tail != tt.tail {
			t.Fatalf("takeRunes(%q, %d) = %q, %q, want %q, %q", tt.s, tt.n, head, tail, tt.head, tt.tail)
		}
	}
}

func TestMaskRestsAtConfiguredZero(t *testing.T) {
	h := newFakeHAL()
	cfg := DefaultConfig()
	cfg.MaskFrom, cfg.MaskTo = -100, 20
	s := newSystem(h, cfg)

	for i, pv := range s.screen.Ports {
		if got := pv.Mask.Offset(); got != -100 {
			t.Fatalf("port%d mask offset = %d, want -100", i+1, got)
		}
		if pv.Mask.Width != 120 {
			t.Fatalf("port%d mask width = %d, want 120", i+1, pv.Mask.Width)
		}
	}
}
