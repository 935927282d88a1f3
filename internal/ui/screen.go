package ui

import (
	"image/color"

	"pdmon/hal"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/freemono"
	"tinygo.org/x/tinyfont/proggy"
)

var (
	colorBG      = color.RGBA{R: 0x00, G: 0x00, B: 0x00, A: 0xFF}
	colorFG      = color.RGBA{R: 0xEE, G: 0xEE, B: 0xEE, A: 0xFF}
	colorPanelBG = color.RGBA{R: 0x18, G: 0x18, B: 0x18, A: 0xFF}
	colorTrack   = color.RGBA{R: 0x30, G: 0x30, B: 0x30, A: 0xFF}
	colorMask    = color.RGBA{R: 0x7A, G: 0x7A, B: 0x7A, A: 0xFF}
	colorTag     = color.RGBA{R: 0x88, G: 0x88, B: 0x88, A: 0xFF}
)

// Layout of the 280x240 landscape panel.
const (
	headerBaseline = 26
	panelX         = 8
	panelTop       = 44
	panelPitch     = 49
	panelHeight    = 45
	readoutX       = 44
	readoutBase    = 20
	trackY         = 28
	trackHeight    = 10
)

// PortView groups the widgets of one port.
type PortView struct {
	Tag     string
	Panel   *Panel
	Readout *Label
	Mask    *Mask
}

// Screen owns the dashboard widgets and renders them.
type Screen struct {
	fb   hal.Framebuffer
	disp *FBDisplay

	Voltage *Label
	Power   *Label
	Ports   []*PortView

	dirty bool
}

// NewScreen lays out the header labels and n port panels. maskWidth is the
// track length in pixels; every mask rests at maskRest until first animated.
func NewScreen(fb hal.Framebuffer, n int, maskWidth, maskRest int16, clock Clock) *Screen {
	s := &Screen{
		fb:    fb,
		disp:  NewDisplay(fb),
		dirty: true,
	}
	w := int16(fb.Width())

	s.Voltage = NewLabel(panelX, headerBaseline, &freemono.Bold12pt7b, colorFG)
	s.Power = NewLabel(w/2+panelX, headerBaseline, &freemono.Bold12pt7b, colorFG)

	for i := 0; i < n; i++ {
		y := int16(panelTop + i*panelPitch)
		p := NewPanel(panelX, y, w-2*panelX, panelHeight, colorPanelBG, clock)
		s.Ports = append(s.Ports, &PortView{
			Tag:     portTag(i),
			Panel:   p,
			Readout: NewLabel(readoutX, readoutBase, &freemono.Regular9pt7b, colorFG),
			Mask:    NewMask(maskWidth, maskRest, colorMask, clock),
		})
	}
	return s
}

func portTag(i int) string {
	return "P" + string(rune('1'+i))
}

// Step advances every running transition to now and reports whether the
// frame needs redrawing.
func (s *Screen) Step(now uint64) bool {
	if s.Voltage.changed || s.Power.changed {
		s.dirty = true
	}
	for _, pv := range s.Ports {
		if pv.Panel.step(now) {
			s.dirty = true
		}
		if pv.Mask.step(now) {
			s.dirty = true
		}
		if pv.Readout.changed {
			s.dirty = true
		}
	}
	return s.dirty
}

// Invalidate forces a full redraw on the next Render.
func (s *Screen) Invalidate() { s.dirty = true }

// Render redraws the frame if anything changed and presents it.
func (s *Screen) Render() (bool, error) {
	if !s.dirty {
		return false, nil
	}
	s.fb.ClearRGB(colorBG.R, colorBG.G, colorBG.B)

	s.Voltage.draw(s.disp, 0, 0)
	s.Power.draw(s.disp, 0, 0)
	s.Voltage.changed = false
	s.Power.changed = false

	for _, pv := range s.Ports {
		s.drawPort(pv)
		pv.Readout.changed = false
	}

	s.dirty = false
	return true, s.fb.Present()
}

func (s *Screen) drawPort(pv *PortView) {
	p := pv.Panel
	if p.Hidden() {
		return
	}
	dx := p.Offset()
	x := p.X + dx
	_ = s.disp.FillRectangle(x, p.Y, p.Width, p.Height, p.Background)

	clip := clipDisplay{base: s.disp, x0: x, y0: p.Y, x1: x + p.Width, y1: p.Y + p.Height}

	tinyfont.WriteLine(clip, &proggy.TinySZ8pt7b, x+6, p.Y+readoutBase, pv.Tag, colorTag)

	trackX := x + readoutX
	m := pv.Mask
	_ = s.disp.FillRectangle(trackX, p.Y+trackY, m.Width, trackHeight, colorTrack)
	fx0 := trackX + m.Offset()
	fx1 := fx0 + m.Width
	if fx0 < trackX {
		fx0 = trackX
	}
	if fx1 > trackX+m.Width {
		fx1 = trackX + m.Width
	}
	if fx1 > fx0 {
		_ = s.disp.FillRectangle(fx0, p.Y+trackY, fx1-fx0, trackHeight, m.Color)
	}

	pv.Readout.draw(clip, x, p.Y)
}
