// Package ui is the dashboard's small widget set: recolor labels, port
// panels that slide in and out, and the proportional mask, all drawn with
// tinyfont onto a RGB565 framebuffer.
package ui

import (
	"image/color"
	"time"

	"pdmon/internal/anim"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
)

// Clock returns the animation time in ms.
type Clock func() uint64

// PanelSlide is the show/hide transition time.
const PanelSlide = 300 * time.Millisecond

// Label draws recolor markup at a baseline position.
type Label struct {
	X, Y  int16
	Font  tinyfont.Fonter
	Color color.RGBA

	text    string
	segs    []Segment
	changed bool
}

// NewLabel creates an empty label.
func NewLabel(x, y int16, font tinyfont.Fonter, c color.RGBA) *Label {
	return &Label{X: x, Y: y, Font: font, Color: c}
}

// SetMarkupText replaces the label text. Setting the same text again does
// not trigger a redraw.
func (l *Label) SetMarkupText(s string) {
	if s == l.text && l.segs != nil {
		return
	}
	l.text = s
	l.segs = ParseMarkup(s, l.Color)
	if l.segs == nil {
		l.segs = []Segment{}
	}
	l.changed = true
}

// Text returns the raw markup.
func (l *Label) Text() string { return l.text }

// Segments returns the parsed runs.
func (l *Label) Segments() []Segment { return l.segs }

func (l *Label) draw(d drivers.Displayer, dx, dy int16) {
	x := l.X + dx
	for _, seg := range l.segs {
		tinyfont.WriteLine(d, l.Font, x, l.Y+dy, seg.Text, seg.Color)
		_, w := tinyfont.LineWidth(l.Font, seg.Text)
		x += int16(w)
	}
}

// Mask is a horizontal fill whose offset encodes a ratio. Offset 0 covers
// the whole track; -Width leaves it empty.
type Mask struct {
	Width int16
	Color color.RGBA

	clock Clock
	slot  anim.Slot
}

// NewMask creates a mask resting at offset.
func NewMask(width, offset int16, c color.RGBA, clock Clock) *Mask {
	m := &Mask{Width: width, Color: c, clock: clock}
	m.slot.Set(offset)
	return m
}

// Animate moves the mask from one offset to another. It replaces any
// animation still running.
func (m *Mask) Animate(from, to int16, d time.Duration, path anim.Path) {
	m.slot.Start(m.clock(), from, to, d, path)
}

// Offset returns the current offset.
func (m *Mask) Offset() int16 { return m.slot.Value() }

// Target returns where the mask is heading.
func (m *Mask) Target() int16 { return m.slot.Target() }

func (m *Mask) step(now uint64) bool {
	_, changed := m.slot.Step(now)
	return changed
}

// Panel is a port's container. It slides in from the left when shown and
// out to the left when hidden.
type Panel struct {
	X, Y          int16
	Width, Height int16
	Background    color.RGBA

	clock Clock
	slot  anim.Slot
	shown bool
	// hidden is true once a hide transition has finished.
	hidden bool
}

// NewPanel creates a shown panel at its home position.
func NewPanel(x, y, w, h int16, bg color.RGBA, clock Clock) *Panel {
	p := &Panel{X: x, Y: y, Width: w, Height: h, Background: bg, clock: clock, shown: true}
	p.slot.Set(0)
	return p
}

func (p *Panel) awayOffset() int16 { return -(p.X + p.Width) }

// Show starts the slide-in transition.
func (p *Panel) Show() {
	p.shown = true
	p.hidden = false
	p.slot.Start(p.clock(), p.slot.Value(), 0, PanelSlide, anim.PathEaseOut)
}

// Hide starts the slide-out transition.
func (p *Panel) Hide() {
	p.shown = false
	p.slot.Start(p.clock(), p.slot.Value(), p.awayOffset(), PanelSlide, anim.PathEaseOut)
}

// Visible reports whether the panel is shown or on its way in.
func (p *Panel) Visible() bool { return p.shown }

// SetHidden shows or hides the panel at once, without a transition.
func (p *Panel) SetHidden(hidden bool) {
	p.shown = !hidden
	p.hidden = hidden
	if hidden {
		p.slot.Set(p.awayOffset())
	} else {
		p.slot.Set(0)
	}
}

// Hidden reports whether the panel is fully out of view.
func (p *Panel) Hidden() bool { return p.hidden }

// Offset returns the current horizontal displacement.
func (p *Panel) Offset() int16 { return p.slot.Value() }

func (p *Panel) step(now uint64) bool {
	_, changed := p.slot.Step(now)
	if !p.shown && !p.slot.Running() && !p.hidden {
		p.hidden = true
		changed = true
	}
	return changed
}
