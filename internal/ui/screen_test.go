package ui

import (
	"image/color"
	"testing"

	"pdmon/hal"
	"pdmon/internal/anim"
)

func TestScreenRendersOnlyWhenDirty(t *testing.T) {
	fb := newFakeFB(hal.ScreenWidth, hal.ScreenHeight)
	clk := &manualClock{}
	s := NewScreen(fb, 4, 168, -168, clk.Now)

	if len(s.Ports) != 4 || s.Ports[3].Tag != "P4" {
		t.Fatalf("ports = %d, last tag %q", len(s.Ports), s.Ports[len(s.Ports)-1].Tag)
	}

	if !s.Step(0) {
		t.Fatal("new screen not dirty")
	}
	drawn, err := s.Render()
	if err != nil || !drawn {
		t.Fatalf("Render() = %v, %v, want true, nil", drawn, err)
	}
	if fb.presents != 1 {
		t.Fatalf("presents = %d, want 1", fb.presents)
	}

	if s.Step(20) {
		t.Fatal("idle screen dirty")
	}
	if drawn, _ := s.Render(); drawn {
		t.Fatal("idle screen redrawn")
	}

	s.Voltage.SetMarkupText("05.080 V")
	if !s.Step(40) {
		t.Fatal("text change did not dirty the screen")
	}
	if drawn, _ := s.Render(); !drawn {
		t.Fatal("changed screen not redrawn")
	}
	if fb.presents != 2 {
		t.Fatalf("presents = %d, want 2", fb.presents)
	}
}

func TestScreenMaskFill(t *testing.T) {
	fb := newFakeFB(hal.ScreenWidth, hal.ScreenHeight)
	clk := &manualClock{}
	s := NewScreen(fb, 1, 168, -168, clk.Now)

	pv := s.Ports[0]
	pv.Mask.Animate(-168, -84, 0, anim.PathLinear)
	s.Step(0)
	if _, err := s.Render(); err != nil {
		t.Fatal(err)
	}

	trackX := int(panelX + readoutX)
	y := int(panelTop + trackY + 1)
	fill := hal.RGB565(colorMask.R, colorMask.G, colorMask.B)
	track := hal.RGB565(colorTrack.R, colorTrack.G, colorTrack.B)
	if got := fb.pixel(trackX+10, y); got != fill {
		t.Fatalf("left of track = %#04x, want fill %#04x", got, fill)
	}
	if got := fb.pixel(trackX+120, y); got != track {
		t.Fatalf("right of track = %#04x, want track %#04x", got, track)
	}
}

func TestScreenSkipsHiddenPanel(t *testing.T) {
	fb := newFakeFB(hal.ScreenWidth, hal.ScreenHeight)
	clk := &manualClock{}
	s := NewScreen(fb, 1, 168, -168, clk.Now)
	s.Ports[0].Panel.SetHidden(true)
	s.Step(0)
	if _, err := s.Render(); err != nil {
		t.Fatal(err)
	}
	bg := hal.RGB565(colorBG.R, colorBG.G, colorBG.B)
	if got := fb.pixel(panelX+1, panelTop+1); got != bg {
		t.Fatalf("hidden panel area = %#04x, want background %#04x", got, bg)
	}
}

func TestFBDisplayClipsFill(t *testing.T) {
	fb := newFakeFB(10, 10)
	d := NewDisplay(fb)
	colorWhite := color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	white := hal.RGB565(0xFF, 0xFF, 0xFF)

	_ = d.FillRectangle(-5, -5, 8, 8, colorFG)
	if got := fb.pixel(2, 2); got == 0 {
		t.Fatalf("clipped fill missing at (2,2)")
	}
	if got := fb.pixel(3, 3); got != 0 {
		t.Fatalf("fill leaked to (3,3): %#04x", got)
	}

	d.SetPixel(9, 9, colorWhite)
	d.SetPixel(10, 10, colorWhite)
	if got := fb.pixel(9, 9); got != white {
		t.Fatalf("SetPixel(9,9) = %#04x, want %#04x", got, white)
	}
	if x, y := d.Size(); x != 10 || y != 10 {
		t.Fatalf("Size() = %d,%d, want 10,10", x, y)
	}
}

func TestScreenMaskRestOffset(t *testing.T) {
	fb := newFakeFB(hal.ScreenWidth, hal.ScreenHeight)
	clk := &manualClock{}
	s := NewScreen(fb, 2, 120, -100, clk.Now)
	for i, pv := range s.Ports {
		if pv.Mask.Width != 120 || pv.Mask.Offset() != -100 {
			t.Fatalf("port %d mask width=%d offset=%d, want 120, -100", i, pv.Mask.Width, pv.Mask.Offset())
		}
	}
}
