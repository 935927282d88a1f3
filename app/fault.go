package app

import (
	"fmt"
	"image/color"
	"runtime/debug"
	"strings"
	"unicode/utf8"

	"pdmon/hal"
	"pdmon/internal/ui"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

// fault logs a recovered panic and paints it on the LCD. The backlight is
// forced on so the screen is readable even during the boot delay.
func (s *system) fault(v any) {
	stack := debug.Stack()
	s.logf("pdmon fault: %v", v)
	for _, line := range strings.Split(string(stack), "\n") {
		if line != "" {
			s.logf("%s", line)
		}
	}

	d := s.h.Display()
	if d == nil {
		return
	}
	fb := d.Framebuffer()
	if fb == nil {
		return
	}
	if bl := s.h.Backlight(); bl != nil {
		bl.Set(true)
	}
	drawFault(fb, []string{"pdmon fault:", fmt.Sprintf("%v", v)})
}

func drawFault(fb hal.Framebuffer, lines []string) {
	fb.ClearRGB(0x80, 0, 0)

	font := &proggy.TinySZ8pt7b
	const lineHeight, lineOffset = 12, 9
	_, outbox := tinyfont.LineWidth(font, "0")
	charWidth := int16(outbox)
	if charWidth <= 0 {
		_ = fb.Present()
		return
	}

	disp := ui.NewDisplay(fb)
	fg := color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	cols := int16(fb.Width()) / charWidth
	y := int16(0)
	for _, line := range lines {
		for len(line) > 0 {
			if int(y)+lineHeight > fb.Height() {
				_ = fb.Present()
				return
			}
			chunk, rest := takeRunes(line, cols)
			tinyfont.WriteLine(disp, font, 0, y+lineOffset, chunk, fg)
			y += lineHeight
			line = strings.TrimLeft(rest, " ")
		}
	}
	_ = fb.Present()
}

// takeRunes splits s after at most n runes.
func takeRunes(s string, n int16) (prefix, rest string) {
	if n <= 0 || s == "" {
		return "", s
	}
	var i int
	var count int16
	for i < len(s) && count < n {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
		count++
	}
	return s[:i], s[i:]
}
