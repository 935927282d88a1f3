package ui

import "image/color"

// Segment is a run of text drawn in one color.
type Segment struct {
	Text  string
	Color color.RGBA
}

// ParseMarkup splits recolor markup into segments. A "#RRGGBB " token opens a
// colored run and the next '#' closes it; "##" closes one run and opens the
// next. Text outside runs uses def. A '#' that does not start a valid token
// is kept as text. Empty runs are dropped.
func ParseMarkup(s string, def color.RGBA) []Segment {
	var segs []Segment
	cur := def
	colored := false
	start := 0

	flush := func(end int) {
		if end > start {
			segs = append(segs, Segment{Text: s[start:end], Color: cur})
		}
	}

	for i := 0; i < len(s); i++ {
		if s[i] != '#' {
			continue
		}
		if colored {
			flush(i)
			cur = def
			colored = false
			start = i + 1
			continue
		}
		if i+7 < len(s) && s[i+7] == ' ' {
			if c, ok := ParseHexColor(s[i+1 : i+7]); ok {
				flush(i)
				cur = c
				colored = true
				i += 7
				start = i + 1
			}
		}
	}
	flush(len(s))
	return segs
}

// ParseHexColor parses "RRGGBB" (either case).
func ParseHexColor(s string) (color.RGBA, bool) {
	if len(s) != 6 {
		return color.RGBA{}, false
	}
	var v [3]uint8
	for i := 0; i < 6; i++ {
		n, ok := hexNibble(s[i])
		if !ok {
			return color.RGBA{}, false
		}
		v[i/2] = v[i/2]<<4 | n
	}
	return color.RGBA{R: v[0], G: v[1], B: v[2], A: 0xFF}, true
}

func hexNibble(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}
