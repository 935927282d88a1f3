package monitor

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// fieldWidth is the zero-padded width of a readout number.
const fieldWidth = 4

// DigitCount returns the number of decimal digits of n. Zero has one digit;
// the sign is ignored.
func DigitCount(n int) int {
	if n == 0 {
		return 1
	}
	a := math.Abs(float64(n))
	return int(math.Log10(a)) + 1
}

// FormatReadout renders current and power as recolor markup:
//
//	#BBBBBB 00##e8e8e8 15mA# #BBBBBB 00##e8e8e8 75mW#
//
// Leading zeros use dim, significant digits and the unit use active.
// Values of 10000 and above do not fit the field; they are emitted with an
// empty dim segment and all their digits in the bright one.
func FormatReadout(currentMA, powerMW float64, active, dim string) string {
	var b strings.Builder
	b.Grow(64)
	writeField(&b, int(currentMA), "mA", active, dim)
	b.WriteByte(' ')
	writeField(&b, int(powerMW), "mW", active, dim)
	return b.String()
}

func writeField(b *strings.Builder, n int, unit, active, dim string) {
	digits := zeroPad(n, fieldWidth)
	split := fieldWidth - DigitCount(n)
	if split < 0 {
		split = 0
	}
	if split > len(digits) {
		split = len(digits)
	}

	b.WriteByte('#')
	b.WriteString(dim)
	b.WriteByte(' ')
	b.WriteString(digits[:split])
	b.WriteString("##")
	b.WriteString(active)
	b.WriteByte(' ')
	b.WriteString(digits[split:])
	b.WriteString(unit)
	b.WriteByte('#')
}

// zeroPad mirrors a zero-filled fixed-width integer: the sign stays in front
// of the padding.
func zeroPad(n, width int) string {
	s := strconv.Itoa(n)
	if len(s) >= width {
		return s
	}
	pad := strings.Repeat("0", width-len(s))
	if n < 0 {
		return "-" + pad + s[1:]
	}
	return pad + s
}

// FormatVolts renders a summary voltage as "04.900 V".
func FormatVolts(v float64) string {
	return fmt.Sprintf("%06.3f V", v)
}

// FormatWatts renders a milliwatt total as watts, "00.452 W".
func FormatWatts(mw float64) string {
	return fmt.Sprintf("%06.3f W", mw/1000)
}
