package hal

// RGB565 packs an 8-bit-per-channel color.
func RGB565(r, g, b uint8) uint16 {
	rr := uint16(r>>3) & 0x1F
	gg := uint16(g>>2) & 0x3F
	bb := uint16(b>>3) & 0x1F
	return (rr << 11) | (gg << 5) | bb
}

// RGB888 expands a RGB565 pixel.
func RGB888(p uint16) (r, g, b uint8) {
	rr := (p >> 11) & 0x1F
	gg := (p >> 5) & 0x3F
	bb := p & 0x1F

	r = uint8((rr * 255) / 31)
	g = uint8((gg * 255) / 63)
	b = uint8((bb * 255) / 31)
	return r, g, b
}

// swapRGB565 copies little-endian pixels into dst as big-endian, which is
// what the LCD controllers expect on the wire.
func swapRGB565(dst, src []byte) int {
	n := len(src)
	if len(dst) < n {
		n = len(dst)
	}
	n &^= 1
	for i := 0; i < n; i += 2 {
		dst[i] = src[i+1]
		dst[i+1] = src[i]
	}
	return n
}

// frameBuffer is the RGB565 pixel store shared by host and board displays.
type frameBuffer struct {
	width  int
	height int
	stride int
	buf    []byte
}

func newFrameBuffer(width, height int) frameBuffer {
	stride := width * 2
	return frameBuffer{
		width:  width,
		height: height,
		stride: stride,
		buf:    make([]byte, stride*height),
	}
}

func (f *frameBuffer) Width() int          { return f.width }
func (f *frameBuffer) Height() int         { return f.height }
func (f *frameBuffer) Format() PixelFormat { return PixelFormatRGB565 }
func (f *frameBuffer) StrideBytes() int    { return f.stride }
func (f *frameBuffer) Buffer() []byte      { return f.buf }

func (f *frameBuffer) fill(r, g, b uint8) {
	pixel := RGB565(r, g, b)
	lo := byte(pixel)
	hi := byte(pixel >> 8)
	for i := 0; i < len(f.buf); i += 2 {
		f.buf[i] = lo
		f.buf[i+1] = hi
	}
}
