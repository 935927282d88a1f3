//go:build tinygo && baremetal

package hal

import (
	"machine"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/st7789"
)

// Board wiring.
const (
	pinI2CSDA = machine.GP4
	pinI2CSCL = machine.GP5

	pinLCDSCK = machine.GP18
	pinLCDSDO = machine.GP19
	pinLCDCS  = machine.GP17
	pinLCDDC  = machine.GP16
	pinLCDRST = machine.GP20
	pinLCDBL  = machine.GP21
)

type tinyGoHAL struct {
	logger *uartLogger
	fb     *lcdFramebuffer
	bl     *lcdBacklight
	t      *tinyGoTime
	bus    drivers.I2C
}

// New returns the hub board HAL (RP2040).
//
// UART: UART0 on GP0 (TX) / GP1 (RX), 115200 8N1.
// I2C: I2C0 on GP4 (SDA) / GP5 (SCL), 400 kHz, four INA219 sensors.
// LCD: 1.69" ST7789 240x280 on SPI0, used in landscape.
func New() HAL {
	uart := machine.UART0
	uart.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GP0,
		RX:       machine.GP1,
	})
	logger := &uartLogger{uart: uart}

	i2c := machine.I2C0
	if err := i2c.Configure(machine.I2CConfig{
		Frequency: 400 * machine.KHz,
		SDA:       pinI2CSDA,
		SCL:       pinI2CSCL,
	}); err != nil {
		logger.WriteLineString("hal: i2c0 configure: " + err.Error())
	}

	machine.SPI0.Configure(machine.SPIConfig{
		Frequency: 62500000,
		SCK:       pinLCDSCK,
		SDO:       pinLCDSDO,
		Mode:      0,
	})
	lcd := st7789.New(machine.SPI0, pinLCDRST, pinLCDDC, pinLCDCS, pinLCDBL)
	lcd.Configure(st7789.Config{
		Width:     240,
		Height:    280,
		Rotation:  drivers.Rotation90,
		RowOffset: 20,
	})
	lcd.EnableBacklight(false)

	return &tinyGoHAL{
		logger: logger,
		fb:     newLCDFramebuffer(&lcd, ScreenWidth, ScreenHeight),
		bl:     &lcdBacklight{lcd: &lcd},
		t:      newTinyGoTime(),
		bus:    i2c,
	}
}

func (h *tinyGoHAL) Logger() Logger       { return h.logger }
func (h *tinyGoHAL) Display() Display     { return tinyGoDisplay{fb: h.fb} }
func (h *tinyGoHAL) Backlight() Backlight { return h.bl }
func (h *tinyGoHAL) Time() Time           { return h.t }
func (h *tinyGoHAL) I2C() drivers.I2C     { return h.bus }

// lcdRows is how many rows are byte-swapped and pushed per SPI burst.
const lcdRows = 8

type lcdFramebuffer struct {
	frameBuffer
	lcd   *st7789.Device
	chunk []byte
}

func newLCDFramebuffer(lcd *st7789.Device, width, height int) *lcdFramebuffer {
	f := &lcdFramebuffer{frameBuffer: newFrameBuffer(width, height), lcd: lcd}
	f.chunk = make([]byte, f.stride*lcdRows)
	return f
}

func (f *lcdFramebuffer) ClearRGB(r, g, b uint8) { f.fill(r, g, b) }

func (f *lcdFramebuffer) Present() error {
	for y := 0; y < f.height; y += lcdRows {
		rows := lcdRows
		if y+rows > f.height {
			rows = f.height - y
		}
		src := f.buf[y*f.stride : (y+rows)*f.stride]
		n := swapRGB565(f.chunk, src)
		if err := f.lcd.DrawRGBBitmap8(0, int16(y), f.chunk[:n], int16(f.width), int16(rows)); err != nil {
			return err
		}
	}
	return nil
}

type lcdBacklight struct {
	lcd *st7789.Device
}

func (b *lcdBacklight) Set(on bool) { b.lcd.EnableBacklight(on) }
