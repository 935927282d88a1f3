// Package ina219 is a driver for the TI INA219 bus voltage / shunt current
// monitor, one per downstream USB port.
//
// Datasheet: https://www.ti.com/lit/ds/symlink/ina219.pdf
package ina219

import (
	"errors"
	"fmt"
	"time"

	"tinygo.org/x/drivers"
)

// Port sensor addresses on the hub board.
const (
	AddressPort1 uint16 = 0x40
	AddressPort2 uint16 = 0x41
	AddressPort3 uint16 = 0x44
	AddressPort4 uint16 = 0x45
)

// Registers.
const (
	RegConfig       uint8 = 0x00
	RegShuntVoltage uint8 = 0x01
	RegBusVoltage   uint8 = 0x02
	RegPower        uint8 = 0x03
	RegCurrent      uint8 = 0x04
	RegCalibration  uint8 = 0x05
)

// Config register fields.
const (
	ConfigReset uint16 = 0x8000

	BusRange16V uint16 = 0x0000
	BusRange32V uint16 = 0x2000

	Gain1_40mV  uint16 = 0x0000
	Gain2_80mV  uint16 = 0x0800
	Gain4_160mV uint16 = 0x1000
	Gain8_320mV uint16 = 0x1800

	BusADC12Bit       uint16 = 0x0180
	BusADC12Bit128S   uint16 = 0x0780
	ShuntADC12Bit     uint16 = 0x0018
	ShuntADC12Bit128S uint16 = 0x0078

	modeMask uint16 = 0x0007

	// ConfigPowerOn is the config register value after reset.
	ConfigPowerOn uint16 = 0x399F
)

// Mode is the operating mode field of the config register.
type Mode uint16

const (
	ModePowerDown Mode = iota
	ModeShuntTriggered
	ModeBusTriggered
	ModeShuntBusTriggered
	ModeADCOff
	ModeShuntContinuous
	ModeBusContinuous
	ModeShuntBusContinuous
)

// ShuntCeiling is the largest raw shunt reading accepted as a real current.
// The hub never draws more than 2 A in total; anything above is noise or a
// negative reading and is reported as zero.
const ShuntCeiling = 20000

// Calibration is a config + calibration register pair with the matching
// current register scale.
type Calibration struct {
	Config uint16
	Value  uint16
	// CurrentDivider converts the current register to mA.
	CurrentDivider int16
}

var (
	Cal32V2A = Calibration{
		Config:         BusRange32V | Gain8_320mV | BusADC12Bit128S | ShuntADC12Bit128S | uint16(ModeShuntBusContinuous),
		Value:          4096,
		CurrentDivider: 10,
	}
	Cal32V1A = Calibration{
		Config:         BusRange32V | Gain8_320mV | BusADC12Bit | ShuntADC12Bit | uint16(ModeShuntBusContinuous),
		Value:          10240,
		CurrentDivider: 25,
	}
	Cal16V400mA = Calibration{
		Config:         BusRange16V | Gain1_40mV | BusADC12Bit | ShuntADC12Bit | uint16(ModeShuntBusContinuous),
		Value:          8192,
		CurrentDivider: 20,
	}
)

var ErrNotCalibrated = errors.New("ina219: not calibrated")

// Device is one INA219 on a shared bus.
type Device struct {
	bus     drivers.I2C
	Address uint16

	cal Calibration
	err error

	w [3]byte
	r [2]byte
}

// New returns a device handle. The bus must already be configured.
func New(bus drivers.I2C, address uint16) *Device {
	return &Device{bus: bus, Address: address}
}

// Configure writes calibration and config registers.
func (d *Device) Configure(cal Calibration) error {
	if err := d.writeReg(RegCalibration, cal.Value); err != nil {
		return err
	}
	if err := d.writeReg(RegConfig, cal.Config); err != nil {
		return err
	}
	d.cal = cal
	return nil
}

// Reset restores power-on defaults.
func (d *Device) Reset() error {
	if err := d.writeReg(RegConfig, ConfigReset); err != nil {
		return err
	}
	time.Sleep(time.Millisecond)
	d.cal = Calibration{}
	return nil
}

// Connected probes the device by reading its config register.
func (d *Device) Connected() bool {
	_, err := d.readReg(RegConfig)
	return err == nil
}

// Config returns the raw config register.
func (d *Device) Config() (uint16, error) {
	return d.readReg(RegConfig)
}

// SetMode changes only the mode bits of the config register.
func (d *Device) SetMode(m Mode) error {
	cfg, err := d.readReg(RegConfig)
	if err != nil {
		return err
	}
	cfg = cfg&^modeMask | uint16(m)&modeMask
	return d.writeReg(RegConfig, cfg)
}

// BusVoltage returns the bus voltage in mV (4 mV LSB).
func (d *Device) BusVoltage() (uint16, error) {
	raw, err := d.readReg(RegBusVoltage)
	if err != nil {
		return 0, err
	}
	return (raw >> 3) * 4, nil
}

// ShuntCurrent returns the shunt reading scaled to mA for the hub's shunt
// resistors. Raw values above ShuntCeiling read as zero.
func (d *Device) ShuntCurrent() (uint16, error) {
	raw, err := d.readReg(RegShuntVoltage)
	if err != nil {
		return 0, err
	}
	if raw > ShuntCeiling {
		raw = 0
	}
	return raw / 10, nil
}

// Current returns the calibrated current register in mA.
func (d *Device) Current() (int16, error) {
	if d.cal.CurrentDivider == 0 {
		return 0, ErrNotCalibrated
	}
	raw, err := d.readReg(RegCurrent)
	if err != nil {
		return 0, err
	}
	return int16(raw) / d.cal.CurrentDivider, nil
}

// ReadVoltageCurrent samples bus voltage (V) and current (mA). It never
// fails: a bus error yields zero readings and is kept for Err.
func (d *Device) ReadVoltageCurrent() (voltageV, currentMA float64) {
	mv, err := d.BusVoltage()
	if err != nil {
		d.err = err
		return 0, 0
	}
	ma, err := d.ShuntCurrent()
	if err != nil {
		d.err = err
		return 0, 0
	}
	d.err = nil
	return float64(mv) / 1000, float64(ma)
}

// Err returns the error of the last ReadVoltageCurrent, if any.
func (d *Device) Err() error { return d.err }

func (d *Device) readReg(reg uint8) (uint16, error) {
	d.w[0] = reg
	if err := d.bus.Tx(d.Address, d.w[:1], d.r[:]); err != nil {
		return 0, fmt.Errorf("ina219 0x%02x: read reg %d: %w", d.Address, reg, err)
	}
	return uint16(d.r[0])<<8 | uint16(d.r[1]), nil
}

func (d *Device) writeReg(reg uint8, v uint16) error {
	d.w[0] = reg
	d.w[1] = byte(v >> 8)
	d.w[2] = byte(v)
	if err := d.bus.Tx(d.Address, d.w[:], nil); err != nil {
		return fmt.Errorf("ina219 0x%02x: write reg %d: %w", d.Address, reg, err)
	}
	return nil
}

// DebugLine formats a sample the way the board prints it on the serial
// console: "[  12.500]INA219_01 vbus:5.012  curr:15.000mA  power:0.08W".
func DebugLine(uptime time.Duration, index int, busMV, shuntMA uint16) string {
	v := float64(busMV) / 1000
	return fmt.Sprintf("[%6.3f]INA219_%02d vbus:%.3f  curr:%3.3fmA  power:%.2fW",
		uptime.Seconds(), index, v, float64(shuntMA), v*float64(shuntMA)/1000)
}
