//go:build !tinygo

// Command inaprobe polls the hub's INA219 sensors and prints one line per
// sensor and sample, in the same format the board writes to its UART.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"pdmon/hal"
	"pdmon/internal/buildinfo"
	"pdmon/internal/ina219"

	"tinygo.org/x/drivers"
)

var calibrations = map[string]ina219.Calibration{
	"32v2a":    ina219.Cal32V2A,
	"32v1a":    ina219.Cal32V1A,
	"16v400ma": ina219.Cal16V400mA,
}

type options struct {
	bus      string
	sim      bool
	addrs    []uint16
	cal      ina219.Calibration
	interval time.Duration
	count    int
	current  bool
}

func main() {
	var (
		opt      options
		addrList string
		calName  string
		version  bool
	)
	flag.StringVar(&opt.bus, "bus", "", "I2C bus name or number (empty = first bus found).")
	flag.BoolVar(&opt.sim, "sim", false, "Probe the simulated sensors instead of a real bus.")
	flag.StringVar(&addrList, "addr", "0x40,0x41,0x44,0x45", "Comma-separated sensor addresses.")
	flag.StringVar(&calName, "cal", "32v2a", "Calibration preset: 32v2a, 32v1a or 16v400ma.")
	flag.DurationVar(&opt.interval, "interval", 500*time.Millisecond, "Sampling interval.")
	flag.IntVar(&opt.count, "n", 0, "Stop after N samples per sensor (0 = run until interrupted).")
	flag.BoolVar(&opt.current, "current", false, "Also print the calibrated current register.")
	flag.BoolVar(&version, "version", false, "Print version and exit.")
	flag.Parse()

	if version {
		fmt.Println("inaprobe", buildinfo.String())
		return
	}

	addrs, err := parseAddrs(addrList)
	if err != nil {
		fatal(err)
	}
	opt.addrs = addrs

	cal, ok := calibrations[strings.ToLower(calName)]
	if !ok {
		fatal(fmt.Errorf("unknown calibration %q", calName))
	}
	opt.cal = cal

	var bus drivers.I2C
	if opt.sim {
		bus = hal.SimulatedBus()
	} else {
		b, err := hal.OpenI2C(opt.bus)
		if err != nil {
			fatal(err)
		}
		defer b.Close()
		bus = b
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := probe(ctx, os.Stdout, bus, opt); err != nil && !errors.Is(err, context.Canceled) {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "inaprobe:", err)
	os.Exit(1)
}

// parseAddrs parses "0x40,0x41,65" into 7-bit addresses.
func parseAddrs(s string) ([]uint16, error) {
	var out []uint16
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		v, err := strconv.ParseUint(f, 0, 16)
		if err != nil {
			return nil, fmt.Errorf("address %q: %w", f, err)
		}
		if v < 0x08 || v > 0x77 {
			return nil, fmt.Errorf("address %q: outside the 7-bit range", f)
		}
		out = append(out, uint16(v))
	}
	if len(out) == 0 {
		return nil, errors.New("no sensor addresses")
	}
	return out, nil
}

func probe(ctx context.Context, w io.Writer, bus drivers.I2C, opt options) error {
	devs := make([]*ina219.Device, len(opt.addrs))
	for i, addr := range opt.addrs {
		d := ina219.New(bus, addr)
		if err := d.Configure(opt.cal); err != nil {
			fmt.Fprintf(w, "INA219_%02d init failed: %v\n", i, err)
		}
		devs[i] = d
	}

	start := time.Now()
	t := time.NewTicker(opt.interval)
	defer t.Stop()

	for n := 0; opt.count == 0 || n < opt.count; n++ {
		if n > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-t.C:
			}
		}
		uptime := time.Since(start)
		for i, d := range devs {
			sample(w, d, i, uptime, opt.current)
		}
	}
	return nil
}

func sample(w io.Writer, d *ina219.Device, index int, uptime time.Duration, current bool) {
	mv, err := d.BusVoltage()
	if err != nil {
		fmt.Fprintf(w, "INA219_%02d %v\n", index, err)
		return
	}
	ma, err := d.ShuntCurrent()
	if err != nil {
		fmt.Fprintf(w, "INA219_%02d %v\n", index, err)
		return
	}
	line := ina219.DebugLine(uptime, index, mv, ma)
	if current {
		if c, err := d.Current(); err == nil {
			line += fmt.Sprintf("  reg:%dmA", c)
		}
	}
	fmt.Fprintln(w, line)
}
