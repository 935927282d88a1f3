//go:build !tinygo

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"pdmon/app"
	"pdmon/hal"
)

func main() {
	var hcfg hal.HeadlessConfig
	acfg := app.DefaultConfig()
	flag.BoolVar(&hcfg.Enabled, "headless", false, "Run without a window.")
	flag.IntVar(&hcfg.Hz, "hz", 60, "Step rate in headless mode.")
	flag.Uint64Var(&hcfg.Ticks, "ticks", 0, "Stop after N steps in headless mode (0 = run forever).")
	flag.StringVar(&hcfg.Host.I2CBus, "i2c", "", "Read real INA219 sensors on this I2C bus (e.g. 1); empty simulates them.")
	flag.Float64Var(&acfg.ThresholdV, "threshold", acfg.ThresholdV, "Port enable threshold in volts.")
	flag.Float64Var(&acfg.MaxCurrentMA, "max-current", acfg.MaxCurrentMA, "Current shown as a full bar, in mA.")
	flag.BoolVar(&acfg.Console, "console", false, "Show a text page instead of the dashboard.")
	flag.Parse()

	if acfg.MaxCurrentMA <= 0 {
		fmt.Fprintln(os.Stderr, "-max-current must be positive")
		os.Exit(2)
	}

	newApp := func(h hal.HAL) func() error {
		return app.NewWithConfig(h, acfg)
	}

	if hcfg.Enabled {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := hal.RunHeadless(ctx, newApp, hcfg); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := hal.RunWindow(hcfg.Host, newApp); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
