package app

import (
	"fmt"
	"time"

	"pdmon/hal"
	"pdmon/internal/monitor"
	"pdmon/internal/ui"

	"tinygo.org/x/tinyfont/proggy"
	"tinygo.org/x/tinyterm"
)

// console is the text alternative to the dashboard: one line per port,
// redrawn from scratch on every refresh.
type console struct {
	fb   hal.Framebuffer
	disp *ui.FBDisplay
}

func newConsole(fb hal.Framebuffer) *console {
	return &console{fb: fb, disp: ui.NewDisplay(fb)}
}

func (c *console) show(ports []*port, sum monitor.Summary, uptime time.Duration) error {
	c.fb.ClearRGB(0, 0, 0)

	t := tinyterm.NewTerminal(c.disp)
	t.Configure(&tinyterm.Config{
		Font:       &proggy.TinySZ8pt7b,
		FontHeight: 12,
		FontOffset: 9,
	})

	fmt.Fprintf(t, "pdmon  up %s\r\n", uptime.Truncate(time.Second))
	fmt.Fprintf(t, "bus %s  total %s\r\n\r\n", sum.VoltageText(), sum.PowerText())
	for _, p := range ports {
		tm := p.pres.Telemetry()
		status := "off"
		if p.pres.Valid() {
			status = "on"
		}
		if p.ioErr != nil {
			status = "err"
		}
		fmt.Fprintf(t, "%s %6.3f V %5.0f mA %6.3f W %s\r\n",
			p.name, tm.VoltageV, tm.CurrentMA, tm.PowerMW/1000, status)
	}

	return c.fb.Present()
}
