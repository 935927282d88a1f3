//go:build tinygo

package main

import (
	"pdmon/app"
	"pdmon/hal"
)

func main() {
	app.Run(hal.New())
}
