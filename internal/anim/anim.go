// Package anim implements the tweens that move widgets on the screen.
//
// Time is measured in kernel ticks (1 ms). A Slot owns at most one running
// tween; starting another one replaces it from the caller-supplied start value.
package anim

import "time"

// Path selects the interpolation curve of a tween.
type Path uint8

const (
	PathLinear Path = iota
	PathEaseOut
)

func (p Path) String() string {
	switch p {
	case PathLinear:
		return "linear"
	case PathEaseOut:
		return "ease-out"
	default:
		return "unknown"
	}
}

// progress scale, 1024 == done.
const fullScale = 1024

func (p Path) scale(elapsed, dur uint64) int32 {
	if dur == 0 || elapsed >= dur {
		return fullScale
	}
	lin := int32(elapsed * fullScale / dur)
	switch p {
	case PathEaseOut:
		// 1 - (1-t)^3 in fixed point.
		inv := int64(fullScale - lin)
		return fullScale - int32(inv*inv*inv/(fullScale*fullScale))
	default:
		return lin
	}
}

// Interpolate returns the value of a tween from..to after elapsed of dur ticks.
func Interpolate(path Path, from, to int16, elapsed, dur uint64) int16 {
	s := path.scale(elapsed, dur)
	return int16(int32(from) + (int32(to)-int32(from))*s/fullScale)
}

// Ticks converts a duration to kernel ticks.
func Ticks(d time.Duration) uint64 {
	if d <= 0 {
		return 0
	}
	return uint64(d / time.Millisecond)
}

// Slot is a single-target tween holder.
type Slot struct {
	from  int16
	to    int16
	start uint64
	dur   uint64
	path  Path

	running bool
	value   int16
}

// Start begins a tween at tick now. A running tween is dropped.
func (s *Slot) Start(now uint64, from, to int16, d time.Duration, path Path) {
	s.from = from
	s.to = to
	s.start = now
	s.dur = Ticks(d)
	s.path = path
	s.value = from
	s.running = true
	if s.dur == 0 {
		s.value = to
		s.running = false
	}
}

// Step advances the tween to tick now and reports whether the value moved.
func (s *Slot) Step(now uint64) (int16, bool) {
	if !s.running {
		return s.value, false
	}
	var elapsed uint64
	if now > s.start {
		elapsed = now - s.start
	}
	v := Interpolate(s.path, s.from, s.to, elapsed, s.dur)
	changed := v != s.value
	s.value = v
	if elapsed >= s.dur {
		s.value = s.to
		s.running = false
		changed = true
	}
	return s.value, changed
}

// Set stops any tween and pins the value.
func (s *Slot) Set(v int16) {
	s.running = false
	s.from = v
	s.to = v
	s.value = v
}

func (s *Slot) Value() int16  { return s.value }
func (s *Slot) Target() int16 { return s.to }
func (s *Slot) Running() bool { return s.running }
