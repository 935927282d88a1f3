// Package kernel is the firmware's cooperative loop: a 1 ms tick counter and
// a fixed table of periodic timers run from a single execution context.
package kernel

import "time"

const maxTimers = 16

// RepeatForever keeps a timer registered until cancelled.
const RepeatForever = -1

// TimerID identifies a registered timer.
type TimerID uint8

// TimerFunc runs when a timer is due. now is the kernel tick (ms).
type TimerFunc func(now uint64)

type timerState struct {
	fn     TimerFunc
	period uint64
	last   uint64
	repeat int
	inUse  bool
	ready  bool
}

// Kernel is a tick-driven timer scheduler.
type Kernel struct {
	now    uint64
	timers [maxTimers]timerState
}

// New creates a kernel instance.
func New() *Kernel {
	return &Kernel{}
}

// Tick advances the clock by one millisecond.
func (k *Kernel) Tick() { k.now++ }

// TickTo moves the clock forward to seq. The clock never goes back.
func (k *Kernel) TickTo(seq uint64) {
	if seq > k.now {
		k.now = seq
	}
}

// Drain consumes every tick already queued on ch without blocking.
func (k *Kernel) Drain(ch <-chan uint64) {
	if ch == nil {
		return
	}
	for {
		select {
		case seq, ok := <-ch:
			if !ok {
				return
			}
			k.TickTo(seq)
		default:
			return
		}
	}
}

// Now returns the current tick.
func (k *Kernel) Now() uint64 { return k.now }

// AddTimer registers fn to run every period, repeat times (RepeatForever for
// no limit). The first run is one period from now.
func (k *Kernel) AddTimer(period time.Duration, repeat int, fn TimerFunc) (TimerID, bool) {
	if fn == nil || repeat == 0 {
		return 0, false
	}
	p := uint64(period / time.Millisecond)
	if p == 0 {
		p = 1
	}
	for i := range k.timers {
		if k.timers[i].inUse {
			continue
		}
		k.timers[i] = timerState{fn: fn, period: p, last: k.now, repeat: repeat, inUse: true}
		return TimerID(i), true
	}
	return 0, false
}

// Cancel removes a timer.
func (k *Kernel) Cancel(id TimerID) {
	if int(id) < len(k.timers) {
		k.timers[id] = timerState{}
	}
}

// Ready makes a timer due on the next Step.
func (k *Kernel) Ready(id TimerID) {
	if int(id) >= len(k.timers) || !k.timers[id].inUse {
		return
	}
	k.timers[id].ready = true
}

// Active reports whether a timer is still registered.
func (k *Kernel) Active(id TimerID) bool {
	return int(id) < len(k.timers) && k.timers[id].inUse
}

// Step runs each due timer once and returns how many ran.
func (k *Kernel) Step() int {
	ran := 0
	for i := range k.timers {
		st := &k.timers[i]
		if !st.inUse || (!st.ready && k.now-st.last < st.period) {
			continue
		}
		st.last = k.now
		st.ready = false
		fn := st.fn
		if st.repeat > 0 {
			st.repeat--
			if st.repeat == 0 {
				*st = timerState{}
			}
		}
		fn(k.now)
		ran++
	}
	return ran
}
