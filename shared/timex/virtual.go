package timex

import (
	"sync"
	"time"
)

// VirtualClock is a manually driven clock. Time stands still until Advance
// is called; due timers then fire deterministically in timestamp order.
type VirtualClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*virtualTimer
}

type virtualTimer struct {
	at       time.Time
	interval time.Duration // 0 for one-shot
	ch       chan time.Time
	stopped  bool
}

func Virtual(start time.Time) *VirtualClock {
	return &VirtualClock{now: start}
}

func (vc *VirtualClock) Now() time.Time {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	return vc.now
}

func (vc *VirtualClock) After(d time.Duration) <-chan time.Time {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	t := &virtualTimer{at: vc.now.Add(d), ch: make(chan time.Time, 1)}
	vc.timers = append(vc.timers, t)
	return t.ch
}

func (vc *VirtualClock) NewTicker(d time.Duration) Ticker {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	t := &virtualTimer{at: vc.now.Add(d), interval: d, ch: make(chan time.Time, 1)}
	vc.timers = append(vc.timers, t)
	return &virtualTicker{clock: vc, timer: t}
}

// Advance moves virtual time forward by d. Timers due within the window fire
// in timestamp order; tickers re-arm. Delivery is non-blocking: a full timer
// channel drops the tick, matching time.Ticker semantics.
func (vc *VirtualClock) Advance(d time.Duration) {
	vc.mu.Lock()
	defer vc.mu.Unlock()

	target := vc.now.Add(d)
	for {
		idx := -1
		for i, t := range vc.timers {
			if t.stopped || t.at.After(target) {
				continue
			}
			if idx == -1 || t.at.Before(vc.timers[idx].at) {
				idx = i
			}
		}
		if idx == -1 {
			break
		}
		t := vc.timers[idx]
		vc.now = t.at
		select {
		case t.ch <- t.at:
		default:
		}
		if t.interval > 0 {
			t.at = t.at.Add(t.interval)
		} else {
			t.stopped = true
		}
	}
	vc.now = target

	live := vc.timers[:0]
	for _, t := range vc.timers {
		if !t.stopped {
			live = append(live, t)
		}
	}
	vc.timers = live
}

type virtualTicker struct {
	clock *VirtualClock
	timer *virtualTimer
}

func (vt *virtualTicker) C() <-chan time.Time { return vt.timer.ch }

func (vt *virtualTicker) Stop() {
	vt.clock.mu.Lock()
	defer vt.clock.mu.Unlock()
	vt.timer.stopped = true
}
