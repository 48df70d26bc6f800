package render

// ProgressFunc receives progress percentages for one render operation.
// Values are non-decreasing within [0, 99] while capturing; exactly 100 is
// delivered once, as the terminal success signal.
type ProgressFunc func(percent int)

// progressReporter clamps and monotonizes progress updates. Ticks are
// strictly sequential on the controller's run loop, so no locking is
// needed; ties are last-write-wins.
type progressReporter struct {
	fn       ProgressFunc
	startSec float64
	endSec   float64
	last     int
	terminal bool
}

func newProgressReporter(fn ProgressFunc, startSec, endSec float64) *progressReporter {
	return &progressReporter{fn: fn, startSec: startSec, endSec: endSec, last: -1}
}

// running reports fractional progress for the current playback position,
// clamped to [0, 99]. 100 is reserved for the terminal signal.
func (p *progressReporter) running(posSec float64) {
	if p.terminal {
		return
	}
	span := p.endSec - p.startSec
	if span <= 0 {
		return
	}
	pct := int((posSec - p.startSec) / span * 100)
	if pct < 0 {
		pct = 0
	}
	if pct > 99 {
		pct = 99
	}
	if pct <= p.last {
		return
	}
	p.last = pct
	if p.fn != nil {
		p.fn(pct)
	}
}

// success delivers the terminal 100, exactly once.
func (p *progressReporter) success() {
	if p.terminal {
		return
	}
	p.terminal = true
	p.last = 100
	if p.fn != nil {
		p.fn(100)
	}
}
