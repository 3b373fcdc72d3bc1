package analyzer

import (
	"time"

	"github.com/penwyp/go-gpio-trace/internal/core/trace"
)

// Summary describes the waveform a trace will reproduce.
type Summary struct {
	Source        string        `json:"source,omitempty"`
	Records       int           `json:"records"`
	InitialOffset time.Duration `json:"initial_offset_ns"`
	Duration      time.Duration `json:"duration_ns"`
	HighTime      time.Duration `json:"high_time_ns"`
	LowTime       time.Duration `json:"low_time_ns"`
	MinPulse      time.Duration `json:"min_pulse_ns"`
	MaxPulse      time.Duration `json:"max_pulse_ns"`
	FirstLevel    int           `json:"first_level"`
	LastLevel     int           `json:"last_level"`
	Rising        int           `json:"rising_edges"`
	Falling       int           `json:"falling_edges"`
	// Repeated counts records whose level equals the previous one. A
	// recorder never produces them but hand-edited traces can.
	Repeated int `json:"repeated_levels"`
}

// Summarize computes a Summary. Pulse widths are the delays between
// consecutive records, attributed to the level held during that delay.
func Summarize(t trace.Trace) Summary {
	s := Summary{Records: len(t)}
	if len(t) == 0 {
		return s
	}

	s.InitialOffset = t[0].Elapsed
	s.FirstLevel = t[0].Level
	s.LastLevel = t[len(t)-1].Level
	s.Duration = t.Duration()

	for i := 1; i < len(t); i++ {
		prev, cur := t[i-1], t[i]
		width := cur.Elapsed

		if prev.Level == 1 {
			s.HighTime += width
		} else {
			s.LowTime += width
		}

		if i == 1 || width < s.MinPulse {
			s.MinPulse = width
		}
		if width > s.MaxPulse {
			s.MaxPulse = width
		}

		switch {
		case cur.Level == prev.Level:
			s.Repeated++
		case cur.Level == 1:
			s.Rising++
		default:
			s.Falling++
		}
	}

	return s
}

// DutyCycle returns the fraction of the replay spent high.
func (s Summary) DutyCycle() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.HighTime) / float64(s.Duration)
}
