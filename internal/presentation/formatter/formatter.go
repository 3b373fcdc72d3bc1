package formatter

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/penwyp/go-gpio-trace/internal/analyzer"
)

// Formatter renders trace summaries.
type Formatter interface {
	Format(w io.Writer, data []analyzer.Summary) error
}

// New returns the formatter for name: table, json or csv.
func New(name string) (Formatter, error) {
	switch strings.ToLower(name) {
	case "table", "":
		return NewTableFormatter(), nil
	case "json":
		return NewJSONFormatter(), nil
	case "csv":
		return NewCSVFormatter(), nil
	default:
		return nil, fmt.Errorf("unsupported output format %q (valid: table, json, csv)", name)
	}
}

var headers = []string{
	"Source", "Records", "Offset", "Duration", "High", "Low",
	"Min Pulse", "Max Pulse", "Duty", "Rise/Fall",
}

func row(s analyzer.Summary) []string {
	return []string{
		s.Source,
		fmt.Sprintf("%d", s.Records),
		formatDuration(s.InitialOffset),
		formatDuration(s.Duration),
		formatDuration(s.HighTime),
		formatDuration(s.LowTime),
		formatDuration(s.MinPulse),
		formatDuration(s.MaxPulse),
		fmt.Sprintf("%.1f%%", s.DutyCycle()*100),
		fmt.Sprintf("%d/%d", s.Rising, s.Falling),
	}
}

// formatDuration prints microsecond resolution, enough for IR/RF pulses.
func formatDuration(d time.Duration) string {
	return d.Round(time.Microsecond).String()
}
