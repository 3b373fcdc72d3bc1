package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/penwyp/go-gpio-trace/internal/util"
)

var (
	ErrFieldCount   = errors.New("expected 2 fields: <elapsed_seconds> <bit>")
	ErrInvalidBit   = errors.New("bit must be 0 or 1")
	ErrNegativeTime = errors.New("elapsed seconds must be non-negative")
)

// maxSeconds bounds the delay a time.Duration can hold. float64(MaxInt64)
// rounds up to 2^63, so the bound itself is out of range.
const maxSeconds = float64(math.MaxInt64) / float64(time.Second)

// ParseError reports a malformed trace line. The whole parse fails on the
// first one; no partial trace is returned.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("trace line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseFile opens path and parses it as a trace.
func ParseFile(path string) (Trace, error) {
	util.LogDebugf("Start parsing trace file: %s", path)

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}
	defer file.Close()

	t, err := Parse(file)
	if err != nil {
		return nil, err
	}

	util.LogDebugf("Parsed %d records from %s", len(t), path)
	return t, nil
}

// Parse reads one record per line from r.
func Parse(r io.Reader) (Trace, error) {
	var t Trace
	scanner := bufio.NewScanner(r)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := scanner.Text()
		rec, err := ParseLine(text)
		if err != nil {
			return nil, &ParseError{Line: lineNo, Text: text, Err: err}
		}
		t = append(t, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read trace: %w", err)
	}

	return t, nil
}

// ParseLine parses a single `<elapsed_seconds> <bit>` line.
func ParseLine(line string) (Record, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return Record{}, ErrFieldCount
	}

	seconds, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return Record{}, err
	}
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return Record{}, fmt.Errorf("elapsed seconds %q is not finite", fields[0])
	}
	if seconds < 0 {
		return Record{}, ErrNegativeTime
	}
	if seconds >= maxSeconds {
		return Record{}, fmt.Errorf("elapsed seconds %q out of range", fields[0])
	}

	bit, err := strconv.Atoi(fields[1])
	if err != nil {
		return Record{}, err
	}
	if !ValidLevel(bit) {
		return Record{}, ErrInvalidBit
	}

	return Record{Elapsed: util.SecondsToDuration(seconds), Level: bit}, nil
}

// FormatSeconds renders d in seconds. A negative precision selects the
// shortest representation that round-trips.
func FormatSeconds(d time.Duration, precision int) string {
	return strconv.FormatFloat(d.Seconds(), 'f', precision, 64)
}
