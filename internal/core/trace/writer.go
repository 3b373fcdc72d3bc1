package trace

import (
	"fmt"
	"io"
)

// Writer emits records in the trace file format, one line per record.
// Nothing is buffered: every record reaches the underlying writer as soon as
// it is written.
type Writer struct {
	w         io.Writer
	precision int
	separator string
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithPrecision fixes the number of decimals printed for elapsed seconds.
// A negative value prints the shortest exact representation.
func WithPrecision(precision int) WriterOption {
	return func(w *Writer) {
		w.precision = precision
	}
}

// WithTabSeparator separates fields with a tab instead of a space.
func WithTabSeparator() WriterOption {
	return func(w *Writer) {
		w.separator = "\t"
	}
}

func NewWriter(w io.Writer, opts ...WriterOption) *Writer {
	tw := &Writer{
		w:         w,
		precision: -1,
		separator: " ",
	}
	for _, opt := range opts {
		opt(tw)
	}
	return tw
}

// Write emits a single record.
func (w *Writer) Write(r Record) error {
	_, err := fmt.Fprintf(w.w, "%s%s%d\n", FormatSeconds(r.Elapsed, w.precision), w.separator, r.Level)
	return err
}

// WriteTrace emits every record of t in order.
func (w *Writer) WriteTrace(t Trace) error {
	for _, r := range t {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	return nil
}
