package formatter

import (
	"encoding/csv"
	"io"

	"github.com/penwyp/go-gpio-trace/internal/analyzer"
)

type CSVFormatter struct{}

func NewCSVFormatter() *CSVFormatter {
	return &CSVFormatter{}
}

func (f *CSVFormatter) Format(w io.Writer, data []analyzer.Summary) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(headers); err != nil {
		return err
	}
	for _, s := range data {
		if err := cw.Write(row(s)); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
