package formatter

import (
	"io"

	"github.com/bytedance/sonic"
	"github.com/penwyp/go-gpio-trace/internal/analyzer"
)

type JSONFormatter struct{}

func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

func (f *JSONFormatter) Format(w io.Writer, data []analyzer.Summary) error {
	if data == nil {
		data = []analyzer.Summary{}
	}
	out, err := sonic.ConfigStd.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	out = append(out, '\n')
	_, err = w.Write(out)
	return err
}
