// Package logging configures logrus for the jsonmodel CLI. Lines have the form
//
//	time="2006-01-02T15:04:05.000Z" level="info" caller="main.go:12" msg="..." key="value"
//
// or the same fields as one JSON object per line.
package logging

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"runtime"
	"sort"
	"strings"
	"text/template"

	log "github.com/sirupsen/logrus"
)

// RFC3339Milli is an RFC3339 date format with milliseconds
const RFC3339Milli = "2006-01-02T15:04:05.000Z07:00"

// Output formats accepted by Setup
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Setup applies level and format to the standard logger and directs it to out.
func Setup(level, format string, out io.Writer) error {
	if level == "" {
		level = "info"
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("could not parse log level: %w", err)
	}

	formatter, err := NewFormatter(format)
	if err != nil {
		return err
	}

	log.SetFormatter(formatter)
	log.SetLevel(lvl)
	if out != nil {
		log.SetOutput(out)
	}
	return nil
}

// NewFormatter returns the formatter for format. The empty format is text.
func NewFormatter(format string) (log.Formatter, error) {
	switch strings.ToLower(format) {
	case "", FormatText:
		return &TextFormat{}, nil
	case FormatJSON:
		return &JSONFormat{}, nil
	}
	return nil, fmt.Errorf("unknown log format %q", format)
}

func getCaller() string {
	for skip := 2; ; skip++ {
		pc, file, line, ok := runtime.Caller(skip)
		if !ok {
			return ""
		}
		lower := strings.ToLower(file)
		if strings.Contains(lower, "github.com/sirupsen/logrus") || strings.Contains(lower, "internal/logging") {
			continue
		}
		name := strings.TrimPrefix(runtime.FuncForPC(pc).Name(), "github.com/mcncl/jsonmodel/")
		return fmt.Sprintf("%s:%d %s", path.Base(file), line, name)
	}
}

type logData struct {
	Timestamp string
	Level     string
	Caller    string
	Message   string
	Data      []dataField
}

type dataField struct {
	Key string
	Msg string
}

// JSONFormat writes one JSON object per entry. Fields sit next to the fixed
// keys; a field named like a fixed key is prefixed with "fields.".
type JSONFormat struct{}

// Format implements log.Formatter
func (l *JSONFormat) Format(entry *log.Entry) ([]byte, error) {
	data := getData(entry)

	obj := make(map[string]any, len(data.Data)+4)
	for _, f := range data.Data {
		key := f.Key
		switch key {
		case "time", "level", "msg", "caller":
			key = "fields." + key
		}
		obj[key] = jsonField(entry.Data[f.Key])
	}
	obj["time"] = data.Timestamp
	obj["level"] = data.Level
	obj["msg"] = data.Message
	if data.Caller != "" {
		obj["caller"] = data.Caller
	}

	serialized, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal log data as JSON: %w", err)
	}
	return append(serialized, '\n'), nil
}

// jsonField keeps errors readable; json.Marshal renders most of them as {}.
func jsonField(v any) any {
	if err, ok := v.(error); ok {
		return err.Error()
	}
	return v
}

// TextFormat writes key="value" pairs with fields sorted by key.
type TextFormat struct{}

// Format implements log.Formatter
func (l *TextFormat) Format(entry *log.Entry) ([]byte, error) {
	var logLine *bytes.Buffer
	if entry.Buffer != nil {
		logLine = entry.Buffer
	} else {
		logLine = &bytes.Buffer{}
	}

	if err := textTemplate.Execute(logLine, getData(entry)); err != nil {
		return nil, fmt.Errorf("failed to render log line: %w", err)
	}
	logLine.WriteByte('\n')
	return logLine.Bytes(), nil
}

var textTemplate = template.Must(
	template.New("log").Parse(`time="{{.Timestamp}}" level="{{.Level}}"{{if .Caller}} caller="{{.Caller}}"{{end}} msg="{{.Message}}"{{range .Data}} {{.Key}}="{{.Msg}}"{{end}}`),
)

// getData extracts log data from the logrus entry.
func getData(entry *log.Entry) *logData {
	data := &logData{
		Timestamp: entry.Time.Format(RFC3339Milli),
		Level:     entry.Level.String(),
		Message:   entry.Message,
		Data:      make([]dataField, 0, len(entry.Data)),
	}
	if entry.Logger != nil && entry.Logger.IsLevelEnabled(log.DebugLevel) {
		data.Caller = getCaller()
	}

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		data.Data = append(data.Data, dataField{
			Key: k,
			Msg: fmt.Sprintf("%v", entry.Data[k]),
		})
	}
	return data
}
