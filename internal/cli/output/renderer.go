// Package output renders command results as tables, markdown, CSV, or JSON.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/fyodor-project/fyodor/pkg/pwv"
)

// Format selects the rendering style.
type Format string

const (
	// FormatAuto picks text for terminals and markdown otherwise.
	FormatAuto     Format = "auto"
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
)

// ParseFormat validates a format string from config or flags.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatAuto, FormatText, FormatMarkdown, FormatJSON, FormatCSV:
		return f, nil
	default:
		return "", fmt.Errorf("invalid output format %q: want auto, text, markdown, json, or csv", s)
	}
}

// Renderer writes tabular results in the configured format.
type Renderer struct {
	w      io.Writer
	format Format
}

// NewRenderer creates a renderer for the writer. FormatAuto is resolved
// here: text when w is a terminal, markdown otherwise.
func NewRenderer(w io.Writer, format Format) *Renderer {
	if format == FormatAuto {
		format = FormatMarkdown
		if f, ok := w.(*os.File); ok {
			if info, err := f.Stat(); err == nil && info.Mode()&os.ModeCharDevice != 0 {
				format = FormatText
			}
		}
	}
	return &Renderer{w: w, format: format}
}

// Format returns the resolved output format.
func (r *Renderer) Format() Format {
	return r.format
}

// Table renders headers and rows in the configured format. JSON output
// encodes rows as an array of header-keyed objects.
func (r *Renderer) Table(headers []string, rows [][]string) error {
	if r.format == FormatJSON {
		return r.tableJSON(headers, rows)
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.w)

	hdr := make(table.Row, len(headers))
	for i, h := range headers {
		hdr[i] = h
	}
	t.AppendHeader(hdr)
	for _, row := range rows {
		cells := make(table.Row, len(row))
		for i, c := range row {
			cells[i] = c
		}
		t.AppendRow(cells)
	}

	switch r.format {
	case FormatMarkdown:
		t.RenderMarkdown()
	case FormatCSV:
		t.RenderCSV()
	default:
		t.SetStyle(table.StyleLight)
		t.Style().Format.Header = text.FormatDefault
		t.Render()
	}
	return nil
}

func (r *Renderer) tableJSON(headers []string, rows [][]string) error {
	objs := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		obj := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(row) {
				obj[h] = row[i]
			}
		}
		objs = append(objs, obj)
	}
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(objs)
}

// JSON encodes v directly, ignoring the configured format. Used for
// structures that have no tabular shape.
func (r *Renderer) JSON(v interface{}) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Series renders a computed PWV time series with a stats trailer.
func (r *Renderer) Series(s *pwv.Series) error {
	if r.format == FormatJSON {
		return r.JSON(s)
	}

	rows := make([][]string, 0, len(s.Samples))
	for _, sample := range s.Samples {
		rows = append(rows, []string{
			sample.Time.UTC().Format(time.RFC3339),
			fmt.Sprintf("%.3f", sample.PWVmm),
			fmt.Sprintf("%.1f", sample.ElevationDeg),
		})
	}
	if err := r.Table([]string{"Time (UTC)", "PWV (mm)", "Elevation (deg)"}, rows); err != nil {
		return err
	}

	if r.format == FormatCSV {
		return nil
	}
	if stats, ok := s.Stats(); ok {
		fmt.Fprintf(r.w, "min %.3f / median %.3f / mean %.3f / max %.3f mm (%d samples)\n",
			stats.MinMm, stats.MedianMm, stats.MeanMm, stats.MaxMm, len(s.Samples))
	} else {
		fmt.Fprintln(r.w, "(no samples)")
	}
	return nil
}
