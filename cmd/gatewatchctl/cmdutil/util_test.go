package cmdutil

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/gatewatch/gatewatch/internal/cli/output"
)

// setOutputFormat sets the --output flag for the test and restores the
// previous value afterwards.
func setOutputFormat(t *testing.T, format string) {
	t.Helper()
	prev := Flags.Output
	Flags.Output = format
	t.Cleanup(func() { Flags.Output = prev })
}

type plateTable struct {
	rows [][]string
}

func (p plateTable) Headers() []string { return []string{"PLATE", "STATUS"} }
func (p plateTable) Rows() [][]string  { return p.rows }

func TestPrintOutput(t *testing.T) {
	data := []string{"BA1PA1234", "NA5KHA777"}
	renderer := plateTable{rows: [][]string{{"BA1PA1234", "open"}, {"NA5KHA777", "paired"}}}

	tests := []struct {
		name     string
		format   string
		isEmpty  bool
		contains []string
		exact    string
	}{
		{
			name:     "json carries the data",
			format:   "json",
			contains: []string{"BA1PA1234", "NA5KHA777"},
		},
		{
			name:   "yaml renders a list",
			format: "yaml",
			exact:  "- BA1PA1234\n- NA5KHA777\n",
		},
		{
			name:     "table shows headers and rows",
			format:   "table",
			contains: []string{"PLATE", "BA1PA1234"},
		},
		{
			name:    "empty table prints the message",
			format:  "table",
			isEmpty: true,
			exact:   "No passages found.\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setOutputFormat(t, tt.format)

			var buf bytes.Buffer
			if err := PrintOutput(&buf, data, tt.isEmpty, "No passages found.", renderer); err != nil {
				t.Fatalf("PrintOutput() error = %v", err)
			}

			got := buf.String()
			if tt.exact != "" && got != tt.exact {
				t.Errorf("PrintOutput() = %q, want %q", got, tt.exact)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("PrintOutput() = %q, missing %q", got, want)
				}
			}
		})
	}
}

func TestPrintResource(t *testing.T) {
	setOutputFormat(t, "json")

	var buf bytes.Buffer
	resource := map[string]string{"id": "seg-1", "name": "pathlaiya-amlekhgunj"}
	err := PrintResource(&buf, resource, plateTable{})
	if err != nil {
		t.Fatalf("PrintResource() error = %v", err)
	}
	if !strings.Contains(buf.String(), "pathlaiya-amlekhgunj") {
		t.Errorf("PrintResource() = %q, missing resource data", buf.String())
	}
}

func TestPrintResourceWithSuccess_JSON(t *testing.T) {
	setOutputFormat(t, "json")

	var buf bytes.Buffer
	resource := map[string]string{"id": "cp-entry"}
	err := PrintResourceWithSuccess(&buf, resource, "Checkpost created")
	if err != nil {
		t.Fatalf("PrintResourceWithSuccess() error = %v", err)
	}
	// Scripts consume the document, not the human success line.
	got := buf.String()
	if !strings.Contains(got, "cp-entry") || strings.Contains(got, "Checkpost created") {
		t.Errorf("PrintResourceWithSuccess() = %q", got)
	}
}

func TestGetOutputFormatParsed(t *testing.T) {
	tests := []struct {
		flagValue string
		expected  output.Format
		wantErr   bool
	}{
		{"table", output.FormatTable, false},
		{"json", output.FormatJSON, false},
		{"yaml", output.FormatYAML, false},
		{"csv", output.FormatTable, true},
	}

	for _, tt := range tests {
		t.Run(tt.flagValue, func(t *testing.T) {
			setOutputFormat(t, tt.flagValue)

			result, err := GetOutputFormatParsed()
			if (err != nil) != tt.wantErr {
				t.Fatalf("GetOutputFormatParsed() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && result != tt.expected {
				t.Errorf("GetOutputFormatParsed() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestBoolToYesNo(t *testing.T) {
	if got := BoolToYesNo(true); got != "yes" {
		t.Errorf("BoolToYesNo(true) = %q, want yes", got)
	}
	if got := BoolToYesNo(false); got != "no" {
		t.Errorf("BoolToYesNo(false) = %q, want no", got)
	}
}

func TestEmptyOr(t *testing.T) {
	if got := EmptyOr("", "-"); got != "-" {
		t.Errorf("EmptyOr(\"\", \"-\") = %q, want %q", got, "-")
	}
	if got := EmptyOr("BA1PA1234", "-"); got != "BA1PA1234" {
		t.Errorf("EmptyOr(\"BA1PA1234\", \"-\") = %q, want the value", got)
	}
}

func TestParseTimeFlag(t *testing.T) {
	// Empty value gives the zero time
	got, err := ParseTimeFlag("")
	if err != nil {
		t.Fatalf("ParseTimeFlag(\"\") error = %v", err)
	}
	if !got.IsZero() {
		t.Errorf("ParseTimeFlag(\"\") = %v, want zero time", got)
	}

	// Duration is interpreted as that long ago
	got, err = ParseTimeFlag("24h")
	if err != nil {
		t.Fatalf("ParseTimeFlag(\"24h\") error = %v", err)
	}
	want := time.Now().Add(-24 * time.Hour)
	if got.Before(want.Add(-time.Minute)) || got.After(want.Add(time.Minute)) {
		t.Errorf("ParseTimeFlag(\"24h\") = %v, want roughly %v", got, want)
	}

	// RFC3339 passes through
	got, err = ParseTimeFlag("2026-03-01T06:00:00Z")
	if err != nil {
		t.Fatalf("ParseTimeFlag(RFC3339) error = %v", err)
	}
	if got.UTC().Format(time.RFC3339) != "2026-03-01T06:00:00Z" {
		t.Errorf("ParseTimeFlag(RFC3339) = %v", got)
	}

	// Garbage is rejected
	if _, err := ParseTimeFlag("yesterday"); err == nil {
		t.Error("ParseTimeFlag(\"yesterday\") expected error")
	}
}
