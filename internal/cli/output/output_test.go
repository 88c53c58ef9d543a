package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Format
		wantErr bool
	}{
		{name: "table", input: "table", want: FormatTable},
		{name: "empty defaults to table", input: "", want: FormatTable},
		{name: "json", input: "json", want: FormatJSON},
		{name: "uppercase accepted", input: "JSON", want: FormatJSON},
		{name: "yaml", input: "yaml", want: FormatYAML},
		{name: "yml alias", input: "yml", want: FormatYAML},
		{name: "surrounding whitespace", input: " table ", want: FormatTable},
		{name: "unknown format", input: "csv", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSuccess(t *testing.T) {
	var plain bytes.Buffer
	Success(&plain, "segment created", false)
	assert.Equal(t, "segment created\n", plain.String())

	var colored bytes.Buffer
	Success(&colored, "segment created", true)
	assert.Contains(t, colored.String(), "segment created")
	assert.Contains(t, colored.String(), "\033[32m")
}
