package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	err := PrintJSON(&buf, map[string]any{"plate": "BA1PA1234", "matched": true})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "\"plate\": \"BA1PA1234\"")
	assert.Contains(t, out, "  ") // indented, not compact
}

func TestPrintYAML(t *testing.T) {
	var buf bytes.Buffer
	err := PrintYAML(&buf, struct {
		Plate   string `yaml:"plate"`
		Matched bool   `yaml:"matched"`
	}{Plate: "BA1PA1234", Matched: true})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "plate: BA1PA1234")
	assert.Contains(t, out, "matched: true")
}
