package bytesize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseByteSize(t *testing.T) {
	tests := []struct {
		input string
		want  ByteSize
	}{
		{"0", 0},
		{"4096", 4096},
		{"1024B", 1024},
		{"1024b", 1024},

		{"1Ki", KiB},
		{"512KiB", 512 * KiB},
		{"64Mi", 64 * MiB},
		{"64MiB", 64 * MiB},
		{"1Gi", GiB},
		{"2Ti", 2 * TiB},

		{"1K", KB},
		{"1KB", KB},
		{"100M", 100 * MB},
		{"100MB", 100 * MB},
		{"1G", GB},
		{"1T", TB},

		// Unit case does not matter.
		{"1gi", GiB},
		{"1GI", GiB},

		// Whitespace around and between number and unit.
		{"  1Gi", GiB},
		{"1Gi  ", GiB},
		{"1 Gi", GiB},

		// Fractional sizes.
		{"1.5Mi", ByteSize(1.5 * float64(MiB))},
		{"0.5Gi", ByteSize(0.5 * float64(GiB))},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseByteSize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseByteSizeErrors(t *testing.T) {
	for _, input := range []string{
		"",
		"   ",
		"1Xi",
		"-1Gi",
		"Gi",
		"abc",
		"1.2.3Mi",
	} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseByteSize(input)
			assert.Error(t, err)
		})
	}
}

func TestUnmarshalText(t *testing.T) {
	var b ByteSize
	require.NoError(t, b.UnmarshalText([]byte("128Mi")))
	assert.Equal(t, 128*MiB, b)

	assert.Error(t, b.UnmarshalText([]byte("lots")))
}

func TestString(t *testing.T) {
	tests := []struct {
		input ByteSize
		want  string
	}{
		{512, "512B"},
		{2 * KiB, "2.00KiB"},
		{64 * MiB, "64.00MiB"},
		{GiB, "1.00GiB"},
		{ByteSize(1.5 * float64(GiB)), "1.50GiB"},
		{2 * TiB, "2.00TiB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.input.String())
	}
}

func TestConversions(t *testing.T) {
	size := 64 * MiB
	assert.Equal(t, uint64(67108864), size.Uint64())
	assert.Equal(t, int64(67108864), size.Int64())
}
