// Package bytesize provides a byte count type for configuration fields,
// parsed from human-readable strings like "64Mi" or "1GB".
package bytesize

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ByteSize is a size in bytes. Config files may write it as a plain
// number or with a unit suffix: binary units (Ki, Mi, Gi, Ti, x1024)
// or decimal ones (K, M, G, T, x1000), with an optional trailing B.
type ByteSize uint64

const (
	B  ByteSize = 1
	KB ByteSize = 1000
	MB ByteSize = 1000 * KB
	GB ByteSize = 1000 * MB
	TB ByteSize = 1000 * GB

	KiB ByteSize = 1024
	MiB ByteSize = 1024 * KiB
	GiB ByteSize = 1024 * MiB
	TiB ByteSize = 1024 * GiB
)

// ParseByteSize parses strings like "64Mi", "1.5GiB", "100MB" or "4096".
func ParseByteSize(s string) (ByteSize, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return 0, errors.New("empty byte size")
	}

	// Split the numeric prefix from the unit suffix.
	i := 0
	for i < len(raw) && (raw[i] == '.' || (raw[i] >= '0' && raw[i] <= '9')) {
		i++
	}
	num := raw[:i]
	if num == "" {
		return 0, fmt.Errorf("invalid byte size %q", s)
	}

	unit := strings.TrimSpace(raw[i:])
	mult, ok := unitMultiplier(unit)
	if !ok {
		return 0, fmt.Errorf("unknown byte size unit %q", unit)
	}

	if strings.Contains(num, ".") {
		f, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid byte size %q", s)
		}
		return ByteSize(f * float64(mult)), nil
	}

	n, err := strconv.ParseUint(num, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size %q", s)
	}
	return ByteSize(n) * mult, nil
}

// unitMultiplier resolves a unit suffix. The trailing "b" is optional:
// "Mi" and "MiB" name the same unit, as do "K" and "KB".
func unitMultiplier(unit string) (ByteSize, bool) {
	u := strings.ToLower(unit)
	if u == "" || u == "b" {
		return B, true
	}
	u = strings.TrimSuffix(u, "b")
	switch u {
	case "k":
		return KB, true
	case "m":
		return MB, true
	case "g":
		return GB, true
	case "t":
		return TB, true
	case "ki":
		return KiB, true
	case "mi":
		return MiB, true
	case "gi":
		return GiB, true
	case "ti":
		return TiB, true
	}
	return 0, false
}

// UnmarshalText lets ByteSize fields decode from strings in YAML and
// mapstructure config.
func (b *ByteSize) UnmarshalText(text []byte) error {
	size, err := ParseByteSize(string(text))
	if err != nil {
		return err
	}
	*b = size
	return nil
}

// String renders in the largest binary unit that fits.
func (b ByteSize) String() string {
	switch {
	case b >= TiB:
		return fmt.Sprintf("%.2fTiB", float64(b)/float64(TiB))
	case b >= GiB:
		return fmt.Sprintf("%.2fGiB", float64(b)/float64(GiB))
	case b >= MiB:
		return fmt.Sprintf("%.2fMiB", float64(b)/float64(MiB))
	case b >= KiB:
		return fmt.Sprintf("%.2fKiB", float64(b)/float64(KiB))
	default:
		return fmt.Sprintf("%dB", uint64(b))
	}
}

func (b ByteSize) Uint64() uint64 { return uint64(b) }

// Int64 is for APIs that take signed sizes, like Badger's cache option.
func (b ByteSize) Int64() int64 { return int64(b) }
