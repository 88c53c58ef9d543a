// Package smsv1 implements the V1 SMS wire format for offline passage
// submission.
//
// A V1 message is a single pipe-delimited ASCII record:
//
//	V1|<checkpost_code>|<plate>|<vehicle_code>|<unix_seconds>|<ranger_phone_suffix>
//
// Exactly six fields; the delimiter never appears inside a field. The
// serialized form fits a single SMS (at most 160 bytes) and uses only
// characters from the GSM-7 basic set. The vehicle-code table is part of the
// wire contract: changing it requires a version bump.
package smsv1

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gatewatch/gatewatch/pkg/server/models"
)

// Version is the literal first field of every message this package handles.
const Version = "V1"

// MaxLength is the maximum serialized message size in bytes.
const MaxLength = 160

// Decode failure kinds. Callers branch with errors.Is; the wrapped message
// carries detail.
var (
	ErrMalformed          = errors.New("malformed sms message")
	ErrUnsupportedVersion = errors.New("unsupported sms message version")
	ErrUnknownVehicleCode = errors.New("unknown vehicle code")
	ErrInvalidTimestamp   = errors.New("invalid sms timestamp")
)

// vehicleCodes maps each vehicle type to its 3-letter wire code. The mapping
// is injective so every message round-trips to the type it was encoded from.
var vehicleCodes = map[models.VehicleType]string{
	models.VehicleCar:        "CAR",
	models.VehicleJeep:       "JEP",
	models.VehiclePickup:     "MTK",
	models.VehicleVan:        "VAN",
	models.VehicleMinibus:    "MNB",
	models.VehicleBus:        "BUS",
	models.VehicleTruck:      "TRK",
	models.VehicleTanker:     "TNK",
	models.VehicleMotorcycle: "MOT",
	models.VehicleOther:      "OTH",
}

// codeVehicles is the decode direction, plus legacy codes still emitted by
// old field devices. AUT (auto rickshaw) and TRC (tractor) have no dedicated
// type and decode as "other"; encode never emits them.
var codeVehicles = map[string]models.VehicleType{
	"CAR": models.VehicleCar,
	"JEP": models.VehicleJeep,
	"MTK": models.VehiclePickup,
	"VAN": models.VehicleVan,
	"MNB": models.VehicleMinibus,
	"BUS": models.VehicleBus,
	"TRK": models.VehicleTruck,
	"TNK": models.VehicleTanker,
	"MOT": models.VehicleMotorcycle,
	"OTH": models.VehicleOther,
	"AUT": models.VehicleOther,
	"TRC": models.VehicleOther,
}

// VehicleCode returns the wire code for a vehicle type.
func VehicleCode(vt models.VehicleType) (string, bool) {
	code, ok := vehicleCodes[vt]
	return code, ok
}

// Message is one decoded (or to-be-encoded) V1 passage submission.
type Message struct {
	CheckpostCode     string
	PlateNumber       string
	VehicleType       models.VehicleType
	RecordedAt        time.Time
	RangerPhoneSuffix string
}

// Encode serializes the message into its V1 wire form. The recorded-at
// instant is truncated to whole seconds.
func Encode(m *Message) (string, error) {
	code, ok := vehicleCodes[m.VehicleType]
	if !ok {
		return "", fmt.Errorf("no vehicle code for type %q", m.VehicleType)
	}
	if m.RecordedAt.IsZero() {
		return "", fmt.Errorf("recorded-at is required")
	}
	fields := []struct {
		name, value string
	}{
		{"checkpost code", m.CheckpostCode},
		{"plate number", m.PlateNumber},
		{"ranger phone suffix", m.RangerPhoneSuffix},
	}
	for _, f := range fields {
		if f.value == "" {
			return "", fmt.Errorf("%s is required", f.name)
		}
		if !isGSM7Safe(f.value) {
			return "", fmt.Errorf("%s %q contains characters outside the GSM-7 basic set", f.name, f.value)
		}
	}

	body := strings.Join([]string{
		Version,
		m.CheckpostCode,
		m.PlateNumber,
		code,
		strconv.FormatInt(m.RecordedAt.Unix(), 10),
		m.RangerPhoneSuffix,
	}, "|")

	if len(body) > MaxLength {
		return "", fmt.Errorf("encoded message is %d bytes, limit is %d", len(body), MaxLength)
	}
	return body, nil
}

// Decode parses a V1 wire message. Timestamps are validated against now plus
// the clock-skew tolerance: device clocks may run slightly ahead, but
// obviously-future instants are rejected.
func Decode(body string, now time.Time, skew time.Duration) (*Message, error) {
	if body == "" {
		return nil, fmt.Errorf("%w: empty body", ErrMalformed)
	}
	if len(body) > MaxLength {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit %d", ErrMalformed, len(body), MaxLength)
	}
	if !isGSM7Safe(strings.ReplaceAll(body, "|", "")) {
		return nil, fmt.Errorf("%w: characters outside the GSM-7 basic set", ErrMalformed)
	}

	parts := strings.Split(body, "|")
	if parts[0] != Version {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedVersion, parts[0])
	}
	if len(parts) != 6 {
		return nil, fmt.Errorf("%w: expected 6 fields, got %d", ErrMalformed, len(parts))
	}
	for i, name := range [...]string{"", "checkpost code", "plate number", "vehicle code", "timestamp", "ranger phone suffix"} {
		if i > 0 && parts[i] == "" {
			return nil, fmt.Errorf("%w: empty %s field", ErrMalformed, name)
		}
	}

	vt, ok := codeVehicles[parts[3]]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVehicleCode, parts[3])
	}

	sec, err := strconv.ParseInt(parts[4], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not an integer", ErrInvalidTimestamp, parts[4])
	}
	if sec <= 0 {
		return nil, fmt.Errorf("%w: %d is not a positive epoch", ErrInvalidTimestamp, sec)
	}
	recordedAt := time.Unix(sec, 0).UTC()
	if recordedAt.After(now.Add(skew)) {
		return nil, fmt.Errorf("%w: %s is in the future", ErrInvalidTimestamp, recordedAt.Format(time.RFC3339))
	}

	return &Message{
		CheckpostCode:     parts[1],
		PlateNumber:       parts[2],
		VehicleType:       vt,
		RecordedAt:        recordedAt,
		RangerPhoneSuffix: parts[5],
	}, nil
}

// gsm7Unsafe are the printable ASCII characters that live in the GSM-7
// extension table (or nowhere at all) and therefore are not single-septet
// safe. The delimiter is among them, which conveniently keeps it out of
// every field.
const gsm7Unsafe = "`[]{}\\^~|"

func isGSM7Safe(s string) bool {
	for _, r := range s {
		if r < 0x20 || r > 0x7E {
			return false
		}
		if strings.ContainsRune(gsm7Unsafe, r) {
			return false
		}
	}
	return true
}
