package airquality

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/air-quality-monitor/internal/common"
)

// ErrMissingField is returned when a required payload field is absent or not numeric.
var ErrMissingField = errors.New("missing required field")

// Normalize turns a device payload into a Reading for the durable store.
// Only ppm is strictly validated; optional telemetry is coerced leniently and
// dropped to nil when it cannot be read as a number.
func Normalize(payload map[string]any, now time.Time) (Reading, error) {
	ppm, ok := toFloat(payload["ppm"])
	if !ok {
		return Reading{}, fmt.Errorf("%w: ppm", ErrMissingField)
	}

	// A label supplied by the device is trusted verbatim.
	quality := Quality(common.FirstNonEmpty(toString(payload["airQuality"]), toString(payload["status"])))
	if quality == "" {
		quality = ClassifyValue(ppm)
	}

	return Reading{
		ID:          uuid.NewString(),
		PPM:         ppm,
		AirQuality:  quality,
		Temperature: optionalFloat(payload["temperature"]),
		Humidity:    optionalFloat(payload["humidity"]),
		Motion:      toBool(payload["motion"]),
		Timestamp:   now.UTC(),
	}, nil
}

// NormalizeRealtime builds a Snapshot for the realtime cache. It never fails:
// a missing ppm yields a nil concentration and an Unknown label.
func NormalizeRealtime(payload map[string]any, now time.Time) Snapshot {
	ppm := optionalFloat(payload["ppm"])
	quality := Classify(ppm)
	ts := now.UTC()

	return Snapshot{
		PPM:         ppm,
		AirQuality:  &quality,
		Temperature: optionalFloat(payload["temperature"]),
		Humidity:    optionalFloat(payload["humidity"]),
		Motion:      toBool(payload["motion"]),
		Timestamp:   &ts,
	}
}

func optionalFloat(v any) *float64 {
	f, ok := toFloat(v)
	if !ok {
		return nil
	}
	return &f
}

// toFloat accepts JSON numbers and numeric strings. Non-finite values are rejected.
func toFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func toBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		return err == nil && parsed
	default:
		f, ok := toFloat(v)
		return ok && f != 0
	}
}

func toString(v any) string {
	s, _ := v.(string)
	return s
}
