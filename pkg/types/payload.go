package types

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Fields a payload must carry, in the order they are reported when missing.
var RequiredFields = []string{"device_id", "temperature", "humidity", "flow_rate"}

// FromPayload builds a SensorReading from a decoded JSON object.
// The timestamp is always taken from now; a client supplied value is ignored.
func FromPayload(payload map[string]any, now time.Time) (*SensorReading, error) {
	verr := &ValidationError{}
	for _, field := range RequiredFields {
		if v, ok := payload[field]; !ok || v == nil {
			verr.Missing = append(verr.Missing, field)
		}
	}

	reading := &SensorReading{Timestamp: NormalizeTimestamp(now)}

	if v, ok := payload["device_id"].(string); ok && strings.TrimSpace(v) != "" {
		reading.DeviceID = v
	} else if payload["device_id"] != nil {
		verr.Invalid = append(verr.Invalid, "device_id")
	}

	numbers := []struct {
		field string
		dst   **float64
	}{
		{"temperature", &reading.Temperature},
		{"humidity", &reading.Humidity},
		{"flow_rate", &reading.FlowRate},
		{"latitude", &reading.Latitude},
		{"longitude", &reading.Longitude},
	}
	for _, n := range numbers {
		raw := payload[n.field]
		if raw == nil {
			continue
		}
		f, ok := toFloat(raw)
		if !ok {
			verr.Invalid = append(verr.Invalid, n.field)
			continue
		}
		*n.dst = &f
	}

	// Some devices report flow_direction as a number; keep it as text.
	// A blank direction is the same as none.
	switch v := payload["flow_direction"].(type) {
	case nil:
	case string:
		if strings.TrimSpace(v) != "" {
			reading.FlowDirection = &v
		}
	case float64:
		s := strconv.FormatFloat(v, 'f', -1, 64)
		reading.FlowDirection = &s
	case json.Number:
		s := v.String()
		reading.FlowDirection = &s
	default:
		verr.Invalid = append(verr.Invalid, "flow_direction")
	}

	if len(verr.Missing) > 0 || len(verr.Invalid) > 0 {
		return nil, verr
	}
	return reading, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
