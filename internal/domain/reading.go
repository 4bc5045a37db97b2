package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// SensorReading is one observation of one sensor type on one device.
// This is pure domain logic - no transport, no storage, just the observation.
type SensorReading struct {
	Type      SensorType `json:"type"`
	Value     Value      `json:"value"`
	Timestamp time.Time  `json:"timestamp"`
}

// Value is the raw text of an observation. The backend sends numbers for most
// sensors and strings for some (soil moisture), so both are kept as text.
type Value string

// NumberValue formats a float as a reading value.
func NumberValue(f float64) Value {
	return Value(strconv.FormatFloat(f, 'f', -1, 64))
}

// Float parses the value as a decimal number.
func (v Value) Float() (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(string(v)), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Int parses the leading integer of the value, so "1800.6" is 1800 and
// "2100 raw" is 2100. It fails when no digits lead the text.
func (v Value) Int() (int, bool) {
	s := strings.TrimSpace(string(v))
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

func (v Value) String() string {
	return string(v)
}

// UnmarshalJSON accepts either a JSON number or a JSON string.
func (v *Value) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*v = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = Value(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		// booleans show up for valve status on some firmware
		var flag bool
		if berr := json.Unmarshal(b, &flag); berr != nil {
			return err
		}
		if flag {
			*v = "1"
		} else {
			*v = "0"
		}
		return nil
	}
	*v = Value(n.String())
	return nil
}

// MarshalJSON writes numeric values as numbers and everything else as strings.
func (v Value) MarshalJSON() ([]byte, error) {
	s := strings.TrimSpace(string(v))
	if _, err := strconv.ParseFloat(s, 64); err == nil && json.Valid([]byte(s)) {
		return []byte(s), nil
	}
	return json.Marshal(string(v))
}

// UnmarshalJSON normalises the type tag while decoding.
func (r *SensorReading) UnmarshalJSON(b []byte) error {
	var raw struct {
		Type      string    `json:"type"`
		Value     Value     `json:"value"`
		Timestamp time.Time `json:"timestamp"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	r.Type = ParseSensorType(raw.Type)
	r.Value = raw.Value
	r.Timestamp = raw.Timestamp
	return nil
}

// Snapshot is the most recent set of readings of one device at fetch time.
type Snapshot struct {
	MachineID string          `json:"machineId"`
	Readings  []SensorReading `json:"data"`
}
