package domain

import "time"

// MoistureBand is the qualitative category of a raw soil-moisture reading.
// The probe reports a capacitive ADC count: lower counts mean wetter soil.
type MoistureBand int

const (
	MoistureUnknown MoistureBand = iota
	MoistureWet
	MoistureOptimal
	MoistureModerate
	MoistureDry
)

// ClassifyMoisture maps a raw soil-moisture value to its band.
// Bands are half-open and checked in order; Dry includes its upper bound.
func ClassifyMoisture(value int) MoistureBand {
	switch {
	case value >= 1500 && value < 1700:
		return MoistureWet
	case value >= 1700 && value < 2000:
		return MoistureOptimal
	case value >= 2000 && value < 2200:
		return MoistureModerate
	case value >= 2200 && value <= 2500:
		return MoistureDry
	}
	return MoistureUnknown
}

// ClassifyMoistureText parses the leading integer of raw and classifies it.
// Text that does not parse is Unknown.
func ClassifyMoistureText(raw string) MoistureBand {
	n, ok := Value(raw).Int()
	if !ok {
		return MoistureUnknown
	}
	return ClassifyMoisture(n)
}

func (b MoistureBand) String() string {
	switch b {
	case MoistureWet:
		return "Wet"
	case MoistureOptimal:
		return "Optimal"
	case MoistureModerate:
		return "Moderate"
	case MoistureDry:
		return "Dry"
	}
	return "Unknown"
}

// Advisory returns the irrigation advice shown under the band.
func (b MoistureBand) Advisory() string {
	switch b {
	case MoistureWet:
		return "High moisture, typically during irrigation or after rain."
	case MoistureOptimal:
		return "Best range for paddy field growth."
	case MoistureModerate:
		return "Slightly dry, may require irrigation soon."
	case MoistureDry:
		return "Low moisture, urgent irrigation needed."
	}
	return "Unknown moisture level."
}

// NeedsIrrigation reports whether the band calls for watering.
func (b MoistureBand) NeedsIrrigation() bool {
	return b == MoistureModerate || b == MoistureDry
}

// ParseMoistureBand is the inverse of String; unrecognised names are Unknown.
func ParseMoistureBand(s string) MoistureBand {
	for _, b := range []MoistureBand{MoistureWet, MoistureOptimal, MoistureModerate, MoistureDry} {
		if b.String() == s {
			return b
		}
	}
	return MoistureUnknown
}

// CardView is what the dashboard shows for one reading.
// Soil-moisture readings carry a band; every other type carries value and unit.
type CardView struct {
	Type      SensorType `json:"type"`
	Icon      string     `json:"icon"`
	Value     Value      `json:"value"`
	Unit      string     `json:"unit,omitempty"`
	Display   string     `json:"display"`
	Band      string     `json:"band,omitempty"`
	Advisory  string     `json:"advisory,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

// Classify builds the card for a reading.
func Classify(r SensorReading) CardView {
	card := CardView{
		Type:      r.Type,
		Icon:      r.Type.Icon(),
		Value:     r.Value,
		Unit:      r.Type.Unit(),
		Timestamp: r.Timestamp,
	}

	if r.Type == SensorSoilMoisture {
		band := ClassifyMoistureText(string(r.Value))
		card.Band = band.String()
		card.Advisory = band.Advisory()
		card.Display = band.String()
		return card
	}

	card.Display = string(r.Value)
	if card.Unit != "" {
		card.Display += " " + card.Unit
	}
	return card
}
