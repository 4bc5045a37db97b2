package domain

import (
	"testing"
	"time"
)

func TestClassifyMoisture(t *testing.T) {
	tests := []struct {
		value int
		want  MoistureBand
	}{
		{value: 1499, want: MoistureUnknown},
		{value: 1500, want: MoistureWet},
		{value: 1699, want: MoistureWet},
		{value: 1700, want: MoistureOptimal},
		{value: 1999, want: MoistureOptimal},
		{value: 2000, want: MoistureModerate},
		{value: 2199, want: MoistureModerate},
		{value: 2200, want: MoistureDry},
		{value: 2500, want: MoistureDry},
		{value: 2501, want: MoistureUnknown},
		{value: -5, want: MoistureUnknown},
		{value: 0, want: MoistureUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			if got := ClassifyMoisture(tt.value); got != tt.want {
				t.Errorf("ClassifyMoisture(%d) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestClassifyMoisture_Total(t *testing.T) {
	valid := map[MoistureBand]bool{
		MoistureWet: true, MoistureOptimal: true, MoistureModerate: true,
		MoistureDry: true, MoistureUnknown: true,
	}

	for v := -1000; v <= 4000; v++ {
		if got := ClassifyMoisture(v); !valid[got] {
			t.Fatalf("ClassifyMoisture(%d) returned unexpected band %d", v, got)
		}
	}
}

func TestClassifyMoistureText(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want MoistureBand
	}{
		{name: "plain integer", raw: "1800", want: MoistureOptimal},
		{name: "surrounding spaces", raw: " 2300 ", want: MoistureDry},
		{name: "decimal truncates", raw: "1699.9", want: MoistureWet},
		{name: "trailing text", raw: "2100adc", want: MoistureModerate},
		{name: "empty", raw: "", want: MoistureUnknown},
		{name: "not a number", raw: "wet", want: MoistureUnknown},
		{name: "negative", raw: "-1600", want: MoistureUnknown},
		{name: "out of range", raw: "9000", want: MoistureUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyMoistureText(tt.raw); got != tt.want {
				t.Errorf("ClassifyMoistureText(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestMoistureBand_Advisory(t *testing.T) {
	tests := []struct {
		band MoistureBand
		want string
	}{
		{band: MoistureWet, want: "High moisture, typically during irrigation or after rain."},
		{band: MoistureOptimal, want: "Best range for paddy field growth."},
		{band: MoistureModerate, want: "Slightly dry, may require irrigation soon."},
		{band: MoistureDry, want: "Low moisture, urgent irrigation needed."},
		{band: MoistureUnknown, want: "Unknown moisture level."},
	}

	for _, tt := range tests {
		if got := tt.band.Advisory(); got != tt.want {
			t.Errorf("%v.Advisory() = %q, want %q", tt.band, got, tt.want)
		}
		if ParseMoistureBand(tt.band.String()) != tt.band {
			t.Errorf("ParseMoistureBand(%q) did not round trip", tt.band.String())
		}
	}
}

func TestClassify(t *testing.T) {
	ts := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	soil := Classify(SensorReading{Type: SensorSoilMoisture, Value: "2250", Timestamp: ts})
	if soil.Band != "Dry" {
		t.Errorf("expected band Dry, got %q", soil.Band)
	}
	if soil.Advisory != "Low moisture, urgent irrigation needed." {
		t.Errorf("unexpected advisory %q", soil.Advisory)
	}

	temp := Classify(SensorReading{Type: SensorTemperature, Value: "29.5", Timestamp: ts})
	if temp.Band != "" {
		t.Errorf("temperature should not be banded, got %q", temp.Band)
	}
	if temp.Display != "29.5 °C" {
		t.Errorf("expected display '29.5 °C', got %q", temp.Display)
	}

	motion := Classify(SensorReading{Type: SensorMotion, Value: "1", Timestamp: ts})
	if motion.Display != "1" {
		t.Errorf("unitless display should be the bare value, got %q", motion.Display)
	}
	if motion.Icon != "rat" {
		t.Errorf("expected rat icon, got %q", motion.Icon)
	}
}
