package domain

import "strings"

// SensorType tags the kind of observation a reading carries.
type SensorType string

const (
	SensorTemperature  SensorType = "TEMPERATURE"
	SensorHumidity     SensorType = "HUMIDITY"
	SensorSoilMoisture SensorType = "SOIL_MOISTURE"
	SensorLightLevel   SensorType = "LIGHT_LEVEL"
	SensorMotion       SensorType = "MOTION"
	SensorValveStatus  SensorType = "VALVE_STATUS"

	// SensorUnknown is assigned to tags the backend sends that we don't recognise.
	SensorUnknown SensorType = "UNKNOWN"
)

// SensorTypes lists every known sensor type in display order.
var SensorTypes = []SensorType{
	SensorTemperature,
	SensorHumidity,
	SensorSoilMoisture,
	SensorLightLevel,
	SensorMotion,
	SensorValveStatus,
}

// ParseSensorType maps a backend tag to a SensorType, ignoring case.
func ParseSensorType(s string) SensorType {
	t := SensorType(strings.ToUpper(strings.TrimSpace(s)))
	switch t {
	case SensorTemperature, SensorHumidity, SensorSoilMoisture,
		SensorLightLevel, SensorMotion, SensorValveStatus:
		return t
	}
	return SensorUnknown
}

// Unit returns the display unit for the sensor type; empty when the value is unitless.
func (t SensorType) Unit() string {
	switch t {
	case SensorTemperature:
		return "°C"
	case SensorHumidity:
		return "%"
	case SensorLightLevel:
		return "lx"
	case SensorSoilMoisture, SensorMotion, SensorValveStatus, SensorUnknown:
		return ""
	}
	return ""
}

// Icon returns the icon name the presentation layer renders next to the card title.
func (t SensorType) Icon() string {
	switch t {
	case SensorTemperature:
		return "thermometer"
	case SensorHumidity:
		return "droplet"
	case SensorSoilMoisture:
		return "sprout"
	case SensorLightLevel:
		return "sun"
	case SensorMotion:
		return "rat"
	case SensorValveStatus:
		return "droplet"
	case SensorUnknown:
		return "circle-help"
	}
	return "circle-help"
}

func (t SensorType) String() string {
	return string(t)
}
