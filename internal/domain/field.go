package domain

import (
	"errors"
	"strconv"
	"strings"
)

// Field is a paddy field that devices are installed in.
type Field struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Coordinate string `json:"coordinate"` // "lat,lng"
}

// Coordinate is a WGS84 position.
type Coordinate struct {
	Lat float64 `json:"latitude"`
	Lng float64 `json:"longitude"`
}

var errCoordinateFormat = errors.New(`expected "lat,lng"`)

// ParseCoordinate parses the backend's "lat,lng" text.
func ParseCoordinate(s string) (Coordinate, error) {
	latStr, lngStr, ok := strings.Cut(s, ",")
	if !ok {
		return Coordinate{}, &ParseError{Field: "coordinate", Value: s, Err: errCoordinateFormat}
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return Coordinate{}, &ParseError{Field: "coordinate", Value: s, Err: err}
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
	if err != nil {
		return Coordinate{}, &ParseError{Field: "coordinate", Value: s, Err: err}
	}

	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return Coordinate{}, &ParseError{Field: "coordinate", Value: s, Err: errors.New("out of range")}
	}

	return Coordinate{Lat: lat, Lng: lng}, nil
}

// Position parses the field's coordinate.
func (f Field) Position() (Coordinate, error) {
	return ParseCoordinate(f.Coordinate)
}
