package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var coordRe = regexp.MustCompile(`^\s*(-?\d+(?:\.\d+)?)\s*,\s*(-?\d+(?:\.\d+)?)\s*$`)

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Lat float64
	Lng float64
}

// String formats c the way it is stored on a farm.
func (c Coordinates) String() string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lng, 'f', -1, 64)
}

// ParseCoordinates parses "lat,lng" and checks both values are in range.
func ParseCoordinates(raw string) (Coordinates, error) {
	m := coordRe.FindStringSubmatch(raw)
	if len(m) != 3 {
		return Coordinates{}, fmt.Errorf("unable to parse coordinates: %q", raw)
	}

	lat, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("invalid latitude %q: %w", m[1], err)
	}
	lng, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("invalid longitude %q: %w", m[2], err)
	}

	if lat < -90 || lat > 90 {
		return Coordinates{}, fmt.Errorf("latitude %v out of range", lat)
	}
	if lng < -180 || lng > 180 {
		return Coordinates{}, fmt.Errorf("longitude %v out of range", lng)
	}
	return Coordinates{Lat: lat, Lng: lng}, nil
}

// ParseDate accepts a calendar date (2006-01-02) or an RFC3339 timestamp.
// Calendar dates are interpreted as midnight UTC.
func ParseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %q", raw)
}
