package domain

import (
	"errors"
	"math"
)

// Coordonnées de la Kaaba.
const (
	KaabaLatitude  = 21.4225
	KaabaLongitude = 39.8262
)

var ErrInvalidCoordinates = errors.New("invalid coordinates")

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (c Coordinates) Validate() error {
	if math.IsNaN(c.Latitude) || math.IsNaN(c.Longitude) ||
		c.Latitude < -90 || c.Latitude > 90 || c.Longitude < -180 || c.Longitude > 180 {
		return ErrInvalidCoordinates
	}
	return nil
}

type Qibla struct {
	From      Coordinates `json:"from"`
	Bearing   float64     `json:"bearing"`
	Direction string      `json:"direction"`
}

// QiblaBearing calcule le cap initial (grand cercle) vers la Kaaba, en degrés [0, 360).
func QiblaBearing(from Coordinates) float64 {
	lat1 := from.Latitude * math.Pi / 180
	lat2 := KaabaLatitude * math.Pi / 180
	dLng := (KaabaLongitude - from.Longitude) * math.Pi / 180

	y := math.Sin(dLng)
	x := math.Cos(lat1)*math.Tan(lat2) - math.Sin(lat1)*math.Cos(dLng)
	deg := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(deg+360, 360)
}

var compassPoints = [...]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

func CompassDirection(bearing float64) string {
	idx := int(math.Round(math.Mod(bearing+360, 360)/45)) % len(compassPoints)
	return compassPoints[idx]
}

func QiblaFrom(from Coordinates) (Qibla, error) {
	if err := from.Validate(); err != nil {
		return Qibla{}, err
	}
	b := QiblaBearing(from)
	return Qibla{From: from, Bearing: math.Round(b*100) / 100, Direction: CompassDirection(b)}, nil
}
