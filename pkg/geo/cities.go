package geo

import (
	"math"
	"strings"
)

const earthRadiusKM = 6371.0

// MaxNearbyRadiusKM caps how wide a nearby catalog query may reach.
const MaxNearbyRadiusKM = 500.0

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat float64
	Lon float64
}

// cityTable maps normalized city names to coordinates. Listings carry
// free-text locations; nearby filtering only applies to locations that
// resolve here.
var cityTable = map[string]Point{
	"new york":      {Lat: 40.7128, Lon: -74.0060},
	"brooklyn":      {Lat: 40.6782, Lon: -73.9442},
	"jersey city":   {Lat: 40.7178, Lon: -74.0431},
	"philadelphia":  {Lat: 39.9526, Lon: -75.1652},
	"boston":        {Lat: 42.3601, Lon: -71.0589},
	"washington":    {Lat: 38.9072, Lon: -77.0369},
	"chicago":       {Lat: 41.8781, Lon: -87.6298},
	"austin":        {Lat: 30.2672, Lon: -97.7431},
	"dallas":        {Lat: 32.7767, Lon: -96.7970},
	"houston":       {Lat: 29.7604, Lon: -95.3698},
	"denver":        {Lat: 39.7392, Lon: -104.9903},
	"seattle":       {Lat: 47.6062, Lon: -122.3321},
	"portland":      {Lat: 45.5152, Lon: -122.6784},
	"san francisco": {Lat: 37.7749, Lon: -122.4194},
	"oakland":       {Lat: 37.8044, Lon: -122.2712},
	"los angeles":   {Lat: 34.0522, Lon: -118.2437},
	"san diego":     {Lat: 32.7157, Lon: -117.1611},
	"miami":         {Lat: 25.7617, Lon: -80.1918},
	"atlanta":       {Lat: 33.7490, Lon: -84.3880},
	"london":        {Lat: 51.5074, Lon: -0.1278},
	"paris":         {Lat: 48.8566, Lon: 2.3522},
	"berlin":        {Lat: 52.5200, Lon: 13.4050},
	"amsterdam":     {Lat: 52.3676, Lon: 4.9041},
	"madrid":        {Lat: 40.4168, Lon: -3.7038},
	"barcelona":     {Lat: 41.3874, Lon: 2.1686},
}

// Resolve looks up a city name in the fixed city table.
func Resolve(city string) (Point, bool) {
	p, ok := cityTable[normalize(city)]
	return p, ok
}

// DistanceKM computes the great-circle distance between two points.
func DistanceKM(a, b Point) float64 {
	latA := radians(a.Lat)
	latB := radians(b.Lat)
	dLat := radians(b.Lat - a.Lat)
	dLon := radians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latA)*math.Cos(latB)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKM * math.Asin(math.Min(1, math.Sqrt(h)))
}

// WithinRadius reports whether the candidate location resolves to a point
// within radiusKM of the origin. Unresolvable locations are always outside.
func WithinRadius(origin Point, location string, radiusKM float64) bool {
	p, ok := Resolve(location)
	if !ok {
		return false
	}
	return DistanceKM(origin, p) <= radiusKM
}

func normalize(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
