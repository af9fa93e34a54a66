/*
geo.go - Office geofence helper

PURPOSE:
  Produces the "location accepted" boolean the Validator consumes for
  bot-channel check-ins. The Validator itself never inspects coordinates;
  it only sees the boolean, so deployments may substitute any geofencing
  or anti-spoofing heuristic.
*/
package attendance

import "math"

const earthRadiusMeters = 6371000

// Office is the geofence around the workplace.
type Office struct {
	Latitude     float64
	Longitude    float64
	RadiusMeters float64
}

// Distance returns the haversine distance in meters from the office to a
// coordinate pair.
func (o Office) Distance(p GeoPoint) float64 {
	lat1 := p.Latitude * math.Pi / 180
	lat2 := o.Latitude * math.Pi / 180
	dLat := (o.Latitude - p.Latitude) * math.Pi / 180
	dLon := (o.Longitude - p.Longitude) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// Accepts reports whether the point lies inside the office radius, along
// with the measured distance for display.
func (o Office) Accepts(p GeoPoint) (bool, float64) {
	d := o.Distance(p)
	return d <= o.RadiusMeters, d
}
