package positioner

import "math"

const (
	earthRadiusKm         = 6378.14
	geostationaryRadiusKm = 42164.2
)

// Site is the location of the dish in decimal degrees, east and north positive.
type Site struct {
	Latitude  float64
	Longitude float64
}

func deg2rad(x float64) float64 {
	return x * math.Pi / 180
}

func rad2deg(x float64) float64 {
	return x * 180 / math.Pi
}

// hourAngle returns the angle around the polar axis between the local
// meridian and a geostationary satellite lon radians east of it.
// Arguments are in radians.
func hourAngle(lat, lon float64) float64 {
	x := geostationaryRadiusKm*math.Cos(lon) - earthRadiusKm*math.Cos(lat)
	y := geostationaryRadiusKm * math.Sin(lon)
	return math.Atan2(y, x)
}

// SatelliteAngle returns the goto angle for a polar mount at site pointing
// at the geostationary satellite at satLongitude (degrees east). Satellites
// east of the site give positive angles in the northern hemisphere.
func SatelliteAngle(site Site, satLongitude float64) float64 {
	lon := satLongitude - site.Longitude
	for lon > 180 {
		lon -= 360
	}
	for lon < -180 {
		lon += 360
	}
	angle := rad2deg(hourAngle(deg2rad(site.Latitude), deg2rad(lon)))
	if site.Latitude < 0 {
		angle = -angle
	}
	return angle
}
