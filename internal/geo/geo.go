package geo

import (
	"errors"
	"strconv"
	"strings"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"
)

// GEO POINTS
// Vehicle fixes arrive as WGS84 (EPSG 4326). Map columns are stored as
// web mercator (EPSG 3857) so the frontend can draw tiles without a
// spatially aware database. Geometry is stored in WKB.

// ErrInvalidCoordinates is returned when the coordinates are invalid
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// ParseLatLon parses a string in the format "lat,lon" or "lat,lon,alt"
// as used by the home-position flag and bridge payload fallbacks.
func ParseLatLon(coords string) (lat, lon, alt float64, err error) {
	parts := strings.Split(coords, ",")
	if len(parts) < 2 {
		return 0, 0, 0, ErrInvalidCoordinates
	}
	lat, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, 0, ErrInvalidCoordinates
	}
	lon, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, 0, ErrInvalidCoordinates
	}
	if len(parts) > 2 {
		alt, err = strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
		if err != nil {
			return 0, 0, 0, ErrInvalidCoordinates
		}
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, 0, 0, ErrInvalidCoordinates
	}
	return lat, lon, alt, nil
}

// PointWGS84 builds an XYZ point in EPSG 4326 axis order (X=lon, Y=lat).
func PointWGS84(lat, lon, alt float64) geom.Point {
	return geom.NewPoint(
		geom.Coordinates{
			XY:   geom.XY{X: lon, Y: lat},
			Z:    alt,
			Type: geom.CoordinatesType(geom.DimXYZ),
		},
	)
}

// WebMercator converts a WGS84 fix to EPSG 3857 easting/northing meters.
func WebMercator(lat, lon float64) (x, y float64) {
	epsg := wgs84.EPSG()
	f := epsg.Transform(4326, 3857)
	x, y, _ = f(lon, lat, 0)
	return x, y
}

// Point3857 builds the projected point stored in the map columns.
func Point3857(lat, lon float64) geom.Point {
	x, y := WebMercator(lat, lon)
	return geom.NewPoint(
		geom.Coordinates{
			XY: geom.XY{X: x, Y: y},
			Z:  0,
		},
	)
}
