package datastructure

import (
	"github.com/twpayne/go-polyline"
)

// CreatePolyline encodes the route geometry with the google polyline
// algorithm for compact transport to map frontends.
func CreatePolyline(path []Coordinate) string {
	coords := make([][]float64, 0, len(path))
	for _, p := range path {
		coords = append(coords, []float64{p.Lat, p.Lon})
	}
	return string(polyline.EncodeCoords(coords))
}
