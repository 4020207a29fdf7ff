package geo

import (
	"fmt"

	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/antonymarion/forkQGroundControl/pkg/core"
)

// TrackLineString projects a recorded flight track into web mercator
// for session export. At least 2 fixes are required.
func TrackLineString(track []core.Position3D) (geom.LineString, error) {
	if len(track) < 2 {
		return geom.LineString{}, fmt.Errorf("track must have at least 2 fixes, got %d", len(track))
	}

	flatCoords := make([]float64, 0, len(track)*2)
	for _, p := range track {
		x, y := WebMercator(p.Lat, p.Lon)
		flatCoords = append(flatCoords, x, y)
	}

	seq := geom.NewSequence(flatCoords, geom.DimXY)
	return geom.NewLineString(seq), nil
}
