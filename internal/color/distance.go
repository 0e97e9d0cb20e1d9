package color

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// DistanceFunc measures how far apart two colors are
type DistanceFunc func(a, b colorful.Color) float64

// RGBDistance is the Euclidean distance between two colors in 8-bit RGB space
func RGBDistance(a, b colorful.Color) float64 {
	ar, ag, ab := a.RGB255()
	br, bg, bb := b.RGB255()
	dr := float64(ar) - float64(br)
	dg := float64(ag) - float64(bg)
	db := float64(ab) - float64(bb)
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

// PerceptualDistance is the CIEDE2000 difference scaled by 100, which puts a
// just-noticeable difference of about 2.3 on roughly the same scale as
// RGBDistance thresholds.
func PerceptualDistance(a, b colorful.Color) float64 {
	return a.DistanceCIEDE2000(b) * 100
}
