package geometry

import (
	"math"

	"github.com/scatterdata/automask/internal/frame"
)

// rotation caches the trig terms of the detector orientation so the
// per-pixel loops stay branch-free.
type rotation struct {
	c1, s1 float64
	c2, s2 float64
	c3, s3 float64
}

func (g *Geometry) rotation() rotation {
	return rotation{
		c1: math.Cos(g.Rot1), s1: math.Sin(g.Rot1),
		c2: math.Cos(g.Rot2), s2: math.Sin(g.Rot2),
		c3: math.Cos(g.Rot3), s3: math.Sin(g.Rot3),
	}
}

// twoTheta returns the scattering angle of the pixel centered at
// (row, col), following the pyFAI rotation convention: the pixel
// position in the detector plane is rotated by Rot1..Rot3 around the
// sample and measured against the beam axis.
func (g *Geometry) twoTheta(rot rotation, row, col int) float64 {
	p1 := (float64(row)+0.5)*g.PixelSize1 - g.Poni1
	p2 := (float64(col)+0.5)*g.PixelSize2 - g.Poni2
	l := g.Distance

	t1 := p1*rot.c2*rot.c3 +
		p2*(rot.c3*rot.s1*rot.s2-rot.c1*rot.s3) -
		l*(rot.c1*rot.c3*rot.s2+rot.s1*rot.s3)
	t2 := p1*rot.c2*rot.s3 +
		p2*(rot.c1*rot.c3+rot.s1*rot.s2*rot.s3) -
		l*(-rot.c3*rot.s1+rot.c1*rot.s2*rot.s3)
	t3 := p1*rot.s2 - p2*rot.c2*rot.s1 + l*rot.c1*rot.c2

	return math.Atan2(math.Hypot(t1, t2), t3)
}

// TwoThetaArray computes the scattering angle 2theta (radians) for
// every pixel of a rows x cols detector.
func (g *Geometry) TwoThetaArray(rows, cols int) *frame.Frame {
	rot := g.rotation()
	out := frame.New(rows, cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			out.Set(r, c, g.twoTheta(rot, r, c))
		}
	}
	return out
}

// QArray computes the momentum transfer Q in inverse angstroms for
// every pixel: Q = 4*pi*sin(2theta/2)/lambda.
func (g *Geometry) QArray(rows, cols int) *frame.Frame {
	rot := g.rotation()
	lambdaA := g.Wavelength * 1e10
	out := frame.New(rows, cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			tth := g.twoTheta(rot, r, c)
			out.Set(r, c, 4*math.Pi*math.Sin(tth/2)/lambdaA)
		}
	}
	return out
}

// RArray computes the in-plane radius (meters) of each pixel projected
// back to a flat detector orthogonal to the beam: r = dist*tan(2theta).
func (g *Geometry) RArray(rows, cols int) *frame.Frame {
	rot := g.rotation()
	out := frame.New(rows, cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			out.Set(r, c, g.Distance*math.Tan(g.twoTheta(rot, r, c)))
		}
	}
	return out
}
