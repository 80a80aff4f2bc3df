// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdfpage

import (
	"math"

	"github.com/ledongthuc/pdf"

	"github.com/pdiddy/pdfvision/pkg/types"
)

// maxFormDepth bounds form XObject nesting, which also breaks reference cycles.
const maxFormDepth = 8

// matrix is a PDF affine transform [a b c d e f].
type matrix [6]float64

func identity() matrix { return matrix{1, 0, 0, 1, 0, 0} }

// mul returns m × o.
func (m matrix) mul(o matrix) matrix {
	return matrix{
		m[0]*o[0] + m[1]*o[2],
		m[0]*o[1] + m[1]*o[3],
		m[2]*o[0] + m[3]*o[2],
		m[2]*o[1] + m[3]*o[3],
		m[4]*o[0] + m[5]*o[2] + o[4],
		m[4]*o[1] + m[5]*o[3] + o[5],
	}
}

func (m matrix) apply(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// graphics is a minimal content stream interpreter that tracks the current
// transformation matrix and records the extent of painted paths and images.
type graphics struct {
	page  types.Rect
	ctm   matrix
	saved []matrix

	path    types.Rect
	hasPath bool

	drawings []types.Rect
	images   []types.Rect
}

func newGraphics(page types.Rect) *graphics {
	return &graphics{page: page, ctm: identity()}
}

// run interprets a content stream, or an array of them, with the given
// resource dictionary.
func (g *graphics) run(contents, resources pdf.Value, depth int) {
	if contents.Kind() == pdf.Array {
		for i := 0; i < contents.Len(); i++ {
			g.run(contents.Index(i), resources, depth)
		}
		return
	}
	if contents.Kind() != pdf.Stream {
		return
	}
	pdf.Interpret(contents, func(stk *pdf.Stack, op string) {
		g.op(stk, op, resources, depth)
	})
}

// op executes one operator. Operands left on the stack, including those of
// operators that do not affect geometry (w, RG, Tf, Tj, gs...), are
// discarded so they never reach a later operator.
func (g *graphics) op(stk *pdf.Stack, op string, resources pdf.Value, depth int) {
	defer drain(stk)
	switch op {
	case "q":
		g.saved = append(g.saved, g.ctm)
	case "Q":
		if n := len(g.saved); n > 0 {
			g.ctm = g.saved[n-1]
			g.saved = g.saved[:n-1]
		}
	case "cm":
		if v, ok := operands(stk, 6); ok {
			g.ctm = matrix{v[0], v[1], v[2], v[3], v[4], v[5]}.mul(g.ctm)
		}
	case "re":
		if v, ok := operands(stk, 4); ok {
			g.addPoint(v[0], v[1])
			g.addPoint(v[0]+v[2], v[1])
			g.addPoint(v[0], v[1]+v[3])
			g.addPoint(v[0]+v[2], v[1]+v[3])
		}
	case "m", "l":
		if v, ok := operands(stk, 2); ok {
			g.addPoint(v[0], v[1])
		}
	case "c":
		if v, ok := operands(stk, 6); ok {
			g.addPoint(v[0], v[1])
			g.addPoint(v[2], v[3])
			g.addPoint(v[4], v[5])
		}
	case "v", "y":
		if v, ok := operands(stk, 4); ok {
			g.addPoint(v[0], v[1])
			g.addPoint(v[2], v[3])
		}
	case "S", "s", "f", "F", "f*", "B", "B*", "b", "b*":
		if g.hasPath {
			g.drawings = append(g.drawings, g.path)
		}
		g.hasPath = false
	case "n":
		g.hasPath = false
	case "Do":
		if stk.Len() > 0 {
			g.xobject(resources.Key("XObject").Key(stk.Pop().Name()), resources, depth)
		}
	case "EI":
		g.images = append(g.images, g.unitSquare())
	}
}

func (g *graphics) xobject(x, resources pdf.Value, depth int) {
	switch x.Key("Subtype").Name() {
	case "Image":
		g.images = append(g.images, g.unitSquare())
	case "Form":
		if depth >= maxFormDepth {
			return
		}
		saved := g.ctm
		if m := x.Key("Matrix"); m.Kind() == pdf.Array && m.Len() == 6 {
			g.ctm = matrix{
				m.Index(0).Float64(), m.Index(1).Float64(), m.Index(2).Float64(),
				m.Index(3).Float64(), m.Index(4).Float64(), m.Index(5).Float64(),
			}.mul(g.ctm)
		}
		res := x.Key("Resources")
		if res.IsNull() {
			res = resources
		}
		g.run(x, res, depth+1)
		g.ctm = saved
	}
}

// addPoint extends the current path bounds with a user-space point.
func (g *graphics) addPoint(x, y float64) {
	px, py := g.toPage(x, y)
	if !g.hasPath {
		g.path = types.Rect{X0: px, Y0: py, X1: px, Y1: py}
		g.hasPath = true
		return
	}
	g.path.X0 = math.Min(g.path.X0, px)
	g.path.Y0 = math.Min(g.path.Y0, py)
	g.path.X1 = math.Max(g.path.X1, px)
	g.path.Y1 = math.Max(g.path.Y1, py)
}

// unitSquare is the placement box of an image: the unit square under the CTM.
func (g *graphics) unitSquare() types.Rect {
	r := types.Rect{X0: math.Inf(1), Y0: math.Inf(1), X1: math.Inf(-1), Y1: math.Inf(-1)}
	for _, c := range [4][2]float64{{0, 0}, {1, 0}, {0, 1}, {1, 1}} {
		px, py := g.toPage(c[0], c[1])
		r.X0 = math.Min(r.X0, px)
		r.Y0 = math.Min(r.Y0, py)
		r.X1 = math.Max(r.X1, px)
		r.Y1 = math.Max(r.Y1, py)
	}
	return r
}

// toPage maps user space to top-left page coordinates.
func (g *graphics) toPage(x, y float64) (float64, float64) {
	dx, dy := g.ctm.apply(x, y)
	return dx - g.page.X0, g.page.Y1 - dy
}

func drain(stk *pdf.Stack) {
	for stk.Len() > 0 {
		stk.Pop()
	}
}

// operands pops n numeric operands and returns them in stream order.
func operands(stk *pdf.Stack, n int) ([]float64, bool) {
	if stk.Len() < n {
		return nil, false
	}
	v := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		v[i] = stk.Pop().Float64()
	}
	return v, true
}
