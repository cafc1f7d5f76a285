package surface

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/smartair/types"
)

// pointSource records how an output point of a clip is built from input points
type pointSource struct {
	a, b int
	t    float64 // a + t*(b-a); b < 0 for a copied point
}

type clipper struct {
	in      *Mesh
	height  float64
	dist    []float64
	newID   map[int]int
	cutID   map[types.EdgeKey]int
	sources []pointSource
	points  []r3.Vec
}

/*
ClipAbove discards everything above the horizontal plane z = height and
returns the remaining surface. Triangles crossing the plane are cut and
re-triangulated, with cut points shared between neighbours through the
crossing edge. Point arrays are interpolated at cut points, cell arrays are
inherited from the parent cell. Points lying on the plane are kept.
*/
func (m *Mesh) ClipAbove(height float64) *Mesh {
	c := &clipper{
		in:     m,
		height: height,
		dist:   make([]float64, len(m.Points)),
		newID:  make(map[int]int),
		cutID:  make(map[types.EdgeKey]int),
	}
	for i, p := range m.Points {
		c.dist[i] = p.Z - height
	}
	out := &Mesh{}
	var lineParent, triParent []int

	for k, line := range m.Lines {
		a, b := line[0], line[1]
		inA, inB := c.dist[a] <= 0, c.dist[b] <= 0
		var seg [2]int
		switch {
		case inA && inB:
			seg = [2]int{c.keep(a), c.keep(b)}
		case inA:
			seg = [2]int{c.keep(a), c.cut(a, b)}
		case inB:
			seg = [2]int{c.cut(a, b), c.keep(b)}
		default:
			continue
		}
		if seg[0] == seg[1] {
			continue
		}
		out.Lines = append(out.Lines, seg)
		lineParent = append(lineParent, k)
	}

	emit := func(parent int, v0, v1, v2 int) {
		if v0 == v1 || v1 == v2 || v0 == v2 {
			return
		}
		out.Triangles = append(out.Triangles, [3]int{v0, v1, v2})
		triParent = append(triParent, parent)
	}
	for k, tri := range m.Triangles {
		var inside [3]bool
		var nIn int
		for n, v := range tri {
			if c.dist[v] <= 0 {
				inside[n] = true
				nIn++
			}
		}
		switch nIn {
		case 3:
			emit(k, c.keep(tri[0]), c.keep(tri[1]), c.keep(tri[2]))
		case 1:
			// rotate so the kept vertex leads, preserving orientation
			p := 0
			for !inside[p] {
				p++
			}
			vp, vq, vr := tri[p], tri[(p+1)%3], tri[(p+2)%3]
			emit(k, c.keep(vp), c.cut(vp, vq), c.cut(vp, vr))
		case 2:
			r := 0
			for inside[r] {
				r++
			}
			vr, vp, vq := tri[r], tri[(r+1)%3], tri[(r+2)%3]
			ip, iq := c.keep(vp), c.keep(vq)
			iqr, irp := c.cut(vq, vr), c.cut(vr, vp)
			emit(k, ip, iq, iqr)
			emit(k, ip, iqr, irp)
		}
	}
	out.Points = c.points

	for _, arr := range m.PointData {
		res := &Array{Name: arr.Name, NumComponents: arr.NumComponents,
			Values: make([]float64, 0, len(c.sources)*arr.NumComponents)}
		for _, src := range c.sources {
			ta := arr.Tuple(src.a)
			if src.b < 0 {
				res.Values = append(res.Values, ta...)
				continue
			}
			tb := arr.Tuple(src.b)
			for n := range ta {
				res.Values = append(res.Values, ta[n]+src.t*(tb[n]-ta[n]))
			}
		}
		out.PointData = append(out.PointData, res)
	}
	nLines := len(m.Lines)
	for _, arr := range m.CellData {
		res := &Array{Name: arr.Name, NumComponents: arr.NumComponents}
		for _, k := range lineParent {
			res.Values = append(res.Values, arr.Tuple(k)...)
		}
		for _, k := range triParent {
			res.Values = append(res.Values, arr.Tuple(nLines+k)...)
		}
		out.CellData = append(out.CellData, res)
	}
	return out
}

func (c *clipper) keep(v int) int {
	if id, ok := c.newID[v]; ok {
		return id
	}
	id := len(c.points)
	c.newID[v] = id
	c.points = append(c.points, c.in.Points[v])
	c.sources = append(c.sources, pointSource{a: v, b: -1})
	return id
}

// cut returns the point where edge (u,v) crosses the plane; exactly one end is kept
func (c *clipper) cut(u, v int) int {
	a, b := u, v
	if b < a {
		a, b = b, a
	}
	// a kept end lying on the plane is its own cut point
	if c.dist[a] == 0 {
		return c.keep(a)
	}
	if c.dist[b] == 0 {
		return c.keep(b)
	}
	key := types.MustEdgeKey(a, b)
	if id, ok := c.cutID[key]; ok {
		return id
	}
	t := c.dist[a] / (c.dist[a] - c.dist[b])
	pa, pb := c.in.Points[a], c.in.Points[b]
	p := r3.Add(pa, r3.Scale(t, r3.Sub(pb, pa)))
	p.Z = c.height
	id := len(c.points)
	c.cutID[key] = id
	c.points = append(c.points, p)
	c.sources = append(c.sources, pointSource{a: a, b: b, t: t})
	return id
}
