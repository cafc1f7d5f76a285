package readers

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/smartair/surface"
)

const (
	stlHeaderSize = 80
	stlFacetSize  = 50 // normal, 3 vertices, attribute byte count
)

// ReadSTL reads an ASCII or binary STL file. Exactly coincident vertices are
// merged so neighbouring facets share points.
func ReadSTL(filename string) (*surface.Mesh, error) {
	file, err := openFile(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return DecodeSTL(file)
}

func DecodeSTL(r io.Reader) (*surface.Mesh, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading STL: %v", err)
	}
	var msh *surface.Mesh
	switch {
	case isBinarySTL(data):
		msh, err = decodeBinarySTL(data)
	case bytes.HasPrefix(bytes.TrimSpace(data), []byte("solid")):
		msh, err = decodeASCIISTL(data)
	default:
		err = fmt.Errorf("not an STL file: no solid keyword and size %d does not match a binary facet count",
			len(data))
	}
	if err != nil {
		return nil, err
	}
	if len(msh.Triangles) == 0 {
		return nil, fmt.Errorf("STL contains no facets")
	}
	return msh, nil
}

// isBinarySTL checks the facet count against the file size, as binary files
// may also start with "solid"
func isBinarySTL(data []byte) bool {
	if len(data) < stlHeaderSize+4 {
		return false
	}
	nTri := binary.LittleEndian.Uint32(data[stlHeaderSize:])
	return uint64(len(data)) == uint64(stlHeaderSize+4)+uint64(nTri)*stlFacetSize
}

type vertexWelder struct {
	msh   *surface.Mesh
	index map[r3.Vec]int
}

func newVertexWelder() *vertexWelder {
	return &vertexWelder{msh: &surface.Mesh{}, index: make(map[r3.Vec]int)}
}

func (w *vertexWelder) add(v r3.Vec) int {
	if id, ok := w.index[v]; ok {
		return id
	}
	id := len(w.msh.Points)
	w.msh.Points = append(w.msh.Points, v)
	w.index[v] = id
	return id
}

func decodeBinarySTL(data []byte) (*surface.Mesh, error) {
	var (
		nTri = int(binary.LittleEndian.Uint32(data[stlHeaderSize:]))
		w    = newVertexWelder()
		off  = stlHeaderSize + 4
	)
	w.msh.Triangles = make([][3]int, 0, nTri)
	f32 := func(b []byte) float64 {
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	}
	for i := 0; i < nTri; i++ {
		facet := data[off+i*stlFacetSize:]
		var tri [3]int
		for v := 0; v < 3; v++ {
			const start = 3 * 4 // skip normal
			b := facet[start+12*v:]
			tri[v] = w.add(r3.Vec{X: f32(b), Y: f32(b[4:]), Z: f32(b[8:])})
		}
		w.msh.Triangles = append(w.msh.Triangles, tri)
	}
	return w.msh, nil
}

func decodeASCIISTL(data []byte) (*surface.Mesh, error) {
	var (
		w       = newVertexWelder()
		scanner = bufio.NewScanner(bytes.NewReader(data))
		lineNo  int
		verts   []int
		inLoop  bool
	)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch strings.ToLower(fields[0]) {
		case "solid", "endsolid", "facet":
		case "outer":
			inLoop = true
			verts = verts[:0]
		case "vertex":
			if !inLoop {
				return nil, fmt.Errorf("line %d: vertex outside of a loop", lineNo)
			}
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: vertex needs 3 coordinates", lineNo)
			}
			var coords [3]float64
			for j := range coords {
				var err error
				if coords[j], err = strconv.ParseFloat(fields[1+j], 64); err != nil {
					return nil, fmt.Errorf("line %d: invalid coordinate: %v", lineNo, err)
				}
			}
			verts = append(verts, w.add(r3.Vec{X: coords[0], Y: coords[1], Z: coords[2]}))
		case "endloop":
			if len(verts) != 3 {
				return nil, fmt.Errorf("line %d: facet has %d vertices, expected 3", lineNo, len(verts))
			}
			w.msh.Triangles = append(w.msh.Triangles, [3]int{verts[0], verts[1], verts[2]})
			inLoop = false
		case "endfacet":
		default:
			return nil, fmt.Errorf("line %d: unexpected keyword %q", lineNo, fields[0])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %v", err)
	}
	if inLoop {
		return nil, fmt.Errorf("unexpected EOF inside a facet")
	}
	return w.msh, nil
}
