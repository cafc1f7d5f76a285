package readers

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/smartair/surface"
)

// ReadVTK reads a legacy VTK POLYDATA file in ASCII or BINARY encoding,
// as written by surface sampling in the simulation's post-processing.
// Polygons are fan triangulated, triangle strips are split, vertex cells
// are dropped; cell arrays follow the resulting line and triangle cells.
func ReadVTK(filename string) (*surface.Mesh, error) {
	file, err := openFile(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return DecodeVTK(file)
}

type cellKind uint8

const (
	vertCells cellKind = iota
	lineCells
	polyCells
	stripCells
)

// cellRef locates the input cell an output cell was made from
type cellRef struct {
	kind  cellKind
	local int
}

type vtkReader struct {
	r       *bufio.Reader
	binary  bool
	version float64
	line    int

	msh      *surface.Mesh
	nCells   [4]int
	lineRefs []cellRef
	triRefs  []cellRef

	// data attributes
	inData    bool
	loc       surface.Location
	nTuples   int
	cellData  []*surface.Array
	pointData []*surface.Array
}

func DecodeVTK(r io.Reader) (*surface.Mesh, error) {
	vr := &vtkReader{r: bufio.NewReader(r), msh: &surface.Mesh{}, loc: surface.PointData}
	if err := vr.readHeader(); err != nil {
		return nil, err
	}
	for {
		fields, err := vr.nextKeywordLine()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if err = vr.readSection(fields); err != nil {
			return nil, fmt.Errorf("line %d: %s: %v", vr.line, fields[0], err)
		}
	}
	return vr.finish()
}

func (vr *vtkReader) readHeader() (err error) {
	var line string
	if line, err = vr.readLine(); err != nil {
		return fmt.Errorf("missing VTK header: %v", err)
	}
	if !strings.HasPrefix(line, "# vtk DataFile Version") {
		return fmt.Errorf("not a legacy VTK file, header is %q", line)
	}
	fields := strings.Fields(line)
	if vr.version, err = strconv.ParseFloat(fields[len(fields)-1], 64); err != nil {
		return fmt.Errorf("invalid VTK version in %q", line)
	}
	if _, err = vr.readLine(); err != nil { // title
		return fmt.Errorf("missing VTK title line: %v", err)
	}
	if line, err = vr.nonEmptyLine(); err != nil {
		return fmt.Errorf("missing VTK encoding line: %v", err)
	}
	switch strings.ToUpper(strings.TrimSpace(line)) {
	case "ASCII":
	case "BINARY":
		vr.binary = true
	default:
		return fmt.Errorf("unknown VTK encoding %q", line)
	}
	if line, err = vr.nonEmptyLine(); err != nil {
		return fmt.Errorf("missing DATASET line: %v", err)
	}
	fields = strings.Fields(line)
	if len(fields) != 2 || strings.ToUpper(fields[0]) != "DATASET" {
		return fmt.Errorf("expected DATASET, got %q", line)
	}
	if strings.ToUpper(fields[1]) != "POLYDATA" {
		return fmt.Errorf("unsupported dataset type %s, only POLYDATA surfaces are read", fields[1])
	}
	return nil
}

func (vr *vtkReader) readSection(fields []string) (err error) {
	switch strings.ToUpper(fields[0]) {
	case "POINTS":
		return vr.readPoints(fields)
	case "VERTICES":
		return vr.readCells(fields, vertCells)
	case "LINES":
		return vr.readCells(fields, lineCells)
	case "POLYGONS":
		return vr.readCells(fields, polyCells)
	case "TRIANGLE_STRIPS":
		return vr.readCells(fields, stripCells)
	case "POINT_DATA", "CELL_DATA":
		if len(fields) < 2 {
			return fmt.Errorf("missing tuple count")
		}
		if vr.nTuples, err = strconv.Atoi(fields[1]); err != nil {
			return fmt.Errorf("invalid tuple count: %v", err)
		}
		vr.inData = true
		vr.loc = surface.PointData
		if strings.ToUpper(fields[0]) == "CELL_DATA" {
			vr.loc = surface.CellData
		}
		return nil
	case "SCALARS":
		return vr.readScalars(fields)
	case "VECTORS", "NORMALS":
		return vr.readAttribute(fields, 3)
	case "TENSORS":
		return vr.readAttribute(fields, 9)
	case "TEXTURE_COORDINATES":
		if len(fields) < 4 {
			return fmt.Errorf("expected name, dimension and type")
		}
		var dim int
		if dim, err = components(fields[2]); err != nil {
			return err
		}
		return vr.readAttribute([]string{fields[0], fields[1], fields[3]}, dim)
	case "FIELD":
		return vr.readField(fields)
	case "LOOKUP_TABLE":
		if len(fields) < 3 {
			return fmt.Errorf("expected name and size")
		}
		var size int
		if size, err = strconv.Atoi(fields[2]); err != nil {
			return fmt.Errorf("invalid size: %v", err)
		}
		dtype := "float"
		if vr.binary {
			dtype = "unsigned_char"
		}
		var n int
		if n, err = valueCount(size, 4); err != nil {
			return err
		}
		_, err = vr.readValues(n, dtype)
		return err
	case "COLOR_SCALARS":
		if len(fields) < 3 {
			return fmt.Errorf("expected name and component count")
		}
		var nc int
		if nc, err = components(fields[2]); err != nil {
			return err
		}
		dtype := "float"
		if vr.binary {
			dtype = "unsigned_char"
		}
		var n int
		if n, err = valueCount(vr.nTuples, nc); err != nil {
			return err
		}
		var vals []float64
		if vals, err = vr.readValues(n, dtype); err != nil {
			return err
		}
		vr.addArray(&surface.Array{Name: fields[1], NumComponents: nc, Values: vals})
		return nil
	case "METADATA":
		return vr.skipMetadata()
	default:
		return fmt.Errorf("unknown section")
	}
}

func (vr *vtkReader) readPoints(fields []string) (err error) {
	if len(fields) < 3 {
		return fmt.Errorf("expected count and type")
	}
	var n int
	if n, err = strconv.Atoi(fields[1]); err != nil {
		return fmt.Errorf("invalid point count: %v", err)
	}
	var nv int
	if nv, err = valueCount(n, 3); err != nil {
		return err
	}
	var vals []float64
	if vals, err = vr.readValues(nv, fields[2]); err != nil {
		return err
	}
	vr.msh.Points = make([]r3.Vec, n)
	for i := range vr.msh.Points {
		vr.msh.Points[i] = r3.Vec{X: vals[3*i], Y: vals[3*i+1], Z: vals[3*i+2]}
	}
	return nil
}

// readCells reads a cell section, either as the legacy count-prefixed list
// or, from file version 5 on, as OFFSETS and CONNECTIVITY arrays
func (vr *vtkReader) readCells(fields []string, kind cellKind) (err error) {
	if len(fields) < 3 {
		return fmt.Errorf("expected two sizes")
	}
	var n1, n2 int
	if n1, err = strconv.Atoi(fields[1]); err != nil {
		return fmt.Errorf("invalid size: %v", err)
	}
	if n2, err = strconv.Atoi(fields[2]); err != nil {
		return fmt.Errorf("invalid size: %v", err)
	}
	var cells [][]int
	if vr.version >= 5 {
		cells, err = vr.readOffsetCells(n1, n2)
	} else {
		cells, err = vr.readLegacyCells(n1, n2)
	}
	if err != nil {
		return err
	}
	for _, cell := range cells {
		for _, v := range cell {
			if v < 0 || v >= len(vr.msh.Points) {
				return fmt.Errorf("point index %d out of range [0,%d)", v, len(vr.msh.Points))
			}
		}
	}
	vr.nCells[kind] = len(cells)
	for k, cell := range cells {
		ref := cellRef{kind: kind, local: k}
		switch kind {
		case lineCells:
			for i := 0; i+1 < len(cell); i++ {
				vr.msh.Lines = append(vr.msh.Lines, [2]int{cell[i], cell[i+1]})
				vr.lineRefs = append(vr.lineRefs, ref)
			}
		case polyCells:
			for i := 1; i+1 < len(cell); i++ {
				vr.msh.Triangles = append(vr.msh.Triangles, [3]int{cell[0], cell[i], cell[i+1]})
				vr.triRefs = append(vr.triRefs, ref)
			}
		case stripCells:
			for i := 0; i+2 < len(cell); i++ {
				tri := [3]int{cell[i], cell[i+1], cell[i+2]}
				if i%2 == 1 {
					tri[0], tri[1] = tri[1], tri[0]
				}
				vr.msh.Triangles = append(vr.msh.Triangles, tri)
				vr.triRefs = append(vr.triRefs, ref)
			}
		}
	}
	return nil
}

func (vr *vtkReader) readLegacyCells(nCells, size int) (cells [][]int, err error) {
	var vals []float64
	if vals, err = vr.readValues(size, "int"); err != nil {
		return
	}
	if nCells < 0 || nCells > len(vals) {
		return nil, fmt.Errorf("%d cells cannot fit a list of %d values", nCells, len(vals))
	}
	cells = make([][]int, 0, nCells)
	var i int
	for k := 0; k < nCells; k++ {
		if i >= len(vals) {
			return nil, fmt.Errorf("cell list ends after %d of %d cells", k, nCells)
		}
		nv := int(vals[i])
		if nv < 0 || i+1+nv > len(vals) {
			return nil, fmt.Errorf("cell %d declares %d points past the end of the list", k, nv)
		}
		cell := make([]int, nv)
		for j := range cell {
			cell[j] = int(vals[i+1+j])
		}
		cells = append(cells, cell)
		i += 1 + nv
	}
	return
}

func (vr *vtkReader) readOffsetCells(nOffsets, nConn int) (cells [][]int, err error) {
	var offsets, conn []float64
	for _, section := range []struct {
		name string
		n    int
		dst  *[]float64
	}{{"OFFSETS", nOffsets, &offsets}, {"CONNECTIVITY", nConn, &conn}} {
		var fields []string
		if fields, err = vr.nextKeywordLine(); err != nil {
			return nil, fmt.Errorf("missing %s: %v", section.name, err)
		}
		if strings.ToUpper(fields[0]) != section.name || len(fields) < 2 {
			return nil, fmt.Errorf("expected %s, got %v", section.name, fields)
		}
		if *section.dst, err = vr.readValues(section.n, fields[1]); err != nil {
			return
		}
	}
	if nOffsets == 0 {
		return
	}
	cells = make([][]int, 0, nOffsets-1)
	for k := 0; k+1 < nOffsets; k++ {
		start, end := int(offsets[k]), int(offsets[k+1])
		if start < 0 || end < start || end > len(conn) {
			return nil, fmt.Errorf("cell %d has invalid offsets [%d,%d)", k, start, end)
		}
		cell := make([]int, end-start)
		for j := range cell {
			cell[j] = int(conn[start+j])
		}
		cells = append(cells, cell)
	}
	return
}

func (vr *vtkReader) readScalars(fields []string) (err error) {
	if len(fields) < 3 {
		return fmt.Errorf("expected name and type")
	}
	nc := 1
	if len(fields) > 3 {
		if nc, err = components(fields[3]); err != nil {
			return err
		}
	}
	// an optional LOOKUP_TABLE line precedes the values; binary data may
	// start with whitespace bytes so only a blank-free peek is safe there
	if vr.peekKeyword("LOOKUP_TABLE", !vr.binary) {
		if _, err = vr.nextKeywordLine(); err != nil {
			return
		}
	}
	var n int
	if n, err = valueCount(vr.nTuples, nc); err != nil {
		return
	}
	var vals []float64
	if vals, err = vr.readValues(n, fields[2]); err != nil {
		return
	}
	vr.addArray(&surface.Array{Name: fields[1], NumComponents: nc, Values: vals})
	return nil
}

func (vr *vtkReader) readAttribute(fields []string, nc int) (err error) {
	if len(fields) < 3 {
		return fmt.Errorf("expected name and type")
	}
	var n int
	if n, err = valueCount(vr.nTuples, nc); err != nil {
		return
	}
	var vals []float64
	if vals, err = vr.readValues(n, fields[2]); err != nil {
		return
	}
	vr.addArray(&surface.Array{Name: fields[1], NumComponents: nc, Values: vals})
	return nil
}

func (vr *vtkReader) readField(fields []string) (err error) {
	if len(fields) < 3 {
		return fmt.Errorf("expected name and array count")
	}
	var nArrays int
	if nArrays, err = strconv.Atoi(fields[2]); err != nil {
		return fmt.Errorf("invalid array count: %v", err)
	}
	for i := 0; i < nArrays; i++ {
		var hdr []string
		if hdr, err = vr.nextKeywordLine(); err != nil {
			return fmt.Errorf("missing field array %d: %v", i, err)
		}
		if len(hdr) < 4 {
			return fmt.Errorf("field array header %v needs name, components, tuples and type", hdr)
		}
		var nc, nt int
		if nc, err = components(hdr[1]); err != nil {
			return fmt.Errorf("%s: %v", hdr[0], err)
		}
		if nt, err = strconv.Atoi(hdr[2]); err != nil {
			return fmt.Errorf("invalid tuple count for %s: %v", hdr[0], err)
		}
		var n int
		if n, err = valueCount(nt, nc); err != nil {
			return fmt.Errorf("field array %s: %v", hdr[0], err)
		}
		var vals []float64
		if vals, err = vr.readValues(n, hdr[3]); err != nil {
			return fmt.Errorf("field array %s: %v", hdr[0], err)
		}
		if vr.version >= 5 && vr.peekKeyword("METADATA", true) {
			if _, err = vr.nextKeywordLine(); err != nil {
				return
			}
			if err = vr.skipMetadata(); err != nil {
				return
			}
		}
		if !vr.inData {
			// dataset level field data, e.g. the solution time
			continue
		}
		if nt != vr.nTuples {
			return fmt.Errorf("field array %s has %d tuples, section declares %d", hdr[0], nt, vr.nTuples)
		}
		vr.addArray(&surface.Array{Name: hdr[0], NumComponents: nc, Values: vals})
	}
	return nil
}

func (vr *vtkReader) addArray(arr *surface.Array) {
	if vr.loc == surface.CellData {
		vr.cellData = append(vr.cellData, arr)
	} else {
		vr.pointData = append(vr.pointData, arr)
	}
}

// skipMetadata discards lines up to and including the next blank line
func (vr *vtkReader) skipMetadata() error {
	for {
		line, err := vr.readLine()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if strings.TrimSpace(line) == "" {
			return nil
		}
	}
}

func (vr *vtkReader) finish() (*surface.Mesh, error) {
	msh := vr.msh
	if len(msh.Points) == 0 {
		return nil, fmt.Errorf("missing required POINTS section")
	}
	for _, arr := range vr.pointData {
		if arr.Tuples() != len(msh.Points) || len(arr.Values) != arr.Tuples()*arr.NumComponents {
			return nil, fmt.Errorf("point array %s has %d values for %d points",
				arr.Name, len(arr.Values), len(msh.Points))
		}
	}
	msh.PointData = vr.pointData

	// input cell ids run over verts, lines, polys, strips in that order
	var offset [4]int
	for k := 1; k < 4; k++ {
		offset[k] = offset[k-1] + vr.nCells[k-1]
	}
	nInput := offset[3] + vr.nCells[3]
	refs := append(append([]cellRef{}, vr.lineRefs...), vr.triRefs...)
	for _, arr := range vr.cellData {
		if len(arr.Values) != nInput*arr.NumComponents {
			return nil, fmt.Errorf("cell array %s has %d values for %d cells",
				arr.Name, len(arr.Values), nInput)
		}
		res := &surface.Array{Name: arr.Name, NumComponents: arr.NumComponents,
			Values: make([]float64, 0, len(refs)*arr.NumComponents)}
		for _, ref := range refs {
			res.Values = append(res.Values, arr.Tuple(offset[ref.kind]+ref.local)...)
		}
		msh.CellData = append(msh.CellData, res)
	}
	return msh, nil
}

const (
	// maxValueCount bounds any count declared in a file header
	maxValueCount = math.MaxInt32
	binaryChunk   = 64 * 1024
)

// valueCount multiplies header counts, failing on negative or oversized
// results instead of wrapping
func valueCount(n, per int) (int, error) {
	if n < 0 || per < 0 {
		return 0, fmt.Errorf("negative count %d x %d", n, per)
	}
	if per != 0 && n > maxValueCount/per {
		return 0, fmt.Errorf("count %d x %d exceeds %d values", n, per, maxValueCount)
	}
	return n * per, nil
}

func components(s string) (int, error) {
	nc, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid component count: %v", err)
	}
	if nc < 1 {
		return 0, fmt.Errorf("component count %d is not positive", nc)
	}
	return nc, nil
}

// readValues reads n numbers, as text tokens or big-endian binary of dtype.
// Storage grows with the data actually read, never with the declared count.
func (vr *vtkReader) readValues(n int, dtype string) (vals []float64, err error) {
	if n < 0 || n > maxValueCount {
		return nil, fmt.Errorf("invalid value count %d", n)
	}
	if !vr.binary {
		for i := 0; i < n; i++ {
			var tok string
			if tok, err = vr.token(); err != nil {
				return nil, fmt.Errorf("expected %d values, got %d: %v", n, i, err)
			}
			var v float64
			if v, err = strconv.ParseFloat(tok, 64); err != nil {
				return nil, fmt.Errorf("invalid value %q", tok)
			}
			vals = append(vals, v)
		}
		return
	}
	size, decode, ok := binaryDecoder(dtype)
	if !ok {
		return nil, fmt.Errorf("unsupported data type %q", dtype)
	}
	buf := make([]byte, binaryChunk-binaryChunk%size)
	for remaining := n; remaining > 0; {
		m := min(remaining, len(buf)/size)
		if _, err = io.ReadFull(vr.r, buf[:m*size]); err != nil {
			return nil, fmt.Errorf("short binary block, expected %d %s values, got %d: %v",
				n, dtype, len(vals), err)
		}
		for i := 0; i < m; i++ {
			vals = append(vals, decode(buf[i*size:]))
		}
		remaining -= m
	}
	return
}

func binaryDecoder(dtype string) (size int, decode func([]byte) float64, ok bool) {
	be := binary.BigEndian
	switch strings.ToLower(dtype) {
	case "float":
		return 4, func(b []byte) float64 { return float64(math.Float32frombits(be.Uint32(b))) }, true
	case "double":
		return 8, func(b []byte) float64 { return math.Float64frombits(be.Uint64(b)) }, true
	case "int", "vtkidtype", "vtktypeint32":
		return 4, func(b []byte) float64 { return float64(int32(be.Uint32(b))) }, true
	case "unsigned_int", "vtktypeuint32":
		return 4, func(b []byte) float64 { return float64(be.Uint32(b)) }, true
	case "long", "vtktypeint64":
		return 8, func(b []byte) float64 { return float64(int64(be.Uint64(b))) }, true
	case "unsigned_long", "vtktypeuint64":
		return 8, func(b []byte) float64 { return float64(be.Uint64(b)) }, true
	case "short":
		return 2, func(b []byte) float64 { return float64(int16(be.Uint16(b))) }, true
	case "unsigned_short":
		return 2, func(b []byte) float64 { return float64(be.Uint16(b)) }, true
	case "char":
		return 1, func(b []byte) float64 { return float64(int8(b[0])) }, true
	case "unsigned_char", "bit":
		return 1, func(b []byte) float64 { return float64(b[0]) }, true
	}
	return 0, nil, false
}

func (vr *vtkReader) readLine() (string, error) {
	line, err := vr.r.ReadString('\n')
	if err == io.EOF && len(line) > 0 {
		err = nil
	}
	if err != nil {
		return "", err
	}
	vr.line++
	return strings.TrimRight(line, "\r\n"), nil
}

func (vr *vtkReader) nonEmptyLine() (string, error) {
	for {
		line, err := vr.readLine()
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(line) != "" {
			return line, nil
		}
	}
}

func (vr *vtkReader) nextKeywordLine() ([]string, error) {
	line, err := vr.nonEmptyLine()
	if err != nil {
		return nil, err
	}
	return strings.Fields(line), nil
}

// peekKeyword reports whether the next text starts with keyword. With
// skipBlank set, whitespace before it is consumed first.
func (vr *vtkReader) peekKeyword(keyword string, skipBlank bool) bool {
	for skipBlank {
		b, err := vr.r.Peek(1)
		if err != nil {
			return false
		}
		if b[0] != '\n' && b[0] != '\r' && b[0] != ' ' && b[0] != '\t' {
			break
		}
		if b[0] == '\n' {
			vr.line++
		}
		vr.r.ReadByte()
	}
	b, err := vr.r.Peek(len(keyword))
	return err == nil && strings.EqualFold(string(b), keyword)
}

func (vr *vtkReader) token() (string, error) {
	var sb strings.Builder
	for {
		c, err := vr.r.ReadByte()
		if err != nil {
			if err == io.EOF && sb.Len() > 0 {
				return sb.String(), nil
			}
			return "", err
		}
		switch c {
		case ' ', '\t', '\r', '\n':
			if c == '\n' && sb.Len() == 0 {
				vr.line++
			}
			if sb.Len() > 0 {
				if c == '\n' {
					vr.r.UnreadByte()
				}
				return sb.String(), nil
			}
		default:
			sb.WriteByte(c)
		}
	}
}
