package readers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/notargets/smartair/surface"
	"github.com/notargets/smartair/types"
)

// ReadSurfaceFile reads a surface file based on extension. Every failure,
// including a missing file, is reported as a *types.GeometryLoadError.
func ReadSurfaceFile(filename string) (msh *surface.Mesh, err error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".stl":
		msh, err = ReadSTL(filename)
	case ".vtk":
		msh, err = ReadVTK(filename)
	default:
		err = fmt.Errorf("unsupported surface format: %s", ext)
	}
	if err != nil {
		return nil, &types.GeometryLoadError{Path: filename, Err: err}
	}
	if err = msh.Validate(); err != nil {
		return nil, &types.GeometryLoadError{Path: filename, Err: err}
	}
	return msh, nil
}

func openFile(filename string) (*os.File, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	if fi, err := file.Stat(); err == nil && fi.IsDir() {
		file.Close()
		return nil, fmt.Errorf("%s is a directory", filename)
	}
	return file, nil
}
