package casedir

import (
	"os"
	"strconv"

	"github.com/notargets/smartair/types"
)

// LatestTimestep returns the name of the numerically largest integer-named
// subdirectory of dir
func LatestTimestep(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", &types.NoTimestepError{Dir: dir, Err: err}
	}
	var (
		latest string
		maxT   uint64
		found  bool
	)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		t, err := strconv.ParseUint(entry.Name(), 10, 64)
		if err != nil {
			continue
		}
		if !found || t > maxT {
			latest, maxT, found = entry.Name(), t, true
		}
	}
	if !found {
		return "", &types.NoTimestepError{Dir: dir}
	}
	return latest, nil
}

// LatestTimestep resolves the latest sampled surfaces directory of the case
func (c *Case) LatestTimestep() (string, error) {
	return LatestTimestep(c.SurfacesDir())
}
