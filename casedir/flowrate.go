package casedir

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/notargets/smartair/types"
)

var flowRateToken = regexp.MustCompile(`_(\d+)\.[^._]+$`)

// ParseFlowRate extracts the L/s value encoded as supply..._<flow>.<ext>
func ParseFlowRate(filename string) (float64, error) {
	match := flowRateToken.FindStringSubmatch(filename)
	if match == nil {
		return 0, &types.FlowRateParseError{File: filename}
	}
	q, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, &types.FlowRateParseError{File: filename}
	}
	return q, nil
}

// SupplyFlowRate sums the flow rates of the supply patch files in dir, in L/s
func SupplyFlowRate(dir string) (total float64, err error) {
	var entries []os.DirEntry
	if entries, err = os.ReadDir(dir); err != nil {
		return 0, fmt.Errorf("unable to list supply patches: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), SupplyPrefix) {
			continue
		}
		var q float64
		if q, err = ParseFlowRate(entry.Name()); err != nil {
			return 0, &types.FlowRateParseError{File: filepath.Join(dir, entry.Name())}
		}
		total += q
	}
	return
}

// ResolveFlowRate sums the case's supply patches and stores the result
func (c *Case) ResolveFlowRate() (float64, error) {
	q, err := SupplyFlowRate(c.TriSurfaceDir())
	if err != nil {
		return 0, err
	}
	c.SetTotalFlowRate(q)
	return q, nil
}
