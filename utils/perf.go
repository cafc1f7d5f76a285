package utils

import (
	perf "github.com/hodgesds/perf-utils"
)

// CountInstructions runs f under the hardware instruction counter
func CountInstructions(f func() error) (instructions uint64, err error) {
	var pv *perf.ProfileValue
	if pv, err = perf.CPUInstructions(f); err != nil {
		return
	}
	return pv.Value, nil
}
