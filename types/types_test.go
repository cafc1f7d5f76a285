package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEdgeKey(t *testing.T) {
	{ // Packing is independent of vertex order
		en, err := NewEdgeKey([2]int{1, 0})
		require.NoError(t, err)
		assert.Equal(t, EdgeKey(1<<32), en)

		en2 := MustEdgeKey(0, 1)
		assert.Equal(t, en, en2)

		en = MustEdgeKey(100, 1)
		assert.Equal(t, EdgeKey(100*(1<<32)+1), en)
	}
	{ // Limits
		en := MustEdgeKey(1<<32-1, 1<<32-1)
		assert.Equal(t, EdgeKey(1<<64-1), en)

		_, err := NewEdgeKey([2]int{-1, 2})
		assert.Error(t, err)
		assert.Panics(t, func() { MustEdgeKey(-3, 0) })
	}
}

func TestErrorTaxonomy(t *testing.T) {
	cause := errors.New("boom")
	var err error = fmt.Errorf("loading walls: %w",
		&GeometryLoadError{Path: "/case/walls.stl", Err: cause})

	var gle *GeometryLoadError
	require.True(t, errors.As(err, &gle))
	assert.Equal(t, "/case/walls.stl", gle.Path)
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "/case/walls.stl")

	err = &NoTimestepError{Dir: "/pp"}
	assert.Equal(t, `no time-step directories in "/pp"`, err.Error())

	err = &FlowRateParseError{File: "supply_a.stl"}
	assert.Contains(t, err.Error(), "supply_a.stl")

	err = &MissingCaseContextError{CaseDir: "c", Missing: []string{"ceiling height", "total flow rate"}}
	assert.Equal(t, `case "c" is missing resolved ceiling height and total flow rate`, err.Error())

	err = NewInvalidMeshError("face %d references vertex %d", 2, 9)
	assert.Equal(t, "invalid mesh: face 2 references vertex 9", err.Error())

	err = &RequestError{Field: "level", Reason: "empty"}
	assert.Equal(t, "invalid level: empty", err.Error())
}
