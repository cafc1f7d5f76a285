package InputParameters

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/smartair/fields"
	"github.com/notargets/smartair/types"
)

func TestParseViewParameters(t *testing.T) {
	fileInput := []byte(`
Title: Open plan office
Case: office
Level: level01
Field: FAR # ACH, FAR, CO2 or U
FreshAir: 15
Opacity: 0.8
`)
	var vp ViewParameters
	require.NoError(t, vp.Parse(fileInput))
	vp.Print()
	assert.Equal(t, "office", vp.Case)
	assert.Equal(t, 15., vp.FreshAir)

	req, err := vp.Request()
	require.NoError(t, err)
	assert.Equal(t, fields.FAR, req.Field)
	assert.InDelta(t, 0.15, req.FreshAir, 1.e-12)
	assert.Equal(t, 0.8, req.Opacity)
	assert.Equal(t, "level01", req.Level)
}

func TestViewParametersErrors(t *testing.T) {
	var vp ViewParameters
	require.NoError(t, vp.Parse([]byte("Case: office\nLevel: level01\nField: PMV\n")))
	_, err := vp.Request()
	var re *types.RequestError
	assert.True(t, errors.As(err, &re))

	vp = ViewParameters{}
	require.NoError(t, vp.Parse([]byte("Case: office\nLevel: level01\nFreshAir: 120\n")))
	_, err = vp.Request()
	assert.True(t, errors.As(err, &re))

	assert.Error(t, vp.Parse([]byte("Case: [office\n")))
}
