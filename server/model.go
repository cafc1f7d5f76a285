package server

import (
	"errors"
	"net/http"
	"os"

	"github.com/notargets/smartair/pipeline"
	"github.com/notargets/smartair/types"
)

// Msg is one websocket message in either direction
type Msg struct {
	Type    string            `json:"type"`
	ID      string            `json:"id,omitempty"` // echoed back in the reply
	Request *pipeline.Request `json:"request,omitempty"`
	Case    string            `json:"case,omitempty"`
	View    *pipeline.View    `json:"view,omitempty"`
	Levels  []string          `json:"levels,omitempty"`
	Error   *ErrorBody        `json:"error,omitempty"`

	decodeErr error
}

const (
	MsgView   = "view"
	MsgLevels = "levels"
	MsgError  = "error"
)

type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// classify maps a request failure to an HTTP status and an error kind
func classify(err error) (int, *ErrorBody) {
	var (
		re   *types.RequestError
		gle  *types.GeometryLoadError
		nte  *types.NoTimestepError
		fpe  *types.FlowRateParseError
		mce  *types.MissingCaseContextError
		ime  *types.InvalidMeshError
		body = &ErrorBody{Kind: "internal", Message: err.Error()}
	)
	switch {
	case errors.As(err, &re):
		body.Kind = "request"
		return http.StatusBadRequest, body
	case errors.As(err, &nte):
		body.Kind = "noTimestep"
		return http.StatusNotFound, body
	case errors.As(err, &gle):
		body.Kind = "geometryLoad"
		if errors.Is(err, os.ErrNotExist) {
			return http.StatusNotFound, body
		}
		return http.StatusUnprocessableEntity, body
	case errors.As(err, &fpe):
		body.Kind = "flowRateParse"
		return http.StatusUnprocessableEntity, body
	case errors.As(err, &ime):
		body.Kind = "invalidMesh"
		return http.StatusUnprocessableEntity, body
	case errors.As(err, &mce):
		body.Kind = "missingCaseContext"
	case errors.Is(err, os.ErrNotExist):
		body.Kind = "notFound"
		return http.StatusNotFound, body
	}
	return http.StatusInternalServerError, body
}
