package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/smartair/casedir/casetest"
	"github.com/notargets/smartair/fields"
	"github.com/notargets/smartair/pipeline"
	"github.com/notargets/smartair/types"
)

func newTestServer(t *testing.T) *httptest.Server {
	logger, _ := test.NewNullLogger()
	cfg := &pipeline.Config{Root: t.TempDir(), Logger: logger}
	casetest.Default.Write(t, cfg.Root, "office", "level01")
	casetest.Default.Write(t, cfg.Root, "office", "level02")
	ts := httptest.NewServer(NewServer("", websocket.Upgrader{}, cfg).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, v interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	return resp.StatusCode
}

type errorReply struct {
	Error ErrorBody `json:"error"`
}

func TestLevelsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	var levels []string
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/cases/office/levels", &levels))
	assert.Equal(t, []string{"level01", "level02"}, levels)

	var er errorReply
	assert.Equal(t, http.StatusNotFound, getJSON(t, ts.URL+"/api/cases/warehouse/levels", &er))
	assert.Equal(t, "notFound", er.Error.Kind)
}

func TestViewEndpoint(t *testing.T) {
	ts := newTestServer(t)
	var view pipeline.View
	status := getJSON(t, ts.URL+"/api/view?case=office&level=level01&field=FAR&freshAir=10", &view)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, fields.FAR, view.Request.Field)
	assert.InDelta(t, 0.1, view.Request.FreshAir, 1.e-12)
	assert.Equal(t, "10%", view.FreshAirLabel)
	require.NotNil(t, view.Plane.State.Field)
	assert.InDelta(t, 0.02, view.Plane.State.Field.Values[0], 1.e-6)

	// freshAir defaults to 10%
	status = getJSON(t, ts.URL+"/api/view?case=office&level=level02&field=ach", &view)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "10%", view.FreshAirLabel)
	assert.Equal(t, "level02", view.Request.Level)
}

func TestViewEndpointErrors(t *testing.T) {
	ts := newTestServer(t)
	testCases := []struct {
		query  string
		status int
		kind   string
	}{
		{query: "case=office&level=level01&field=PMV", status: http.StatusBadRequest, kind: "request"},
		{query: "case=office&level=level01&freshAir=ten", status: http.StatusBadRequest, kind: "request"},
		{query: "case=office&level=level01&freshAir=150", status: http.StatusBadRequest, kind: "request"},
		{query: "case=..&level=level01", status: http.StatusBadRequest, kind: "request"},
		{query: "case=office&level=level07", status: http.StatusNotFound, kind: "geometryLoad"},
		{query: "case=office&level=level01&field=U", status: http.StatusNotFound, kind: "geometryLoad"},
	}
	for _, tc := range testCases {
		t.Run(tc.query, func(t *testing.T) {
			var er errorReply
			assert.Equal(t, tc.status, getJSON(t, ts.URL+"/api/view?"+tc.query, &er))
			assert.Equal(t, tc.kind, er.Error.Kind)
			assert.NotEmpty(t, er.Error.Message)
		})
	}
}

func TestClassify(t *testing.T) {
	testCases := []struct {
		err    error
		status int
	}{
		{&types.RequestError{Field: "case"}, http.StatusBadRequest},
		{&types.NoTimestepError{Dir: "x"}, http.StatusNotFound},
		{&types.GeometryLoadError{Path: "x", Err: os.ErrNotExist}, http.StatusNotFound},
		{&types.GeometryLoadError{Path: "x", Err: errors.New("bad facet")}, http.StatusUnprocessableEntity},
		{&types.FlowRateParseError{File: "supply.stl"}, http.StatusUnprocessableEntity},
		{types.NewInvalidMeshError("broken"), http.StatusUnprocessableEntity},
		{&types.MissingCaseContextError{CaseDir: "x", Missing: []string{"ceiling height"}}, http.StatusInternalServerError},
		{fmt.Errorf("listing: %w", os.ErrNotExist), http.StatusNotFound},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range testCases {
		status, body := classify(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.err.Error(), body.Message)
	}
}

func TestWebsocket(t *testing.T) {
	ts := newTestServer(t)
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	exchange := func(msg interface{}) (reply Msg) {
		t.Helper()
		require.NoError(t, conn.WriteJSON(msg))
		require.NoError(t, conn.ReadJSON(&reply))
		return
	}

	reply := exchange(Msg{Type: MsgLevels, ID: "1", Case: "office"})
	assert.Equal(t, MsgLevels, reply.Type)
	assert.Equal(t, "1", reply.ID)
	assert.Equal(t, []string{"level01", "level02"}, reply.Levels)

	reply = exchange(Msg{Type: MsgView, ID: "2", Request: &pipeline.Request{
		Case: "office", Level: "level01", Field: fields.ACH, FreshAir: 0.1}})
	assert.Equal(t, MsgView, reply.Type)
	require.NotNil(t, reply.View)
	assert.Equal(t, "ACH", reply.View.Plane.State.Field.Name)
	assert.InDelta(t, 3600./150*0.1, reply.View.Plane.State.Field.Values[0], 1.e-4)

	reply = exchange(Msg{Type: MsgView, ID: "3", Request: &pipeline.Request{Case: "office", Level: "level09"}})
	assert.Equal(t, MsgError, reply.Type)
	assert.Equal(t, "3", reply.ID)
	require.NotNil(t, reply.Error)
	assert.Equal(t, "geometryLoad", reply.Error.Kind)
	assert.Nil(t, reply.View)

	reply = exchange(map[string]interface{}{"type": "view", "request": map[string]string{"field": "PMV"}})
	assert.Equal(t, MsgError, reply.Type)
	assert.Equal(t, "request", reply.Error.Kind)

	reply = exchange(Msg{Type: "start"})
	assert.Equal(t, MsgError, reply.Type)

	// the connection survives failed requests
	reply = exchange(Msg{Type: MsgLevels, Case: "office"})
	assert.Equal(t, MsgLevels, reply.Type)
}

func TestGuard(t *testing.T) {
	logger, hook := test.NewNullLogger()
	err := guard(logger, func() error {
		var counts []int
		_ = counts[3]
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "internal error")
	status, body := classify(err)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal", body.Kind)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "request failed", hook.LastEntry().Message)

	assert.NoError(t, guard(logger, func() error { return nil }))
	assert.Equal(t, "boom", guard(logger, func() error { return errors.New("boom") }).Error())
}

func TestWebsocketMalformedPlane(t *testing.T) {
	logger, _ := test.NewNullLogger()
	cfg := &pipeline.Config{Root: t.TempDir(), Logger: logger}
	c := casetest.Default.Write(t, cfg.Root, "office", "level01")
	require.NoError(t, os.WriteFile(c.FieldFile("100", "AoA"),
		[]byte("# vtk DataFile Version 2.0\nx\nASCII\nDATASET POLYDATA\nPOINTS 2000000000000000000 float\n0 0 0\n"), 0644))
	ts := httptest.NewServer(NewServer("", websocket.Upgrader{}, cfg).Handler())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	var reply Msg
	require.NoError(t, conn.WriteJSON(Msg{Type: MsgView, ID: "1", Request: &pipeline.Request{
		Case: "office", Level: "level01", Field: fields.CO2}}))
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, MsgView, reply.Type)

	reply = Msg{}
	require.NoError(t, conn.WriteJSON(Msg{Type: MsgView, ID: "2", Request: &pipeline.Request{
		Case: "office", Level: "level01", Field: fields.ACH, FreshAir: 0.1}}))
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, MsgError, reply.Type)
	require.NotNil(t, reply.Error)
	assert.Equal(t, "geometryLoad", reply.Error.Kind)

	// same connection and process keep serving
	reply = Msg{}
	require.NoError(t, conn.WriteJSON(Msg{Type: MsgLevels, ID: "3", Case: "office"}))
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, []string{"level01"}, reply.Levels)

	var er errorReply
	assert.Equal(t, http.StatusUnprocessableEntity,
		getJSON(t, ts.URL+"/api/view?case=office&level=level01&field=FAR", &er))
	assert.Equal(t, "geometryLoad", er.Error.Kind)
}
