/*
Package server exposes the pipeline to the web front end, as JSON over HTTP
and as a websocket that answers view and level requests.

	GET /api/cases/{case}/levels
	GET /api/view?case=&level=&field=&freshAir=&geometry=&opacity=
	GET /ws

freshAir is a percentage, as shown by the front end.
*/
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/notargets/smartair/casedir"
	"github.com/notargets/smartair/fields"
	"github.com/notargets/smartair/pipeline"
	"github.com/notargets/smartair/types"
)

// DefaultFreshAirPercent is used when a view request carries no freshAir
const DefaultFreshAirPercent = 10.

type Server struct {
	addr     string
	upgrader websocket.Upgrader
	cfg      *pipeline.Config
	log      log.FieldLogger
}

func NewServer(addr string, upgrader websocket.Upgrader, cfg *pipeline.Config) *Server {
	l := cfg.Logger
	if l == nil {
		l = log.StandardLogger()
	}
	return &Server{
		addr:     addr,
		upgrader: upgrader,
		cfg:      cfg,
		log:      l.WithField("component", "server"),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/cases/{case}/levels", s.serveLevels)
	mux.HandleFunc("GET /api/view", s.serveView)
	mux.HandleFunc("GET /ws", s.serveWs)
	return mux
}

// Serve listens until ctx is cancelled, then shuts down gracefully
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.Handler()}
	errs := make(chan error, 1)
	go func() {
		s.log.WithField("addr", s.addr).Info("listening")
		errs <- srv.ListenAndServe()
	}()
	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errs; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) serveLevels(w http.ResponseWriter, r *http.Request) {
	levels, err := casedir.Levels(s.cfg.Root, r.PathValue("case"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if levels == nil {
		levels = []string{}
	}
	s.writeJSON(w, http.StatusOK, levels)
}

func (s *Server) serveView(w http.ResponseWriter, r *http.Request) {
	req, err := parseViewQuery(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var view *pipeline.View
	err = guard(s.log, func() (err error) {
		view, err = pipeline.Run(r.Context(), s.cfg, req)
		return
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

func parseViewQuery(r *http.Request) (req pipeline.Request, err error) {
	q := r.URL.Query()
	req.Case, req.Level, req.Geometry = q.Get("case"), q.Get("level"), q.Get("geometry")
	if field := q.Get("field"); field != "" {
		if req.Field, err = fields.ParseMetric(field); err != nil {
			return
		}
	}
	percent := DefaultFreshAirPercent
	if v := q.Get("freshAir"); v != "" {
		if percent, err = strconv.ParseFloat(v, 64); err != nil {
			return req, &types.RequestError{Field: "freshAir", Reason: strconv.Quote(v) + " is not a number"}
		}
	}
	req.FreshAir = percent / 100.
	if v := q.Get("opacity"); v != "" {
		if req.Opacity, err = strconv.ParseFloat(v, 64); err != nil {
			return req, &types.RequestError{Field: "opacity", Reason: strconv.Quote(v) + " is not a number"}
		}
	}
	return
}

// serveWs handles websocket requests from the peer.
func (s *Server) serveWs(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	hub := NewHub(s.cfg, conn, s.log.WithField("remote", r.RemoteAddr))
	done := make(chan struct{})
	go func() {
		hub.run(ctx)
		close(done)
	}()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.WithError(err).Debug("websocket read ended")
			}
			break
		}
		var msg Msg
		if err = json.Unmarshal(data, &msg); err != nil {
			msg = Msg{Type: MsgError, decodeErr: err}
		}
		select {
		case hub.msg <- msg:
		case <-done:
		}
	}
	cancel()
	<-done
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.WithError(err).Warn("unable to write response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status, body := classify(err)
	s.writeJSON(w, status, struct {
		Error *ErrorBody `json:"error"`
	}{body})
}
