package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/notargets/smartair/casedir"
	"github.com/notargets/smartair/pipeline"
	"github.com/notargets/smartair/types"
)

/*
Hub serves one websocket connection. Requests are handled one at a time in
arrival order and every reply is written by the hub goroutine, the only
writer on the connection.
*/
type Hub struct {
	cfg  *pipeline.Config
	conn *websocket.Conn
	log  log.FieldLogger
	// request
	msg chan Msg
}

func NewHub(cfg *pipeline.Config, conn *websocket.Conn, l log.FieldLogger) *Hub {
	return &Hub{
		cfg:  cfg,
		conn: conn,
		log:  l,
		msg:  make(chan Msg, 10),
	}
}

// run answers requests until the msg channel is closed or ctx is done
func (h *Hub) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-h.msg:
			if !ok {
				return
			}
			reply := h.handle(ctx, msg)
			if err := h.conn.WriteJSON(&reply); err != nil {
				h.log.WithError(err).Warn("unable to write reply")
				return
			}
		}
	}
}

func (h *Hub) handle(ctx context.Context, msg Msg) (reply Msg) {
	reply = Msg{Type: msg.Type, ID: msg.ID}
	var err error
	switch msg.Type {
	case MsgError:
		// undecodable message
		var re *types.RequestError
		switch {
		case msg.decodeErr == nil:
			err = &types.RequestError{Field: "type", Reason: "clients cannot send error messages"}
		case errors.As(msg.decodeErr, &re):
			err = msg.decodeErr
		default:
			err = &types.RequestError{Field: "message", Reason: msg.decodeErr.Error()}
		}
	case MsgView:
		if msg.Request == nil {
			msg.Request = &pipeline.Request{}
		}
		err = guard(h.log, func() (err error) {
			reply.View, err = pipeline.Run(ctx, h.cfg, *msg.Request)
			return
		})
	case MsgLevels:
		err = guard(h.log, func() (err error) {
			reply.Levels, err = casedir.Levels(h.cfg.Root, msg.Case)
			return
		})
	default:
		h.log.WithField("type", msg.Type).Warn("no such message type")
		reply.Type = MsgError
		reply.Error = &ErrorBody{Kind: "request", Message: "unknown message type " + msg.Type}
		return
	}
	if err != nil {
		_, reply.Error = classify(err)
		reply.Type = MsgError
		reply.View, reply.Levels = nil, nil
	}
	return
}

// guard runs fn and turns a panic into an internal error for that request
func guard(l log.FieldLogger, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			l.WithField("panic", r).Error("request failed")
			err = fmt.Errorf("internal error: %v", r)
		}
	}()
	return fn()
}
