package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/relaychat/relaychat-server/internal/core"
	"github.com/relaychat/relaychat-server/internal/proto"
	"github.com/relaychat/relaychat-server/internal/utils"
)

// WSHandler upgrades HTTP connections and bridges them to the chat
// service. Each connection gets its own read and write goroutine, so a
// stalled submission blocks only that connection's read loop.
type WSHandler struct {
	svc *core.ChatService
	log *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(svc *core.ChatService, logger *zerolog.Logger) *WSHandler {
	return &WSHandler{svc: svc, log: logger}
}

// Handle serves GET /ws.
func (h *WSHandler) Handle(c *gin.Context) {
	ctx := c.Request.Context()

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	client := core.NewClient(utils.NewID())
	h.svc.Connect(client)
	defer h.svc.Disconnect(client.ID)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, client)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, client)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != 0 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			h.log.Warn().Err(err).Str("conn_id", client.ID).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	for {
		var inbound proto.Inbound
		if err := wsjson.Read(ctx, conn, &inbound); err != nil {
			return err
		}

		if errFrame := h.dispatch(ctx, client, inbound); errFrame != nil {
			if err := wsjson.Write(ctx, conn, *errFrame); err != nil {
				return err
			}
		}
	}
}

// dispatch maps one inbound frame to a service call. Malformed or absent
// payload fields fall back to zero values; the service substitutes
// defaults rather than rejecting. The returned frame, if any, goes back
// to this connection only.
func (h *WSHandler) dispatch(ctx context.Context, client *core.Client, inbound proto.Inbound) *proto.Outbound {
	switch inbound.Type {
	case proto.InboundTypeJoin:
		var join proto.JoinData
		decode(inbound.Data, &join)
		h.svc.Join(client.ID, join.Username)
	case proto.InboundTypeTyping:
		h.svc.Typing(client.ID, inbound.Data)
	case proto.InboundTypeChangeUsername:
		var change proto.ChangeUsernameData
		decode(inbound.Data, &change)
		h.svc.Rename(client.ID, change.OldUsername, change.NewUsername)
	case proto.InboundTypeSendMessage:
		var msg proto.SendMessageData
		decode(inbound.Data, &msg)
		h.svc.Submit(ctx, client.ID, msg.Content, msg.Username)
	default:
		return &proto.Outbound{
			Type: proto.OutboundTypeChatError,
			Data: proto.ChatError{Message: "unknown message type: " + inbound.Type},
		}
	}
	return nil
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	for {
		select {
		case event := <-client.Events:
			if err := wsjson.Write(ctx, conn, outboundFromEvent(event)); err != nil {
				h.log.Error().Err(err).Str("conn_id", client.ID).Msg("write ws event")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func decode(data json.RawMessage, v any) {
	if len(data) == 0 {
		return
	}
	// Bad payloads degrade to defaults instead of erroring out.
	_ = json.Unmarshal(data, v)
}
