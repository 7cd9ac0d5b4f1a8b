package download

import (
	"context"
	"time"

	"vidfetch/internal/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// WSHandler owns the websocket side of a streaming session and hands the
// relay loop to the bridge.
type WSHandler struct {
	bridge *Bridge
	log    *logger.Logger
}

func NewWSHandler(bridge *Bridge) *WSHandler {
	return &WSHandler{bridge: bridge, log: logger.New("DownloadWS")}
}

func (h *WSHandler) Handler() fiber.Handler {
	return websocket.New(h.serve)
}

func (h *WSHandler) serve(conn *websocket.Conn) {
	defer conn.Close()

	var req Request
	if err := conn.ReadJSON(&req); err != nil {
		h.log.LogWarnf("bad session request: %v", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The client sends nothing after the request frame; the read pump
	// exists to observe disconnects and stop the poll loop.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	err := h.bridge.Run(ctx, req, jsonSender{conn: conn})
	if err != nil {
		if ctx.Err() != nil {
			h.log.LogInfo("client disconnected")
			return
		}
		// Best-effort error frame; a fault from this send is swallowed.
		_ = conn.WriteJSON(ErrorFrame{Status: "error", Message: err.Error()})
	}

	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(5*time.Second))
}

type jsonSender struct{ conn *websocket.Conn }

func (s jsonSender) Send(v interface{}) error { return s.conn.WriteJSON(v) }
