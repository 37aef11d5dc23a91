package http

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/samirrijal/crimereport/internal/adapters/nats"
	"github.com/samirrijal/crimereport/internal/pkg/metrics"
)

// WebSocketHandler relays labelled reports broadcast on NATS to connected
// pages. The connection is receive-only; client messages are ignored.
func WebSocketHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		remoteAddr := c.RemoteAddr().String()
		slog.Info("ws client connected", "remote", remoteAddr)
		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		var mu sync.Mutex
		write := func(kind int, data []byte) error {
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(kind, data)
		}

		sub, err := nc.Subscribe(natsadapter.SubjectReportsBroadcast, func(msg *nats.Msg) {
			_ = write(websocket.TextMessage, msg.Data)
		})
		if err != nil {
			slog.Warn("ws subscribe failed", "remote", remoteAddr, "error", err)
			return
		}
		defer func() { _ = sub.Unsubscribe() }()

		// Keep-alive ping
		done := make(chan struct{})
		defer close(done)
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					if err := write(websocket.PingMessage, nil); err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		// Drain reads until the client goes away.
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
		slog.Info("ws client disconnected", "remote", remoteAddr)
	}
}
