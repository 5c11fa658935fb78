package api

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/larsks/dronevision/internal/session"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// streamHandler pushes a View to the client after every change to the
// session. The client only reads; anything it sends besides control
// frames is ignored.
func (s *Server) streamHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an error response
		log.Printf("websocket upgrade failed for session %s: %v", sess.ID(), err)
		return
	}
	defer conn.Close() //nolint:errcheck

	views := make(chan session.View, 1)
	unsubscribe := sess.Subscribe(func(v session.View) {
		// Keep only the newest pending view
		select {
		case <-views:
		default:
		}
		views <- v
	})
	defer unsubscribe()

	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		conn.SetReadLimit(512)
		conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck
		conn.SetPongHandler(func(string) error {
			sess.Touch()
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	if err := writeView(conn, sess.View()); err != nil {
		return
	}

	for {
		select {
		case v := <-views:
			if err := writeView(conn, v); err != nil {
				return
			}
			sess.Touch()
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-sess.Done():
			conn.WriteControl( //nolint:errcheck
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"),
				time.Now().Add(writeWait),
			)
			return
		case <-readerDone:
			return
		}
	}
}

func writeView(conn *websocket.Conn, v session.View) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
	return conn.WriteJSON(v)
}
