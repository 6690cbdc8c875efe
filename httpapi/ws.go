package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/fwojciec/proofread"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Server message types.
const (
	TypeReplace = "replace"
	TypeDone    = "done"
	TypeError   = "error"
)

// ClientMessage asks for one correction.
type ClientMessage struct {
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
}

// ServerMessage is sent for every publish, once when a run finishes, and
// for rejected client messages.
type ServerMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
	Kind string `json:"kind,omitempty"`
}

var errConnClosed = errors.New("connection closed")

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	c := &wsConn{
		server:   s,
		outbound: make(chan ServerMessage, 16),
		done:     ctx.Done(),
	}

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		c.writeLoop(ctx, conn)
		cancel()
	}()

	conn.SetReadLimit(maxFrameSize)
	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	var runDone chan struct{}
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
		if msgType != websocket.TextMessage {
			continue
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.send(ServerMessage{Type: TypeError, Text: "invalid message: " + err.Error()})
			continue
		}
		lang := s.language(msg.Language)

		if runDone != nil {
			c.finishing.Lock()
			select {
			case <-runDone:
				runDone = nil
			default:
			}
			c.finishing.Unlock()
			if runDone != nil {
				c.send(ServerMessage{Type: TypeError, Text: s.catalog.Message(lang, proofread.MessageBusy)})
				continue
			}
		}
		if err := proofread.ValidateInput(msg.Text, s.maxWords); err != nil {
			c.send(ServerMessage{Type: TypeError, Text: proofread.InputErrorText(s.catalog, lang, err, s.maxWords)})
			continue
		}

		runDone = make(chan struct{})
		go func(done chan struct{}) {
			result := c.run(ctx, msg.Text, lang)
			// The done frame is queued before the run counts as finished, and
			// a client reacting to it is only checked once done is closed.
			c.finishing.Lock()
			c.send(result)
			close(done)
			c.finishing.Unlock()
		}(runDone)
	}

	cancel()
	if runDone != nil {
		<-runDone
	}
	<-writerDone
}

// language resolves a client language code, falling back to the default.
func (s *Server) language(code string) proofread.Language {
	if lang, ok := s.catalog.Match(code); ok {
		return lang
	}
	return proofread.DefaultLanguage
}

// wsConn is the per-connection state shared by the read loop and runs.
type wsConn struct {
	server   *Server
	outbound chan ServerMessage
	done     <-chan struct{}

	// finishing orders a run's done frame before its completion signal.
	finishing sync.Mutex
}

// run performs one correction and returns its done message.
func (c *wsConn) run(ctx context.Context, text string, lang proofread.Language) ServerMessage {
	s := c.server
	req := proofread.CorrectionRequest(s.catalog, lang, text)
	res := s.runner.Run(ctx, req, &wsSink{conn: c}, proofread.WithLanguage(lang),
		proofread.WithLogAttrs("run_id", uuid.NewString(), "transport", "websocket"))
	return ServerMessage{
		Type: TypeDone,
		Kind: string(res.Kind()),
		Text: proofread.TerminalText(res, lang, s.catalog),
	}
}

// send queues msg unless the connection is gone.
func (c *wsConn) send(msg ServerMessage) {
	select {
	case c.outbound <- msg:
	case <-c.done:
	}
}

// writeLoop is the only writer of conn. It returns when ctx is done or a
// write fails.
func (c *wsConn) writeLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-c.outbound:
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(msg); err != nil {
				c.server.logger.Debug("websocket write failed", "error", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

var _ proofread.Sink = (*wsSink)(nil)

// wsSink publishes snapshots as replace messages on one connection.
type wsSink struct {
	conn *wsConn
}

func (s *wsSink) Replace(ctx context.Context, text string) error {
	select {
	case s.conn.outbound <- ServerMessage{Type: TypeReplace, Text: text}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.conn.done:
		return errConnClosed
	}
}
