package httpapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/proofread"
	"github.com/fwojciec/proofread/httpapi"
	"github.com/fwojciec/proofread/mock"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testCatalog localizes a few keys as "<lang>:<key>" and supports en and ru.
type testCatalog struct{}

func (testCatalog) Message(lang proofread.Language, key proofread.MessageKey) string {
	if key == proofread.MessageTooLong {
		return string(lang) + ":too_long {max}"
	}
	return string(lang) + ":" + string(key)
}

func (testCatalog) Match(code string) (proofread.Language, bool) {
	switch code {
	case "en", "ru":
		return proofread.Language(code), true
	}
	return "", false
}

// textProvider streams text in one delta after an optional gate opens.
func textProvider(text string, gate <-chan struct{}) *mock.Provider {
	return &mock.Provider{
		StreamFn: func(ctx context.Context, _ proofread.Request) (proofread.Stream, error) {
			if gate != nil {
				select {
				case <-gate:
				case <-ctx.Done():
					return nil, ctx.Err()
				}
			}
			return mock.NewStream(proofread.EventTextDelta{Delta: text}), nil
		},
	}
}

func newServer(t *testing.T, provider proofread.Provider, opts ...httpapi.Option) *httptest.Server {
	t.Helper()
	relay := proofread.NewRelay(provider, testCatalog{})
	srv := httptest.NewServer(httpapi.New(relay, testCatalog{}, opts...).Router())
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) httpapi.ServerMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg httpapi.ServerMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

// readUntilDone collects messages up to and including the done message.
func readUntilDone(t *testing.T, conn *websocket.Conn) []httpapi.ServerMessage {
	t.Helper()
	var msgs []httpapi.ServerMessage
	for {
		msg := read(t, conn)
		msgs = append(msgs, msg)
		if msg.Type == httpapi.TypeDone {
			return msgs
		}
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	srv := newServer(t, textProvider("", nil))
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestMetricsRoute(t *testing.T) {
	t.Parallel()

	t.Run("mounted when configured", func(t *testing.T) {
		t.Parallel()
		h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("proofread_runs_active 0\n"))
		})
		srv := newServer(t, textProvider("", nil), httpapi.WithMetricsHandler(h))
		resp, err := http.Get(srv.URL + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("absent otherwise", func(t *testing.T) {
		t.Parallel()
		srv := newServer(t, textProvider("", nil))
		resp, err := http.Get(srv.URL + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestWebSocket(t *testing.T) {
	t.Parallel()

	t.Run("correction ends with replace then done", func(t *testing.T) {
		t.Parallel()
		srv := newServer(t, textProvider("I ~~has~~ **have** a cat.", nil))
		conn := dial(t, srv)

		require.NoError(t, conn.WriteJSON(httpapi.ClientMessage{Text: "I has a cat."}))
		msgs := readUntilDone(t, conn)

		require.GreaterOrEqual(t, len(msgs), 2)
		last, done := msgs[len(msgs)-2], msgs[len(msgs)-1]
		assert.Equal(t, httpapi.ServerMessage{Type: httpapi.TypeReplace, Text: "I ~~has~~ **have** a cat."}, last)
		assert.Equal(t, httpapi.ServerMessage{Type: httpapi.TypeDone, Kind: "correction", Text: "I ~~has~~ **have** a cat."}, done)
	})

	t.Run("sentinel is localized in the requested language", func(t *testing.T) {
		t.Parallel()
		srv := newServer(t, textProvider("NO_ERRORS_FOUND", nil))
		conn := dial(t, srv)

		require.NoError(t, conn.WriteJSON(httpapi.ClientMessage{Text: "I have a cat.", Language: "ru"}))
		msgs := readUntilDone(t, conn)

		done := msgs[len(msgs)-1]
		assert.Equal(t, "no_errors", done.Kind)
		assert.Equal(t, "ru:no_errors", done.Text)
	})

	t.Run("unsupported language falls back to default", func(t *testing.T) {
		t.Parallel()
		srv := newServer(t, textProvider("NOT_IN_ENGLISH", nil))
		conn := dial(t, srv)

		require.NoError(t, conn.WriteJSON(httpapi.ClientMessage{Text: "Hallo Welt", Language: "de"}))
		msgs := readUntilDone(t, conn)

		assert.Equal(t, "en:not_english", msgs[len(msgs)-1].Text)
	})

	t.Run("blank text is rejected", func(t *testing.T) {
		t.Parallel()
		srv := newServer(t, textProvider("unused", nil))
		conn := dial(t, srv)

		require.NoError(t, conn.WriteJSON(httpapi.ClientMessage{Text: "  "}))
		assert.Equal(t, httpapi.ServerMessage{Type: httpapi.TypeError, Text: "en:empty_input"}, read(t, conn))
	})

	t.Run("too many words is rejected with the limit", func(t *testing.T) {
		t.Parallel()
		srv := newServer(t, textProvider("unused", nil), httpapi.WithMaxWords(2))
		conn := dial(t, srv)

		require.NoError(t, conn.WriteJSON(httpapi.ClientMessage{Text: "one two three"}))
		assert.Equal(t, "en:too_long 2", read(t, conn).Text)
	})

	t.Run("malformed json is rejected", func(t *testing.T) {
		t.Parallel()
		srv := newServer(t, textProvider("unused", nil))
		conn := dial(t, srv)

		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{")))
		msg := read(t, conn)
		assert.Equal(t, httpapi.TypeError, msg.Type)
		assert.Contains(t, msg.Text, "invalid message")
	})

	t.Run("second request while running is busy", func(t *testing.T) {
		t.Parallel()
		gate := make(chan struct{})
		srv := newServer(t, textProvider("NO_ERRORS_FOUND", gate))
		conn := dial(t, srv)

		require.NoError(t, conn.WriteJSON(httpapi.ClientMessage{Text: "first"}))
		require.NoError(t, conn.WriteJSON(httpapi.ClientMessage{Text: "second"}))
		assert.Equal(t, httpapi.ServerMessage{Type: httpapi.TypeError, Text: "en:busy"}, read(t, conn))

		close(gate)
		msgs := readUntilDone(t, conn)
		assert.Equal(t, "no_errors", msgs[len(msgs)-1].Kind)

		require.NoError(t, conn.WriteJSON(httpapi.ClientMessage{Text: "third"}))
		msgs = readUntilDone(t, conn)
		assert.Equal(t, "no_errors", msgs[len(msgs)-1].Kind)
	})

	t.Run("next request sent on done is never busy", func(t *testing.T) {
		t.Parallel()
		srv := newServer(t, textProvider("NO_ERRORS_FOUND", nil))
		conn := dial(t, srv)

		for range 20 {
			require.NoError(t, conn.WriteJSON(httpapi.ClientMessage{Text: "I have a cat."}))
			msgs := readUntilDone(t, conn)
			for _, msg := range msgs[:len(msgs)-1] {
				assert.Equal(t, httpapi.TypeReplace, msg.Type, "frame before done: %+v", msg)
			}
			assert.Equal(t, "no_errors", msgs[len(msgs)-1].Kind)
		}
	})

	t.Run("cross origin browser is refused", func(t *testing.T) {
		t.Parallel()
		srv := newServer(t, textProvider("unused", nil))
		url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
		header := http.Header{"Origin": []string{"https://evil.example"}}
		_, resp, err := websocket.DefaultDialer.Dial(url, header)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("cross origin allowed when configured", func(t *testing.T) {
		t.Parallel()
		srv := newServer(t, textProvider("unused", nil), httpapi.WithAllowAnyOrigin(true))
		url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
		header := http.Header{"Origin": []string{"https://other.example"}}
		conn, _, err := websocket.DefaultDialer.Dial(url, header)
		require.NoError(t, err)
		conn.Close()
	})
}
