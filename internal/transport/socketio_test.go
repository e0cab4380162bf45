package transport

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zishang520/socket.io-go-parser/v2/parser"
	sio "github.com/zishang520/socket.io/v2/socket"
)

// startTraceServer serves a socket.io server that emits count payloads on
// the /trace namespace to every client, then disconnects it.
func startTraceServer(t *testing.T, count int) string {
	t.Helper()
	io := sio.NewServer(nil, nil)
	io.Of("/trace", nil).On("connection", func(clients ...any) {
		client := clients[0].(*sio.Socket)
		for i := 0; i < count; i++ {
			_ = client.Emit(DefaultEvent, fmt.Sprintf(`{"seq":%d}`, i))
		}
		client.Disconnect(false)
	})
	mux := http.NewServeMux()
	mux.Handle("/socket.io/", io.ServeHandler(nil))
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		io.Close(nil)
		srv.Close()
	})
	return srv.URL + "/socket.io/"
}

func expectedSeq(count int) []string {
	want := make([]string, count)
	for i := range want {
		want[i] = fmt.Sprintf(`{"seq":%d}`, i)
	}
	return want
}

// streamAll runs Stream with a reader draining out, closes out once Stream
// returns, and reports everything the reader saw.
func streamAll(t *testing.T, src Source, buffer int) []string {
	t.Helper()
	out := make(chan []byte, buffer)
	received := make(chan []string, 1)
	go func() {
		var got []string
		for p := range out {
			got = append(got, string(p))
			time.Sleep(time.Millisecond)
		}
		received <- got
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	err := src.Stream(ctx, out)
	require.NoError(t, err)
	close(out)

	select {
	case got := <-received:
		return got
	case <-time.After(10 * time.Second):
		t.Fatal("reader did not finish")
		return nil
	}
}

func TestSocketIO_KeepsEmissionOrder(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	const count = 500
	src := &SocketIO{URL: startTraceServer(t, count), Namespace: "/trace", ConnectTimeout: 10 * time.Second}

	// --- Act ---
	got := streamAll(t, src, 16)

	// --- Assert ---
	assert.Equal(t, expectedSeq(count), got)
}

func TestSocketIO_DeliversEverythingBeforeReturningOnDisconnect(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	const count = 20
	src := &SocketIO{URL: startTraceServer(t, count), Namespace: "/trace", ConnectTimeout: 10 * time.Second}

	// --- Act ---
	// A small buffer keeps payloads in flight when the server disconnects.
	// Closing out right after Stream returns must be safe.
	got := streamAll(t, src, 4)

	// --- Assert ---
	assert.Equal(t, expectedSeq(count), got)
}

func TestEventPayload(t *testing.T) {
	t.Parallel()

	event := func(nsp string, args ...any) *parser.Packet {
		return &parser.Packet{Type: parser.EVENT, Nsp: nsp, Data: args}
	}
	testCases := []struct {
		name   string
		packet *parser.Packet
		nsp    string
		want   string
		wantOK bool
	}{
		{name: "matching event", packet: event("/trace", "view:msg", `{"a":1}`), nsp: "/trace", want: `{"a":1}`, wantOK: true},
		{name: "object payload", packet: event("/trace", "view:msg", map[string]any{"a": 1.0}), nsp: "/trace", want: `{"a":1}`, wantOK: true},
		{name: "empty namespace is root", packet: event("", "view:msg", `{}`), nsp: "/", want: `{}`, wantOK: true},
		{name: "other namespace", packet: event("/other", "view:msg", `{}`), nsp: "/trace"},
		{name: "other event", packet: event("/trace", "chat", `{}`), nsp: "/trace"},
		{name: "no payload", packet: event("/trace", "view:msg"), nsp: "/trace"},
		{name: "connect packet", packet: &parser.Packet{Type: parser.CONNECT, Nsp: "/trace"}, nsp: "/trace"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			payload, ok, err := eventPayload(tc.packet, tc.nsp, DefaultEvent)

			require.NoError(t, err)
			assert.Equal(t, tc.wantOK, ok)
			if tc.wantOK {
				assert.JSONEq(t, tc.want, string(payload))
			}
		})
	}
}

func TestPayloadQueue_DropsAfterCloseAndDrains(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	q := newPayloadQueue()
	require.True(t, q.push([]byte("1")))
	require.True(t, q.push([]byte("2")))
	q.close()

	// --- Act ---
	late := q.push([]byte("3"))
	out := make(chan []byte, 4)
	q.forward(context.Background(), out)
	close(out)

	// --- Assert ---
	assert.False(t, late)
	var got []string
	for p := range out {
		got = append(got, string(p))
	}
	assert.Equal(t, []string{"1", "2"}, got)
}

func TestPayloadQueue_ForwardStopsOnCancel(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	q := newPayloadQueue()
	q.push([]byte("blocked"))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	// --- Act ---
	go func() {
		q.forward(ctx, make(chan []byte))
		close(done)
	}()
	cancel()

	// --- Assert ---
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("forward did not return after cancel")
	}
}
