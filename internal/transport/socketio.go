package transport

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/vk/tracegraph/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
	"github.com/zishang520/socket.io-go-parser/v2/parser"
)

const (
	// DefaultEvent is the socket.io event trace messages arrive on.
	DefaultEvent          = "view:msg"
	defaultConnectTimeout = 15 * time.Second
)

// SocketIO receives events from a socket.io server. Each emission of Event
// carries one payload, either as a JSON string or as an object.
type SocketIO struct {
	URL                string
	Namespace          string
	Event              string
	ConnectTimeout     time.Duration
	InsecureSkipVerify bool
}

// Describe implements Source.
func (s *SocketIO) Describe() string {
	return fmt.Sprintf("socketio %s%s#%s", s.URL, s.Namespace, s.event())
}

func (s *SocketIO) event() string {
	if s.Event == "" {
		return DefaultEvent
	}
	return s.Event
}

// Stream implements Source. It returns nil when the server ends the
// connection or ctx is canceled.
//
// Packets are decoded on the engine's read loop and forwarded to out by a
// single goroutine, so payloads keep the order the server emitted them in.
// Nothing is sent on out after Stream returns.
func (s *SocketIO) Stream(ctx context.Context, out chan<- []byte) error {
	logger := ctxlog.FromContext(ctx).With("source", "socketio", "url", s.URL, "event", s.event())

	parsedURL, err := url.Parse(s.URL)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return fmt.Errorf("socket.io URL %q must be absolute", s.URL)
	}

	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	opts.SetAutoConnect(false)
	if s.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	queue := newPayloadQueue()
	var forwarder sync.WaitGroup
	forwarder.Add(1)
	go func() {
		defer forwarder.Done()
		queue.forward(ctx, out)
	}()
	defer func() {
		queue.close()
		forwarder.Wait()
	}()

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	nsp := s.namespace()
	event := s.event()

	// The manager hands decoded packets to its sockets on separate
	// goroutines, so event payloads are read from the engine directly.
	manager.On(types.EventName("open"), func(...any) {
		eng := manager.Engine()
		if eng == nil {
			return
		}
		dec := parser.NewDecoder()
		dec.On("decoded", func(packets ...any) {
			if len(packets) == 0 {
				return
			}
			packet, ok := packets[0].(*parser.Packet)
			if !ok {
				return
			}
			payload, ok, err := eventPayload(packet, nsp, event)
			if err != nil {
				logger.Warn("Dropping unencodable payload.", "error", err)
				return
			}
			if ok && !queue.push(payload) {
				logger.Debug("Dropping payload received after the stream ended.")
			}
		})
		eng.On("data", func(data ...any) {
			if len(data) == 0 {
				return
			}
			if err := dec.Add(data[0]); err != nil {
				logger.Debug("Failed to decode packet.", "error", err)
			}
		})
		eng.On("close", func(...any) {
			dec.Destroy()
		})
	})

	io := manager.Socket(nsp, opts)
	defer func() {
		logger.Debug("Disconnecting socket client")
		io.Disconnect()
	}()

	connected := make(chan error, 1)
	closed := make(chan string, 1)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Successfully connected", "namespace", nsp, "sid", io.Id())
		connected <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		var err error = fmt.Errorf("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		connected <- err
	})
	io.On(types.EventName("disconnect"), func(reason ...any) {
		r := ""
		if len(reason) > 0 {
			r = fmt.Sprint(reason[0])
		}
		select {
		case closed <- r:
		default:
		}
	})

	io.Connect()

	timeout := s.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	select {
	case err := <-connected:
		if err != nil {
			return fmt.Errorf("socket.io connection failed: %w", err)
		}
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(timeout):
		return fmt.Errorf("timed out after %s waiting for socket.io connection", timeout)
	}

	select {
	case <-ctx.Done():
		return nil
	case reason := <-closed:
		logger.Info("Socket disconnected.", "reason", reason)
		return nil
	}
}

func (s *SocketIO) namespace() string {
	if s.Namespace == "" {
		return "/"
	}
	return s.Namespace
}

// eventPayload extracts the first argument of an event packet named event on
// namespace nsp. ok is false for any other packet.
func eventPayload(packet *parser.Packet, nsp, event string) (payload []byte, ok bool, err error) {
	if packet.Type != parser.EVENT && packet.Type != parser.BINARY_EVENT {
		return nil, false, nil
	}
	packetNsp := packet.Nsp
	if packetNsp == "" {
		packetNsp = "/"
	}
	if packetNsp != nsp {
		return nil, false, nil
	}
	args, _ := packet.Data.([]any)
	if len(args) < 2 {
		return nil, false, nil
	}
	if name, _ := args[0].(string); name != event {
		return nil, false, nil
	}
	payload, err = payloadBytes(args[1])
	if err != nil {
		return nil, false, err
	}
	return payload, true, nil
}

// payloadQueue carries payloads from the engine's read loop to the
// forwarding goroutine without blocking the read loop on a slow consumer.
type payloadQueue struct {
	mu     sync.Mutex
	items  [][]byte
	closed bool
	ready  chan struct{}
}

func newPayloadQueue() *payloadQueue {
	return &payloadQueue{ready: make(chan struct{}, 1)}
}

// push appends p. It returns false once the queue is closed.
func (q *payloadQueue) push(p []byte) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.items = append(q.items, p)
	q.mu.Unlock()
	q.signal()
	return true
}

func (q *payloadQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.signal()
}

func (q *payloadQueue) signal() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// forward sends queued payloads to out in order. It returns once the queue
// is closed and drained, or when ctx is canceled.
func (q *payloadQueue) forward(ctx context.Context, out chan<- []byte) {
	for {
		q.mu.Lock()
		batch, closed := q.items, q.closed
		q.items = nil
		q.mu.Unlock()

		for _, p := range batch {
			select {
			case out <- p:
			case <-ctx.Done():
				return
			}
		}
		if closed {
			return
		}
		select {
		case <-q.ready:
		case <-ctx.Done():
			return
		}
	}
}

// payloadBytes turns a received socket.io argument back into JSON.
func payloadBytes(v any) ([]byte, error) {
	switch p := v.(type) {
	case string:
		return []byte(p), nil
	case []byte:
		return p, nil
	default:
		return json.Marshal(p)
	}
}
