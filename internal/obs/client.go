package obs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/livp123/raidrec/internal/metrics"
	"github.com/livp123/raidrec/internal/utils/logger"
	rrerrors "github.com/livp123/raidrec/pkg/errors"
)

// DefaultTimeout bounds the handshake and each request.
const DefaultTimeout = 3 * time.Second

// Options configures the connection.
type Options struct {
	Host     string
	Port     int
	Password string
	Timeout  time.Duration
}

// Client talks to OBS Studio over the WebSocket v5 protocol. It connects
// lazily: any request on a closed client dials first.
// Client 通过 WebSocket v5 协议控制 OBS Studio，请求时按需重连。
type Client struct {
	opts   Options
	dialer *websocket.Dialer

	connMu sync.Mutex // serializes connect and close
	conn   *websocket.Conn
	done   chan struct{}

	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[string]chan response
	version string
}

// New creates a client. Nothing is dialed until Connect or the first request.
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Client{
		opts: opts,
		dialer: &websocket.Dialer{
			HandshakeTimeout: opts.Timeout,
		},
		pending: make(map[string]chan response),
	}
}

// URL is the WebSocket endpoint.
func (c *Client) URL() string {
	u := url.URL{Scheme: "ws", Host: net.JoinHostPort(c.opts.Host, strconv.Itoa(c.opts.Port))}
	return u.String()
}

// Connected reports whether an identified session is open.
func (c *Client) Connected() bool {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	return c.conn != nil
}

// Connect dials OBS and completes the Hello/Identify handshake. Connecting
// an open client is a no-op.
func (c *Client) Connect(ctx context.Context) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	if c.conn != nil {
		return nil
	}

	log := logger.Get(ctx)
	dialCtx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	conn, _, err := c.dialer.DialContext(dialCtx, c.URL(), nil)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNotConnected, c.URL(), err)
	}
	if err := c.handshake(conn); err != nil {
		_ = conn.Close()
		return err
	}

	c.conn = conn
	c.done = make(chan struct{})
	metrics.OBSConnected.Set(1)
	go c.readLoop(ctx, conn, c.done)
	log.Infof("[OBS] ✅ Connected to OBS WebSocket at %s", c.URL())
	return nil
}

func (c *Client) handshake(conn *websocket.Conn) error {
	deadline := time.Now().Add(c.opts.Timeout)
	_ = conn.SetReadDeadline(deadline)
	_ = conn.SetWriteDeadline(deadline)
	defer func() {
		_ = conn.SetReadDeadline(time.Time{})
		_ = conn.SetWriteDeadline(time.Time{})
	}()

	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		return fmt.Errorf("%w: reading Hello: %v", ErrNotConnected, err)
	}
	if msg.Op != OpHello {
		return fmt.Errorf("%w: expected Hello, got op %d", ErrNotConnected, msg.Op)
	}
	var h hello
	if err := json.Unmarshal(msg.Data, &h); err != nil {
		return fmt.Errorf("%w: decoding Hello: %v", ErrNotConnected, err)
	}

	id := identify{RPCVersion: RPCVersion}
	if h.Authentication != nil {
		if c.opts.Password == "" {
			return fmt.Errorf("%w: OBS requires a password", rrerrors.ErrOBSAuthFailed)
		}
		id.Authentication = AuthString(c.opts.Password, h.Authentication.Salt, h.Authentication.Challenge)
	}
	if err := writeMessage(conn, OpIdentify, id); err != nil {
		return fmt.Errorf("%w: sending Identify: %v", ErrNotConnected, err)
	}

	if err := conn.ReadJSON(&msg); err != nil {
		var closeErr *websocket.CloseError
		if errors.As(err, &closeErr) && closeErr.Code == CloseAuthenticationFailed {
			return fmt.Errorf("%w: %s", rrerrors.ErrOBSAuthFailed, closeErr.Text)
		}
		return fmt.Errorf("%w: reading Identified: %v", ErrNotConnected, err)
	}
	if msg.Op != OpIdentified {
		return fmt.Errorf("%w: expected Identified, got op %d", ErrNotConnected, msg.Op)
	}

	c.mu.Lock()
	c.version = h.ObsWebSocketVersion
	c.mu.Unlock()
	return nil
}

func writeMessage(conn *websocket.Conn, op int, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return conn.WriteJSON(Message{Op: op, Data: raw})
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn, done chan struct{}) {
	log := logger.Get(ctx)
	defer close(done)

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) && !errors.Is(err, net.ErrClosed) {
				log.Warnf("[OBS] Connection lost: %v", err)
			}
			c.dropConn(conn)
			return
		}

		switch msg.Op {
		case OpRequestResponse:
			var resp response
			if err := json.Unmarshal(msg.Data, &resp); err != nil {
				log.Warnf("[OBS] Bad response frame: %v", err)
				continue
			}
			c.mu.Lock()
			ch, ok := c.pending[resp.RequestID]
			delete(c.pending, resp.RequestID)
			c.mu.Unlock()
			if ok {
				ch <- resp
			}
		case OpEvent:
			// Not subscribed to any events; OBS may still send some.
		default:
			log.Debugf("[OBS] Ignoring op %d", msg.Op)
		}
	}
}

// dropConn forgets conn if it is still the current one.
func (c *Client) dropConn(conn *websocket.Conn) {
	c.connMu.Lock()
	if c.conn == conn {
		c.conn = nil
		metrics.OBSConnected.Set(0)
	}
	c.connMu.Unlock()
	_ = conn.Close()
}

// Close ends the session and waits for the reader to exit.
func (c *Client) Close() error {
	c.connMu.Lock()
	conn, done := c.conn, c.done
	c.conn = nil
	c.connMu.Unlock()
	if conn == nil {
		return nil
	}
	metrics.OBSConnected.Set(0)

	c.writeMu.Lock()
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.writeMu.Unlock()
	err := conn.Close()
	<-done
	return err
}

// Request sends requestType with data and decodes the response into out
// when out is non-nil.
func (c *Client) Request(ctx context.Context, requestType string, data, out any) (err error) {
	defer func() {
		result := "ok"
		if err != nil {
			result = "error"
		}
		metrics.OBSRequests.WithLabelValues(requestType, result).Inc()
	}()

	if err := c.Connect(ctx); err != nil {
		return err
	}
	c.connMu.Lock()
	conn, done := c.conn, c.done
	c.connMu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	id := uuid.NewString()
	ch := make(chan response, 1)
	c.mu.Lock()
	c.pending[id] = ch
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	c.writeMu.Lock()
	_ = conn.SetWriteDeadline(time.Now().Add(c.opts.Timeout))
	err = writeMessage(conn, OpRequest, request{RequestType: requestType, RequestID: id, RequestData: data})
	c.writeMu.Unlock()
	if err != nil {
		c.dropConn(conn)
		return fmt.Errorf("%w: sending %s: %v", ErrNotConnected, requestType, err)
	}

	timer := time.NewTimer(c.opts.Timeout)
	defer timer.Stop()

	select {
	case resp := <-ch:
		if !resp.RequestStatus.Result {
			return &RequestError{Type: requestType, Code: resp.RequestStatus.Code, Comment: resp.RequestStatus.Comment}
		}
		if out != nil && len(resp.ResponseData) > 0 {
			if err := json.Unmarshal(resp.ResponseData, out); err != nil {
				return fmt.Errorf("decode %s response: %w", requestType, err)
			}
		}
		return nil
	case <-done:
		return fmt.Errorf("%w: connection closed during %s", ErrNotConnected, requestType)
	case <-timer.C:
		return fmt.Errorf("%w: %s after %s", rrerrors.ErrTimeout, requestType, c.opts.Timeout)
	case <-ctx.Done():
		return fmt.Errorf("%w: %s: %v", rrerrors.ErrCanceled, requestType, ctx.Err())
	}
}

// StartRecord starts the recording output.
func (c *Client) StartRecord(ctx context.Context) error {
	return c.Request(ctx, RequestStartRecord, nil, nil)
}

// StopRecord stops the recording output and returns the file OBS wrote.
func (c *Client) StopRecord(ctx context.Context) (string, error) {
	var out struct {
		OutputPath string `json:"outputPath"`
	}
	if err := c.Request(ctx, RequestStopRecord, nil, &out); err != nil {
		return "", err
	}
	return out.OutputPath, nil
}

// RecordStatus reports whether OBS is recording.
func (c *Client) RecordStatus(ctx context.Context) (RecordStatus, error) {
	var out RecordStatus
	err := c.Request(ctx, RequestGetRecordStatus, nil, &out)
	return out, err
}

// RecordDirectory returns the directory OBS records into.
func (c *Client) RecordDirectory(ctx context.Context) (string, error) {
	var out struct {
		RecordDirectory string `json:"recordDirectory"`
	}
	if err := c.Request(ctx, RequestGetRecordDirectory, nil, &out); err != nil {
		return "", err
	}
	return out.RecordDirectory, nil
}

// Version returns OBS and plugin versions.
func (c *Client) Version(ctx context.Context) (VersionInfo, error) {
	var out VersionInfo
	err := c.Request(ctx, RequestGetVersion, nil, &out)
	return out, err
}

// WebSocketVersion is the obs-websocket version reported in Hello.
func (c *Client) WebSocketVersion() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}
