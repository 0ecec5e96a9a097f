package obs

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	rrerrors "github.com/livp123/raidrec/pkg/errors"
)

type handlerFunc func(requestType string) (RequestStatus, any)

// fakeOBS is a minimal obs-websocket v5 server.
type fakeOBS struct {
	t        *testing.T
	password string
	handle   handlerFunc

	mu       sync.Mutex
	requests []string
	conns    []*websocket.Conn
}

const (
	testSalt      = "lM1GncleQOaCu9lT1yeUZhFYnqhsLLP1G5lAGo3ixaI="
	testChallenge = "+IxH4CnCiqpX1rM9scsNynZzbOe4KhDeYcTNS3PDaeY="
)

func (f *fakeOBS) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	f.mu.Lock()
	f.conns = append(f.conns, conn)
	f.mu.Unlock()

	h := map[string]any{"obsWebSocketVersion": "5.5.0", "rpcVersion": 1}
	if f.password != "" {
		h["authentication"] = map[string]string{"challenge": testChallenge, "salt": testSalt}
	}
	if err := send(conn, OpHello, h); err != nil {
		return
	}

	var msg Message
	if err := conn.ReadJSON(&msg); err != nil || msg.Op != OpIdentify {
		return
	}
	var id identify
	_ = json.Unmarshal(msg.Data, &id)
	if f.password != "" && id.Authentication != AuthString(f.password, testSalt, testChallenge) {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(CloseAuthenticationFailed, "Authentication failed."))
		return
	}
	if err := send(conn, OpIdentified, map[string]int{"negotiatedRpcVersion": 1}); err != nil {
		return
	}

	for {
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		if msg.Op != OpRequest {
			continue
		}
		var req request
		_ = json.Unmarshal(msg.Data, &req)
		f.mu.Lock()
		f.requests = append(f.requests, req.RequestType)
		f.mu.Unlock()

		status, data := f.handle(req.RequestType)
		if status.Code == -1 {
			// Swallow the request.
			continue
		}
		raw, _ := json.Marshal(data)
		_ = send(conn, OpEvent, map[string]any{"eventType": "RecordStateChanged"})
		_ = send(conn, OpRequestResponse, response{
			RequestType:   req.RequestType,
			RequestID:     req.RequestID,
			RequestStatus: status,
			ResponseData:  raw,
		})
	}
}

func (f *fakeOBS) dropAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.conns {
		_ = c.Close()
	}
	f.conns = nil
}

func (f *fakeOBS) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func send(conn *websocket.Conn, op int, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return conn.WriteJSON(Message{Op: op, Data: raw})
}

func okStatus() RequestStatus { return RequestStatus{Result: true, Code: 100} }

func defaultHandler(requestType string) (RequestStatus, any) {
	switch requestType {
	case RequestGetRecordStatus:
		return okStatus(), RecordStatus{OutputActive: true, OutputTimecode: "00:01:02.000", OutputDuration: 62000}
	case RequestStopRecord:
		return okStatus(), map[string]string{"outputPath": "/videos/2026-10-14 20-30-11.mp4"}
	case RequestGetRecordDirectory:
		return okStatus(), map[string]string{"recordDirectory": "/videos"}
	case RequestGetVersion:
		return okStatus(), VersionInfo{OBSVersion: "30.2.0", OBSWebSocketVersion: "5.5.0", RPCVersion: 1}
	case RequestStartRecord:
		return RequestStatus{Result: false, Code: CodeOutputRunning, Comment: "Output already running"}, nil
	}
	return RequestStatus{Result: false, Code: 204}, nil
}

func startFake(t *testing.T, f *fakeOBS) (*httptest.Server, Options) {
	t.Helper()
	f.t = t
	if f.handle == nil {
		f.handle = defaultHandler
	}
	srv := httptest.NewServer(f)
	host, portStr, err := net.SplitHostPort(srv.Listener.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return srv, Options{Host: host, Port: port, Password: f.password, Timeout: time.Second}
}

func TestAuthString(t *testing.T) {
	// Worked example from the obs-websocket protocol documentation.
	got := AuthString("supersecretpassword", testSalt, testChallenge)
	assert.Equal(t, "1Ct943GAT+6YQUUX47Ia/ncufilbe6+oD6lY+5kaCu4=", got)
}

func TestRequests(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	fake := &fakeOBS{}
	srv, opts := startFake(t, fake)
	defer srv.Close()

	c := New(opts)
	defer c.Close()
	ctx := context.Background()

	assert.False(t, c.Connected())
	require.NoError(t, c.Connect(ctx))
	assert.True(t, c.Connected())
	assert.Equal(t, "5.5.0", c.WebSocketVersion())

	status, err := c.RecordStatus(ctx)
	require.NoError(t, err)
	assert.True(t, status.OutputActive)
	assert.Equal(t, "00:01:02.000", status.OutputTimecode)

	path, err := c.StopRecord(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/videos/2026-10-14 20-30-11.mp4", path)

	dir, err := c.RecordDirectory(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/videos", dir)

	v, err := c.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, "30.2.0", v.OBSVersion)

	err = c.StartRecord(ctx)
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, CodeOutputRunning, reqErr.Code)
	assert.ErrorIs(t, err, rrerrors.ErrOBSRequestFailed)

	assert.Equal(t, []string{
		RequestGetRecordStatus, RequestStopRecord, RequestGetRecordDirectory, RequestGetVersion, RequestStartRecord,
	}, fake.seen())

	require.NoError(t, c.Close())
	assert.False(t, c.Connected())
}

func TestAuthentication(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	fake := &fakeOBS{password: "supersecretpassword"}
	srv, opts := startFake(t, fake)
	defer srv.Close()

	c := New(opts)
	require.NoError(t, c.Connect(context.Background()))
	require.NoError(t, c.Close())

	opts.Password = "wrong"
	bad := New(opts)
	err := bad.Connect(context.Background())
	assert.ErrorIs(t, err, rrerrors.ErrOBSAuthFailed)
	assert.False(t, bad.Connected())

	opts.Password = ""
	err = New(opts).Connect(context.Background())
	assert.ErrorIs(t, err, rrerrors.ErrOBSAuthFailed)
}

func TestLazyReconnect(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	fake := &fakeOBS{}
	srv, opts := startFake(t, fake)
	defer srv.Close()

	c := New(opts)
	defer c.Close()
	ctx := context.Background()

	// First request dials on demand.
	_, err := c.RecordStatus(ctx)
	require.NoError(t, err)

	fake.dropAll()
	require.Eventually(t, func() bool { return !c.Connected() }, 2*time.Second, 10*time.Millisecond)

	_, err = c.RecordStatus(ctx)
	require.NoError(t, err)
	assert.True(t, c.Connected())
}

func TestRequestTimeout(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	fake := &fakeOBS{handle: func(string) (RequestStatus, any) {
		return RequestStatus{Code: -1}, nil
	}}
	srv, opts := startFake(t, fake)
	defer srv.Close()

	opts.Timeout = 100 * time.Millisecond
	c := New(opts)
	defer c.Close()

	_, err := c.RecordStatus(context.Background())
	assert.ErrorIs(t, err, rrerrors.ErrTimeout)
}

func TestRequestCanceled(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	fake := &fakeOBS{handle: func(string) (RequestStatus, any) {
		return RequestStatus{Code: -1}, nil
	}}
	srv, opts := startFake(t, fake)
	defer srv.Close()

	c := New(opts)
	defer c.Close()
	require.NoError(t, c.Connect(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.RecordStatus(ctx)
	assert.ErrorIs(t, err, rrerrors.ErrCanceled)
}

func TestNotConnected(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().(*net.TCPAddr)
	require.NoError(t, l.Close())

	c := New(Options{Host: "127.0.0.1", Port: addr.Port, Timeout: 200 * time.Millisecond})
	_, err = c.RecordStatus(context.Background())
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.NoError(t, c.Close())
}

func TestURL(t *testing.T) {
	assert.Equal(t, "ws://localhost:4455", New(Options{Host: "localhost", Port: 4455}).URL())
	assert.Equal(t, "ws://[::1]:4455", New(Options{Host: "::1", Port: 4455}).URL())
}
