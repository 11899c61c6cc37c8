package websocket

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gamehub-backend/internal/apperror"
	"github.com/rocketscienceinc/gamehub-backend/internal/arcade"
	"github.com/rocketscienceinc/gamehub-backend/internal/entity"
)

const validToken = "valid-token"

var goku = &entity.User{ID: "u1", Username: "goku"}

type stubVerifier struct{}

func (stubVerifier) Verify(_ context.Context, rawToken string) (*entity.User, error) {
	if rawToken != validToken {
		return nil, apperror.ErrUnauthorized
	}
	return goku, nil
}

type submission struct {
	gameID string
	user   entity.User
	score  int64
}

type recordingSubmitter struct {
	mu    sync.Mutex
	err   error
	calls []submission
}

func (that *recordingSubmitter) Submit(_ context.Context, gameID string, user entity.User, score int64) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.calls = append(that.calls, submission{gameID: gameID, user: user, score: score})

	return that.err
}

func (that *recordingSubmitter) submissions() []submission {
	that.mu.Lock()
	defer that.mu.Unlock()

	return append([]submission(nil), that.calls...)
}

type constRandom float64

func (that constRandom) Float64() float64 { return float64(that) }

func newTestServer(t *testing.T, scores scoreSubmitter, tune func(*arcade.Config)) *httptest.Server {
	t.Helper()

	httpServer := httptest.NewServer(newServer(t, scores, tune).Handler())
	t.Cleanup(httpServer.Close)

	return httpServer
}

func newServer(t *testing.T, scores scoreSubmitter, tune func(*arcade.Config)) *Server {
	t.Helper()

	gameConfig := arcade.DefaultConfig()
	gameConfig.SpawnChance = 0
	if tune != nil {
		tune(&gameConfig)
	}

	return New(slog.New(slog.NewTextHandler(io.Discard, nil)), stubVerifier{}, scores, Config{
		TickInterval: 5 * time.Millisecond,
		WriteTimeout: time.Second,
		PingInterval: time.Minute,
		Arcade:       gameConfig,
	}, WithRandom(constRandom(0.5)))
}

func dial(t *testing.T, httpServer *httptest.Server, path string, header http.Header) (*websocket.Conn, *http.Response, error) {
	t.Helper()

	url := "ws" + strings.TrimPrefix(httpServer.URL, "http") + path

	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	if conn != nil {
		t.Cleanup(func() { _ = conn.Close() })
	}

	return conn, resp, err
}

func readSnapshot(t *testing.T, conn *websocket.Conn) (arcade.Snapshot, error) {
	t.Helper()

	var snapshot arcade.Snapshot

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	err := conn.ReadJSON(&snapshot)

	return snapshot, err
}

// readUntilClosed drains snapshots and returns the close frame the server sent.
func readUntilClosed(t *testing.T, conn *websocket.Conn) *websocket.CloseError {
	t.Helper()

	for {
		_, err := readSnapshot(t, conn)
		if err == nil {
			continue
		}

		var closeErr *websocket.CloseError
		require.ErrorAs(t, err, &closeErr)

		return closeErr
	}
}

func TestArcadeAuth(t *testing.T) {
	httpServer := newTestServer(t, &recordingSubmitter{}, nil)

	t.Run("missing token is rejected before upgrade", func(t *testing.T) {
		_, resp, err := dial(t, httpServer, "/ws/arcade", nil)

		require.ErrorIs(t, err, websocket.ErrBadHandshake)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("invalid token is rejected before upgrade", func(t *testing.T) {
		_, resp, err := dial(t, httpServer, "/ws/arcade?token=forged", nil)

		require.ErrorIs(t, err, websocket.ErrBadHandshake)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("query token on the legacy path", func(t *testing.T) {
		conn, _, err := dial(t, httpServer, "/dragon_ws?token="+validToken, nil)
		require.NoError(t, err)

		snapshot, err := readSnapshot(t, conn)
		require.NoError(t, err)
		assert.False(t, snapshot.GameOver)
	})
}

func TestArcadeInput(t *testing.T) {
	// Given: a session where nothing spawns
	httpServer := newTestServer(t, &recordingSubmitter{}, nil)

	conn, _, err := dial(t, httpServer, "/ws/arcade", http.Header{"Authorization": {"Bearer " + validToken}})
	require.NoError(t, err)

	snapshot, err := readSnapshot(t, conn)
	require.NoError(t, err)
	assert.InDelta(t, 300, snapshot.Player.Y, 1e-9)
	assert.Empty(t, snapshot.Fireballs)

	// When: garbage arrives before a valid move
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"x": 4}`)))
	require.NoError(t, conn.WriteJSON(map[string]float64{"y": 120}))

	// Then: the connection survives and the move is applied
	for {
		snapshot, err = readSnapshot(t, conn)
		require.NoError(t, err)

		if snapshot.Player.Y == 120 {
			break
		}
	}

	assert.Zero(t, snapshot.Score)
	assert.False(t, snapshot.GameOver)
}

func TestArcadeGameOver(t *testing.T) {
	fastHazards := func(config *arcade.Config) {
		config.SpawnChance = 1
		config.BaseSpeed = 1000
	}

	t.Run("final score is submitted once", func(t *testing.T) {
		// Given: a hazard that crosses the boundary on the first tick
		scores := &recordingSubmitter{}
		httpServer := newTestServer(t, scores, fastHazards)

		conn, _, err := dial(t, httpServer, "/ws/arcade?token="+validToken, nil)
		require.NoError(t, err)

		// When: the session runs to the end
		var last arcade.Snapshot
		for !last.GameOver {
			last, err = readSnapshot(t, conn)
			require.NoError(t, err)
		}

		// Then: the server closes normally after recording the score
		closeErr := readUntilClosed(t, conn)
		assert.Equal(t, websocket.CloseNormalClosure, closeErr.Code)

		require.Eventually(t, func() bool { return len(scores.submissions()) == 1 }, time.Second, 5*time.Millisecond)
		assert.Equal(t, submission{gameID: entity.GameDragonBall, user: *goku, score: 0}, scores.submissions()[0])
	})

	t.Run("final score is submitted when the last snapshot cannot be written", func(t *testing.T) {
		// Given: a connection that breaks on the write after the initial snapshot
		scores := &recordingSubmitter{}
		server := newServer(t, scores, fastHazards)
		conn := newBrokenConn(3)

		// When: the first tick ends the game
		server.Handler().ServeHTTP(&hijackRecorder{ResponseRecorder: httptest.NewRecorder(), conn: conn}, upgradeRequest())

		// Then: the score is still recorded and nothing more is written to the dead connection
		require.Eventually(t, func() bool { return len(scores.submissions()) == 1 }, time.Second, 5*time.Millisecond)
		require.Eventually(t, conn.isClosed, time.Second, 5*time.Millisecond)

		assert.Equal(t, submission{gameID: entity.GameDragonBall, user: *goku, score: 0}, scores.submissions()[0])
		assert.Equal(t, 3, conn.writeCount())
	})

	t.Run("failed submission closes with an internal error", func(t *testing.T) {
		scores := &recordingSubmitter{err: errors.New("store down")}
		httpServer := newTestServer(t, scores, fastHazards)

		conn, _, err := dial(t, httpServer, "/ws/arcade?token="+validToken, nil)
		require.NoError(t, err)

		closeErr := readUntilClosed(t, conn)
		assert.Equal(t, websocket.CloseInternalServerErr, closeErr.Code)
		assert.Len(t, scores.submissions(), 1)
	})
}

func TestArcadeReplacement(t *testing.T) {
	// Given: a live session
	scores := &recordingSubmitter{}
	httpServer := newTestServer(t, scores, nil)

	first, _, err := dial(t, httpServer, "/ws/arcade?token="+validToken, nil)
	require.NoError(t, err)

	_, err = readSnapshot(t, first)
	require.NoError(t, err)

	// When: the same user connects again
	second, _, err := dial(t, httpServer, "/ws/arcade?token="+validToken, nil)
	require.NoError(t, err)

	// Then: the older connection is closed and the newer one keeps playing
	closeErr := readUntilClosed(t, first)
	assert.Equal(t, websocket.ClosePolicyViolation, closeErr.Code)

	_, err = readSnapshot(t, second)
	require.NoError(t, err)

	assert.Empty(t, scores.submissions())
}

func TestArcadeShutdown(t *testing.T) {
	t.Run("upgrade is refused once the server stops", func(t *testing.T) {
		// Given: a server whose lifetime has ended
		server := newServer(t, &recordingSubmitter{}, nil)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		server.baseCtx = ctx

		httpServer := httptest.NewServer(server.Handler())
		t.Cleanup(httpServer.Close)

		// When: a client tries to connect
		_, resp, err := dial(t, httpServer, "/ws/arcade?token="+validToken, nil)

		// Then: no session is started
		require.ErrorIs(t, err, websocket.ErrBadHandshake)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})

	t.Run("no session registers after closing", func(t *testing.T) {
		server := newServer(t, &recordingSubmitter{}, nil)

		_, ok := server.acquire()
		require.True(t, ok)
		server.sessions.Done()

		server.closing = true

		_, ok = server.acquire()
		assert.False(t, ok)
	})
}

// brokenConn accepts writes until failAt, then fails every write. Reads block until Close.
type brokenConn struct {
	mu     sync.Mutex
	writes int
	failAt int

	closed    chan struct{}
	closeOnce sync.Once
}

func newBrokenConn(failAt int) *brokenConn {
	return &brokenConn{failAt: failAt, closed: make(chan struct{})}
}

func (that *brokenConn) Read([]byte) (int, error) {
	<-that.closed
	return 0, io.EOF
}

func (that *brokenConn) Write(p []byte) (int, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.writes++
	if that.writes >= that.failAt {
		return 0, errors.New("connection reset by peer")
	}

	return len(p), nil
}

func (that *brokenConn) Close() error {
	that.closeOnce.Do(func() { close(that.closed) })
	return nil
}

func (that *brokenConn) isClosed() bool {
	select {
	case <-that.closed:
		return true
	default:
		return false
	}
}

func (that *brokenConn) writeCount() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.writes
}

func (that *brokenConn) LocalAddr() net.Addr              { return &net.TCPAddr{} }
func (that *brokenConn) RemoteAddr() net.Addr             { return &net.TCPAddr{} }
func (that *brokenConn) SetDeadline(time.Time) error      { return nil }
func (that *brokenConn) SetReadDeadline(time.Time) error  { return nil }
func (that *brokenConn) SetWriteDeadline(time.Time) error { return nil }

type hijackRecorder struct {
	*httptest.ResponseRecorder
	conn net.Conn
}

func (that *hijackRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return that.conn, bufio.NewReadWriter(bufio.NewReader(that.conn), bufio.NewWriter(that.conn)), nil
}

func upgradeRequest() *http.Request {
	request := httptest.NewRequest(http.MethodGet, "/ws/arcade?token="+validToken, nil)
	request.Header.Set("Connection", "Upgrade")
	request.Header.Set("Upgrade", "websocket")
	request.Header.Set("Sec-WebSocket-Version", "13")
	request.Header.Set("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")

	return request
}

func TestRegistry(t *testing.T) {
	reg := newRegistry()

	var causes []error
	cancelFor := func() context.CancelCauseFunc {
		return func(cause error) { causes = append(causes, cause) }
	}

	reg.replace("u1", "s1", cancelFor())
	reg.replace("u1", "s2", cancelFor())

	require.Len(t, causes, 1)
	assert.ErrorIs(t, causes[0], errReplaced)

	// the replaced session must not evict its successor
	reg.release("u1", "s1")
	assert.Equal(t, 1, reg.count())

	reg.release("u1", "s2")
	assert.Zero(t, reg.count())
}
