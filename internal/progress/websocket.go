package progress

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/constants"
)

type ConnState string

const (
	StateConnecting   ConnState = "CONNECTING"
	StateConnected    ConnState = "CONNECTED"
	StateDisconnected ConnState = "DISCONNECTED"
	StateReconnecting ConnState = "RECONNECTING"
	StateFailed       ConnState = "FAILED"
)

func (s ConnState) String() string {
	return string(s)
}

// WebSocketReporter pushes events as JSON text frames to a dashboard socket.
// Events raised while the socket is down are dropped.
type WebSocketReporter struct {
	wsURL                string
	conn                 *websocket.Conn
	writeMu              sync.Mutex
	state                ConnState
	stateMu              sync.RWMutex
	reconnectAttempts    int
	maxReconnectAttempts int
	reconnectDelay       time.Duration
	logger               *zap.Logger
	stopCh               chan struct{}
	stopOnce             sync.Once
}

func NewWebSocketReporter(wsURL string, logger *zap.Logger) *WebSocketReporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebSocketReporter{
		wsURL:                wsURL,
		state:                StateDisconnected,
		maxReconnectAttempts: constants.WebSocketConfig.MaxReconnectAttempts,
		reconnectDelay:       constants.WebSocketConfig.ReconnectDelay,
		logger:               logger,
		stopCh:               make(chan struct{}),
	}
}

func (r *WebSocketReporter) Connect(ctx context.Context) error {
	state := r.State()
	if state == StateConnected || state == StateConnecting {
		return nil
	}

	r.setState(StateConnecting)

	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = constants.WebSocketConfig.HandshakeTimeout

	conn, _, err := dialer.DialContext(ctx, r.wsURL, nil)
	if err != nil {
		r.logger.Warn("Failed to connect progress WebSocket", zap.String("url", r.wsURL), zap.Error(err))
		r.setState(StateFailed)
		return err
	}

	r.writeMu.Lock()
	r.conn = conn
	r.writeMu.Unlock()

	r.stateMu.Lock()
	r.reconnectAttempts = 0
	r.stateMu.Unlock()
	r.setState(StateConnected)
	r.logger.Info("Progress WebSocket connected", zap.String("url", r.wsURL))
	return nil
}

func (r *WebSocketReporter) Report(ctx context.Context, event Event) {
	if event.Time.IsZero() {
		event.Time = time.Now()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		r.logger.Error("Failed to encode progress event", zap.Error(err))
		return
	}

	r.writeMu.Lock()
	conn := r.conn
	if conn == nil {
		r.writeMu.Unlock()
		r.logger.Debug("Progress WebSocket not connected, dropping event",
			zap.String("stage", event.Stage.String()))
		return
	}
	_ = conn.SetWriteDeadline(time.Now().Add(constants.WebSocketConfig.WriteTimeout))
	err = conn.WriteMessage(websocket.TextMessage, payload)
	if err != nil {
		_ = conn.Close()
		r.conn = nil
	}
	r.writeMu.Unlock()

	if err != nil {
		r.logger.Warn("Progress WebSocket write failed", zap.Error(err))
		r.setState(StateDisconnected)
		r.scheduleReconnect(ctx)
	}
}

func (r *WebSocketReporter) scheduleReconnect(ctx context.Context) {
	r.stateMu.Lock()
	if r.state == StateReconnecting {
		r.stateMu.Unlock()
		return
	}
	r.reconnectAttempts++
	attempt := r.reconnectAttempts
	r.stateMu.Unlock()

	if attempt > r.maxReconnectAttempts {
		r.logger.Error("Max reconnect attempts reached", zap.Int("attempts", attempt))
		r.setState(StateFailed)
		return
	}

	r.setState(StateReconnecting)
	r.logger.Info("Scheduling progress WebSocket reconnect",
		zap.Int("attempt", attempt),
		zap.Int("max", r.maxReconnectAttempts),
		zap.Duration("delay", r.reconnectDelay))

	go func() {
		select {
		case <-time.After(r.reconnectDelay):
			r.setState(StateDisconnected)
			if err := r.Connect(ctx); err != nil {
				r.scheduleReconnect(ctx)
			}
		case <-ctx.Done():
		case <-r.stopCh:
		}
	}()
}

func (r *WebSocketReporter) setState(newState ConnState) {
	r.stateMu.Lock()
	oldState := r.state
	r.state = newState
	r.stateMu.Unlock()

	if oldState != newState {
		r.logger.Debug("Progress WebSocket state changed",
			zap.String("from", oldState.String()),
			zap.String("to", newState.String()))
	}
}

func (r *WebSocketReporter) State() ConnState {
	r.stateMu.RLock()
	defer r.stateMu.RUnlock()
	return r.state
}

func (r *WebSocketReporter) Close() error {
	r.stopOnce.Do(func() {
		close(r.stopCh)
	})

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	if r.conn == nil {
		return nil
	}

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = r.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	err := r.conn.Close()
	r.conn = nil
	r.setState(StateDisconnected)
	return err
}

var _ Reporter = (*WebSocketReporter)(nil)
