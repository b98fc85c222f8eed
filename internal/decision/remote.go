package decision

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"crypto-backtest-lab/internal/domain"
)

// RemoteConfig configures Remote behavior.
type RemoteConfig struct {
	// HandshakeTimeout bounds the WebSocket dial.
	HandshakeTimeout time.Duration
	// RequestTimeout bounds one decide round trip.
	RequestTimeout time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
}

// DefaultRemoteConfig returns default Remote configuration.
func DefaultRemoteConfig() RemoteConfig {
	return RemoteConfig{
		HandshakeTimeout: 10 * time.Second,
		RequestTimeout:   30 * time.Second,
		WriteTimeout:     10 * time.Second,
	}
}

// remoteRequest is the wire format sent to the strategy service.
type remoteRequest struct {
	ID           uint64                       `json:"id"`
	Date         string                       `json:"date"`
	Symbols      []string                     `json:"symbols"`
	Prices       map[string]float64           `json:"prices"`
	Cash         float64                      `json:"cash"`
	Positions    map[string]remotePosition    `json:"positions"`
	LookbackDays int                          `json:"lookback_days"`
}

type remotePosition struct {
	LongUnits  int64   `json:"long_units"`
	ShortUnits int64   `json:"short_units"`
	CostBasis  float64 `json:"cost_basis"`
}

// remoteResponse is the wire format received back. Decisions are keyed
// by symbol.
type remoteResponse struct {
	ID        uint64                    `json:"id"`
	Error     string                    `json:"error,omitempty"`
	Decisions map[string]remoteDecision `json:"decisions"`
}

type remoteDecision struct {
	Action   string  `json:"action"`
	Quantity float64 `json:"quantity"`
}

// Remote queries a strategy service over WebSocket, one JSON request per
// trading day with a matching-ID response. Any transport or protocol
// failure surfaces as an error; the engine downgrades it to hold.
type Remote struct {
	endpoint string
	config   RemoteConfig

	conn      *websocket.Conn
	connMu    sync.Mutex
	requestID atomic.Uint64
	closed    atomic.Bool
}

// NewRemote creates a Remote source and connects to the endpoint.
func NewRemote(ctx context.Context, endpoint string, config *RemoteConfig) (*Remote, error) {
	cfg := DefaultRemoteConfig()
	if config != nil {
		cfg = *config
	}

	r := &Remote{endpoint: endpoint, config: cfg}
	if err := r.connect(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

// Compile-time interface check.
var _ Source = (*Remote)(nil)

func (r *Remote) connect(ctx context.Context) error {
	r.connMu.Lock()
	defer r.connMu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: r.config.HandshakeTimeout,
	}

	conn, _, err := dialer.DialContext(ctx, r.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	r.conn = conn
	return nil
}

// Decide sends the day's state and waits for the matching response.
// Responses with stale IDs are discarded.
func (r *Remote) Decide(ctx context.Context, req Request) (map[string]domain.Decision, error) {
	if r.closed.Load() {
		return nil, fmt.Errorf("remote source closed")
	}

	reqID := r.requestID.Add(1)

	positions := make(map[string]remotePosition, len(req.Portfolio.Positions))
	for symbol, pos := range req.Portfolio.Positions {
		positions[symbol] = remotePosition{
			LongUnits:  pos.LongUnits,
			ShortUnits: pos.ShortUnits,
			CostBasis:  pos.LongCostBasis,
		}
	}

	wireReq := remoteRequest{
		ID:           reqID,
		Date:         req.Date.UTC().Format("2006-01-02"),
		Symbols:      req.Symbols,
		Prices:       req.Prices,
		Cash:         req.Portfolio.Cash,
		Positions:    positions,
		LookbackDays: req.LookbackDays,
	}

	deadline := time.Now().Add(r.config.RequestTimeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	r.connMu.Lock()
	defer r.connMu.Unlock()

	if r.conn == nil {
		return nil, fmt.Errorf("not connected")
	}

	r.conn.SetWriteDeadline(time.Now().Add(r.config.WriteTimeout))
	if err := r.conn.WriteJSON(wireReq); err != nil {
		return nil, fmt.Errorf("write decide request: %w", err)
	}

	r.conn.SetReadDeadline(deadline)
	for {
		var resp remoteResponse
		if err := r.conn.ReadJSON(&resp); err != nil {
			return nil, fmt.Errorf("read decide response: %w", err)
		}
		if resp.ID != reqID {
			// stale response from a timed-out earlier request
			continue
		}
		if resp.Error != "" {
			return nil, fmt.Errorf("remote strategy error: %s", resp.Error)
		}

		decisions := make(map[string]domain.Decision, len(resp.Decisions))
		for symbol, d := range resp.Decisions {
			decisions[symbol] = domain.Decision{
				Action:   domain.ParseAction(d.Action),
				Quantity: d.Quantity,
			}
		}
		return decisions, nil
	}
}

// Close shuts down the connection. Safe to call multiple times.
func (r *Remote) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return nil
	}

	r.connMu.Lock()
	defer r.connMu.Unlock()

	if r.conn == nil {
		return nil
	}

	r.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	err := r.conn.Close()
	r.conn = nil
	return err
}
