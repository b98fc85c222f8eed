package aster

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"crypto-backtest-lab/internal/domain"
	"crypto-backtest-lab/internal/pricing"
)

// DefaultBaseURL is the Aster futures REST API.
const DefaultBaseURL = "https://fapi.asterdex.com/fapi/v1"

// pageLimit caps kline rows per request; large limits with time filters
// are rejected by some gateways.
const pageLimit = 500

// Client is a REST client for the Aster exchange. It implements
// pricing.Source over daily klines.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Client. An empty baseURL uses DefaultBaseURL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 15 * time.Second}).DialContext,
				MaxIdleConns:        100,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 5 * time.Second,
			},
		},
	}
}

// Compile-time interface check.
var _ pricing.Source = (*Client)(nil)

// Price returns the daily close for the symbol on the given date.
// Returns pricing.ErrNoPriceData when the exchange has no bar for it.
func (c *Client) Price(ctx context.Context, symbol string, date time.Time) (float64, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24*time.Hour - time.Millisecond)

	candles, err := c.History(ctx, symbol, domain.TimeframeDay, dayStart, dayEnd)
	if err != nil {
		return 0, err
	}
	for i := len(candles) - 1; i >= 0; i-- {
		if candles[i].Close > 0 {
			return candles[i].Close, nil
		}
	}
	return 0, pricing.ErrNoPriceData
}

// History fetches klines within [start, end] (inclusive), paging forward
// by startTime until the range is covered. Rows outside the range and
// malformed rows are dropped.
func (c *Client) History(ctx context.Context, symbol, timeframe string, start, end time.Time) ([]*domain.Candle, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	if end.Before(start) {
		return nil, fmt.Errorf("end before start")
	}
	step, err := timeframeDuration(timeframe)
	if err != nil {
		return nil, err
	}

	var out []*domain.Candle
	cursor := start

	for !cursor.After(end) {
		raw, err := c.fetchKlines(ctx, map[string]string{
			"symbol":    symbol,
			"interval":  timeframe,
			"startTime": strconv.FormatInt(cursor.UnixMilli(), 10),
			"endTime":   strconv.FormatInt(end.UnixMilli(), 10),
			"limit":     strconv.Itoa(pageLimit),
		})
		if err != nil {
			return nil, err
		}
		if len(raw) == 0 {
			break
		}

		added := 0
		lastTS := int64(0)
		for _, row := range raw {
			candle, ok := klineRowToCandle(symbol, timeframe, row)
			if !ok {
				continue
			}
			ts := time.UnixMilli(candle.TimestampMs)
			if ts.Before(start) || ts.After(end) {
				continue
			}
			out = append(out, candle)
			added++
			lastTS = candle.TimestampMs
		}

		if added == 0 {
			cursor = cursor.Add(step * pageLimit)
			continue
		}
		next := time.UnixMilli(lastTS).Add(step)
		if !next.After(cursor) {
			next = cursor.Add(step * pageLimit)
		}
		cursor = next
	}

	return out, nil
}

// TickerPrice returns the current price for a symbol.
func (c *Client) TickerPrice(ctx context.Context, symbol string) (float64, error) {
	var ticker struct {
		Symbol string      `json:"symbol"`
		Price  json.Number `json:"price"`
	}
	err := c.fetchJSON(ctx, c.buildURL("/ticker/price", map[string]string{"symbol": symbol}), &ticker)
	if err != nil {
		return 0, err
	}
	return ticker.Price.Float64()
}

func (c *Client) buildURL(endpoint string, params map[string]string) string {
	u, err := url.Parse(c.baseURL + endpoint)
	if err != nil {
		return c.baseURL + endpoint
	}
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func (c *Client) fetchJSON(ctx context.Context, fullURL string, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("aster request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("aster status %d: %s", resp.StatusCode, string(b))
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	return dec.Decode(target)
}

// fetchKlines retrieves a Binance-style kline array:
// [ [openTime, "open", "high", "low", "close", "volume", closeTime, ...], ... ]
func (c *Client) fetchKlines(ctx context.Context, params map[string]string) ([][]any, error) {
	var raw [][]any
	if err := c.fetchJSON(ctx, c.buildURL("/klines", params), &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func klineRowToCandle(symbol, timeframe string, row []any) (*domain.Candle, bool) {
	if len(row) < 6 {
		return nil, false
	}
	ts, e1 := anyToInt64(row[0])
	open, e2 := anyToFloat(row[1])
	high, e3 := anyToFloat(row[2])
	low, e4 := anyToFloat(row[3])
	close, e5 := anyToFloat(row[4])
	volume, e6 := anyToFloat(row[5])
	if e1 != nil || e2 != nil || e3 != nil || e4 != nil || e5 != nil || e6 != nil {
		return nil, false
	}
	return &domain.Candle{
		Symbol:      symbol,
		Timeframe:   timeframe,
		TimestampMs: ts,
		Open:        open,
		High:        high,
		Low:         low,
		Close:       close,
		Volume:      volume,
	}, true
}

func timeframeDuration(timeframe string) (time.Duration, error) {
	switch timeframe {
	case "1m":
		return time.Minute, nil
	case "5m":
		return 5 * time.Minute, nil
	case "15m":
		return 15 * time.Minute, nil
	case "1h":
		return time.Hour, nil
	case "4h":
		return 4 * time.Hour, nil
	case domain.TimeframeDay:
		return 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("unsupported timeframe: %s", timeframe)
	}
}

// Helpers to parse Aster's mixed-type JSON arrays safely.
func anyToFloat(x any) (float64, error) {
	switch t := x.(type) {
	case string:
		return strconv.ParseFloat(t, 64)
	case float64:
		return t, nil
	case json.Number:
		return t.Float64()
	default:
		return 0, fmt.Errorf("unexpected number type %T", x)
	}
}

func anyToInt64(x any) (int64, error) {
	switch t := x.(type) {
	case string:
		return strconv.ParseInt(t, 10, 64)
	case float64:
		return int64(t), nil
	case json.Number:
		return t.Int64()
	default:
		return 0, fmt.Errorf("unexpected int type %T", x)
	}
}
