// Package binance implements broker.MarketData against the Binance
// USD-M futures REST API, with an optional websocket mark-price stream.
package binance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"sarbot/market"
)

const fapiBaseURL = "https://fapi.binance.com"

// Config carries the client settings. APIKey and APISecret must be set
// even for read-only market data; a missing credential is a fatal
// configuration error.
type Config struct {
	Symbol    string // e.g. "ETHUSDT"
	APIKey    string
	APISecret string
	BaseURL   string        // override for tests; defaults to fapi.binance.com
	Timeout   time.Duration // HTTP timeout; defaults to 10s
}

type Client struct {
	symbol     string
	baseURL    string
	apiKey     string
	httpClient *http.Client
	stream     *PriceStream
}

// NewClient validates the configuration and returns a REST market data
// client. It does not perform network I/O.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Symbol == "" {
		return nil, errors.New("binance: symbol is required")
	}
	if cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, errors.New("binance: API credentials not set")
	}
	base := cfg.BaseURL
	if base == "" {
		base = fapiBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		symbol:  cfg.Symbol,
		baseURL: base,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Symbol returns the instrument this client serves.
func (c *Client) Symbol() string { return c.symbol }

// AttachStream wires a mark-price stream as the preferred source for
// LastPrice. REST remains the fallback when the stream has no fresh tick.
func (c *Client) AttachStream(s *PriceStream) { c.stream = s }

// Candles fetches up to limit most recent klines for the timeframe,
// ascending by open time.
func (c *Client) Candles(ctx context.Context, timeframe string, limit int) ([]market.Candle, error) {
	if !market.ValidTimeframe(timeframe) {
		return nil, fmt.Errorf("binance: unsupported timeframe %q", timeframe)
	}
	if limit <= 0 {
		limit = 50
	}

	q := url.Values{}
	q.Set("symbol", c.symbol)
	q.Set("interval", timeframe)
	q.Set("limit", strconv.Itoa(limit))

	var raw [][]any
	if err := c.getJSON(ctx, "/fapi/v1/klines", q, &raw); err != nil {
		return nil, err
	}

	out := make([]market.Candle, 0, len(raw))
	for _, k := range raw {
		if len(k) < 6 {
			return nil, fmt.Errorf("binance: malformed kline with %d fields", len(k))
		}
		out = append(out, market.Candle{
			Timestamp: time.UnixMilli(asInt64(k[0])).UTC(),
			Open:      asFloat(k[1]),
			High:      asFloat(k[2]),
			Low:       asFloat(k[3]),
			Close:     asFloat(k[4]),
			Volume:    asFloat(k[5]),
		})
	}
	return out, nil
}

// LastPrice returns the freshest known price: the websocket mark price
// when available, otherwise the REST ticker.
func (c *Client) LastPrice(ctx context.Context) (float64, error) {
	if c.stream != nil {
		if px, ok := c.stream.Last(); ok {
			return px, nil
		}
	}

	q := url.Values{}
	q.Set("symbol", c.symbol)

	var tick struct {
		Price string `json:"price"`
	}
	if err := c.getJSON(ctx, "/fapi/v1/ticker/price", q, &tick); err != nil {
		return 0, err
	}
	px, err := strconv.ParseFloat(tick.Price, 64)
	if err != nil {
		return 0, fmt.Errorf("binance: bad ticker price %q: %w", tick.Price, err)
	}
	return px, nil
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, dst any) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-MBX-APIKEY", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("binance: %s returned status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}

// Binance encodes kline prices as strings and timestamps as numbers.
func asFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case string:
		f, _ := strconv.ParseFloat(t, 64)
		return f
	default:
		return 0
	}
}

func asInt64(v any) int64 {
	switch t := v.(type) {
	case float64:
		return int64(t)
	case string:
		n, _ := strconv.ParseInt(t, 10, 64)
		return n
	default:
		return 0
	}
}
