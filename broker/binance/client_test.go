package binance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{
		Symbol:    "ETHUSDT",
		APIKey:    "k",
		APISecret: "s",
		BaseURL:   srv.URL,
	})
	require.NoError(t, err)
	return c
}

func TestNewClientRequiresCredentials(t *testing.T) {
	t.Parallel()

	_, err := NewClient(Config{Symbol: "ETHUSDT"})
	assert.ErrorContains(t, err, "credentials")

	_, err = NewClient(Config{APIKey: "k", APISecret: "s"})
	assert.ErrorContains(t, err, "symbol")
}

func TestCandlesParsesKlines(t *testing.T) {
	t.Parallel()

	payload := `[
		[1714553700000,"2000.10","2010.00","1995.50","2005.25","120.5",1714553759999,"0",10,"0","0","0"],
		[1714553760000,"2005.25","2012.00","2001.00","2008.75","98.1",1714553819999,"0",8,"0","0","0"]
	]`
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fapi/v1/klines", r.URL.Path)
		assert.Equal(t, "ETHUSDT", r.URL.Query().Get("symbol"))
		assert.Equal(t, "5m", r.URL.Query().Get("interval"))
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		w.Write([]byte(payload))
	})

	candles, err := c.Candles(context.Background(), "5m", 50)
	require.NoError(t, err)
	require.Len(t, candles, 2)

	first := candles[0]
	assert.Equal(t, time.UnixMilli(1714553700000).UTC(), first.Timestamp)
	assert.Equal(t, 2000.10, first.Open)
	assert.Equal(t, 2010.00, first.High)
	assert.Equal(t, 1995.50, first.Low)
	assert.Equal(t, 2005.25, first.Close)
	assert.Equal(t, 120.5, first.Volume)
	assert.NoError(t, first.Validate())
}

func TestCandlesRejectsBadTimeframe(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	_, err := c.Candles(context.Background(), "7m", 50)
	assert.Error(t, err)
}

func TestCandlesSurfacesHTTPError(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "teapot", http.StatusTeapot)
	})
	_, err := c.Candles(context.Background(), "1m", 10)
	assert.ErrorContains(t, err, "418")
}

func TestLastPriceREST(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fapi/v1/ticker/price", r.URL.Path)
		w.Write([]byte(`{"symbol":"ETHUSDT","price":"3414.15"}`))
	})

	px, err := c.LastPrice(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3414.15, px)
}

func TestLastPricePrefersFreshStream(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("REST fallback should not be hit while the stream is fresh")
	})

	s := NewPriceStream("ETHUSDT", time.Minute)
	s.mu.Lock()
	s.last = 2999.5
	s.lastTime = time.Now()
	s.mu.Unlock()
	c.AttachStream(s)

	px, err := c.LastPrice(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2999.5, px)
}

func TestStreamStaleTickFallsBack(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"symbol":"ETHUSDT","price":"3000.00"}`))
	})

	s := NewPriceStream("ETHUSDT", time.Millisecond)
	s.mu.Lock()
	s.last = 1.0
	s.lastTime = time.Now().Add(-time.Second)
	s.mu.Unlock()
	c.AttachStream(s)

	px, err := c.LastPrice(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3000.0, px)
}
