package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const fstreamBaseURL = "wss://fstream.binance.com/ws"

// PriceStream consumes the Binance futures mark-price websocket for one
// symbol and caches the most recent tick. It keeps only the last price
// rather than broadcasting every update; consumers poll Last() on their
// own schedule. On stream failure LastPrice
// falls back to REST.
type PriceStream struct {
	symbol  string
	wsURL   string
	maxAge  time.Duration
	dial    func(ctx context.Context, url string) (*websocket.Conn, error)

	mu       sync.Mutex
	last     float64
	lastTime time.Time
}

// NewPriceStream creates a stream for the given symbol (e.g. "ETHUSDT").
// maxAge bounds how long a cached tick counts as fresh; zero means 30s.
func NewPriceStream(symbol string, maxAge time.Duration) *PriceStream {
	if maxAge <= 0 {
		maxAge = 30 * time.Second
	}
	return &PriceStream{
		symbol: symbol,
		wsURL:  fmt.Sprintf("%s/%s@markPrice@1s", fstreamBaseURL, strings.ToLower(symbol)),
		maxAge: maxAge,
		dial: func(ctx context.Context, url string) (*websocket.Conn, error) {
			conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
			return conn, err
		},
	}
}

// Last returns the cached price and whether it is still fresh.
func (s *PriceStream) Last() (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastTime.IsZero() || time.Since(s.lastTime) > s.maxAge {
		return 0, false
	}
	return s.last, true
}

// Start runs the read loop in a goroutine, reconnecting with backoff
// until ctx is cancelled.
func (s *PriceStream) Start(ctx context.Context) {
	go func() {
		backoff := time.Second
		for {
			if err := s.connectAndRead(ctx); err != nil && ctx.Err() == nil {
				log.Printf("binance stream | %s: %v (reconnecting in %s)", s.symbol, err, backoff)
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
		}
	}()
}

func (s *PriceStream) connectAndRead(ctx context.Context) error {
	conn, err := s.dial(ctx, s.wsURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Close the socket when ctx ends so ReadMessage unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	log.Printf("binance stream | connected to %s mark price", s.symbol)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var evt struct {
			Event string `json:"e"`
			Price string `json:"p"`
			Time  int64  `json:"E"`
		}
		if err := json.Unmarshal(msg, &evt); err != nil {
			continue
		}
		if evt.Event != "markPriceUpdate" || evt.Price == "" {
			continue
		}
		px, err := strconv.ParseFloat(evt.Price, 64)
		if err != nil {
			continue
		}
		s.mu.Lock()
		s.last = px
		s.lastTime = time.Now()
		s.mu.Unlock()
	}
}
