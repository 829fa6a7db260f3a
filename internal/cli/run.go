package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"sarbot/broker/binance"
	"sarbot/config"
	"sarbot/engine"
	"sarbot/journal"
	"sarbot/ledger"
	"sarbot/notify"
	"sarbot/store"
	"sarbot/strategy"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the trading engine until interrupted",
	Long: `Run the paper-trading engine against live Binance futures market data.

Credentials come from the environment:
  BINANCE_API_KEY, BINANCE_SECRET        (required)
  TELEGRAM_BOT_TOKEN, TELEGRAM_CHAT_ID   (optional trade notifications)

Example:
  sarbot run -f sarbot.yaml`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if statePath != "" {
		cfg.StatePath = statePath
	}

	snap, err := store.NewSnapshot(cfg.StatePath)
	if err != nil {
		return fmt.Errorf("open state snapshot: %w", err)
	}
	state := snap.Load(ledger.DefaultState(cfg.StartBalance))

	jnl, err := journal.Open(cfg.Journal)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer jnl.Close()

	var sink ledger.Sink
	if cfg.TelegramToken != "" && cfg.TelegramChatID != "" {
		sink = notify.NewSink(notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID), 3, 2*time.Second)
	} else {
		log.Printf("cli | telegram not configured, trade notifications disabled")
	}

	led := ledger.New(ledger.Config{
		Leverage:     cfg.Leverage,
		RiskPercent:  cfg.RiskPercent,
		MaxTradeSize: cfg.MaxTradeSize,
		FeeRate:      cfg.FeeRate,
	}, state, snap, jnl, sink)

	client, err := binance.NewClient(binance.Config{
		Symbol:    cfg.Symbol,
		APIKey:    cfg.BinanceAPIKey,
		APISecret: cfg.BinanceAPISecret,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.UseStream {
		stream := binance.NewPriceStream(cfg.Symbol, 0)
		client.AttachStream(stream)
		go stream.Start(ctx)
	}

	fus := strategy.New(strategy.Config{
		Policy:  cfg.ExitPolicy,
		MinHold: cfg.MinHold.D(),
		MaxHold: cfg.MaxHold.D(),
	})

	eng := engine.New(engine.Config{
		SAR:          cfg.SAR.Indicator(),
		CandleLimit:  cfg.CandleLimit,
		TickInterval: cfg.TickInterval.D(),
		PriceBackoff: cfg.PriceBackoff.D(),
		ErrorBackoff: cfg.ErrorBackoff.D(),
		ResetBalance: cfg.StartBalance,
	}, client, led, fus)

	if err := eng.Start(); err != nil {
		return err
	}
	log.Printf("cli | trading %s, balance %.2f, %d prior trades", cfg.Symbol, state.Balance, len(state.Trades))

	<-ctx.Done()
	log.Printf("cli | shutting down")
	return eng.Stop()
}
