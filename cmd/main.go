// Command papertrade runs a single-account trading simulator. It serves a
// small web UI by default, or an interactive terminal session with
// --interactive.
//
// Usage:
//
//	papertrade --config config.yaml
//	papertrade --platform static --deposit 1000 --listen :8080
//	papertrade --interactive
//
// The static platform prices AAPL, TSLA and GOOGL from a fixed table; the
// binance and bybit platforms fetch live prices from the exchanges' public
// APIs without keys, and hyperliquid needs HYPERLIQUID_PRIVATE_KEY set.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	binance "github.com/adshao/go-binance/v2"
	bybit "github.com/hirokisan/bybit/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/user/papertrade/config"
	"github.com/user/papertrade/internal/clients"
	"github.com/user/papertrade/internal/services/account"
	"github.com/user/papertrade/internal/services/pricer"
	"github.com/user/papertrade/internal/setup"
	"github.com/user/papertrade/internal/storage/snapshots"
	"github.com/user/papertrade/internal/web"
)

const hyperliquidAPIURL = "https://api.hyperliquid.xyz"

func main() {
	cfg, err := config.Get()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	priceSource, err := newPricer(cfg)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Interactive {
		if err := setup.RunTUI(ctx, priceSource, logger); err != nil {
			log.Fatal(err)
		}
		return
	}

	acct, err := account.New(cfg.InitialDeposit, priceSource, logger)
	if err != nil {
		log.Fatal(err)
	}

	store := snapshots.NewStore(0)
	server := web.NewServer(cfg.ListenAddr, priceSource, acct, store, logger)

	if len(cfg.TLSDomains) > 0 {
		err = server.StartWithAutoTLS(ctx, cfg.TLSDomains, cfg.TLSCacheDir)
	} else {
		err = server.Start(ctx)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func newPricer(cfg config.Config) (account.Pricer, error) {
	switch cfg.Platform {
	case config.PlatformBinance:
		return pricer.NewBinance(binance.NewClient("", "")), nil
	case config.PlatformBybit:
		return pricer.NewBybit(bybit.NewClient()), nil
	case config.PlatformHyperliquid:
		key := os.Getenv("HYPERLIQUID_PRIVATE_KEY")
		if key == "" {
			return nil, errors.New("HYPERLIQUID_PRIVATE_KEY environment variable must be set")
		}
		client, err := clients.NewHyperliquidClient(key, hyperliquidAPIURL)
		if err != nil {
			return nil, err
		}
		return pricer.NewHyperliquid(client.Exchange().Info()), nil
	default:
		return pricer.NewStatic(cfg.Prices), nil
	}
}
