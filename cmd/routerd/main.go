package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"math/big"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"swaprouter/config"
	"swaprouter/core/events"
	"swaprouter/core/types"
	"swaprouter/native/bank"
	"swaprouter/native/router"
	"swaprouter/native/token"
	"swaprouter/native/venue"
	"swaprouter/observability/logging"
	telemetry "swaprouter/observability/otel"
	"swaprouter/server"
	"swaprouter/storage"
)

// slogEmitter forwards engine events to the structured log.
type slogEmitter struct {
	logger *slog.Logger
}

func (e slogEmitter) Emit(evt events.Event) {
	if evt == nil {
		return
	}
	carrier, ok := evt.(interface{ Event() *types.Event })
	if !ok {
		e.logger.Info(evt.EventType())
		return
	}
	record := carrier.Event()
	if record == nil {
		return
	}
	attrs := make([]any, 0, len(record.Attributes)*2)
	for key, value := range record.Attributes {
		attrs = append(attrs, key, value)
	}
	e.logger.Info(record.Type, attrs...)
}

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "config.yaml", "path to routerd configuration file")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv("ROUTER_ENV"))
	logger := logging.Setup("routerd", env)

	otlpEndpoint := strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"))
	otlpHeaders := telemetry.ParseHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"))
	insecure := true
	if value := strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_INSECURE")); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			insecure = parsed
		}
	}
	shutdownTelemetry, err := telemetry.Init(context.Background(), telemetry.Config{
		ServiceName: "routerd",
		Environment: env,
		Endpoint:    otlpEndpoint,
		Insecure:    insecure,
		Headers:     otlpHeaders,
	})
	if err != nil {
		log.Fatalf("routerd: init telemetry: %v", err)
	}
	defer func() {
		if shutdownTelemetry != nil {
			_ = shutdownTelemetry(context.Background())
		}
	}()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("routerd: load config: %v", err)
	}

	store, err := storage.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("routerd: open storage: %v", err)
	}
	defer store.Close()

	engine := router.NewEngine(cfg.Custody.Bytes, store)
	engine.SetRequireQuoteAuth(cfg.RequireAuth)
	engine.SetEmitter(slogEmitter{logger: logger})

	bankLedger := bank.NewLedger()
	bankLedger.SetReceiveHook(cfg.Custody.Bytes, engine.AllowReceive)
	engine.SetBank(bankLedger)
	engine.AddSnapshotter(bankLedger)

	tokens := router.TokenMap{}
	for _, tc := range cfg.Tokens {
		ledger := token.NewLedger(token.Config{
			Name:     tc.Name,
			Symbol:   tc.Symbol,
			Decimals: tc.Decimals,
			ChainID:  big.NewInt(cfg.ChainID),
			Address:  tc.Address.Bytes,
			Style:    permitStyle(tc.PermitStyle),
		})
		for _, bal := range tc.Balances {
			amount, err := config.ParseAmount(bal.Amount)
			if err != nil {
				log.Fatalf("routerd: token %s balance: %v", tc.Symbol, err)
			}
			ledger.Mint(bal.Address.Bytes, amount)
		}
		tokens[tc.Address.Bytes] = ledger
		engine.AddSnapshotter(ledger)
	}
	engine.SetTokens(tokens)

	registry := venue.NewRegistry()
	for _, vc := range cfg.Venues {
		exchange := venue.NewExchange(vc.Address.Bytes, tokens, bankLedger)
		for _, rate := range vc.Rates {
			exchange.SetRate(rate.Sell.Bytes, rate.Buy.Bytes, big.NewRat(rate.Numerator, rate.Denominator))
		}
		for _, bal := range vc.Inventory {
			amount, err := config.ParseAmount(bal.Amount)
			if err != nil {
				log.Fatalf("routerd: venue inventory: %v", err)
			}
			if bal.Address.Bytes == router.NativeAsset {
				bankLedger.Mint(vc.Address.Bytes, amount)
				continue
			}
			ledger, ok := tokens[bal.Address.Bytes].(*token.Ledger)
			if !ok {
				log.Fatalf("routerd: venue inventory references unknown token %s", router.AddressHex(bal.Address.Bytes))
			}
			ledger.Mint(vc.Address.Bytes, amount)
		}
		registry.Register(vc.Address.Bytes, exchange)
	}
	engine.SetExecutor(registry)

	if err := engine.Bootstrap(cfg.Owner.Bytes); err != nil {
		log.Fatalf("routerd: bootstrap owner: %v", err)
	}
	for _, target := range cfg.Targets {
		if err := store.SetSwapTarget(target.Bytes, true); err != nil {
			log.Fatalf("routerd: seed target: %v", err)
		}
	}
	for _, signer := range cfg.Signers {
		if err := store.SetValidSigner(signer.Bytes, true); err != nil {
			log.Fatalf("routerd: seed signer: %v", err)
		}
	}

	srv, err := server.New(server.Config{
		ListenAddress: cfg.ListenAddress,
		AdminToken:    cfg.Admin.BearerToken,
		RateLimit: server.RateLimit{
			RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
			Burst:             cfg.RateLimit.Burst,
		},
		ShutdownGrace: cfg.ShutdownGrace.Duration,
	}, engine, logger)
	if err != nil {
		log.Fatalf("routerd: build server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("routerd starting",
		"listen", cfg.ListenAddress,
		"custody", router.AddressHex(cfg.Custody.Bytes),
		"tokens", len(cfg.Tokens),
		"venues", len(cfg.Venues),
	)
	if err := srv.Run(ctx); err != nil {
		log.Fatalf("routerd: serve: %v", err)
	}
	logger.Info("routerd stopped")
}

func permitStyle(raw string) token.PermitStyle {
	switch raw {
	case "standard":
		return token.PermitStyleStandard
	case "allowed":
		return token.PermitStyleAllowed
	default:
		return token.PermitStyleNone
	}
}
