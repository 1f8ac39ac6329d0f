// Command cardrelay-bot runs the chat relay: Telegram ingress, the sequential
// lookup queue and the optional ops API
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cardrelay/internal/adapters/telegram"
	"cardrelay/internal/modkit"
	"cardrelay/internal/modkit/module"
	"cardrelay/internal/modkit/repokit"
	"cardrelay/internal/platform/config"
	"cardrelay/internal/platform/logger"
	"cardrelay/internal/platform/metrics"
	phttp "cardrelay/internal/platform/net/http"
	"cardrelay/internal/platform/store"

	"cardrelay/internal/services/api"
	lookupdom "cardrelay/internal/services/lookup/domain"
	lookupmod "cardrelay/internal/services/lookup/module"
	relaydom "cardrelay/internal/services/relay/domain"
	relaymod "cardrelay/internal/services/relay/module"

	"github.com/joho/godotenv"
)

const serviceName = "cardrelay-bot"

func main() {
	// .env is optional; real env always wins
	_ = godotenv.Load()

	root := config.New()
	l := logger.Get()

	token := root.Prefix("TELEGRAM_").MayString("BOT_TOKEN", "")
	if token == "" {
		l.Fatal().Str("key", "TELEGRAM_BOT_TOKEN").Msg("missing required env")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, store.ConfigFromEnv(serviceName), store.WithLogger(*l))
	if err != nil {
		l.Fatal().Err(err).Msg("store.Open failed")
	}
	if st.PG != nil || st.Redis != nil {
		repokit.MustGuard(ctx, st)
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	met := metrics.New(nil).WithRuntime()
	deps := modkit.Deps{
		Log:     *l,
		Cfg:     root,
		PG:      st.PG,
		Redis:   st.Redis,
		Metrics: met,
	}

	lookup := lookupmod.New(deps, lookupmod.Options{})
	resolver := module.MustPortsOf[lookupdom.ResolverPort](lookup)

	tg := root.Prefix("TELEGRAM_")
	ch, err := telegram.New(telegram.Options{
		Token:       token,
		ServerURL:   tg.MayString("SERVER_URL", ""),
		PollTimeout: tg.MayDuration("POLL_TIMEOUT", time.Minute),
	}, met)
	if err != nil {
		l.Fatal().Err(err).Msg("telegram init failed")
	}

	relay := relaymod.New(ctx, deps, relaymod.Options{}, resolver, ch)
	ch.Bind(module.MustPortsOf[relaydom.IngressPort](relay))

	for _, m := range []modkit.Module{lookup, relay} {
		module.Register(m.Name(), m.Ports())
	}

	ops := root.Prefix("OPS_")
	if ops.MayBool("API_ENABLED", true) {
		srv := phttp.NewServer(ops)
		api.Mount(srv.Router(), api.Options{
			ServiceName: serviceName,
			Store:       st,
			Metrics:     met,
			Resolver:    module.MustFind[lookupdom.ResolverPort](lookup.Name()),
			Queue:       module.MustFind[relaydom.QueuePort](relay.Name()),
			CORSOrigins: ops.MayCSV("CORS_ORIGINS", nil),
			SlowRequest: ops.MayDuration("SLOW", 5*time.Second),
		})
		go func() {
			if err := srv.Run(ctx); err != nil {
				l.Error().Err(err).Msg("ops api stopped")
			}
		}()
	}

	ch.Run(ctx)

	l.Info().Dur("timeout", relay.Options().DrainTimeout).Msg("shutdown requested; draining queue")
	if err := relay.Drain(context.Background()); err != nil {
		l.Warn().Err(err).Msg("queue did not drain in time")
	}
}
