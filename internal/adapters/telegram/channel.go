// Package telegram adapts the Telegram Bot API to the relay's NotificationChannel
// and feeds inbound group messages to its ingress
package telegram

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	perr "cardrelay/internal/platform/errors"
	"cardrelay/internal/platform/logger"
	"cardrelay/internal/platform/metrics"

	dom "cardrelay/internal/services/relay/domain"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const defaultPollTimeout = time.Minute

// Options configures the Channel
type Options struct {
	Token string
	// ServerURL overrides the Bot API endpoint, mostly for tests
	ServerURL string
	// PollTimeout is the long-poll window for getUpdates
	PollTimeout time.Duration
	// SkipGetMe skips the token check at construction
	SkipGetMe bool

	HTTP *http.Client
}

// Channel implements dom.NotificationChannel over the Bot API
type Channel struct {
	b       *bot.Bot
	ingress atomic.Pointer[ingressBox]
	met     *metrics.Metrics
	log     logger.Logger
}

type ingressBox struct{ port dom.IngressPort }

// New creates the bot client. Inbound updates are dropped until Bind is called
func New(o Options, met *metrics.Metrics) (*Channel, error) {
	if o.Token == "" {
		return nil, perr.InvalidArgf("telegram token is required")
	}
	if o.PollTimeout <= 0 {
		o.PollTimeout = defaultPollTimeout
	}

	c := &Channel{met: met, log: *logger.Named("telegram")}
	opts := []bot.Option{
		bot.WithDefaultHandler(c.onUpdate),
		bot.WithErrorsHandler(func(err error) {
			c.log.Warn().Err(err).Msg("telegram polling error")
		}),
	}
	if o.ServerURL != "" {
		opts = append(opts, bot.WithServerURL(o.ServerURL))
	}
	if o.SkipGetMe {
		opts = append(opts, bot.WithSkipGetMe())
	}
	if o.HTTP != nil {
		opts = append(opts, bot.WithHTTPClient(o.PollTimeout, o.HTTP))
	}

	b, err := bot.New(o.Token, opts...)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "telegram bot init failed")
	}
	c.b = b
	return c, nil
}

// Bind routes inbound messages to in
func (c *Channel) Bind(in dom.IngressPort) { c.ingress.Store(&ingressBox{port: in}) }

// Run long-polls for updates until ctx ends
func (c *Channel) Run(ctx context.Context) {
	c.log.Info().Msg("telegram polling started")
	c.b.Start(ctx)
	c.log.Info().Msg("telegram polling stopped")
}

func (c *Channel) onUpdate(ctx context.Context, _ *bot.Bot, u *models.Update) {
	if u == nil || u.Message == nil {
		c.met.UpdateReceived("ignored")
		return
	}
	box := c.ingress.Load()
	if box == nil {
		c.met.UpdateReceived("unbound")
		c.log.Debug().Int64("update_id", u.ID).Msg("update before ingress bound; dropped")
		return
	}
	m, ok := MapMessage(u.Message)
	if !ok {
		c.met.UpdateReceived("ignored")
		return
	}
	c.met.UpdateReceived("message")
	box.port.HandleMessage(ctx, m)
}
