package module

import (
	"time"

	"cardrelay/internal/core/pricing"
	"cardrelay/internal/core/shard"
	"cardrelay/internal/platform/config"
)

// Options controls the identifier resolver
type Options struct {
	Mirrors      []string
	MirrorsFile  string
	ProbeTimeout time.Duration
	Band         int
	ImageExt     string
	MetadataURL  string
	Currency     string
	Order        pricing.Order
	WindowMonths int
	UserAgent    string
}

// FromConfig reads with MARKET_ prefix. A mirrors file wins over the CSV list
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("MARKET_")
	return Options{
		Mirrors:      c.MayCSV("MIRRORS", shard.DefaultHosts()),
		MirrorsFile:  c.MayString("MIRRORS_FILE", ""),
		ProbeTimeout: c.MayDuration("PROBE_TIMEOUT", 2*time.Second),
		Band:         c.MayInt("PROBE_BAND", 1),
		ImageExt:     c.MayEnum("IMAGE_EXT", "jpg", "jpg", "webp"),
		MetadataURL:  c.MayString("METADATA_URL", "https://card.wb.ru/cards/v2/detail?dest=0&nm={id}"),
		Currency:     c.MayString("PRICE_CURRENCY", "RUB"),
		Order:        pricing.Order(c.MayEnum("PRICE_ORDER", string(pricing.OrderReverse), string(pricing.OrderReverse), string(pricing.OrderSource))),
		WindowMonths: c.MayInt("PRICE_WINDOW_MONTHS", pricing.DefaultWindowMonths),
		UserAgent:    c.MayString("USER_AGENT", "cardrelay/1.0"),
	}
}
