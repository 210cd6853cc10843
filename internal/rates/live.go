package rates

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const DefaultURL = "https://api.exchangerate.host/latest"

var fallbackTotal = prometheus.NewCounter(prometheus.CounterOpts{
	Name: "domain_sales_rate_fallback_total",
	Help: "Live USD/BRL lookups that fell back to the fixed rate",
})

func init() { prometheus.MustRegister(fallbackTotal) }

type LiveOptions struct {
	URL       string
	AccessKey string
	TimeoutMs int
	Fallback  decimal.Decimal
}

// Live queries a remote rate service on every call. Any failure is answered
// with the fallback rate, so USDToBRL never returns an error.
type Live struct {
	client    *resty.Client
	url       string
	accessKey string
	fallback  decimal.Decimal
	log       *zap.Logger
}

type latestResp struct {
	Rates map[string]decimal.Decimal `json:"rates"`
}

func NewLive(o LiveOptions, l *zap.Logger) *Live {
	if o.URL == "" {
		o.URL = DefaultURL
	}
	if o.TimeoutMs <= 0 {
		o.TimeoutMs = 3000
	}
	if !o.Fallback.IsPositive() {
		o.Fallback = DefaultFallback
	}
	if l == nil {
		l = zap.NewNop()
	}
	return &Live{
		client:    resty.New().SetTimeout(time.Duration(o.TimeoutMs) * time.Millisecond),
		url:       o.URL,
		accessKey: o.AccessKey,
		fallback:  o.Fallback,
		log:       l,
	}
}

func (p *Live) USDToBRL(ctx context.Context) (decimal.Decimal, error) {
	rate, err := p.Lookup(ctx)
	if err != nil {
		fallbackTotal.Inc()
		p.log.Warn("exchange rate lookup failed, using fallback",
			zap.Error(err), zap.String("fallback", p.fallback.String()))
		return p.fallback, nil
	}
	return rate, nil
}

// Lookup performs a single remote query without fallback.
func (p *Live) Lookup(ctx context.Context) (decimal.Decimal, error) {
	var out latestResp
	req := p.client.R().
		SetContext(ctx).
		SetQueryParam("base", "USD").
		SetQueryParam("symbols", "BRL").
		SetResult(&out)
	if p.accessKey != "" {
		req.SetQueryParam("access_key", p.accessKey)
	}
	resp, err := req.Get(p.url)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrLookup, err)
	}
	if resp.IsError() {
		return decimal.Zero, fmt.Errorf("%w: status %d", ErrLookup, resp.StatusCode())
	}
	rate, ok := out.Rates["BRL"]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: BRL rate not found in response", ErrLookup)
	}
	if !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: non-positive BRL rate %s", ErrLookup, rate)
	}
	return rate, nil
}
