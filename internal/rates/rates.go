// Package rates provides the USD→BRL multiplier used to derive BRL prices.
package rates

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	PolicyFixed = "fixed"
	PolicyLive  = "live"
)

// DefaultFallback is the rate used when nothing else is configured.
var DefaultFallback = decimal.RequireFromString("5.5")

// ErrLookup wraps every failure of a remote rate lookup.
var ErrLookup = errors.New("rate lookup failed")

// Provider returns how many BRL one USD buys.
type Provider interface {
	USDToBRL(ctx context.Context) (decimal.Decimal, error)
}

// Fixed always answers with the same rate.
type Fixed struct{ Rate decimal.Decimal }

func NewFixed(rate decimal.Decimal) Fixed { return Fixed{Rate: rate} }

func (f Fixed) USDToBRL(context.Context) (decimal.Decimal, error) { return f.Rate, nil }

type Options struct {
	Policy    string
	Fixed     decimal.Decimal
	URL       string
	AccessKey string
	TimeoutMs int
}

// New builds the provider selected by o.Policy. The choice is made once per
// process and applies to every conversion.
func New(o Options, l *zap.Logger) (Provider, error) {
	fallback := o.Fixed
	if !fallback.IsPositive() {
		fallback = DefaultFallback
	}
	switch o.Policy {
	case "", PolicyFixed:
		return NewFixed(fallback), nil
	case PolicyLive:
		return NewLive(LiveOptions{
			URL:       o.URL,
			AccessKey: o.AccessKey,
			TimeoutMs: o.TimeoutMs,
			Fallback:  fallback,
		}, l), nil
	default:
		return nil, fmt.Errorf("unknown rate policy %q", o.Policy)
	}
}
