package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/lzscott112ncdm-cmyk/domain-sales-backend/internal/domain"
	"github.com/lzscott112ncdm-cmyk/domain-sales-backend/internal/rates"
)

// ConvertUSD returns usd*rate rounded half-up to cents. Prices are positive,
// so decimal's half-away-from-zero rounding is half-up here.
func ConvertUSD(usd, rate decimal.Decimal) decimal.Decimal {
	return usd.Mul(rate).Round(2)
}

// Pricer derives BRL prices from USD prices.
type Pricer struct {
	rates rates.Provider
}

func NewPricer(p rates.Provider) Pricer { return Pricer{rates: p} }

func (p Pricer) BRL(ctx context.Context, usd decimal.Decimal) (decimal.Decimal, error) {
	rate, err := p.rates.USDToBRL(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %w", ErrRateLookup, err)
	}
	brl := ConvertUSD(usd, rate)
	if brl.GreaterThanOrEqual(domain.MaxPrice) {
		return decimal.Zero, &ValidationError{Details: []string{"price_usd is too large to derive price_brl"}}
	}
	return brl, nil
}

// resolveBRL returns the explicit price when given, else derives one.
func (p Pricer) resolveBRL(ctx context.Context, usd decimal.Decimal, explicit *decimal.Decimal) (decimal.Decimal, error) {
	if explicit != nil {
		return *explicit, nil
	}
	return p.BRL(ctx, usd)
}
