package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lzscott112ncdm-cmyk/domain-sales-backend/internal/rates"
)

type failingRates struct{ err error }

func (f failingRates) USDToBRL(context.Context) (decimal.Decimal, error) {
	return decimal.Zero, f.err
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestConvertUSD(t *testing.T) {
	tests := []struct{ usd, rate, want string }{
		{"100", "5.5", "550"},
		{"12500", "5.5", "68750"},
		{"0.01", "5.5", "0.06"}, // 0.055 rounds half-up
		{"1.23", "5.4321", "6.68"},
		{"19.99", "5.05", "100.95"},
	}
	for _, tt := range tests {
		got := ConvertUSD(d(tt.usd), d(tt.rate))
		assert.True(t, got.Equal(d(tt.want)), "%s*%s = %s, want %s", tt.usd, tt.rate, got, tt.want)
	}
}

func TestPricer(t *testing.T) {
	ctx := context.Background()
	p := NewPricer(rates.NewFixed(d("5.5")))

	got, err := p.BRL(ctx, d("100"))
	require.NoError(t, err)
	assert.Equal(t, "550", got.String())

	explicit := d("999")
	got, err = p.resolveBRL(ctx, d("100"), &explicit)
	require.NoError(t, err)
	assert.Equal(t, "999", got.String())

	boom := errors.New("boom")
	_, err = NewPricer(failingRates{err: boom}).BRL(ctx, d("1"))
	assert.ErrorIs(t, err, ErrRateLookup)
	assert.ErrorIs(t, err, boom)

	_, err = p.BRL(ctx, d("999999999999.99"))
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{"price_usd is too large to derive price_brl"}, ve.Details)
}
