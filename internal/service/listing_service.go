package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/lzscott112ncdm-cmyk/domain-sales-backend/internal/domain"
	"github.com/lzscott112ncdm-cmyk/domain-sales-backend/internal/rates"
)

type ListingService struct {
	repo   domain.ListingRepository
	pricer Pricer
	log    *zap.Logger
}

func NewListingService(repo domain.ListingRepository, rp rates.Provider, l *zap.Logger) *ListingService {
	if l == nil {
		l = zap.NewNop()
	}
	return &ListingService{repo: repo, pricer: NewPricer(rp), log: l}
}

// storeErr keeps NotFound/Duplicate recognisable and folds everything else
// into ErrPersistence.
func storeErr(op string, err error) error {
	if errors.Is(err, domain.ErrListingNotFound) || errors.Is(err, domain.ErrDuplicateListing) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}

func (s *ListingService) Create(ctx context.Context, in CreatePayload) (*domain.Listing, error) {
	brl, err := s.pricer.resolveBRL(ctx, in.PriceUSD, in.PriceBRL)
	if err != nil {
		return nil, err
	}
	active := true
	if in.Active != nil {
		active = *in.Active
	}
	l := &domain.Listing{
		DomainName:     in.DomainName,
		PriceUSD:       in.PriceUSD,
		PriceBRL:       brl,
		WhatsappNumber: in.WhatsappNumber,
		AfternicURL:    in.AfternicURL,
		Active:         active,
	}
	if err := s.repo.Create(ctx, l); err != nil {
		return nil, storeErr("create listing", err)
	}
	s.log.Info("listing created",
		zap.Uint64("id", l.ID),
		zap.String("domain", l.DomainName),
		zap.String("price_usd", l.PriceUSD.String()),
		zap.String("price_brl", l.PriceBRL.String()),
		zap.Bool("brl_derived", in.PriceBRL == nil),
	)
	return l, nil
}

// Update applies a partial update. BRL is re-derived only when the USD price
// changes and no explicit BRL price accompanies it.
func (s *ListingService) Update(ctx context.Context, id uint64, in UpdatePayload) (*domain.Listing, error) {
	if id == 0 {
		return nil, ErrInvalidID
	}
	ch := in.changes()
	if in.PriceUSD != nil && in.PriceBRL == nil {
		brl, err := s.pricer.BRL(ctx, *in.PriceUSD)
		if err != nil {
			return nil, err
		}
		ch.PriceBRL = &brl
	}
	l, err := s.repo.Update(ctx, id, ch)
	if err != nil {
		return nil, storeErr("update listing", err)
	}
	s.log.Info("listing updated", zap.Uint64("id", id), zap.Any("fields", fieldNames(ch)))
	return l, nil
}

// Deactivate is the soft delete: only the active flag changes.
func (s *ListingService) Deactivate(ctx context.Context, id uint64) (*domain.Listing, error) {
	if id == 0 {
		return nil, ErrInvalidID
	}
	inactive := false
	l, err := s.repo.Update(ctx, id, domain.ListingChanges{Active: &inactive})
	if err != nil {
		return nil, storeErr("deactivate listing", err)
	}
	s.log.Info("listing deactivated", zap.Uint64("id", id), zap.String("domain", l.DomainName))
	return l, nil
}

// ListActive returns active listings, newest first.
func (s *ListingService) ListActive(ctx context.Context) ([]domain.Listing, error) {
	ls, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, storeErr("list listings", err)
	}
	if ls == nil {
		ls = []domain.Listing{}
	}
	return ls, nil
}

func (s *ListingService) GetActiveByName(ctx context.Context, name string) (*domain.Listing, error) {
	l, err := s.repo.FindActiveByName(ctx, name)
	if err != nil {
		return nil, storeErr("get listing", err)
	}
	return l, nil
}

type RepriceResult struct {
	ID         uint64          `json:"id"`
	DomainName string          `json:"domain_name"`
	OldBRL     decimal.Decimal `json:"old_price_brl"`
	NewBRL     decimal.Decimal `json:"new_price_brl"`
}

// Reprice re-derives the BRL price of every listing, active or not, from one
// rate lookup. Only changed listings are written unless dryRun is set.
func (s *ListingService) Reprice(ctx context.Context, dryRun bool) ([]RepriceResult, error) {
	all, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, storeErr("load listings", err)
	}
	rate, err := s.pricer.rates.USDToBRL(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRateLookup, err)
	}
	var out []RepriceResult
	for _, l := range all {
		if !l.PriceUSD.IsPositive() {
			continue
		}
		brl := ConvertUSD(l.PriceUSD, rate)
		if brl.GreaterThanOrEqual(domain.MaxPrice) {
			s.log.Warn("reprice skipped, price_brl out of range", zap.String("domain", l.DomainName), zap.String("price_brl", brl.String()))
			continue
		}
		if brl.Equal(l.PriceBRL) {
			continue
		}
		out = append(out, RepriceResult{ID: l.ID, DomainName: l.DomainName, OldBRL: l.PriceBRL, NewBRL: brl})
		if dryRun {
			continue
		}
		if _, err := s.repo.Update(ctx, l.ID, domain.ListingChanges{PriceBRL: &brl}); err != nil {
			return out, storeErr("reprice listing", err)
		}
		s.log.Info("listing repriced", zap.String("domain", l.DomainName), zap.String("price_brl", brl.String()))
	}
	return out, nil
}

// SeedListings are the example listings used to bootstrap an empty store.
func SeedListings() []CreatePayload {
	mk := func(name string, usd, brl int64) CreatePayload {
		b := decimal.NewFromInt(brl)
		on := true
		return CreatePayload{
			DomainName:     name,
			PriceUSD:       decimal.NewFromInt(usd),
			PriceBRL:       &b,
			WhatsappNumber: "+5521999998888",
			AfternicURL:    "https://www.afternic.com/domain/" + name,
			Active:         &on,
		}
	}
	return []CreatePayload{
		mk("techstartup.com", 5000, 27500),
		mk("airevolution.com", 12500, 68750),
		mk("cryptotrader.com", 8750, 48125),
	}
}

// Seed creates the given listings; names that already exist are skipped.
func (s *ListingService) Seed(ctx context.Context, items []CreatePayload) (int, error) {
	created := 0
	for _, it := range items {
		_, err := s.Create(ctx, it)
		switch {
		case errors.Is(err, domain.ErrDuplicateListing):
			s.log.Info("seed skipped existing listing", zap.String("domain", it.DomainName))
		case err != nil:
			return created, err
		default:
			created++
		}
	}
	return created, nil
}

func fieldNames(ch domain.ListingChanges) []string {
	cols := ch.Columns()
	names := make([]string, 0, len(cols))
	for k := range cols {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
