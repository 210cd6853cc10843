package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrListingNotFound  = errors.New("listing not found")
	ErrDuplicateListing = errors.New("listing domain_name already exists")
)

// Prices are stored as decimal(14,2): at most PriceScale decimal places and
// strictly below MaxPrice.
const PriceScale = 2

var MaxPrice = decimal.New(1, 14-PriceScale)

// Listing is a domain name offered for sale.
type Listing struct {
	ID             uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	DomainName     string          `gorm:"column:domain_name;uniqueIndex;size:253;not null" json:"domain_name"`
	PriceUSD       decimal.Decimal `gorm:"column:price_usd;type:decimal(14,2);not null" json:"price_usd"`
	PriceBRL       decimal.Decimal `gorm:"column:price_brl;type:decimal(14,2);not null" json:"price_brl"`
	WhatsappNumber string          `gorm:"column:whatsapp_number;size:32;not null" json:"whatsapp_number"`
	AfternicURL    string          `gorm:"column:afternic_url;size:512;not null" json:"afternic_url"`
	Active         bool            `gorm:"column:active;not null;index" json:"active"` // no gorm default: false must survive Create
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
}

func (Listing) TableName() string { return "domains" }

// ListingChanges is a partial update. Nil fields are left untouched.
type ListingChanges struct {
	DomainName     *string
	PriceUSD       *decimal.Decimal
	PriceBRL       *decimal.Decimal
	WhatsappNumber *string
	AfternicURL    *string
	Active         *bool
}

func (c ListingChanges) Empty() bool {
	return c.DomainName == nil && c.PriceUSD == nil && c.PriceBRL == nil &&
		c.WhatsappNumber == nil && c.AfternicURL == nil && c.Active == nil
}

// Columns maps the supplied fields to column names.
func (c ListingChanges) Columns() map[string]any {
	m := map[string]any{}
	if c.DomainName != nil {
		m["domain_name"] = *c.DomainName
	}
	if c.PriceUSD != nil {
		m["price_usd"] = *c.PriceUSD
	}
	if c.PriceBRL != nil {
		m["price_brl"] = *c.PriceBRL
	}
	if c.WhatsappNumber != nil {
		m["whatsapp_number"] = *c.WhatsappNumber
	}
	if c.AfternicURL != nil {
		m["afternic_url"] = *c.AfternicURL
	}
	if c.Active != nil {
		m["active"] = *c.Active
	}
	return m
}

// Apply copies the supplied fields onto l.
func (c ListingChanges) Apply(l *Listing) {
	if c.DomainName != nil {
		l.DomainName = *c.DomainName
	}
	if c.PriceUSD != nil {
		l.PriceUSD = *c.PriceUSD
	}
	if c.PriceBRL != nil {
		l.PriceBRL = *c.PriceBRL
	}
	if c.WhatsappNumber != nil {
		l.WhatsappNumber = *c.WhatsappNumber
	}
	if c.AfternicURL != nil {
		l.AfternicURL = *c.AfternicURL
	}
	if c.Active != nil {
		l.Active = *c.Active
	}
}

// ListingRepository is the store contract. Implementations return
// ErrListingNotFound and ErrDuplicateListing (possibly wrapped) for the
// corresponding store conditions.
type ListingRepository interface {
	Create(ctx context.Context, l *Listing) error
	Update(ctx context.Context, id uint64, ch ListingChanges) (*Listing, error)
	ListActive(ctx context.Context) ([]Listing, error)
	FindActiveByName(ctx context.Context, name string) (*Listing, error)
	FindAll(ctx context.Context) ([]Listing, error)
}
