package service

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/lzscott112ncdm-cmyk/domain-sales-backend/internal/domain"
)

// CreatePayload is a validated create request.
type CreatePayload struct {
	DomainName     string
	PriceUSD       decimal.Decimal
	PriceBRL       *decimal.Decimal
	WhatsappNumber string
	AfternicURL    string
	Active         *bool
}

// UpdatePayload is a validated partial update. Nil means "no change".
type UpdatePayload struct {
	DomainName     *string
	PriceUSD       *decimal.Decimal
	PriceBRL       *decimal.Decimal
	WhatsappNumber *string
	AfternicURL    *string
	Active         *bool
}

func (p UpdatePayload) changes() domain.ListingChanges {
	return domain.ListingChanges{
		DomainName:     p.DomainName,
		PriceUSD:       p.PriceUSD,
		PriceBRL:       p.PriceBRL,
		WhatsappNumber: p.WhatsappNumber,
		AfternicURL:    p.AfternicURL,
		Active:         p.Active,
	}
}

// Validation is the outcome of checking a payload.
type Validation struct {
	Valid  bool
	Errors []string
}

// Fields is a decoded JSON object, one raw value per key.
type Fields map[string]json.RawMessage

// DecodeFields decodes body as a JSON object.
func DecodeFields(body []byte) (Fields, error) {
	var f Fields
	if err := json.Unmarshal(body, &f); err != nil || f == nil {
		return nil, &ValidationError{Details: []string{"request body must be a JSON object"}}
	}
	return f, nil
}

func ValidateCreate(f Fields) Validation {
	_, errs := readCreate(f)
	return Validation{Valid: len(errs) == 0, Errors: errs}
}

func ValidateUpdate(f Fields) Validation {
	_, errs := readUpdate(f)
	return Validation{Valid: len(errs) == 0, Errors: errs}
}

// ParseCreate decodes and validates a create body.
func ParseCreate(body []byte) (CreatePayload, error) {
	f, err := DecodeFields(body)
	if err != nil {
		return CreatePayload{}, err
	}
	p, errs := readCreate(f)
	if len(errs) > 0 {
		return CreatePayload{}, &ValidationError{Details: errs}
	}
	return p, nil
}

// ParseUpdate decodes and validates a partial update body.
func ParseUpdate(body []byte) (UpdatePayload, error) {
	f, err := DecodeFields(body)
	if err != nil {
		return UpdatePayload{}, err
	}
	p, errs := readUpdate(f)
	if len(errs) > 0 {
		return UpdatePayload{}, &ValidationError{Details: errs}
	}
	return p, nil
}

// ParseID accepts base-10 integers in 1..MaxInt64, the range of a bigint key.
func ParseID(raw string) (uint64, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 63)
	if err != nil || id == 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}

func readCreate(f Fields) (CreatePayload, []string) {
	r := reader{f: f}
	var p CreatePayload
	if s := r.requiredString("domain_name"); s != nil {
		p.DomainName = *s
	}
	if d := r.positive("price_usd", true); d != nil {
		p.PriceUSD = *d
	}
	if s := r.requiredString("whatsapp_number"); s != nil {
		p.WhatsappNumber = *s
	}
	if s := r.requiredString("afternic_url"); s != nil {
		p.AfternicURL = *s
	}
	p.PriceBRL = r.amount("price_brl")
	p.Active = r.boolean("active")
	return p, r.errs
}

func readUpdate(f Fields) (UpdatePayload, []string) {
	r := reader{f: f}
	p := UpdatePayload{
		DomainName:     r.optionalString("domain_name"),
		PriceUSD:       r.positive("price_usd", false),
		WhatsappNumber: r.optionalString("whatsapp_number"),
		AfternicURL:    r.optionalString("afternic_url"),
		PriceBRL:       r.amount("price_brl"),
		Active:         r.boolean("active"),
	}
	return p, r.errs
}

type reader struct {
	f    Fields
	errs []string
}

func (r *reader) fail(msg string) { r.errs = append(r.errs, msg) }

func (r *reader) lookup(name string) (json.RawMessage, bool) {
	v, ok := r.f[name]
	if !ok {
		return nil, false
	}
	return bytes.TrimSpace(v), true
}

func isNull(v json.RawMessage) bool { return bytes.Equal(v, []byte("null")) }

func decodeString(v json.RawMessage) (string, bool) {
	if len(v) == 0 || v[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", false
	}
	return s, true
}

func decodeNumber(v json.RawMessage) (decimal.Decimal, bool) {
	if len(v) == 0 || (v[0] != '-' && (v[0] < '0' || v[0] > '9')) {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(string(v))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

const maxFractionDigits = 20

// storable explains why d does not fit a price column, or returns "".
// Exponents are bounded before any comparison so that inputs like 1e3000000
// are never rescaled.
func storable(name string, d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	exp := d.Exponent()
	if exp > 14-domain.PriceScale || (exp >= -maxFractionDigits && d.Abs().GreaterThanOrEqual(domain.MaxPrice)) {
		return name + " must be less than " + domain.MaxPrice.String()
	}
	if exp < -maxFractionDigits || !d.Equal(d.Round(domain.PriceScale)) {
		return name + " must have at most 2 decimal places"
	}
	return ""
}

func (r *reader) requiredString(name string) *string {
	v, ok := r.lookup(name)
	if !ok {
		r.fail(name + " is required and must be a string")
		return nil
	}
	s, ok := decodeString(v)
	if !ok || strings.TrimSpace(s) == "" {
		r.fail(name + " is required and must be a string")
		return nil
	}
	return &s
}

func (r *reader) optionalString(name string) *string {
	v, ok := r.lookup(name)
	if !ok {
		return nil
	}
	s, ok := decodeString(v)
	if !ok || strings.TrimSpace(s) == "" {
		r.fail(name + " must be a non-empty string")
		return nil
	}
	return &s
}

func (r *reader) positive(name string, required bool) *decimal.Decimal {
	v, ok := r.lookup(name)
	if !ok {
		if required {
			r.fail(name + " is required and must be a positive number")
		}
		return nil
	}
	d, ok := decodeNumber(v)
	if !ok || !d.IsPositive() {
		if required {
			r.fail(name + " is required and must be a positive number")
		} else {
			r.fail(name + " must be a positive number")
		}
		return nil
	}
	if msg := storable(name, d); msg != "" {
		r.fail(msg)
		return nil
	}
	return &d
}

// amount reads an optional explicit price. null counts as absent.
func (r *reader) amount(name string) *decimal.Decimal {
	v, ok := r.lookup(name)
	if !ok || isNull(v) {
		return nil
	}
	d, ok := decodeNumber(v)
	if !ok || d.IsNegative() {
		r.fail(name + " must be a non-negative number")
		return nil
	}
	if msg := storable(name, d); msg != "" {
		r.fail(msg)
		return nil
	}
	return &d
}

func (r *reader) boolean(name string) *bool {
	v, ok := r.lookup(name)
	if !ok {
		return nil
	}
	var b bool
	if len(v) == 0 || (v[0] != 't' && v[0] != 'f') || json.Unmarshal(v, &b) != nil {
		r.fail(name + " must be a boolean")
		return nil
	}
	return &b
}
