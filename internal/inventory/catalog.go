package inventory

import (
	"context"
	"errors"
	"strings"
)

var ErrUnknownBarcode = errors.New("unknown barcode")

// Catalog resolves a scanned barcode to a product. Resolution failing
// must abort the scan before anything is written.
type Catalog interface {
	Resolve(ctx context.Context, barcode string) (Product, error)
}

// NormalizeBarcode strips the per-batch suffix from hyphenated codes
// (e.g. "110650-2311164" keys on "110650"); plain UPC/EAN codes pass
// through unchanged.
func NormalizeBarcode(raw string) string {
	raw = strings.TrimSpace(raw)
	if code, _, ok := strings.Cut(raw, "-"); ok {
		return code
	}
	return raw
}

// BarcodeType classifies the symbology by length.
func BarcodeType(raw string) string {
	switch len(strings.TrimSpace(raw)) {
	case 8:
		return "EAN-8"
	case 12:
		return "UPC-A"
	case 13:
		return "EAN-13"
	case 14:
		return "GTIN-14"
	default:
		return "CODE-128"
	}
}

// StaticCatalog is a fixed barcode -> product name mapping.
type StaticCatalog map[string]string

func (c StaticCatalog) Resolve(_ context.Context, barcode string) (Product, error) {
	code := NormalizeBarcode(barcode)
	name, ok := c[code]
	if !ok {
		return Product{}, ErrUnknownBarcode
	}
	return Product{Barcode: code, Name: name}, nil
}

// DefaultMapping covers the codes the warehouses already label, so a
// fresh deployment resolves them before the products table is loaded.
var DefaultMapping = StaticCatalog{
	"110650":       "HN440",
	"856413007606": "Death Wish Coffee",
	"012345678905": "Widget",
}

// FallbackCatalog tries Primary first and falls back only on an unknown
// barcode; real lookup errors pass through.
type FallbackCatalog struct {
	Primary  Catalog
	Fallback Catalog
}

func (c FallbackCatalog) Resolve(ctx context.Context, barcode string) (Product, error) {
	p, err := c.Primary.Resolve(ctx, barcode)
	if errors.Is(err, ErrUnknownBarcode) && c.Fallback != nil {
		return c.Fallback.Resolve(ctx, barcode)
	}
	return p, err
}
