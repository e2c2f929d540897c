package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"onlinestore/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// CSVImporter reads catalog CSV exports and inserts/updates products.
type CSVImporter struct {
	reader      *csv.Reader
	productRepo ProductWriter
}

func NewCSVImporter(r io.Reader, repo ProductWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:      csvr,
		productRepo: repo,
	}
}

var requiredHeaders = []string{"id", "title", "price"}

// Scales of products.price and products.discount.
const (
	priceScale    = 2
	discountScale = 4
)

// Run parses CSV rows and upserts one product per row. It stops at the
// first invalid row and reports its line number.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	for _, h := range requiredHeaders {
		if _, ok := index[h]; !ok {
			return 0, fmt.Errorf("missing column %q", h)
		}
	}

	imported := 0
	line := 1
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}
		if blank(record) {
			continue
		}

		product, err := parseRow(record, index)
		if err != nil {
			return imported, fmt.Errorf("line %d: %w", line, err)
		}
		if _, err := i.productRepo.Upsert(ctx, product); err != nil {
			return imported, fmt.Errorf("upsert product %d: %w", product.ID, err)
		}
		imported++
	}

	return imported, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) (domain.Product, error) {
	idStr := pick(record, index, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return domain.Product{}, fmt.Errorf("invalid id %q", idStr)
	}
	title := pick(record, index, "title")
	if title == "" {
		return domain.Product{}, fmt.Errorf("product %d: title required", id)
	}
	priceStr := pick(record, index, "price")
	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return domain.Product{}, fmt.Errorf("product %d: invalid price %q", id, priceStr)
	}
	if !fitsScale(price, priceScale) {
		return domain.Product{}, fmt.Errorf("product %d: price %q has more than %d decimal places", id, priceStr, priceScale)
	}

	in := domain.ProductInput{
		ID:          id,
		Title:       title,
		Price:       price,
		Description: pick(record, index, "description"),
		Category:    pick(record, index, "category"),
		ImageURL:    pick(record, index, "image"),
	}
	if raw := pick(record, index, "discount"); raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return domain.Product{}, fmt.Errorf("product %d: invalid discount %q", id, raw)
		}
		if !fitsScale(d, discountScale) {
			return domain.Product{}, fmt.Errorf("product %d: discount %q has more than %d decimal places", id, raw, discountScale)
		}
		in.Discount = &d
	}
	p, err := domain.NewProduct(in)
	if err != nil {
		return domain.Product{}, fmt.Errorf("product %d: %w", id, err)
	}
	return p, nil
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// fitsScale reports whether d survives rounding to places digits unchanged.
func fitsScale(d decimal.Decimal, places int32) bool {
	return d.Equal(d.Round(places))
}
