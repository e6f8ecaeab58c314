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

	"storefront/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// CSVImporter reads catalog exports and inserts/updates products keyed by SKU.
// Expected columns: sku, name, description, price, stock.
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

// Run parses CSV rows and upserts one product per row. Rows with a missing
// SKU or an unparsable price are skipped, not fatal.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	imported := 0
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}

		product, ok := parseRow(record, index)
		if !ok {
			continue
		}
		if _, err := i.productRepo.Upsert(ctx, product); err != nil {
			return imported, fmt.Errorf("upsert product %s: %w", product.SKU, err)
		}
		imported++
	}

	return imported, nil
}

func headerIndex(headers []string) map[string]int {
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return index
}

func field(record []string, index map[string]int, name string) string {
	i, ok := index[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func parseRow(record []string, index map[string]int) (domain.Product, bool) {
	sku := field(record, index, "sku")
	name := field(record, index, "name")
	if sku == "" || name == "" {
		return domain.Product{}, false
	}

	price, err := decimal.NewFromString(field(record, index, "price"))
	if err != nil || price.IsNegative() {
		return domain.Product{}, false
	}

	stock := 0
	if raw := field(record, index, "stock"); raw != "" {
		stock, err = strconv.Atoi(raw)
		if err != nil || stock < 0 {
			return domain.Product{}, false
		}
	}

	return domain.Product{
		SKU:         sku,
		Name:        name,
		Description: field(record, index, "description"),
		Price:       price,
		Stock:       stock,
		Active:      true,
	}, true
}
