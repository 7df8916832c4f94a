// Package export writes extracted catalog rows to per-document CSV tables.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pricebook/pdf-catalog/internal/catalog"
)

// Columns is the fixed output column order.
var Columns = []string{
	"pdf", "page", "product_name", "sku", "variant",
	"unit", "price", "currency", "description", "image_path",
}

// utf8BOM makes spreadsheet tools pick UTF-8 when opening the table.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV writes the document's rows to <dir>/<name>.csv and returns the
// path actually written. If the destination cannot be opened, for example
// because a spreadsheet holds it locked, it retries once at <name>_new.csv;
// only a failure of both is an error. The caller is expected not to call
// this with zero rows.
func WriteCSV(dir, name string, rows []catalog.ProductRow) (string, error) {
	path := filepath.Join(dir, name+".csv")
	if err := writeCSVFile(path, rows); err != nil {
		altPath := filepath.Join(dir, name+"_new.csv")
		if altErr := writeCSVFile(altPath, rows); altErr != nil {
			return "", fmt.Errorf("cannot write table %s: %w", path, err)
		}
		return altPath, nil
	}
	return path, nil
}

func writeCSVFile(path string, rows []catalog.ProductRow) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(utf8BOM); err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if err := w.Write(Columns); err != nil {
		return err
	}
	for i := range rows {
		if err := w.Write(recordFor(&rows[i])); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	return f.Close()
}

func recordFor(r *catalog.ProductRow) []string {
	price := ""
	if r.Price != nil {
		price = strconv.FormatFloat(*r.Price, 'f', -1, 64)
	}
	return []string{
		r.PDF,
		strconv.Itoa(r.Page),
		r.ProductName,
		r.SKU,
		r.Variant,
		r.Unit,
		price,
		r.Currency,
		r.Description,
		r.ImagePath,
	}
}
