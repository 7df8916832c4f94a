package catalog

import (
	"strconv"
	"strings"
)

// ParseSegment heuristically parses one text segment into product rows.
// Every line matching the price pattern yields one row; lines that do not
// feed a shared description snippet. A segment with no price lines yields
// exactly one fallback row, so a non-empty segment never produces zero rows.
// Empty input yields nil.
func ParseSegment(text string) []ProductRow {
	lines := splitLines(text)
	if len(lines) == 0 {
		return nil
	}

	productName, sku := detectNameAndSKU(lines)

	var rows []ProductRow
	var descriptionLines []string

	for _, ln := range lines {
		if !priceRe.MatchString(ln) {
			descriptionLines = append(descriptionLines, ln)
			continue
		}

		currency, price := normalizePrice(ln)

		variant := priceRe.ReplaceAllString(ln, "")
		variant = strings.Trim(variant, " -:\t")
		variant = spaceRunRe.ReplaceAllString(variant, " ")

		unit := ""
		if m := unitRe.FindStringSubmatch(variant); m != nil {
			unit = m[1]
		}

		rows = append(rows, ProductRow{
			ProductName: productName,
			SKU:         sku,
			Variant:     variant,
			Unit:        unit,
			Price:       price,
			Currency:    currency,
		})
	}

	if len(rows) == 0 {
		// No price lines anywhere: one descriptive fallback row.
		return []ProductRow{{
			ProductName: productName,
			SKU:         sku,
			Description: truncate(strings.Join(lines, " "), descriptionLimit),
		}}
	}

	snippet := descriptionLines
	if len(snippet) > descriptionSnippetLines {
		snippet = snippet[:descriptionSnippetLines]
	}
	description := truncate(strings.Join(snippet, " "), descriptionLimit)
	for i := range rows {
		rows[i].Description = description
	}

	return rows
}

// splitLines returns the non-empty trimmed lines of a segment.
func splitLines(text string) []string {
	var lines []string
	for _, ln := range strings.Split(text, "\n") {
		if ln = strings.TrimSpace(ln); ln != "" {
			lines = append(lines, ln)
		}
	}
	return lines
}

// detectNameAndSKU scans the leading lines for a product name and SKU.
// The name is the first line with at least three letters, no more digits
// than half its length, and no table-header keywords; failing that, the
// first line verbatim. First match wins for both.
func detectNameAndSKU(lines []string) (name, sku string) {
	limit := len(lines)
	if limit > nameScanLines {
		limit = nameScanLines
	}

	for _, ln := range lines[:limit] {
		if sku == "" {
			if m := skuRe.FindStringSubmatch(ln); m != nil {
				sku = strings.TrimSpace(m[1])
			}
		}
		if name == "" && looksLikeName(ln) {
			name = ln
		}
	}

	if name == "" {
		name = lines[0]
	}
	return name, sku
}

func looksLikeName(ln string) bool {
	if len(letterRe.FindAllString(ln, -1)) < 3 {
		return false
	}
	if float64(len(digitRe.FindAllString(ln, -1))) > float64(len(ln))/2 {
		return false
	}
	return !headerKeywordRe.MatchString(ln)
}

// normalizePrice pulls the first price match out of a line. The currency
// token is uppercased with periods stripped; normalization is idempotent.
// A match whose numeric part fails to parse returns a nil price: the line is
// still a price line, the value is just unknown.
func normalizePrice(line string) (currency string, price *float64) {
	m := priceRe.FindStringSubmatch(line)
	if m == nil {
		return "", nil
	}

	if m[1] != "" {
		currency = strings.ReplaceAll(strings.ToUpper(m[1]), ".", "")
	}

	raw := strings.ReplaceAll(m[2], ",", "")
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		price = &v
	}
	return currency, price
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
