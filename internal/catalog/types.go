package catalog

import "github.com/pricebook/pdf-catalog/internal/pdf"

// ProductRow is one extracted catalog entry. ProductName is always set; the
// remaining fields are optional and stay empty (or nil for Price) when the
// heuristics found nothing. A ProductRow belongs to exactly one page of
// exactly one document.
type ProductRow struct {
	PDF         string
	Page        int
	ProductName string
	SKU         string
	Variant     string
	Unit        string
	Price       *float64
	Currency    string
	Description string
	ImagePath   string

	// box is the position of the source text segment, used only for image
	// association and never emitted.
	box pdf.Box
}

// SetBox records the source segment's position on the row.
func (r *ProductRow) SetBox(b pdf.Box) {
	r.box = b
}

// Box returns the position of the source text segment.
func (r *ProductRow) Box() pdf.Box {
	return r.box
}
