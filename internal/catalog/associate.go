package catalog

import "github.com/pricebook/pdf-catalog/internal/pdf"

// AssociateImages assigns each row on a page the path of its most likely
// image by nearest box center. Rows without a usable position take the first
// image found on the page. Assignment is independent per row: one image may
// serve many rows. The linear scan is O(rows × images), fine at catalog-page
// scale.
func AssociateImages(rows []ProductRow, images []pdf.ImageAsset) {
	for i := range rows {
		rows[i].ImagePath = nearestImagePath(rows[i].box, images)
	}
}

// nearestImagePath picks an image for one row. Ties break to the first image
// in extraction order, so assignment is deterministic.
func nearestImagePath(box pdf.Box, images []pdf.ImageAsset) string {
	if box.IsZero() {
		if len(images) > 0 {
			return images[0].Path
		}
		return ""
	}

	best := ""
	bestDist := 0.0
	found := false
	for _, img := range images {
		if img.Box.IsZero() {
			// No position to compare against.
			continue
		}
		d := box.CenterDistance(img.Box)
		if !found || d < bestDist {
			found = true
			bestDist = d
			best = img.Path
		}
	}
	return best
}
