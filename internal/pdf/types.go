package pdf

import "math"

// Box is a rectangular layout region on a page. A zero-valued box means the
// position is unknown.
type Box struct {
	Left   float64 `json:"left"`
	Bottom float64 `json:"bottom"`
	Right  float64 `json:"right"`
	Top    float64 `json:"top"`
}

// IsZero reports whether the box carries no position information.
func (b Box) IsZero() bool {
	return b.Left == 0 && b.Bottom == 0 && b.Right == 0 && b.Top == 0
}

// Center returns the midpoint of the box.
func (b Box) Center() (x, y float64) {
	return (b.Left + b.Right) / 2, (b.Bottom + b.Top) / 2
}

// CenterDistance returns the Euclidean distance between the centers of two boxes.
func (b Box) CenterDistance(other Box) float64 {
	ax, ay := b.Center()
	bx, by := other.Center()
	return math.Hypot(ax-bx, ay-by)
}

// TextSegment is one contiguous text layout region with its raw multi-line
// content. Produced once by the loader and never mutated afterwards.
type TextSegment struct {
	Box  Box    `json:"box"`
	Text string `json:"text"`
}

// ImageAsset is one embedded image found on a page. Ref is unique within the
// document. Path is where the image bytes were written, relative to the
// output root. Box is zero when the placement could not be located.
type ImageAsset struct {
	Ref  int    `json:"ref"`
	Box  Box    `json:"box"`
	Path string `json:"path"`
}

// PageContent holds everything the loader recovered from a single page.
type PageContent struct {
	Number   int           `json:"number"`
	Segments []TextSegment `json:"segments"`
	Images   []ImageAsset  `json:"images"`
}

// FileInfo describes a candidate PDF file found during a directory scan.
type FileInfo struct {
	Path         string `json:"path"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	ModifiedTime string `json:"modified_time"`
}
