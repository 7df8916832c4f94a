package pdf

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Document is an open PDF being processed. It owns the pdfcpu context used
// for structural extraction plus a lazily opened ledongthuc reader for the
// plain-text fallback path. Close releases both.
type Document struct {
	path string
	ctx  *model.Context

	plainFile   *os.File
	plainReader *pdf.Reader
	plainTried  bool
}

// OpenDocument opens a PDF for structural extraction. Validation is relaxed:
// catalog PDFs are frequently produced by design tools that bend the format.
func OpenDocument(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open document: %w", err)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to ensure page count: %w", err)
	}

	return &Document{path: path, ctx: ctx}, nil
}

// Path returns the source path of the document.
func (d *Document) Path() string {
	return d.path
}

// PageCount returns the number of pages in the document.
func (d *Document) PageCount() int {
	return d.ctx.PageCount
}

// Close releases all handles held by the document. Safe to call more than once.
func (d *Document) Close() error {
	d.ctx = nil
	d.plainReader = nil
	if d.plainFile != nil {
		err := d.plainFile.Close()
		d.plainFile = nil
		return err
	}
	return nil
}

// LoadPage extracts the text segments and image assets of one page. Image
// bytes are written under imagesDir; recorded paths are relBase joined with
// the file name, using forward slashes. Individual image failures are
// skipped, never fatal. The structural path degrades to a single plain-text
// segment with an unknown box when the content stream yields nothing.
func (d *Document) LoadPage(pageNr int, imagesDir, relBase string) (*PageContent, error) {
	if d.ctx == nil {
		return nil, fmt.Errorf("document is closed")
	}
	if pageNr < 1 || pageNr > d.ctx.PageCount {
		return nil, fmt.Errorf("invalid page number %d (document has %d pages)", pageNr, d.ctx.PageCount)
	}

	page := &PageContent{Number: pageNr}

	runs, placements := d.scanPage(pageNr)
	page.Segments = groupRunsIntoSegments(runs)
	if len(page.Segments) == 0 {
		if text := d.plainPageText(pageNr); strings.TrimSpace(text) != "" {
			page.Segments = []TextSegment{{Text: text}}
		}
	}

	page.Images = d.extractPageImages(pageNr, placements, imagesDir, relBase)

	return page, nil
}

// scanPage runs the content scanner over the page's content stream.
// A page whose stream cannot be fetched simply yields nothing; the caller
// falls back to plain text.
func (d *Document) scanPage(pageNr int) (runs []textRun, placements []xobjectPlacement) {
	defer func() {
		// pdfcpu can panic on streams it half-understands; a failed scan is a
		// degraded page, not an error.
		_ = recover()
	}()

	r, err := pdfcpu.ExtractPageContent(d.ctx, pageNr)
	if err != nil || r == nil {
		return nil, nil
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return nil, nil
	}
	return scanContent(data)
}

// plainPageText extracts the page's text without position information.
func (d *Document) plainPageText(pageNr int) (text string) {
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()

	if d.plainReader == nil {
		if d.plainTried {
			return ""
		}
		d.plainTried = true
		f, reader, err := pdf.Open(d.path)
		if err != nil {
			return ""
		}
		d.plainFile = f
		d.plainReader = reader
	}

	page := d.plainReader.Page(pageNr)
	if page.V.IsNull() {
		return ""
	}
	content, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return content
}

// imageBlob is an embedded image pulled out of the document once, so repeated
// placements of the same XObject do not re-consume the stream reader.
type imageBlob struct {
	data []byte
	ext  string
}

// extractPageImages writes the page's embedded images to disk and returns
// their assets. Placements located by the content scanner get positioned
// assets named p<page>_x<ref>.<ext>; when no placement resolves, every image
// on the page is written without a box as p<page>_<ordinal>.<ext>.
func (d *Document) extractPageImages(pageNr int, placements []xobjectPlacement, imagesDir, relBase string) []ImageAsset {
	blobs := d.readPageImageBlobs(pageNr)
	if len(blobs) == 0 {
		return nil
	}

	nameToRef := d.imageXObjectRefs(pageNr, blobs)

	var assets []ImageAsset
	for _, pl := range placements {
		ref, ok := nameToRef[pl.name]
		if !ok {
			continue
		}
		blob, ok := blobs[ref]
		if !ok {
			continue
		}
		filename := fmt.Sprintf("p%d_x%d.%s", pageNr, ref, blob.ext)
		if !writeImageFile(imagesDir, filename, blob.data) {
			continue
		}
		assets = append(assets, ImageAsset{
			Ref:  ref,
			Box:  pl.box,
			Path: joinRel(relBase, filename),
		})
	}

	if len(assets) > 0 {
		return assets
	}

	// No positioned placements resolved; fall back to a flat enumeration.
	refs := sortedRefs(blobs)
	for idx, ref := range refs {
		blob := blobs[ref]
		filename := fmt.Sprintf("p%d_%d.%s", pageNr, idx+1, blob.ext)
		if !writeImageFile(imagesDir, filename, blob.data) {
			continue
		}
		assets = append(assets, ImageAsset{
			Ref:  ref,
			Path: joinRel(relBase, filename),
		})
	}
	return assets
}

// readPageImageBlobs pulls the raw bytes of every embedded image on the page,
// keyed by object number. Failures on individual images are swallowed.
func (d *Document) readPageImageBlobs(pageNr int) map[int]imageBlob {
	defer func() {
		_ = recover()
	}()

	images, err := pdfcpu.ExtractPageImages(d.ctx, pageNr, false)
	if err != nil {
		return nil
	}

	blobs := make(map[int]imageBlob, len(images))
	for objNr, img := range images {
		data, err := io.ReadAll(img)
		if err != nil || len(data) == 0 {
			continue
		}
		ext := img.FileType
		if ext == "" {
			ext = "png"
		}
		blobs[objNr] = imageBlob{data: data, ext: ext}
	}
	return blobs
}

// imageXObjectRefs maps the page's XObject resource names to object numbers,
// keeping only entries that are actually images on this page.
func (d *Document) imageXObjectRefs(pageNr int, blobs map[int]imageBlob) map[string]int {
	defer func() {
		_ = recover()
	}()

	refs := make(map[string]int)

	pageDict, _, inhPAttrs, err := d.ctx.PageDict(pageNr, false)
	if err != nil || pageDict == nil {
		return refs
	}

	var resources types.Dict
	if inhPAttrs != nil {
		resources = inhPAttrs.Resources
	}
	if resources == nil {
		if obj, found := pageDict.Find("Resources"); found {
			resources, _ = d.ctx.DereferenceDict(obj)
		}
	}
	if resources == nil {
		return refs
	}

	obj, found := resources.Find("XObject")
	if !found {
		return refs
	}
	xObjects, err := d.ctx.DereferenceDict(obj)
	if err != nil || xObjects == nil {
		return refs
	}

	for name, val := range xObjects {
		ir, ok := val.(types.IndirectRef)
		if !ok {
			continue
		}
		objNr := ir.ObjectNumber.Value()
		if _, isImage := blobs[objNr]; isImage {
			refs[name] = objNr
		}
	}
	return refs
}

func writeImageFile(dir, filename string, data []byte) bool {
	if err := os.WriteFile(filepath.Join(dir, filename), data, 0o644); err != nil {
		return false
	}
	return true
}

// joinRel joins a recorded image path with forward slashes regardless of the
// host separator, so CSV rows stay portable.
func joinRel(base, filename string) string {
	return filepath.ToSlash(filepath.Join(base, filename))
}

func sortedRefs(blobs map[int]imageBlob) []int {
	refs := make([]int, 0, len(blobs))
	for ref := range blobs {
		refs = append(refs, ref)
	}
	sort.Ints(refs)
	return refs
}
