package pdf

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
)

// pdfFixture assembles a small but structurally complete document, tracking
// byte offsets so the cross-reference table is exact and both parsers accept
// the result.
type pdfFixture struct {
	buf     bytes.Buffer
	offsets []int
}

func newPDFFixture() *pdfFixture {
	f := &pdfFixture{}
	f.buf.WriteString("%PDF-1.4\n")
	return f
}

// addObject appends the next numbered indirect object and returns its number.
func (f *pdfFixture) addObject(body string) int {
	num := len(f.offsets) + 1
	f.offsets = append(f.offsets, f.buf.Len())
	fmt.Fprintf(&f.buf, "%d 0 obj\n%s\nendobj\n", num, body)
	return num
}

// addStream appends a stream object; dict must not contain /Length.
func (f *pdfFixture) addStream(dict string, data []byte) int {
	num := len(f.offsets) + 1
	f.offsets = append(f.offsets, f.buf.Len())
	fmt.Fprintf(&f.buf, "%d 0 obj\n<< %s /Length %d >>\nstream\n", num, dict, len(data))
	f.buf.Write(data)
	f.buf.WriteString("\nendstream\nendobj\n")
	return num
}

func (f *pdfFixture) build(root int) []byte {
	start := f.buf.Len()
	fmt.Fprintf(&f.buf, "xref\n0 %d\n0000000000 65535 f \n", len(f.offsets)+1)
	for _, off := range f.offsets {
		fmt.Fprintf(&f.buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&f.buf, "trailer\n<< /Size %d /Root %d 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(f.offsets)+1, root, start)
	return f.buf.Bytes()
}

// blankPagePDF is a single empty page: no content stream, no resources.
func blankPagePDF() []byte {
	f := newPDFFixture()
	f.addObject("<< /Type /Catalog /Pages 2 0 R >>")
	f.addObject("<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	f.addObject("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << >> >>")
	return f.build(1)
}

// catalogPagePDF is a single page showing two text lines plus an embedded
// JPEG image. With placeImage the content stream paints the image directly at
// (300,600)-(400,700). Without it the image is painted only from inside a
// Form XObject whose resources hold it: the image bytes survive pdfcpu's
// optimize pass (which prunes resources unused by any content stream) while
// page-level placement scanning still cannot resolve it to an image.
func catalogPagePDF(placeImage bool) []byte {
	content := "BT /F1 12 Tf 72 700 Td (Deluxe Lamp) Tj ET " +
		"BT /F1 12 Tf 72 684 Td (Rs. 499) Tj ET"

	var jpg bytes.Buffer
	// Encoding a real JPEG keeps the embedded data valid for any consumer.
	if err := jpeg.Encode(&jpg, image.NewRGBA(image.Rect(0, 0, 2, 2)), nil); err != nil {
		panic(err)
	}

	imageDict := "/Type /XObject /Subtype /Image /Width 2 /Height 2 " +
		"/ColorSpace /DeviceRGB /BitsPerComponent 8 /Filter /DCTDecode"

	f := newPDFFixture()
	f.addObject("<< /Type /Catalog /Pages 2 0 R >>")
	f.addObject("<< /Type /Pages /Kids [3 0 R] /Count 1 >>")

	if placeImage {
		content += " q 100 0 0 100 300 600 cm /Im1 Do Q"
		f.addObject("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] " +
			"/Resources << /Font << /F1 4 0 R >> /XObject << /Im1 5 0 R >> >> /Contents 6 0 R >>")
		f.addObject("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")
		f.addStream(imageDict, jpg.Bytes())
		f.addStream("", []byte(content))
		return f.build(1)
	}

	content += " q 1 0 0 1 0 0 cm /Fm1 Do Q"
	f.addObject("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] " +
		"/Resources << /Font << /F1 4 0 R >> /XObject << /Fm1 6 0 R >> >> /Contents 7 0 R >>")
	f.addObject("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")
	f.addStream(imageDict, jpg.Bytes())
	f.addStream("/Type /XObject /Subtype /Form /BBox [0 0 100 100] "+
		"/Resources << /XObject << /Im1 5 0 R >> >>", []byte("/Im1 Do"))
	f.addStream("", []byte(content))
	return f.build(1)
}
