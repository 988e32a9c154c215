// Package pdf adapts pdfcpu to the operations label composition needs:
// loading existing documents, reading page sizes with inherited attributes,
// embedding source pages as Form XObjects, embedding images, splitting a
// document into single pages and writing a freshly built document.
//
// A Document is read-only once parsed. A Builder is the output document under
// construction: pages are appended, content is drawn onto them, and Bytes
// serializes the result exactly once.
//
//	src, err := pdf.Open("barcodes.pdf")
//	first, err := src.Page(0)
//	b := pdf.NewBuilder()
//	page, _ := b.AddPage(198.43, 170.08)
//	form, _ := b.EmbedPage(first)
//	_ = b.Draw(page, form, pdf.Rect{X: 0, Y: 85.04, W: 198.43, H: 85.04})
//	out, err := b.Bytes()
package pdf
