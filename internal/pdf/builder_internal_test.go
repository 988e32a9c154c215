package pdf

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// objects returns every object of b whose dictionary satisfies match.
func objects(b *Builder, match func(types.Dict) bool) []types.Object {
	var found []types.Object
	for _, e := range b.ctx.Table {
		if e == nil || e.Object == nil {
			continue
		}
		var d types.Dict
		switch o := e.Object.(type) {
		case types.Dict:
			d = o
		case types.StreamDict:
			d = o.Dict
		default:
			continue
		}
		if match(d) {
			found = append(found, e.Object)
		}
	}
	return found
}

func nameIs(d types.Dict, key, want string) bool {
	n, ok := d[key].(types.Name)
	return ok && string(n) == want
}

// ---------------------------------------------------------------------------
// TestEmbedPage_SharedResources - Resources shared by pages are copied once
// ---------------------------------------------------------------------------

func TestEmbedPage_SharedResources(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	objs := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R 5 0 R] /Count 2 /Resources << /Font << /F1 6 0 R >> >> >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 200 300] /Contents 4 0 R >>",
		"<< /Length 24 >>\nstream\nBT /F1 12 Tf (one) Tj ET\nendstream",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 200 300] /Contents 4 0 R >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	}
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, o := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, o)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)

	src, err := Parse(buf.Bytes())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	b := NewBuilder()
	for _, p := range src.Pages() {
		if _, err := b.EmbedPage(p); err != nil {
			t.Fatalf("EmbedPage(%d) error = %v", p.Index(), err)
		}
	}

	forms := objects(b, func(d types.Dict) bool { return nameIs(d, "Subtype", "Form") })
	if len(forms) != 2 {
		t.Errorf("got %d form XObjects, want 2", len(forms))
	}
	fonts := objects(b, func(d types.Dict) bool { return nameIs(d, "BaseFont", "Helvetica") })
	if len(fonts) != 1 {
		t.Errorf("font copied %d times, want 1", len(fonts))
	}
}

// ---------------------------------------------------------------------------
// TestEmbedImages - Image dictionaries
// ---------------------------------------------------------------------------

func TestEmbedJPEG_Dictionary(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewGray(image.Rect(0, 0, 30, 20)), nil); err != nil {
		t.Fatal(err)
	}
	b := NewBuilder()
	if _, err := b.EmbedJPEG(buf.Bytes()); err != nil {
		t.Fatalf("EmbedJPEG() error = %v", err)
	}

	imgs := objects(b, func(d types.Dict) bool { return nameIs(d, "Subtype", "Image") })
	if len(imgs) != 1 {
		t.Fatalf("got %d images, want 1", len(imgs))
	}
	sd := imgs[0].(types.StreamDict)
	if !nameIs(sd.Dict, "Filter", "DCTDecode") || !nameIs(sd.Dict, "ColorSpace", "DeviceGray") {
		t.Errorf("dict = %v, want DCTDecode DeviceGray", sd.Dict)
	}
	if !bytes.Equal(sd.Raw, buf.Bytes()) {
		t.Error("JPEG data was re-encoded")
	}
}

func TestEmbedImage_SoftMask(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		alpha     uint8
		wantSMask bool
	}{
		{name: "opaque", alpha: 0xff, wantSMask: false},
		{name: "translucent", alpha: 0x80, wantSMask: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
			for y := 0; y < 4; y++ {
				for x := 0; x < 4; x++ {
					img.SetNRGBA(x, y, color.NRGBA{R: 255, A: tt.alpha})
				}
			}
			b := NewBuilder()
			if _, err := b.EmbedImage(img); err != nil {
				t.Fatalf("EmbedImage() error = %v", err)
			}
			rgb := objects(b, func(d types.Dict) bool { return nameIs(d, "ColorSpace", "DeviceRGB") })
			if len(rgb) != 1 {
				t.Fatalf("got %d RGB images, want 1", len(rgb))
			}
			_, got := rgb[0].(types.StreamDict).Dict["SMask"]
			if got != tt.wantSMask {
				t.Errorf("has SMask = %v, want %v", got, tt.wantSMask)
			}
		})
	}
}

func TestFormatNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{100, "100"},
		{-2, "-2"},
		{8.33, "8.33"},
		{0.5, "0.5"},
		{1.0 / 3, "0.333333"},
	}
	for _, tt := range tests {
		if got := formatNumber(tt.in); got != tt.want {
			t.Errorf("formatNumber(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
