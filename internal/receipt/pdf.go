package receipt

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
)

const pngDataURIPrefix = "data:image/png;base64,"

// PDFFromDataURI embeds a PNG data URI into a single-page PDF of the given
// logical size in points. The image is stretched to cover the full page,
// matching the raster's aspect ratio by construction.
func PDFFromDataURI(dataURI string, widthPt, heightPt float64) ([]byte, error) {
	if !strings.HasPrefix(dataURI, pngDataURIPrefix) {
		return nil, fmt.Errorf("unsupported image data URI")
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURI, pngDataURIPrefix))
	if err != nil {
		return nil, fmt.Errorf("decode image data URI: %w", err)
	}

	pdf := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "pt",
		Size:    fpdf.SizeType{Wd: widthPt, Ht: heightPt},
	})
	pdf.AddPage()
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("document", opts, bytes.NewReader(raw))
	pdf.ImageOptions("document", 0, 0, widthPt, heightPt, false, opts, 0, "")

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return out.Bytes(), nil
}
