package receipt

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"sync"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
)

// Fonts holds the TTF files used for rasterization. The files must cover
// Cyrillic; DejaVu Sans is the usual choice.
type Fonts struct {
	Regular string
	Bold    string
}

// Renderer rasterizes layouts. Font faces are cached per size because
// loading a face re-parses the TTF file.
type Renderer struct {
	fonts Fonts

	mu    sync.Mutex
	faces map[faceKey]font.Face
}

type faceKey struct {
	path string
	size float64
}

func NewRenderer(fonts Fonts) *Renderer {
	return &Renderer{fonts: fonts, faces: make(map[faceKey]font.Face)}
}

// Render draws the layout into an RGBA image at the layout's scale.
func (r *Renderer) Render(l Layout) (image.Image, error) {
	scale := l.Scale
	if scale == 0 {
		scale = 1
	}
	dc := gg.NewContext(int(l.Width*scale+0.5), int(l.Height*scale+0.5))

	dc.SetRGB255(int(l.Background.R), int(l.Background.G), int(l.Background.B))
	dc.Clear()

	for _, el := range l.Elements {
		switch e := el.(type) {
		case Rect:
			if e.Fill != nil {
				dc.SetRGB255(int(e.Fill.R), int(e.Fill.G), int(e.Fill.B))
				dc.DrawRectangle(e.X*scale, e.Y*scale, e.W*scale, e.H*scale)
				dc.Fill()
			}
			if e.Stroke != nil {
				w := e.StrokeWidth
				if w == 0 {
					w = 1
				}
				dc.SetRGB255(int(e.Stroke.R), int(e.Stroke.G), int(e.Stroke.B))
				dc.SetLineWidth(w * scale)
				dc.DrawRectangle(e.X*scale, e.Y*scale, e.W*scale, e.H*scale)
				dc.Stroke()
			}
		case Line:
			w := e.Width
			if w == 0 {
				w = 1
			}
			dc.SetRGB255(int(e.Color.R), int(e.Color.G), int(e.Color.B))
			dc.SetLineWidth(w * scale)
			dc.DrawLine(e.X1*scale, e.Y1*scale, e.X2*scale, e.Y2*scale)
			dc.Stroke()
		case Text:
			face, err := r.face(e.Bold, e.Size*scale)
			if err != nil {
				return nil, err
			}
			dc.SetFontFace(face)
			dc.SetRGB255(int(e.Color.R), int(e.Color.G), int(e.Color.B))
			dc.DrawString(e.Value, e.X*scale, e.Y*scale)
		default:
			return nil, fmt.Errorf("unknown layout element %T", el)
		}
	}
	return dc.Image(), nil
}

// PNG renders the layout and encodes it as PNG bytes.
func (r *Renderer) PNG(l Layout) ([]byte, error) {
	img, err := r.Render(l)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) face(bold bool, size float64) (font.Face, error) {
	path := r.fonts.Regular
	if bold && r.fonts.Bold != "" {
		path = r.fonts.Bold
	}
	if path == "" {
		return nil, fmt.Errorf("no font configured")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	key := faceKey{path: path, size: size}
	if f, ok := r.faces[key]; ok {
		return f, nil
	}
	f, err := gg.LoadFontFace(path, size)
	if err != nil {
		return nil, fmt.Errorf("load font %s: %w", path, err)
	}
	r.faces[key] = f
	return f, nil
}

// DataURI encodes PNG bytes as a data URI, the transport format the
// export pipeline embeds into PDF pages and HTML pages alike.
func DataURI(pngBytes []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes)
}
