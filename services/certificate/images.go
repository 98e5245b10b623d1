package certificate

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
)

// Images wider or taller than this are downscaled before embedding.
const maxImageSide = 1200

type embeddedImage struct {
	kind string // fpdf image type: PNG or JPG
	data []byte
}

func (e embeddedImage) reader() io.Reader { return bytes.NewReader(e.data) }

// loadImage reads a logo or signature and returns bytes fpdf can embed.
// PNG and JPEG pass through unless oversized; other decodable formats are
// re-encoded as PNG.
func loadImage(path string) (embeddedImage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return embeddedImage{}, err
	}

	mt := mimetype.Detect(data)
	kind := ""
	switch {
	case mt.Is("image/png"):
		kind = "PNG"
	case mt.Is("image/jpeg"):
		kind = "JPG"
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		if kind != "" {
			return embeddedImage{kind: kind, data: data}, nil
		}
		return embeddedImage{}, fmt.Errorf("unsupported image type %s", mt.String())
	}

	b := img.Bounds()
	if kind != "" && b.Dx() <= maxImageSide && b.Dy() <= maxImageSide {
		return embeddedImage{kind: kind, data: data}, nil
	}

	if b.Dx() > maxImageSide || b.Dy() > maxImageSide {
		img = imaging.Fit(img, maxImageSide, maxImageSide, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return embeddedImage{}, fmt.Errorf("encode image: %w", err)
	}
	return embeddedImage{kind: "PNG", data: buf.Bytes()}, nil
}
