package thumbnail

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"os"

	color_extractor "github.com/marekm4/color-extractor"
	xdraw "golang.org/x/image/draw"

	"github.com/marcus-crane/dronemap/models"
)

const (
	MaxSize     = 200
	JPEGQuality = 85
)

// PlaceholderColour fills the thumbnail of a video whose frame couldn't be extracted
var PlaceholderColour = color.RGBA{R: 40, G: 44, B: 52, A: 255}

type Thumbnail struct {
	Image           []byte
	DominantColours models.SerializableColours
	Placeholder     bool
}

// DataURI embeds the JPEG so it can be used directly in marker markup
func (t Thumbnail) DataURI() string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(t.Image)
}

// fitWithin scales w x h down to fit a max x max box, keeping the aspect
// ratio. Images that already fit are left alone.
func fitWithin(w, h, max int) (int, int) {
	if w <= max && h <= max {
		return w, h
	}
	if w >= h {
		nh := h * max / w
		if nh < 1 {
			nh = 1
		}
		return max, nh
	}
	nw := w * max / h
	if nw < 1 {
		nw = 1
	}
	return nw, max
}

// shrink scales src into an opaque RGBA image. Transparent areas are
// flattened onto white since JPEG has no alpha channel.
func shrink(src image.Image) *image.RGBA {
	b := src.Bounds()
	w, h := fitWithin(b.Dx(), b.Dy(), MaxSize)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

func encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FromReader decodes any registered image format and returns a thumbnail
func FromReader(r io.Reader) (Thumbnail, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return Thumbnail{}, fmt.Errorf("failed to decode image: %w", err)
	}
	small := shrink(src)
	data, err := encode(small)
	if err != nil {
		return Thumbnail{}, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return Thumbnail{
		Image:           data,
		DominantColours: dominantColours(small),
	}, nil
}

func FromFile(path string) (Thumbnail, error) {
	f, err := os.Open(path)
	if err != nil {
		return Thumbnail{}, err
	}
	defer f.Close()
	return FromReader(f)
}

// Placeholder is the flat square used when a video frame can't be extracted
func Placeholder() Thumbnail {
	img := image.NewRGBA(image.Rect(0, 0, MaxSize, MaxSize))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: PlaceholderColour}, image.Point{}, draw.Src)
	data, _ := encode(img)
	return Thumbnail{
		Image:           data,
		DominantColours: models.SerializableColours{colorToHexString(PlaceholderColour)},
		Placeholder:     true,
	}
}

func dominantColours(img image.Image) models.SerializableColours {
	var domColours models.SerializableColours
	for _, c := range color_extractor.ExtractColors(img) {
		domColours = append(domColours, colorToHexString(c))
	}
	return domColours
}

func colorToHexString(c color.Color) string {
	r, g, b, a := c.RGBA()
	rgba := color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(a >> 8)}
	return fmt.Sprintf("#%.2x%.2x%.2x", rgba.R, rgba.G, rgba.B)
}
