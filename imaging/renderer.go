package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	titleHeight  = 32
	titlePadding = 10
)

// TitleFor is the caption rendered above an accepted prediction.
func TitleFor(label string) string {
	return "Predicted Label: " + label
}

// Render draws img below a white band captioned with label and returns PNG bytes.
func Render(img image.Image, label string) ([]byte, error) {
	face := basicfont.Face7x13
	title := TitleFor(label)

	src := img.Bounds()
	textWidth := font.MeasureString(face, title).Ceil()
	width := src.Dx()
	if textWidth+2*titlePadding > width {
		width = textWidth + 2*titlePadding
	}

	canvas := image.NewRGBA(image.Rect(0, 0, width, titleHeight+src.Dy()))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	offsetX := (width - src.Dx()) / 2
	draw.Draw(canvas, image.Rect(offsetX, titleHeight, offsetX+src.Dx(), titleHeight+src.Dy()), img, src.Min, draw.Src)

	metrics := face.Metrics()
	baseline := (titleHeight+metrics.Ascent.Ceil()-metrics.Descent.Ceil())/2 + 1
	d := &font.Drawer{
		Dst:  canvas,
		Src:  image.Black,
		Face: face,
		Dot:  fixed.P((width-textWidth)/2, baseline),
	}
	d.DrawString(title)

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("encode artifact: %w", err)
	}
	return buf.Bytes(), nil
}
