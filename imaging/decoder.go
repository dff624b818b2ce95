// Package imaging turns uploaded CT scans into model input and renders
// annotated result images.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	// Size is the square edge, in pixels, the classifier expects.
	Size     = 350
	Channels = 3
)

var ErrDecode = errors.New("unreadable image")

// Tensor is a float32 batch laid out NHWC.
type Tensor struct {
	Shape []int64
	Data  []float32
}

// InputShape is the batch shape produced by Normalize.
func InputShape() []int64 {
	return []int64{1, Size, Size, Channels}
}

// Decode reads an image in any registered format.
func Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrDecode)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return img, nil
}

// DecodeFile is Decode for an image on disk.
func DecodeFile(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return Decode(data)
}

// Resize stretches img to Size x Size with nearest-neighbour sampling.
// Aspect ratio is not preserved.
func Resize(img image.Image) image.Image {
	return resize.Resize(Size, Size, img, resize.NearestNeighbor)
}

// Normalize resizes img, drops alpha and scales every channel into [0,1].
func Normalize(img image.Image) Tensor {
	return toTensor(Resize(img))
}

func toTensor(resized image.Image) Tensor {
	bounds := resized.Bounds()

	data := make([]float32, Size*Size*Channels)
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			c := color.NRGBAModel.Convert(resized.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			i := (y*Size + x) * Channels
			data[i] = float32(c.R) / 255.0
			data[i+1] = float32(c.G) / 255.0
			data[i+2] = float32(c.B) / 255.0
		}
	}

	return Tensor{Shape: InputShape(), Data: data}
}

// Prepare decodes data and returns the Size x Size image the tensor was
// built from, so rendered artifacts show what the model saw.
func Prepare(data []byte) (image.Image, Tensor, error) {
	img, err := Decode(data)
	if err != nil {
		return nil, Tensor{}, err
	}
	resized := Resize(img)
	return resized, toTensor(resized), nil
}
