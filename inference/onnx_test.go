package inference

import (
	"context"
	"path/filepath"
	"testing"

	"lung-server/imaging"

	"github.com/stretchr/testify/assert"
)

func validTensor() imaging.Tensor {
	return imaging.Tensor{
		Shape: imaging.InputShape(),
		Data:  make([]float32, imaging.Size*imaging.Size*imaging.Channels),
	}
}

func TestONNXClassifier_MissingModel(t *testing.T) {
	c := NewONNXClassifier(ONNXConfig{
		ModelPath:  filepath.Join(t.TempDir(), "absent.onnx"),
		InputName:  "input",
		OutputName: "output",
	})
	defer c.Close()

	_, err := c.Predict(context.Background(), validTensor())
	assert.ErrorIs(t, err, ErrModelUnavailable)
	assert.ErrorIs(t, c.Load(), ErrModelUnavailable)
	assert.False(t, c.Loaded())
}

func TestONNXClassifier_RejectsBadShape(t *testing.T) {
	c := NewONNXClassifier(ONNXConfig{ModelPath: "unused.onnx"})

	_, err := c.Predict(context.Background(), imaging.Tensor{Shape: []int64{1, 10, 10, 3}, Data: make([]float32, 300)})
	assert.ErrorIs(t, err, ErrInputShape)

	short := validTensor()
	short.Data = short.Data[:10]
	_, err = c.Predict(context.Background(), short)
	assert.ErrorIs(t, err, ErrInputShape)
}

func TestONNXClassifier_HonoursCancelledContext(t *testing.T) {
	c := NewONNXClassifier(ONNXConfig{ModelPath: "unused.onnx"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Predict(ctx, validTensor())
	assert.ErrorIs(t, err, context.Canceled)
}
