package inference

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"

	"lung-server/imaging"

	ort "github.com/yalue/onnxruntime_go"
)

var (
	ErrModelUnavailable = errors.New("classification model unavailable")
	ErrInputShape       = errors.New("input tensor has wrong shape")
)

type ONNXConfig struct {
	ModelPath         string
	InputName         string
	OutputName        string
	SharedLibraryPath string
}

// ONNXClassifier runs the CT model through onnxruntime. The session binds
// fixed input/output tensors, so calls are serialized by mu.
type ONNXClassifier struct {
	cfg ONNXConfig

	mu      sync.Mutex
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
	ownsEnv bool
}

func NewONNXClassifier(cfg ONNXConfig) *ONNXClassifier {
	return &ONNXClassifier{cfg: cfg}
}

// Load creates the session now instead of on the first Predict.
func (c *ONNXClassifier) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadLocked()
}

func (c *ONNXClassifier) loadLocked() error {
	if c.session != nil {
		return nil
	}

	if _, err := os.Stat(c.cfg.ModelPath); err != nil {
		return fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}

	if !ort.IsInitialized() {
		if c.cfg.SharedLibraryPath != "" {
			ort.SetSharedLibraryPath(c.cfg.SharedLibraryPath)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			return fmt.Errorf("%w: failed to initialize ONNX environment: %v", ErrModelUnavailable, err)
		}
		c.ownsEnv = true
	}

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(imaging.InputShape()...))
	if err != nil {
		return fmt.Errorf("%w: failed to create input tensor: %v", ErrModelUnavailable, err)
	}

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(len(Classes))))
	if err != nil {
		inputTensor.Destroy()
		return fmt.Errorf("%w: failed to create output tensor: %v", ErrModelUnavailable, err)
	}

	session, err := ort.NewAdvancedSession(c.cfg.ModelPath,
		[]string{c.cfg.InputName}, []string{c.cfg.OutputName},
		[]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor},
		nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return fmt.Errorf("%w: failed to create ONNX session: %v", ErrModelUnavailable, err)
	}

	c.session = session
	c.input = inputTensor
	c.output = outputTensor
	log.Printf("Model loaded: %s", c.cfg.ModelPath)
	return nil
}

// Predict returns one probability per entry of Classes.
func (c *ONNXClassifier) Predict(ctx context.Context, tensor imaging.Tensor) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkShape(tensor); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.loadLocked(); err != nil {
		return nil, err
	}

	copy(c.input.GetData(), tensor.Data)
	if err := c.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	out := c.output.GetData()
	if len(out) != len(Classes) {
		return nil, fmt.Errorf("%w: got %d", ErrOutputSize, len(out))
	}
	probs := make([]float32, len(out))
	copy(probs, out)
	return probs, nil
}

// Loaded reports whether a session is ready.
func (c *ONNXClassifier) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session != nil
}

func (c *ONNXClassifier) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.input != nil {
		c.input.Destroy()
		c.input = nil
	}
	if c.output != nil {
		c.output.Destroy()
		c.output = nil
	}
	if c.session != nil {
		c.session.Destroy()
		c.session = nil
	}
	if c.ownsEnv {
		ort.DestroyEnvironment()
		c.ownsEnv = false
	}
}

func checkShape(t imaging.Tensor) error {
	want := imaging.InputShape()
	if len(t.Shape) != len(want) {
		return fmt.Errorf("%w: %v", ErrInputShape, t.Shape)
	}
	size := int64(1)
	for i, d := range want {
		if t.Shape[i] != d {
			return fmt.Errorf("%w: %v", ErrInputShape, t.Shape)
		}
		size *= d
	}
	if int64(len(t.Data)) != size {
		return fmt.Errorf("%w: %d values, want %d", ErrInputShape, len(t.Data), size)
	}
	return nil
}
