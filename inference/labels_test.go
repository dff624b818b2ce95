package inference

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		probs    []float32
		label    string
		index    int
		accepted bool
	}{
		{"exactly at threshold", []float32{0.05, 0.9, 0.03, 0.02}, "Large cell carcinoma", 1, true},
		{"below threshold", []float32{0.4, 0.35, 0.2, 0.05}, Unknown, 0, false},
		{"confident normal", []float32{0.01, 0.01, 0.97, 0.01}, "Normal", 2, true},
		{"confident squamous", []float32{0, 0, 0, 1}, "Squamous cell carcinoma", 3, true},
		{"just under threshold", []float32{0.8999, 0.1001, 0, 0}, Unknown, 0, false},
		{"tie keeps first index", []float32{0.5, 0.5, 0, 0}, Unknown, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Resolve(tt.probs)
			require.NoError(t, err)
			assert.Equal(t, tt.label, res.Label)
			assert.Equal(t, tt.index, res.Index)
			assert.Equal(t, tt.accepted, res.Accepted)
			assert.Equal(t, tt.probs, res.Probabilities)
			assert.Equal(t, tt.probs[tt.index], res.Confidence)
		})
	}
}

func TestResolveAcceptsIffMaxClearsThreshold(t *testing.T) {
	for i := 0; i <= 100; i++ {
		top := float32(i) / 100
		rest := (1 - top) / 3
		p := []float32{rest, rest, rest, rest}
		p[i%4] = top

		res, err := Resolve(p)
		require.NoError(t, err)
		if top >= Threshold && top > rest {
			assert.True(t, res.Accepted, "top=%v", top)
			assert.Equal(t, Classes[i%4], res.Label)
		} else {
			assert.False(t, res.Accepted, "top=%v", top)
			assert.Equal(t, Unknown, res.Label)
		}
	}
}

func TestResolveRejectsWrongLength(t *testing.T) {
	_, err := Resolve([]float32{1})
	assert.ErrorIs(t, err, ErrOutputSize)

	_, err = Resolve(nil)
	assert.ErrorIs(t, err, ErrOutputSize)
}
