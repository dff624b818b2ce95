package inference

import (
	"errors"
	"fmt"
)

// Threshold is the minimum top-class probability for a label to be accepted.
const Threshold float32 = 0.9

// Unknown is reported when no class clears Threshold.
const Unknown = "Unknown"

// Classes is the model's output order.
var Classes = []string{
	"Adenocarcinoma",
	"Large cell carcinoma",
	"Normal",
	"Squamous cell carcinoma",
}

var ErrOutputSize = errors.New("unexpected probability vector length")

// Resolution is the gate's verdict on one probability vector.
type Resolution struct {
	Label         string
	Index         int
	Confidence    float32
	Probabilities []float32
	Accepted      bool
}

// Resolve picks the arg-max class (first index wins ties) and accepts it
// only when its probability is at least Threshold.
func Resolve(p []float32) (Resolution, error) {
	if len(p) != len(Classes) {
		return Resolution{}, fmt.Errorf("%w: got %d, want %d", ErrOutputSize, len(p), len(Classes))
	}

	maxIdx := 0
	for i, v := range p {
		if v > p[maxIdx] {
			maxIdx = i
		}
	}

	res := Resolution{
		Label:         Unknown,
		Index:         maxIdx,
		Confidence:    p[maxIdx],
		Probabilities: p,
	}
	if p[maxIdx] >= Threshold {
		res.Label = Classes[maxIdx]
		res.Accepted = true
	}
	return res, nil
}
