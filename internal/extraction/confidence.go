package extraction

import (
	"math"

	"github.com/clinicore/intake-ocr/internal/ocr"
)

// AggregateConfidence reduces per-block confidences to one document-level
// score: the arithmetic mean of all blocks carrying a confidence value,
// rounded to 2 decimals. An empty input yields 0. Input values are
// assumed to be on a 0-100 scale; no rescaling of 0-1 providers is
// attempted.
func AggregateConfidence(blocks []ocr.Block) float64 {
	var sum float64
	var count int
	for _, b := range blocks {
		if b.Confidence != nil {
			sum += *b.Confidence
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return math.Round(sum/float64(count)*100) / 100
}
