package ocr

import "strings"

// Block types as reported by the detect-text service.
const (
	BlockTypeLine = "LINE"
	BlockTypeWord = "WORD"
	BlockTypePage = "PAGE"
)

// Block is one unit of OCR output. Confidence, when present, is on a
// 0-100 scale; 0-1 values are never rescaled.
type Block struct {
	BlockType  string   `json:"block_type"`
	Text       string   `json:"text"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// LineText joins the text of all line-type blocks, in service order,
// separated by newlines. Word and page blocks are discarded.
func LineText(blocks []Block) string {
	lines := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if b.BlockType == BlockTypeLine {
			lines = append(lines, b.Text)
		}
	}
	return strings.Join(lines, "\n")
}
