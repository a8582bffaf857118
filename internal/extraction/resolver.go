package extraction

import (
	"path/filepath"
	"strings"
)

// DirectTextConfidence is the fixed score assigned to documents that were
// decoded directly as UTF-8 instead of going through OCR.
const DirectTextConfidence = 100.0

var plainTextExtensions = map[string]struct{}{
	".txt":  {},
	".text": {},
}

// IsPlainText decides, from the storage key's file extension alone,
// whether the payload is decoded directly as UTF-8 text. Everything else
// (images, PDFs) is routed to OCR. No content sniffing.
func IsPlainText(storageKey string) bool {
	ext := strings.ToLower(filepath.Ext(storageKey))
	_, ok := plainTextExtensions[ext]
	return ok
}
