package utils

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/exp/slices"
)

// Validate is the shared validator instance used by handlers that build their
// input structs manually.
var Validate = validator.New()

const (
	MaxDocumentSize = 10 << 20 // 10MB
	MaxReceiptSize  = 10 << 20
	MaxCVSize       = 5 << 20  // 5MB
	MaxVideoSize    = 50 << 20 // 50MB

	MaxImagesPerListing = 5
)

var (
	DocumentExtensions = []string{".pdf", ".doc", ".docx", ".jpg", ".jpeg", ".png"}
	ReceiptExtensions  = []string{".jpg", ".jpeg", ".png", ".pdf"}
	ImageExtensions    = []string{".jpg", ".jpeg", ".png", ".webp"}
	VideoExtensions    = []string{".mp4", ".mov", ".webm"}
	CVExtensions       = []string{".pdf", ".doc", ".docx"}
)

// ValidateUpload checks a file name against an extension allow-list and a
// size ceiling. Returns a message suitable for a 400 response.
func ValidateUpload(fileName string, size int64, allowed []string, maxSize int64) error {
	ext := strings.ToLower(filepath.Ext(fileName))
	if !slices.Contains(allowed, ext) {
		return fmt.Errorf("file type %q is not allowed (expected one of %s)", ext, strings.Join(allowed, ", "))
	}
	if size > maxSize {
		return fmt.Errorf("file exceeds the %dMB size limit", maxSize>>20)
	}
	return nil
}
