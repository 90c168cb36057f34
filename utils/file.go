package utils

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gosimple/slug"
)

// SafeProofFilename builds a collision-resistant, sanitized reference for a
// payment proof upload. Storage of the file itself is the upload service's
// problem; we only record the reference.
func SafeProofFilename(appID, original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	safe := slug.Make(base)
	if safe == "" {
		safe = "proof"
	}
	return fmt.Sprintf("app_%s_%d_%s%s", appID, time.Now().UTC().Unix(), safe, ext)
}
