// Package attachment handles receipt file references. The core stores a
// reference opaquely; only its shape is checked, never the file bytes.
package attachment

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/Veraticus/claimflow/internal/common"
)

// ReferencePrefix is where locally uploaded receipts live.
const ReferencePrefix = "/uploads/"

// ValidateReference checks that a receipt reference is a well-formed
// pointer: either a path under /uploads/ produced by the upload handler, or
// an absolute http(s) URL to an external store. Called at claim creation
// only.
func ValidateReference(ref string) error {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return fmt.Errorf("%w: receipt reference is required", common.ErrValidation)
	}

	if strings.HasPrefix(ref, ReferencePrefix) {
		name := strings.TrimPrefix(ref, ReferencePrefix)
		if name == "" || strings.Contains(name, "..") || strings.ContainsAny(name, "\\") {
			return fmt.Errorf("%w: malformed receipt reference %q", common.ErrValidation, ref)
		}
		return nil
	}

	u, err := url.Parse(ref)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: receipt reference must be an /uploads/ path or http(s) URL", common.ErrValidation)
	}
	return nil
}
