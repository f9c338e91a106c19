package plan

import (
	"errors"
	"fmt"
)

// MissingMetadataError reports a calculator whose declared requirement was
// not satisfied at run time. It is a per-candidate fault: the candidate is
// dropped and counted, the expansion continues.
type MissingMetadataError struct {
	Calculator string
	Target     string
	MetaKey    string
}

// Error implements the error interface.
func (e *MissingMetadataError) Error() string {
	return fmt.Sprintf("calculator %q requires key %q on %s, which is absent", e.Calculator, e.MetaKey, e.Target)
}

// IsMissingMetadata returns true if err is a MissingMetadataError.
// Uses errors.As to handle wrapped errors.
func IsMissingMetadata(err error) bool {
	var mm *MissingMetadataError
	return errors.As(err, &mm)
}
