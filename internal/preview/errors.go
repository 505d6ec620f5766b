package preview

import (
	"errors"
	"fmt"
	"strings"
)

// ErrAPIKeyRequired is returned by Generate when the profile has no stored API key.
// The caller should ask for a key and let the user submit again.
var ErrAPIKeyRequired = errors.New("api key required")

// ErrUnknownExportFormat is returned by Export for formats the UI does not offer.
var ErrUnknownExportFormat = errors.New("unknown export format")

// Export formats offered by the UI.
const (
	FormatPDF  = "pdf"
	FormatDOCX = "docx"
	FormatHTML = "html"
)

// ExportNotImplementedError is returned for every known export format.
type ExportNotImplementedError struct {
	Format string
}

func (e *ExportNotImplementedError) Error() string {
	return fmt.Sprintf("%s export coming soon!", strings.ToUpper(e.Format))
}
