package validation

import (
	"fmt"

	"github.com/iwvelando/rehash-tool/pkg/constants"
)

// ValidateOutputFormat returns an error unless format names a supported renderer.
func ValidateOutputFormat(format string) error {
	switch format {
	case constants.OutputFormatPretty, constants.OutputFormatCSV:
		return nil
	default:
		return fmt.Errorf("expected output format of %s or %s, got %q",
			constants.OutputFormatPretty, constants.OutputFormatCSV, format)
	}
}
