// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/rehash-tool/internal/worksheet"
)

// FindWorksheet finds a worksheet by scenario name in the results slice.
// Returns a pointer to the worksheet if found, nil otherwise.
func FindWorksheet(results []worksheet.Worksheet, name string) *worksheet.Worksheet {
	for i := range results {
		if results[i].Name == name {
			return &results[i]
		}
	}
	return nil
}
