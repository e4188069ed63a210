package finder

import (
	"slices"

	"github.com/ZebulonRouseFrantzich/phpfind/internal/platform"
)

// DefaultLocationTable lists well-known install locations per OS family.
type DefaultLocationTable struct {
	Windows []string
	Other   []string
}

// DefaultLocations returns the built-in table.
func DefaultLocations() DefaultLocationTable {
	return DefaultLocationTable{
		Windows: []string{
			`c:\php\php.exe`,
			`c:\windows\php.exe`,
			`c:\xampp\php\php.exe`,
		},
		Other: []string{
			"/usr/bin/php",
		},
	}
}

// For returns a copy of the locations for family.
func (t DefaultLocationTable) For(family platform.Family) []string {
	if family == platform.FamilyWindows {
		return slices.Clone(t.Windows)
	}
	return slices.Clone(t.Other)
}
