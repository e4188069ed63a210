package platform

import (
	"strings"
)

// FamilyFor maps a host-reported OS name to its default-location family.
// Any name containing "windows" (case-insensitive) is Windows; every other
// name, known or not, falls back to FamilyOther.
func FamilyFor(osName string) Family {
	if strings.Contains(normalizeName(osName), "windows") {
		return FamilyWindows
	}
	return FamilyOther
}

// normalizeArch converts GOARCH values to normalized architecture names.
// Unrecognized values are passed through unchanged.
func normalizeArch(arch string) string {
	switch arch {
	case "amd64", "x86_64":
		return "amd64"
	case "arm64", "aarch64":
		return "arm64"
	default:
		return arch
	}
}

// normalizeName lowercases and trims an OS or platform name.
func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
