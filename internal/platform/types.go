// Package platform reports the host operating system and maps it onto the
// families phpfind keeps default launcher locations for.
//
// Detection uses runtime.GOOS and runtime.GOARCH for the basics and gopsutil
// for the host's reported OS name and product details. When gopsutil cannot
// answer, detection falls back to the Go runtime values.
package platform

import "context"

// Family groups operating systems that share a default location table.
type Family string

const (
	// FamilyWindows covers every host whose reported OS name mentions Windows.
	FamilyWindows Family = "windows"
	// FamilyOther covers everything else, including unrecognized names.
	FamilyOther Family = "other"
)

// String returns the string representation of the family.
func (f Family) String() string {
	return string(f)
}

// Info contains platform detection information.
type Info struct {
	Name     string // OS name as reported by the host (e.g. "windows", "linux")
	OS       string // runtime.GOOS
	Arch     string // "amd64", "arm64", or the raw GOARCH when unrecognized
	Platform string // product or distro ID (e.g. "ubuntu", "Microsoft Windows 11 Pro")
	Version  string // product or distro version
}

// Family returns the default-location family for the reported OS name.
func (i *Info) Family() Family {
	name := i.Name
	if name == "" {
		name = i.OS
	}
	return FamilyFor(name)
}

// IsWindows returns true if the host belongs to the Windows family.
func (i *Info) IsWindows() bool {
	return i.Family() == FamilyWindows
}

// IsLinux returns true if the platform is Linux.
func (i *Info) IsLinux() bool {
	return i.OS == "linux"
}

// IsMacOS returns true if the platform is macOS.
func (i *Info) IsMacOS() bool {
	return i.OS == "darwin"
}

// Detector is the interface for platform detection.
type Detector interface {
	Detect(ctx context.Context) (*Info, error)
}

// StaticDetector returns a fixed Info. Useful when the platform is forced
// from configuration or in tests.
type StaticDetector struct {
	Info *Info
}

// Detect returns the configured info.
func (s StaticDetector) Detect(ctx context.Context) (*Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.Info, nil
}
