package config

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/ZebulonRouseFrantzich/phpfind/internal/integrity"
	"github.com/ZebulonRouseFrantzich/phpfind/internal/launcher"
	"github.com/ZebulonRouseFrantzich/phpfind/internal/probe"
)

// Config represents the phpfind configuration. Zero fields mean "use the
// built-in default".
type Config struct {
	// Target overrides
	Name         string
	Command      string
	VersionFlag  string
	ProductToken string
	VendorToken  string

	// Probe timeout in seconds; 0 means probe.DefaultTimeout
	TimeoutSeconds float64

	// Cache file location; empty means the default location
	CacheFile string

	// Extra default locations checked after the built-in table
	Defaults []string

	Integrity Integrity
}

// Integrity pins accepted launchers.
type Integrity struct {
	SHA256  []string
	Keyring string
}

// Validate performs basic validation on a Config.
func (c *Config) Validate() error {
	if math.IsNaN(c.TimeoutSeconds) || c.TimeoutSeconds < 0 || c.TimeoutSeconds > MaxTimeoutSeconds {
		return &ValidationError{
			Field:   luaFieldTimeout,
			Message: fmt.Sprintf("must be between 0 and %d, got %g", MaxTimeoutSeconds, c.TimeoutSeconds),
		}
	}

	if strings.ContainsAny(c.Command, "\x00\n") {
		return &ValidationError{Field: luaFieldCommand, Message: "contains control characters"}
	}
	if c.VersionFlag != "" && strings.ContainsAny(c.VersionFlag, " \t\n") {
		return &ValidationError{Field: luaFieldVersionFlag, Message: "must be a single argument"}
	}

	if len(c.Defaults) > MaxDefaults {
		return &ValidationError{
			Field:   luaFieldDefaults,
			Message: fmt.Sprintf("too many locations (%d), maximum is %d", len(c.Defaults), MaxDefaults),
		}
	}
	for i, loc := range c.Defaults {
		if strings.TrimSpace(loc) == "" {
			return &ValidationError{
				Field:   fmt.Sprintf("%s[%d]", luaFieldDefaults, i+1),
				Message: "location cannot be empty",
			}
		}
	}

	for i, digest := range c.Integrity.SHA256 {
		if !sha256Pattern.MatchString(digest) {
			return &ValidationError{
				Field:   fmt.Sprintf("%s.%s[%d]", luaFieldIntegrity, luaFieldSHA256, i+1),
				Message: fmt.Sprintf("not a hex SHA256 digest: %q", digest),
			}
		}
	}

	if err := c.Target().Validate(); err != nil {
		return &ValidationError{Message: err.Error()}
	}

	return nil
}

// ValidationError represents a config validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return "config validation failed for " + e.Field + ": " + e.Message
	}
	return "config validation failed: " + e.Message
}

var sha256Pattern = regexp.MustCompile(`^[0-9a-fA-F]{64}$`)

// Target returns launcher.PHP with any configured overrides applied.
func (c *Config) Target() launcher.Target {
	t := launcher.PHP
	if c.Name != "" {
		t.Name = c.Name
	}
	if c.Command != "" {
		t.Command = c.Command
	}
	if c.VersionFlag != "" {
		t.VersionFlag = c.VersionFlag
	}
	if c.ProductToken != "" {
		t.ProductToken = c.ProductToken
	}
	if c.VendorToken != "" {
		t.VendorToken = c.VendorToken
	}
	return t
}

// Timeout returns the probe timeout.
func (c *Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return probe.DefaultTimeout
	}
	return time.Duration(c.TimeoutSeconds * float64(time.Second))
}

// Policy returns the integrity policy for accepted launchers.
func (c *Config) Policy() integrity.Policy {
	return integrity.Policy{
		SHA256:      c.Integrity.SHA256,
		KeyringPath: c.Integrity.Keyring,
	}
}

// Effective returns a copy with every defaulted field filled in.
func (c *Config) Effective() *Config {
	t := c.Target()
	out := *c
	out.Name = t.Name
	out.Command = t.Command
	out.VersionFlag = t.VersionFlag
	out.ProductToken = t.ProductToken
	out.VendorToken = t.VendorToken
	out.TimeoutSeconds = c.Timeout().Seconds()
	return &out
}
