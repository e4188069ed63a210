package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/ZebulonRouseFrantzich/phpfind/internal/platform"
	lua "github.com/yuin/gopher-lua"
)

// Parser represents a Lua config parser with platform detection.
type Parser struct {
	detector platform.Detector
}

// NewParser creates a new config parser with the given platform detector.
// A nil detector leaves the platform table undefined.
func NewParser(detector platform.Detector) *Parser {
	return &Parser{detector: detector}
}

// ParseFile reads and parses the config file at path.
func (p *Parser) ParseFile(ctx context.Context, path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxConfigSize+1))
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if len(data) > MaxConfigSize {
		return nil, &ParseError{
			Message: "config file too large",
			Detail:  fmt.Sprintf("%s exceeds %d bytes", path, MaxConfigSize),
		}
	}

	cfg, err := p.ParseString(ctx, string(data))
	if err != nil {
		var parseErr *ParseError
		if errors.As(err, &parseErr) && parseErr.File == "" {
			parseErr.File = path
		}
		return nil, err
	}
	return cfg, nil
}

// ParseString parses a Lua config from a string.
// This is useful for testing and in-memory config generation.
func (p *Parser) ParseString(ctx context.Context, luaCode string) (*Config, error) {
	L := newSandboxedVM()
	defer L.Close()

	ctx, cancel := context.WithTimeout(ctx, ParseTimeout)
	defer cancel()
	L.SetContext(ctx)

	// Detect platform and inject platform table
	if p.detector != nil {
		platformInfo, err := p.detector.Detect(ctx)
		if err != nil {
			return nil, fmt.Errorf("platform detection failed: %w", err)
		}
		if err := platform.InjectPlatformTable(L, platformInfo); err != nil {
			return nil, fmt.Errorf("inject platform table: %w", err)
		}
	}

	if err := L.DoString(luaCode); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &ParseError{Message: "config evaluation aborted", Detail: ctxErr.Error()}
		}
		return nil, &ParseError{
			Message: "Lua error",
			Detail:  err.Error(),
		}
	}

	return extractConfig(L)
}

// ParseError represents a config parsing error with friendly message.
type ParseError struct {
	File    string // Config file, if parsed from disk
	Message string // User-friendly message
	Detail  string // Technical details (raw Lua error)
	Cause   error  // Underlying error, e.g. a *ValidationError
}

func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s: %s: %s", e.File, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Message, e.Detail)
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// extractConfig extracts the config from a Lua state.
// It expects a global "phpfind" table; a file that never assigns it is an
// empty configuration.
func extractConfig(L *lua.LState) (*Config, error) {
	global := L.GetGlobal(luaGlobalPhpfind)
	if global.Type() == lua.LTNil {
		return &Config{}, nil
	}
	table, ok := global.(*lua.LTable)
	if !ok {
		return nil, &ParseError{
			Message: "invalid 'phpfind' value",
			Detail:  fmt.Sprintf("expected table, got %s", global.Type()),
		}
	}

	config := &Config{}
	var err error

	fields := []struct {
		field string
		dst   *string
	}{
		{luaFieldName, &config.Name},
		{luaFieldCommand, &config.Command},
		{luaFieldVersionFlag, &config.VersionFlag},
		{luaFieldProduct, &config.ProductToken},
		{luaFieldVendor, &config.VendorToken},
		{luaFieldCacheFile, &config.CacheFile},
	}
	for _, f := range fields {
		if *f.dst, err = stringField(table, f.field); err != nil {
			return nil, err
		}
	}

	if config.TimeoutSeconds, err = numberField(table, luaFieldTimeout); err != nil {
		return nil, err
	}

	if config.Defaults, err = stringList(table.RawGetString(luaFieldDefaults), luaFieldDefaults); err != nil {
		return nil, err
	}

	if integrityVal := table.RawGetString(luaFieldIntegrity); integrityVal.Type() != lua.LTNil {
		integrityTable, ok := integrityVal.(*lua.LTable)
		if !ok {
			return nil, fieldTypeError(luaFieldIntegrity, "table", integrityVal)
		}
		if config.Integrity, err = extractIntegrity(integrityTable); err != nil {
			return nil, err
		}
	}

	// Validate the extracted config
	if err := config.Validate(); err != nil {
		return nil, &ParseError{
			Message: "config validation failed",
			Detail:  err.Error(),
			Cause:   err,
		}
	}

	return config, nil
}

// extractIntegrity accepts sha256 as a single string or a list.
func extractIntegrity(table *lua.LTable) (Integrity, error) {
	var integrity Integrity
	var err error

	field := luaFieldIntegrity + "." + luaFieldSHA256
	switch v := table.RawGetString(luaFieldSHA256); v.Type() {
	case lua.LTString:
		integrity.SHA256 = []string{strings.ToLower(v.String())}
	default:
		if integrity.SHA256, err = stringList(v, field); err != nil {
			return Integrity{}, err
		}
		for i := range integrity.SHA256 {
			integrity.SHA256[i] = strings.ToLower(integrity.SHA256[i])
		}
	}

	if integrity.Keyring, err = stringField(table, luaFieldKeyring); err != nil {
		return Integrity{}, err
	}
	return integrity, nil
}

func stringField(table *lua.LTable, field string) (string, error) {
	v := table.RawGetString(field)
	switch v.Type() {
	case lua.LTNil:
		return "", nil
	case lua.LTString:
		return v.String(), nil
	default:
		return "", fieldTypeError(field, "string", v)
	}
}

func numberField(table *lua.LTable, field string) (float64, error) {
	v := table.RawGetString(field)
	switch v.Type() {
	case lua.LTNil:
		return 0, nil
	case lua.LTNumber:
		return float64(lua.LVAsNumber(v)), nil
	default:
		return 0, fieldTypeError(field, "number", v)
	}
}

// stringList extracts an array of strings in index order.
// It skips nil holes left by platform conditionals like
// platform.is_windows and "c:\\php\\php.exe" or nil.
func stringList(v lua.LValue, field string) ([]string, error) {
	if v.Type() == lua.LTNil {
		return nil, nil
	}
	table, ok := v.(*lua.LTable)
	if !ok {
		return nil, fieldTypeError(field, "list of strings", v)
	}

	type entry struct {
		index int
		value string
	}
	var entries []entry
	var bad lua.LValue
	table.ForEach(func(key, value lua.LValue) {
		if bad != nil || value.Type() == lua.LTNil {
			return
		}
		k, isNum := key.(lua.LNumber)
		s, isStr := value.(lua.LString)
		if !isNum || !isStr {
			bad = value
			return
		}
		entries = append(entries, entry{index: int(k), value: string(s)})
	})
	if bad != nil {
		return nil, fieldTypeError(field, "list of strings", bad)
	}

	slices.SortFunc(entries, func(a, b entry) int { return a.index - b.index })
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.value)
	}
	return out, nil
}

func fieldTypeError(field, want string, got lua.LValue) error {
	return &ParseError{
		Message: fmt.Sprintf("invalid '%s' field", field),
		Detail:  fmt.Sprintf("expected %s, got %s", want, got.Type()),
	}
}

// FormatError formats a ParseError for user display.
// In verbose mode, show the raw Lua error. Otherwise, show friendly message.
func FormatError(err error, verbose bool) string {
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		return err.Error()
	}

	prefix := parseErr.Message
	if parseErr.File != "" {
		prefix = parseErr.File + ": " + prefix
	}
	if verbose {
		return fmt.Sprintf("%s\n\nDetails:\n%s", prefix, parseErr.Detail)
	}
	// Extract the most relevant part of the error
	detail := parseErr.Detail
	if idx := strings.Index(detail, "stack traceback"); idx > 0 {
		detail = strings.TrimSpace(detail[:idx])
	}
	return fmt.Sprintf("%s: %s", prefix, detail)
}
