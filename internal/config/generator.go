package config

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// Generator generates Lua configuration code from a Config.
type Generator struct {
	indent string // Indentation string (default: two spaces)
}

// NewGenerator creates a new Lua config generator.
func NewGenerator() *Generator {
	return &Generator{
		indent: "  ", // Two spaces
	}
}

// Generate writes config as a phpfind table that ParseString reads back to
// an equal Config. Empty fields are omitted.
func (g *Generator) Generate(config *Config) string {
	var buf bytes.Buffer

	buf.WriteString("phpfind = {\n")

	g.writeString(&buf, 1, luaFieldName, config.Name)
	g.writeString(&buf, 1, luaFieldCommand, config.Command)
	g.writeString(&buf, 1, luaFieldVersionFlag, config.VersionFlag)
	g.writeString(&buf, 1, luaFieldProduct, config.ProductToken)
	g.writeString(&buf, 1, luaFieldVendor, config.VendorToken)
	if config.TimeoutSeconds > 0 {
		g.writeLine(&buf, 1, fmt.Sprintf("%s = %s,", luaFieldTimeout, strconv.FormatFloat(config.TimeoutSeconds, 'g', -1, 64)))
	}
	g.writeString(&buf, 1, luaFieldCacheFile, config.CacheFile)
	g.writeList(&buf, 1, luaFieldDefaults, config.Defaults)

	if len(config.Integrity.SHA256) > 0 || config.Integrity.Keyring != "" {
		g.writeLine(&buf, 1, luaFieldIntegrity+" = {")
		g.writeList(&buf, 2, luaFieldSHA256, config.Integrity.SHA256)
		g.writeString(&buf, 2, luaFieldKeyring, config.Integrity.Keyring)
		g.writeLine(&buf, 1, "},")
	}

	buf.WriteString("}\n")

	return buf.String()
}

func (g *Generator) writeLine(buf *bytes.Buffer, depth int, line string) {
	buf.WriteString(strings.Repeat(g.indent, depth))
	buf.WriteString(line)
	buf.WriteString("\n")
}

func (g *Generator) writeString(buf *bytes.Buffer, depth int, field, value string) {
	if value == "" {
		return
	}
	g.writeLine(buf, depth, fmt.Sprintf("%s = %s,", field, g.quoteLuaString(value)))
}

func (g *Generator) writeList(buf *bytes.Buffer, depth int, field string, values []string) {
	if len(values) == 0 {
		return
	}
	g.writeLine(buf, depth, field+" = {")
	for _, v := range values {
		g.writeLine(buf, depth+1, g.quoteLuaString(v)+",")
	}
	g.writeLine(buf, depth, "},")
}

// quoteLuaString quotes a string for Lua, handling special characters.
func (g *Generator) quoteLuaString(s string) string {
	// Use double quotes and escape special characters
	s = strings.ReplaceAll(s, "\\", "\\\\") // Escape backslashes first
	s = strings.ReplaceAll(s, "\"", "\\\"") // Escape double quotes
	s = strings.ReplaceAll(s, "\n", "\\n")  // Escape newlines
	s = strings.ReplaceAll(s, "\r", "\\r")  // Escape carriage returns
	s = strings.ReplaceAll(s, "\t", "\\t")  // Escape tabs
	return "\"" + s + "\""
}
