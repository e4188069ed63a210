package config

import "time"

// Lua schema field names and globals
const (
	luaGlobalPhpfind    = "phpfind"
	luaFieldName        = "name"
	luaFieldCommand     = "command"
	luaFieldVersionFlag = "version_flag"
	luaFieldProduct     = "product_token"
	luaFieldVendor      = "vendor_token"
	luaFieldTimeout     = "timeout_seconds"
	luaFieldCacheFile   = "cache_file"
	luaFieldDefaults    = "defaults"
	luaFieldIntegrity   = "integrity"
	luaFieldSHA256      = "sha256"
	luaFieldKeyring     = "keyring"
)

// Limits applied while loading a configuration.
const (
	MaxConfigSize     = 1 << 20
	ParseTimeout      = 5 * time.Second
	MaxDefaults       = 64
	MaxTimeoutSeconds = 60
)

const (
	// EnvConfig overrides the configuration file location.
	EnvConfig = "PHPFIND_CONFIG"
	// FileName is the configuration file name under the user config dir.
	FileName = "phpfind.lua"
)
