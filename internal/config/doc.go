// Package config loads the optional phpfind Lua configuration.
//
// # Overview
//
// A configuration file is plain Lua that assigns a global phpfind table:
//
//	phpfind = {
//	  name = "PHP",
//	  command = "php",
//	  version_flag = "-v",
//	  product_token = "PHP",
//	  vendor_token = "The PHP Group",
//	  timeout_seconds = 2,
//	  cache_file = "/var/cache/phpfind/saved_php_path.txt",
//	  defaults = {
//	    platform.is_windows and "d:\\php\\php.exe" or "/usr/local/bin/php",
//	  },
//	  integrity = {
//	    sha256 = { "9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08" },
//	    keyring = "/etc/phpfind/php-release.asc",
//	  },
//	}
//
// Every field is optional. Unset fields fall back to the built-in PHP target,
// the default probe timeout, and the default cache location.
//
// # Sandbox
//
// The file runs in a gopher-lua VM with os, io, debug, module loading,
// metatable access and garbage collector control removed. The read-only
// platform table describes the host so one file can serve several machines.
// Parsing is bounded by MaxConfigSize and ParseTimeout.
//
// # Lookup
//
// Load checks, in order, an explicit path, $PHPFIND_CONFIG, and
// phpfind/phpfind.lua under the user configuration directory. Only an
// explicit path must exist.
package config
