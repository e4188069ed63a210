// Package testutil provides utilities for testing phpfind in isolation.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// Env describes the isolated directories created by SetupTestEnv.
type Env struct {
	Root       string // temp root, removed by the testing framework
	Bin        string // prepended to PATH
	CacheFile  string // value of PHPFIND_CACHE_FILE
	ConfigFile string // value of PHPFIND_CONFIG (not created)
}

// SetupTestEnv creates isolated test directories for each test.
// This ensures tests never read or overwrite the user's real cache file or
// configuration, and that stub launchers placed in Env.Bin shadow anything
// installed on the host.
func SetupTestEnv(t *testing.T) Env {
	t.Helper()

	tmpDir := t.TempDir()
	env := Env{
		Root:       tmpDir,
		Bin:        filepath.Join(tmpDir, "bin"),
		CacheFile:  filepath.Join(tmpDir, "cache", "saved_php_path.txt"),
		ConfigFile: filepath.Join(tmpDir, "config", "phpfind.lua"),
	}

	for _, dir := range []string{env.Bin, filepath.Dir(env.CacheFile), filepath.Dir(env.ConfigFile)} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			t.Fatalf("failed to create test directory %s: %v", dir, err)
		}
	}

	t.Setenv("PHPFIND_CACHE_FILE", env.CacheFile)
	t.Setenv("PHPFIND_CONFIG", env.ConfigFile)
	t.Setenv("PHPFIND_DEBUG", "")
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	t.Setenv("PATH", env.Bin+string(os.PathListSeparator)+os.Getenv("PATH"))

	return env
}

// RequireShell skips the test on hosts that cannot run the /bin/sh stub
// launchers written by WriteScript.
func RequireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub launchers need /bin/sh")
	}
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("stub launchers need /bin/sh")
	}
}

// WriteScript writes an executable /bin/sh script and returns its path.
func WriteScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	RequireShell(t)

	path := filepath.Join(dir, name)
	content := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		t.Fatalf("cannot create stub script %s: %v", path, err)
	}
	return path
}

// WriteLauncher writes a stub launcher that answers its version flag with
// the given lines on stdout.
func WriteLauncher(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()

	var body strings.Builder
	for _, line := range lines {
		fmt.Fprintf(&body, "printf '%%s\\n' '%s'\n", strings.ReplaceAll(line, "'", `'\''`))
	}
	return WriteScript(t, dir, name, body.String())
}

// WriteRuntime writes a stub launcher that passes validation for the mock
// tokens RuntimeToken and VendorToken.
func WriteRuntime(t *testing.T, dir, name string) string {
	t.Helper()
	return WriteLauncher(t, dir, name,
		RuntimeToken+" 8.3.4 (cli) (built: Mar 12 2024)",
		"Copyright (c) "+VendorToken,
	)
}

// Mock identification tokens used by stub launchers.
const (
	RuntimeToken = "RUNTIME"
	VendorToken  = "The Vendor Group"
)
