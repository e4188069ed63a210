package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ZebulonRouseFrantzich/phpfind/internal/config"
	"github.com/ZebulonRouseFrantzich/phpfind/internal/testutil"
)

const runtimeCommand = "phpfind-test-runtime"

// runtimeConfig points phpfind at the mock runtime so a PHP installed on the
// host never satisfies a test.
const runtimeConfig = `
phpfind = {
	name = "Runtime",
	command = "` + runtimeCommand + `",
	product_token = "RUNTIME",
	vendor_token = "The Vendor Group",
	timeout_seconds = 1,
}
`

func setup(t *testing.T) testutil.Env {
	t.Helper()
	env := testutil.SetupTestEnv(t)
	if err := os.WriteFile(env.ConfigFile, []byte(runtimeConfig), 0o644); err != nil {
		t.Fatal(err)
	}
	return env
}

func execute(t *testing.T, stdin string, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(context.Background(), args, strings.NewReader(stdin), &out, &errOut)
	return out.String(), errOut.String(), code
}

func TestRun_Version(t *testing.T) {
	setup(t)

	for _, args := range [][]string{{"version"}, {"--version"}} {
		stdout, _, code := execute(t, "", args...)
		if code != 0 {
			t.Errorf("%v exit code = %d", args, code)
		}
		if !strings.HasPrefix(stdout, "phpfind "+Version) {
			t.Errorf("%v output = %q", args, stdout)
		}
	}
}

func TestRun_Locate_CommandOnPath(t *testing.T) {
	env := setup(t)
	testutil.WriteRuntime(t, env.Bin, runtimeCommand)

	stdout, stderr, code := execute(t, "", "locate")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr:\n%s", code, stderr)
	}
	if strings.TrimSpace(stdout) != runtimeCommand {
		t.Errorf("stdout = %q, want %q", stdout, runtimeCommand)
	}
	if _, err := os.Stat(env.CacheFile); !os.IsNotExist(err) {
		t.Error("automatic discovery should not write the cache")
	}
}

func TestRun_Locate_NotFound(t *testing.T) {
	setup(t)

	for _, args := range [][]string{{"locate"}, {"locate", "--no-prompt"}} {
		stdout, stderr, code := execute(t, "/some/path\n", args...)
		if code != 1 {
			t.Errorf("%v exit code = %d, want 1", args, code)
		}
		if stdout != "" {
			t.Errorf("%v stdout = %q, want nothing (stdin is not a terminal)", args, stdout)
		}
		if !strings.Contains(stderr, "Runtime launcher not found") {
			t.Errorf("%v stderr = %q", args, stderr)
		}
		if strings.Contains(stderr, "Error:") {
			t.Errorf("%v absence reported as an error: %q", args, stderr)
		}
	}
}

func TestRun_Locate_PromptAndCache(t *testing.T) {
	env := setup(t)
	good := testutil.WriteRuntime(t, env.Root, "runtime")
	bad := filepath.Join(env.Root, "missing")

	stdout, stderr, code := execute(t, bad+"\n"+good+"\n", "locate", "--prompt")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr:\n%s", code, stderr)
	}
	if !strings.Contains(stdout, "Unable to find Runtime executable.") {
		t.Errorf("missing header:\n%s", stdout)
	}
	if !strings.Contains(stdout, "The Runtime server was not found at that location.") {
		t.Errorf("missing rejection:\n%s", stdout)
	}
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if last := lines[len(lines)-1]; !strings.HasSuffix(last, good) {
		t.Errorf("last line = %q, want path %q", last, good)
	}

	stdout, _, code = execute(t, "", "cache", "show")
	if code != 0 {
		t.Fatalf("cache show exit code = %d", code)
	}
	if !strings.Contains(stdout, "file: "+env.CacheFile) || !strings.Contains(stdout, "path: "+good) {
		t.Errorf("cache show = %q", stdout)
	}

	stdout, _, code = execute(t, "", "locate", "--no-prompt")
	if code != 0 || strings.TrimSpace(stdout) != good {
		t.Errorf("cached locate = %q (exit %d), want %q", stdout, code, good)
	}

	if _, _, code := execute(t, "", "cache", "clear"); code != 0 {
		t.Fatalf("cache clear exit code = %d", code)
	}
	stdout, _, _ = execute(t, "", "cache", "show")
	if !strings.Contains(stdout, "path: (none)") {
		t.Errorf("cache show after clear = %q", stdout)
	}
}

func TestRun_Locate_Verbose(t *testing.T) {
	env := setup(t)
	wrong := testutil.WriteLauncher(t, env.Root, "wrong", "Other 1.0", "Nobody")
	if err := os.WriteFile(env.CacheFile, []byte(wrong), 0o644); err != nil {
		t.Fatal(err)
	}
	testutil.WriteRuntime(t, env.Bin, runtimeCommand)

	stdout, stderr, code := execute(t, "", "locate", "--verbose")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr:\n%s", code, stderr)
	}
	if strings.TrimSpace(stdout) != runtimeCommand {
		t.Errorf("stdout = %q", stdout)
	}
	if !strings.Contains(stderr, wrong+": wrong program: unexpected version output") {
		t.Errorf("stderr missing stale cache verdict:\n%s", stderr)
	}
	if !strings.Contains(stderr, runtimeCommand+": accepted") {
		t.Errorf("stderr missing accepted verdict:\n%s", stderr)
	}

	data, err := os.ReadFile(env.CacheFile)
	if err != nil || string(data) != wrong {
		t.Errorf("stale cache = %q, %v; want it left untouched", data, err)
	}
}

func TestRun_Locate_IntegrityPinRejects(t *testing.T) {
	env := setup(t)
	testutil.WriteRuntime(t, env.Bin, runtimeCommand)

	pinned := strings.Replace(runtimeConfig, "timeout_seconds = 1,",
		"timeout_seconds = 1,\n\tintegrity = { sha256 = \""+strings.Repeat("0", 64)+"\" },", 1)
	if err := os.WriteFile(env.ConfigFile, []byte(pinned), 0o644); err != nil {
		t.Fatal(err)
	}

	stdout, stderr, code := execute(t, "", "--debug", "locate", "--no-prompt", "--verbose")
	if code != 1 {
		t.Fatalf("exit code = %d, want 1; stdout = %q", code, stdout)
	}
	for _, want := range []string{
		"integrity pinning enabled",
		"sha256_pins=1",
		runtimeCommand + ": untrusted",
	} {
		if !strings.Contains(stderr, want) {
			t.Errorf("stderr missing %q:\n%s", want, stderr)
		}
	}
}

func TestRun_Locate_FlagsExclusive(t *testing.T) {
	setup(t)

	_, stderr, code := execute(t, "", "locate", "--prompt", "--no-prompt")
	if code != 1 || !strings.Contains(stderr, "Error:") {
		t.Errorf("exit code = %d, stderr = %q; want flag error", code, stderr)
	}
}

func TestRun_Defaults(t *testing.T) {
	env := setup(t)
	cfg := runtimeConfig + "\nphpfind.defaults = { \"/opt/extra/runtime\" }\n"
	if err := os.WriteFile(env.ConfigFile, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	stdout, stderr, code := execute(t, "", "defaults")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr:\n%s", code, stderr)
	}
	for _, want := range []string{"family: ", "locations:", "  /opt/extra/runtime"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("defaults output missing %q:\n%s", want, stdout)
		}
	}
}

func TestRun_ConfigShow(t *testing.T) {
	env := setup(t)

	stdout, _, code := execute(t, "", "config", "show")
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	for _, want := range []string{
		"-- loaded from " + env.ConfigFile,
		`command = "` + runtimeCommand + `",`,
		`version_flag = "-v",`,
		`timeout_seconds = 1,`,
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("config show missing %q:\n%s", want, stdout)
		}
	}
}

func TestRun_ConfigShow_NoFile(t *testing.T) {
	testutil.SetupTestEnv(t)

	stdout, _, code := execute(t, "", "config", "show")
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(stdout, "built-in defaults") || !strings.Contains(stdout, `vendor_token = "The PHP Group",`) {
		t.Errorf("config show = %q", stdout)
	}
}

func TestRun_ConfigPath(t *testing.T) {
	testutil.SetupTestEnv(t)

	want, err := config.DefaultPath()
	if err != nil {
		t.Skipf("no user config dir: %v", err)
	}
	stdout, _, code := execute(t, "", "config", "path")
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if strings.TrimSpace(stdout) != want {
		t.Errorf("config path = %q, want %q", stdout, want)
	}
}

func TestRun_BadConfig(t *testing.T) {
	env := testutil.SetupTestEnv(t)
	if err := os.WriteFile(env.ConfigFile, []byte(`phpfind = { timeout_seconds = "soon" }`), 0o644); err != nil {
		t.Fatal(err)
	}

	_, stderr, code := execute(t, "", "locate", "--no-prompt")
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr, "Error: "+env.ConfigFile) || !strings.Contains(stderr, "timeout_seconds") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestRun_ExplicitConfigMissing(t *testing.T) {
	env := setup(t)

	_, stderr, code := execute(t, "", "--config", filepath.Join(env.Root, "nope.lua"), "locate")
	if code != 1 || !strings.Contains(stderr, "Error:") {
		t.Errorf("exit code = %d, stderr = %q", code, stderr)
	}
}

func TestRun_LogFile(t *testing.T) {
	env := setup(t)
	logFile := filepath.Join(env.Root, "logs", "phpfind.log")

	if _, _, code := execute(t, "", "--log-file", logFile, "locate", "--no-prompt"); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"validated candidate"`) {
		t.Errorf("log file missing validation records:\n%s", data)
	}
}

func TestRun_Debug(t *testing.T) {
	setup(t)

	_, stderr, _ := execute(t, "", "--debug", "locate", "--no-prompt")
	if !strings.Contains(stderr, "level=DEBUG") {
		t.Errorf("stderr has no debug records:\n%s", stderr)
	}
}
