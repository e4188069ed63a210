package integrity

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ProtonMail/go-crypto/openpgp"       //nolint:staticcheck // Using ProtonMail's maintained fork
	"github.com/ProtonMail/go-crypto/openpgp/armor" //nolint:staticcheck // Using ProtonMail's maintained fork
)

// testSigner generates a throwaway key and writes its armored public key.
func testSigner(t *testing.T, dir string) (*openpgp.Entity, string) {
	t.Helper()

	entity, err := openpgp.NewEntity("phpfind test", "", "test@example.invalid", nil)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	var buf bytes.Buffer
	w, err := armor.Encode(&buf, openpgp.PublicKeyType, nil)
	if err != nil {
		t.Fatalf("armor encode: %v", err)
	}
	if err := entity.Serialize(w); err != nil {
		t.Fatalf("serialize key: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close armor: %v", err)
	}

	keyringPath := filepath.Join(dir, "keyring.asc")
	if err := os.WriteFile(keyringPath, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write keyring: %v", err)
	}
	return entity, keyringPath
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func sign(t *testing.T, signer *openpgp.Entity, path string, armored bool) {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	var sig bytes.Buffer
	suffix := ".sig"
	if armored {
		suffix = ".asc"
		err = openpgp.ArmoredDetachSign(&sig, signer, f, nil)
	} else {
		err = openpgp.DetachSign(&sig, signer, f, nil)
	}
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if err := os.WriteFile(path+suffix, sig.Bytes(), 0o644); err != nil {
		t.Fatalf("write signature: %v", err)
	}
}

func digest(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

func TestPolicy_Enabled(t *testing.T) {
	tests := []struct {
		name   string
		policy Policy
		want   bool
	}{
		{"empty", Policy{}, false},
		{"suffixes only", Policy{SignatureSuffixes: []string{".asc"}}, false},
		{"digest", Policy{SHA256: []string{"abc"}}, true},
		{"keyring", Policy{KeyringPath: "/etc/keys.asc"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.policy.Enabled(); got != tt.want {
				t.Errorf("Enabled() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVerifier_SHA256(t *testing.T) {
	dir := t.TempDir()
	launcher := filepath.Join(dir, "php")
	content := "#!/bin/sh\necho PHP\n"
	writeFile(t, launcher, content)

	tests := []struct {
		name    string
		pins    []string
		wantErr error
	}{
		{"matching pin", []string{digest(content)}, nil},
		{"uppercase pin", []string{strings.ToUpper(digest(content))}, nil},
		{"second pin matches", []string{digest("other"), digest(content)}, nil},
		{"no pin matches", []string{digest("other")}, ErrDigestMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := NewVerifier(Policy{SHA256: tt.pins})
			if err != nil {
				t.Fatalf("NewVerifier() error = %v", err)
			}

			result, err := v.Verify(launcher)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Verify() error = %v", err)
				}
				if !result.Success || result.Method != MethodSHA256 {
					t.Errorf("result = %+v, want SHA256 success", result)
				}
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Verify() error = %v, want %v", err, tt.wantErr)
			}
			if result.Success {
				t.Error("expected verification to fail")
			}
		})
	}
}

func TestVerifier_SHA256_MissingFile(t *testing.T) {
	v, err := NewVerifier(Policy{SHA256: []string{digest("x")}})
	if err != nil {
		t.Fatalf("NewVerifier() error = %v", err)
	}
	if _, err := v.Verify(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing launcher")
	}
}

func TestVerifier_GPG(t *testing.T) {
	dir := t.TempDir()
	signer, keyringPath := testSigner(t, dir)

	armored := filepath.Join(dir, "php-armored")
	writeFile(t, armored, "armored launcher")
	sign(t, signer, armored, true)

	binarySig := filepath.Join(dir, "php-binary")
	writeFile(t, binarySig, "binary-signed launcher")
	sign(t, signer, binarySig, false)

	unsigned := filepath.Join(dir, "php-unsigned")
	writeFile(t, unsigned, "unsigned launcher")

	tampered := filepath.Join(dir, "php-tampered")
	writeFile(t, tampered, "original")
	sign(t, signer, tampered, true)
	writeFile(t, tampered, "modified")

	v, err := NewVerifier(Policy{KeyringPath: keyringPath})
	if err != nil {
		t.Fatalf("NewVerifier() error = %v", err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{"armored signature", armored, nil},
		{"binary signature", binarySig, nil},
		{"missing signature", unsigned, ErrSignatureMissing},
		{"tampered launcher", tampered, ErrSignatureInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := v.Verify(tt.path)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Verify() error = %v", err)
				}
				if result.Method != MethodGPG {
					t.Errorf("Method = %v, want %v", result.Method, MethodGPG)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Verify() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestVerifier_Both(t *testing.T) {
	dir := t.TempDir()
	signer, keyringPath := testSigner(t, dir)

	launcher := filepath.Join(dir, "php")
	writeFile(t, launcher, "both pins")
	sign(t, signer, launcher, true)

	v, err := NewVerifier(Policy{SHA256: []string{digest("both pins")}, KeyringPath: keyringPath})
	if err != nil {
		t.Fatalf("NewVerifier() error = %v", err)
	}

	result, err := v.Verify(launcher)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if result.Method != MethodBoth {
		t.Errorf("Method = %v, want %v", result.Method, MethodBoth)
	}
}

func TestVerifier_NoPolicy(t *testing.T) {
	v, err := NewVerifier(Policy{})
	if err != nil {
		t.Fatalf("NewVerifier() error = %v", err)
	}

	result, err := v.Verify(filepath.Join(t.TempDir(), "never-read"))
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if !result.Success || result.Method != MethodNone {
		t.Errorf("result = %+v, want unpinned success", result)
	}
}

func TestNewVerifier_BadKeyring(t *testing.T) {
	dir := t.TempDir()

	garbage := filepath.Join(dir, "garbage.asc")
	writeFile(t, garbage, "not a key")

	tests := []struct {
		name string
		path string
	}{
		{"missing keyring", filepath.Join(dir, "missing.asc")},
		{"garbage keyring", garbage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewVerifier(Policy{KeyringPath: tt.path}); err == nil {
				t.Error("expected error for unusable keyring")
			}
		})
	}
}

func TestMethod_String(t *testing.T) {
	tests := []struct {
		method Method
		want   string
	}{
		{MethodNone, "None"},
		{MethodSHA256, "SHA256"},
		{MethodGPG, "GPG"},
		{MethodBoth, "SHA256+GPG"},
		{Method(42), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.method.String(); got != tt.want {
			t.Errorf("Method(%d).String() = %q, want %q", tt.method, got, tt.want)
		}
	}
}
