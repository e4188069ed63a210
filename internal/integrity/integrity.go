// Package integrity pins a launcher to known content before phpfind accepts it.
//
// # Policies
//
// A Policy may carry SHA256 digests, an OpenPGP keyring, or both:
//   - SHA256: the launcher file must hash to one of the listed digests.
//   - Keyring: a detached signature must sit beside the launcher (path+".asc"
//     or path+".sig", armored or binary) and verify against the keyring.
//
// When both are configured both must pass. An empty Policy accepts every file,
// so callers only pay for hashing when a pin exists.
package integrity

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // Using ProtonMail's maintained fork
)

var (
	ErrDigestMismatch   = errors.New("launcher digest does not match any pinned SHA256")
	ErrSignatureMissing = errors.New("no detached signature found beside launcher")
	ErrSignatureInvalid = errors.New("launcher signature did not verify")
)

// DefaultSignatureSuffixes lists where a detached signature is looked for.
var DefaultSignatureSuffixes = []string{".asc", ".sig"}

// Policy describes what a launcher must match.
type Policy struct {
	SHA256            []string
	KeyringPath       string
	SignatureSuffixes []string
}

// Enabled reports whether the policy pins anything.
func (p Policy) Enabled() bool {
	return len(p.SHA256) > 0 || p.KeyringPath != ""
}

// Method indicates how a launcher was verified
type Method int

const (
	// MethodNone means no pin was configured
	MethodNone Method = iota
	// MethodSHA256 means the launcher matched a pinned digest
	MethodSHA256
	// MethodGPG means a detached signature verified
	MethodGPG
	// MethodBoth means digest and signature both verified
	MethodBoth
)

// String returns the string representation of the verification method
func (m Method) String() string {
	switch m {
	case MethodNone:
		return "None"
	case MethodSHA256:
		return "SHA256"
	case MethodGPG:
		return "GPG"
	case MethodBoth:
		return "SHA256+GPG"
	default:
		return "Unknown"
	}
}

// Result contains the outcome of a verification attempt
type Result struct {
	Method  Method
	Success bool
	Error   error
}

// Verifier checks launchers against a Policy.
type Verifier struct {
	policy  Policy
	keyring openpgp.EntityList
}

// NewVerifier creates a verifier for the policy. The keyring, if any, is
// loaded up front so a broken keyring surfaces at startup.
func NewVerifier(policy Policy) (*Verifier, error) {
	v := &Verifier{policy: policy}
	if len(v.policy.SignatureSuffixes) == 0 {
		v.policy.SignatureSuffixes = DefaultSignatureSuffixes
	}

	if policy.KeyringPath != "" {
		keyring, err := loadKeyring(policy.KeyringPath)
		if err != nil {
			return nil, fmt.Errorf("load keyring: %w", err)
		}
		v.keyring = keyring
	}

	return v, nil
}

// Policy returns the policy the verifier enforces.
func (v *Verifier) Policy() Policy {
	return v.policy
}

// Verify checks the launcher at path. The returned error is non-nil exactly
// when Result.Success is false.
func (v *Verifier) Verify(path string) (*Result, error) {
	result := &Result{Method: MethodNone, Success: true}

	if len(v.policy.SHA256) > 0 {
		if err := v.verifySHA256(path); err != nil {
			return &Result{Method: MethodSHA256, Error: err}, err
		}
		result.Method = MethodSHA256
	}

	if v.keyring != nil {
		if err := v.verifyGPG(path); err != nil {
			return &Result{Method: MethodGPG, Error: err}, err
		}
		if result.Method == MethodSHA256 {
			result.Method = MethodBoth
		} else {
			result.Method = MethodGPG
		}
	}

	return result, nil
}

// verifySHA256 compares the launcher digest against the pinned list
func (v *Verifier) verifySHA256(path string) error {
	actual, err := calculateSHA256(path)
	if err != nil {
		return fmt.Errorf("calculate checksum: %w", err)
	}

	for _, want := range v.policy.SHA256 {
		if strings.EqualFold(actual, strings.TrimSpace(want)) {
			return nil
		}
	}

	return fmt.Errorf("%w: actual %s", ErrDigestMismatch, actual)
}

// verifyGPG verifies the detached signature stored beside the launcher
func (v *Verifier) verifyGPG(path string) error {
	sigPath := v.findSignature(path)
	if sigPath == "" {
		return fmt.Errorf("%w: %s", ErrSignatureMissing, path)
	}

	launcher, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open launcher: %w", err)
	}
	defer launcher.Close()

	sig, err := os.Open(sigPath)
	if err != nil {
		return fmt.Errorf("open signature: %w", err)
	}
	defer sig.Close()

	// Try armored first
	_, err = openpgp.CheckArmoredDetachedSignature(v.keyring, launcher, sig, nil)
	if err != nil {
		if _, serr := launcher.Seek(0, io.SeekStart); serr != nil {
			return fmt.Errorf("rewind launcher: %w", serr)
		}
		if _, serr := sig.Seek(0, io.SeekStart); serr != nil {
			return fmt.Errorf("rewind signature: %w", serr)
		}
		_, err = openpgp.CheckDetachedSignature(v.keyring, launcher, sig, nil)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	}

	return nil
}

// findSignature returns the first existing signature file for path
func (v *Verifier) findSignature(path string) string {
	for _, suffix := range v.policy.SignatureSuffixes {
		candidate := path + suffix
		info, err := os.Stat(candidate)
		if err == nil && info.Mode().IsRegular() {
			return candidate
		}
	}
	return ""
}

// loadKeyring loads an armored or binary OpenPGP keyring
func loadKeyring(path string) (openpgp.EntityList, error) {
	keyringFile, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open keyring: %w", err)
	}
	defer keyringFile.Close()

	keyring, err := openpgp.ReadArmoredKeyRing(keyringFile)
	if err != nil {
		if _, serr := keyringFile.Seek(0, io.SeekStart); serr != nil {
			return nil, fmt.Errorf("rewind keyring: %w", serr)
		}
		keyring, err = openpgp.ReadKeyRing(keyringFile)
		if err != nil {
			return nil, fmt.Errorf("read keyring: %w", err)
		}
	}

	if len(keyring) == 0 {
		return nil, fmt.Errorf("keyring is empty")
	}

	return keyring, nil
}

// calculateSHA256 calculates the SHA256 checksum of a file
func calculateSHA256(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}
