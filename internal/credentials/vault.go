package credentials

import (
	"bufio"
	"bytes"
	"context"
	"strings"
)

// Vault is the encrypted-secrets-store collaborator (spec.md §6.4 step
// 3). The engine ships no concrete vault implementation — a real one
// would wrap an OS keychain or a secrets manager — but the interface
// lets a caller plug one in without touching the resolution chain.
type Vault interface {
	// Decrypt returns the credential for target, or ok=false if the
	// vault has no entry (not an error).
	Decrypt(ctx context.Context, target string) (token string, ok bool, err error)
}

// parseSettingsToken reads a simple "key = value" settings file (one
// entry per target base URL, falling back to a bare "token = ..." line
// with no target qualifier) and returns the token for target, or "" if
// none matches. Kept intentionally simple: spec.md doesn't define a
// settings-file format, only that one exists.
func parseSettingsToken(raw []byte, target string) string {
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	fallback := ""
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "token" {
			fallback = value
			continue
		}
		if key == target {
			return value
		}
	}
	return fallback
}
