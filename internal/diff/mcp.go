package diff

import (
	"strings"
	"time"

	v1 "github.com/Smarty-Pants-Inc/letta-sync/api/v1"
	"github.com/google/uuid"
)

var secretLikeEnvPatterns = []string{"token", "key", "secret", "password", "auth"}

// classifyCredentialStatus infers how an MCP server's credentials appear to
// be configured from its type, token ref, and env var names (spec.md
// §4.3). Generalized from the teacher's DatabricksConfig secret-ref
// resolution pattern (SPEC_FULL.md, Supplemented Features).
func classifyCredentialStatus(spec *v1.MCPServerSpec) v1.CredentialStatus {
	if spec == nil {
		return v1.CredentialUnknown
	}
	if spec.TokenRef != nil {
		return v1.CredentialConfigured
	}
	if oauth, ok := spec.Env["oauth"]; ok && oauth != "" {
		return v1.CredentialOAuth
	}
	for k := range spec.Env {
		lower := strings.ToLower(k)
		for _, pattern := range secretLikeEnvPatterns {
			if strings.Contains(lower, pattern) {
				return v1.CredentialConfigured
			}
		}
	}
	if spec.Protocol == v1.MCPProtocolStdio {
		return v1.CredentialNone
	}
	return v1.CredentialUnknown
}

// DiffMCPServers is observe-only: it never emits mutating actions, only
// classification plus per-server credential status for the setup report
// (spec.md §4.3, §4.9).
func DiffMCPServers(desired []*v1.Resource, actual []v1.RemoteEntry, reconcilerID string, opts Options) *v1.DiffResult {
	byName := desiredByName(desired)
	result := &v1.DiffResult{
		ID:           uuid.NewString(),
		Kind:         v1.KindMCPServer,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		DriftDetails: map[string][]v1.Drift{},
	}

	for _, remote := range actual {
		if !opts.nameAllowed(remote.Name) {
			continue
		}
		_, inManifest := byName[remote.Name]
		hasMarker := reconcilerManagedBy(remote) == reconcilerID
		class := Classify(hasMarker, inManifest)
		remote.CredentialStatus = v1.CredentialUnknown
		if desiredEntry, ok := byName[remote.Name]; ok {
			remote.CredentialStatus = classifyCredentialStatus(desiredEntry.MCPServer)
		}
		result.Classified = append(result.Classified, v1.ClassifiedEntry{Remote: remote, Class: class})
	}

	for name, r := range byName {
		found := false
		for _, remote := range actual {
			if remote.Name == name {
				found = true
				break
			}
		}
		if !found {
			result.Classified = append(result.Classified, v1.ClassifiedEntry{
				Remote: v1.RemoteEntry{Name: name, Kind: v1.KindMCPServer, CredentialStatus: classifyCredentialStatus(r.MCPServer)},
				Class:  v1.Unmanaged,
			})
		}
	}

	return result
}
