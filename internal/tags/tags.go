// Package tags implements the engine's tag grammar, validation, diff and
// merge rules (spec.md §4.7). Tags are the engine's only metadata channel
// for kinds (tools) that have no remote metadata object of their own.
package tags

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/stoewer/go-strcase"
)

var (
	namespacePattern = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)
	valuePattern     = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)
	versionPattern   = regexp.MustCompile(`^[a-f0-9]{7,40}$`)
)

// Tag is a parsed `namespace:value[@sha]` tag.
type Tag struct {
	Namespace string
	Value     string
	Version   string
}

func (t Tag) String() string {
	if t.Version != "" {
		return fmt.Sprintf("%s:%s@%s", t.Namespace, t.Value, t.Version)
	}
	return fmt.Sprintf("%s:%s", t.Namespace, t.Value)
}

// reservedValues lists the fixed value vocabulary for namespaces that
// constrain it; namespaces absent from this map accept any grammar-valid
// value.
var reservedValues = map[string][]string{
	"layer":   {"base", "org", "project", "user", "lane"},
	"channel": {"stable", "beta", "pinned"},
}

// ReconcilerID is the literal value the `managed` namespace must carry.
// Defaults to "letta-sync" and no code in this module reassigns it;
// exported as a var (not a const) so tests and alternate deployments can
// override it without touching this package.
var ReconcilerID = "letta-sync"

// Parse splits a raw tag string into its namespace/value/version parts
// without validating grammar; callers that need validation should call
// Validate on the result.
func Parse(raw string) (Tag, error) {
	namespace, rest, ok := strings.Cut(raw, ":")
	if !ok {
		return Tag{}, fmt.Errorf("tag %q missing ':' separator", raw)
	}
	value, version, _ := strings.Cut(rest, "@")
	return Tag{Namespace: namespace, Value: value, Version: version}, nil
}

// Validate checks a parsed tag against the grammar and, for reserved
// namespaces, against the allowed value vocabulary.
func Validate(t Tag) error {
	if !namespacePattern.MatchString(t.Namespace) {
		return fmt.Errorf("invalid tag namespace %q", t.Namespace)
	}
	if !valuePattern.MatchString(t.Value) {
		return fmt.Errorf("invalid tag value %q in namespace %q", t.Value, t.Namespace)
	}
	if t.Version != "" && !versionPattern.MatchString(t.Version) {
		return fmt.Errorf("invalid tag version suffix %q", t.Version)
	}

	switch t.Namespace {
	case "managed":
		if t.Value != ReconcilerID {
			return fmt.Errorf("namespace %q only accepts value %q, got %q", t.Namespace, ReconcilerID, t.Value)
		}
	case "applied":
		if t.Version == "" {
			return fmt.Errorf("namespace %q requires a version suffix", t.Namespace)
		}
	default:
		if allowed, ok := reservedValues[t.Namespace]; ok && !contains(allowed, t.Value) {
			return fmt.Errorf("namespace %q does not accept value %q (allowed: %v)", t.Namespace, t.Value, allowed)
		}
	}
	return nil
}

// ValidateAll validates every tag in a slice. In strict mode, the first
// invalid tag returns an error; in lenient mode, invalid/unrecognized tags
// are silently dropped from the returned, cleaned slice and no error is
// returned (spec.md §4.7: "lenient mode preserves unknown tags on
// remotes" — here "unknown" means grammar-valid but non-reserved, which
// lenient mode always keeps; tags that fail Parse or Validate, whether on
// grammar or on a reserved namespace's value vocabulary, are dropped).
func ValidateAll(raw []string, strict bool) ([]string, error) {
	cleaned := make([]string, 0, len(raw))
	for _, r := range raw {
		t, err := Parse(r)
		if err != nil {
			if strict {
				return nil, err
			}
			continue
		}
		if err := Validate(t); err != nil {
			if strict {
				return nil, err
			}
			continue
		}
		cleaned = append(cleaned, r)
	}
	return cleaned, nil
}

// NormalizeValue lowercases and hyphenates a free-form string (e.g. an org
// or project name) into a grammar-valid tag value.
func NormalizeValue(s string) string {
	return strcase.KebabCase(strings.TrimSpace(s))
}

// IsManagementNamespace reports whether a namespace is one the engine
// writes rather than the operator.
//
// spec.md §4.3 illustrates tool management tags with underscores
// (managed_by, package_version, last_synced); the grammar fixed in §4.7
// forbids underscores in namespaces. We resolve the tension in favor of
// the grammar and use the hyphenated spellings below everywhere a tag is
// actually constructed; IsManagementNamespace also recognizes the
// underscore spellings so tags written by a pre-existing tenant (or a
// hand-authored manifest) are still classified correctly.
func IsManagementNamespace(namespace string) bool {
	switch namespace {
	case "managed", "managed-by", "managed_by",
		"layer", "channel", "org", "project", "role", "applied",
		"package-version", "package_version",
		"last-synced", "last_synced":
		return true
	default:
		return false
	}
}

const (
	NamespaceManagedBy      = "managed-by"
	NamespacePackageVersion = "package-version"
	NamespaceLastSynced     = "last-synced"
)

func contains(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
