package v1

// OwnershipClass buckets a remote resource against the manifest index
// (spec.md §3, §4.3).
type OwnershipClass string

const (
	Managed   OwnershipClass = "MANAGED"
	Orphaned  OwnershipClass = "ORPHANED"
	Adopted   OwnershipClass = "ADOPTED"
	Unmanaged OwnershipClass = "UNMANAGED"
)

// DriftType names the kind of difference a Drift record describes.
type DriftType string

const (
	DriftFieldChanged DriftType = "field_changed"
	DriftFieldAdded   DriftType = "field_added"
	DriftFieldRemoved DriftType = "field_removed"
)

// Drift is one field-level difference between desired and actual state.
type Drift struct {
	Type    DriftType
	Field   string
	Actual  any
	Desired any
}

// CredentialStatus classifies how an MCP server's credentials appear to be
// configured, inferred from server type/token refs/env var names (spec.md
// §4.3).
type CredentialStatus string

const (
	CredentialNone      CredentialStatus = "None"
	CredentialConfigured CredentialStatus = "Configured"
	CredentialOAuth     CredentialStatus = "OAuth"
	CredentialUnknown   CredentialStatus = "Unknown"
)

// RemoteEntry is one resource as listed by the remote platform, enough of
// its shape for classification and drift computation without depending on
// the api client package (avoids an import cycle: internal/apiclient would
// otherwise need to import internal/diff's result types and vice versa).
type RemoteEntry struct {
	RemoteID    string
	Name        string
	Kind        Kind
	Metadata    map[string]any
	Tags        []string
	Fields      map[string]any
	CredentialStatus CredentialStatus
}

// ClassifiedEntry pairs a remote entry with its computed ownership class.
type ClassifiedEntry struct {
	Remote RemoteEntry
	Class  OwnershipClass
}

// DiffResult is the per-kind diff engine's output (spec.md §4.3).
type DiffResult struct {
	ID            string
	Kind          Kind
	Timestamp     string
	Classified    []ClassifiedEntry
	DriftDetails  map[string][]Drift
	Actions       []PlanAction
}

// PlanActionType enumerates the action kinds a diff/plan step may emit.
type PlanActionType string

const (
	ActionCreate PlanActionType = "create"
	ActionUpdate PlanActionType = "update"
	ActionAdopt  PlanActionType = "adopt"
	ActionDelete PlanActionType = "delete"
	ActionSkip   PlanActionType = "skip"
)

// FieldChange is one field-level change carried on a PlanAction.
type FieldChange struct {
	Field    string
	OldValue any
	NewValue any
}

// PlanAction is a single planned mutation (or explicit no-op) against one
// resource (spec.md §3).
type PlanAction struct {
	Type           PlanActionType
	ResourceKind   Kind
	ResourceName   string
	RemoteID       string
	Reason         string
	Changes        []FieldChange

	// Agent-upgrade-only fields; zero-valued for reconcile-plan actions.
	Classification UpgradeClassification
}

// UpgradeClassification is the safe/breaking label an upgrade action
// carries (spec.md §4.5).
type UpgradeClassification string

const (
	ClassificationUnspecified UpgradeClassification = ""
	ClassificationSafe        UpgradeClassification = "safe"
	ClassificationBreaking    UpgradeClassification = "breaking"
)
