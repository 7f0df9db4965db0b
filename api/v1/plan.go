package v1

// PlanSummary is the count rollup a ReconcilePlan exposes, kept in sync
// with its bucket sizes by construction (spec.md §4.4 invariant).
// UpgradePlan carries its own UpgradeSummary instead.
type PlanSummary struct {
	ToCreate  int
	ToUpdate  int
	ToDelete  int
	Unchanged int
	Total     int
}

// ReconcilePlan is the output of walking desired entries against remote
// listings across every kind (spec.md §3).
type ReconcilePlan struct {
	ID        string
	Timestamp string
	Creates   []PlanAction
	Updates   []PlanAction
	Deletes   []PlanAction
	Skipped   []PlanAction
	Summary   PlanSummary
}

// Channel is an agent's upgrade channel (spec.md §4.5).
type Channel string

const (
	ChannelStable Channel = "stable"
	ChannelBeta   Channel = "beta"
	ChannelPinned Channel = "pinned"
)

// AgentRole enumerates the role-based resource selection roles (spec.md
// §4.8).
type AgentRole string

const (
	RoleLaneDev     AgentRole = "lane-dev"
	RoleRepoCurator AgentRole = "repo-curator"
	RoleOrgCurator  AgentRole = "org-curator"
	RoleSupervisor  AgentRole = "supervisor"
	RoleAgent       AgentRole = "agent"
)

// UpgradeActionType enumerates the per-action dispatch types the upgrade
// applier understands (spec.md §4.6).
type UpgradeActionType string

const (
	UpgradeAttachBlock    UpgradeActionType = "attach_block"
	UpgradeDetachBlock    UpgradeActionType = "detach_block"
	UpgradeUpdateBlock    UpgradeActionType = "update_block"
	UpgradeAttachTool     UpgradeActionType = "attach_tool"
	UpgradeDetachTool     UpgradeActionType = "detach_tool"
	UpgradeUpdateTool     UpgradeActionType = "update_tool"
	UpgradeAttachFolder   UpgradeActionType = "attach_folder"
	UpgradeDetachFolder   UpgradeActionType = "detach_folder"
	UpgradeUpdateFolder   UpgradeActionType = "update_folder"
	UpgradeAttachIdentity UpgradeActionType = "attach_identity"
	UpgradeDetachIdentity UpgradeActionType = "detach_identity"
	UpgradeAttachSource   UpgradeActionType = "attach_source"
	UpgradeDetachSource   UpgradeActionType = "detach_source"
	UpgradeUpdateConfig   UpgradeActionType = "update_config"
	UpgradeSkip           UpgradeActionType = "skip"
)

// UpgradeResourceKind is the coarser kind vocabulary upgrade actions use
// (spec.md §3: "resourceKind ∈ {block, tool, folder, identity, source}").
type UpgradeResourceKind string

const (
	UpgradeKindBlock    UpgradeResourceKind = "block"
	UpgradeKindTool     UpgradeResourceKind = "tool"
	UpgradeKindFolder   UpgradeResourceKind = "folder"
	UpgradeKindIdentity UpgradeResourceKind = "identity"
	UpgradeKindSource   UpgradeResourceKind = "source"
)

// UpgradeAction is one planned attach/update/detach against a single agent.
type UpgradeAction struct {
	Type           UpgradeActionType
	ResourceKind   UpgradeResourceKind
	ResourceName   string
	ResourceID     string
	Classification UpgradeClassification
	Changes        []FieldChange
	Reason         string
}

// UpgradeSummary rolls up an UpgradePlan's actions (spec.md §3).
type UpgradeSummary struct {
	SafeChanges     int
	BreakingChanges int
	Unchanged       int
	TotalChanges    int
	AttachCounts    map[UpgradeResourceKind]int
	UpdateCounts    map[UpgradeResourceKind]int
	DetachCounts    map[UpgradeResourceKind]int
}

// UpgradePlan is the agent-upgrade planner's output; immutable once
// returned (spec.md §3).
type UpgradePlan struct {
	PlanID          string
	AgentID         string
	Role            AgentRole
	Channel         Channel
	TargetVersions  map[Layer]string
	Actions         []UpgradeAction
	Summary         UpgradeSummary
	HasBreakingChanges bool
	HasChanges      bool
	IsUpToDate      bool
	Errors          []string
	Warnings        []string
}

// LastUpgradeType records how an agent's most recent upgrade was approved
// (spec.md §3).
type LastUpgradeType string

const (
	UpgradeSafeAuto       LastUpgradeType = "safe_auto"
	UpgradeBreakingManual LastUpgradeType = "breaking_manual"
)

// AppliedState is the post-apply record reflected back as `applied:<layer>@<sha>`
// tags on the agent (spec.md §3).
type AppliedState struct {
	AppliedPackages map[Layer]string
	LastUpgradeType LastUpgradeType
	LastUpgradeAt   string
}

// ActionOutcome is the per-action result recorded by the apply executor and
// the upgrade applier.
type ActionOutcome struct {
	Action  PlanAction
	Success bool
	Error   string
	RemoteID string
}

// ApplyResult is the reconcile-plan applier's output (spec.md §4.4).
type ApplyResult struct {
	PlanID   string
	DryRun   bool
	Outcomes []ActionOutcome
	Succeeded int
	Failed    int
}

// UpgradeActionOutcome is the per-action result recorded by the upgrade
// applier.
type UpgradeActionOutcome struct {
	Action   UpgradeAction
	Success  bool
	Error    string
	Skipped  bool
	SkipReason string
}

// ApplyUpgradeResult is the upgrade applier's output (spec.md §4.6).
type ApplyUpgradeResult struct {
	AgentID        string
	DryRun         bool
	Success        bool
	Outcomes       []UpgradeActionOutcome
	SkippedActions []UpgradeActionOutcome
	AppliedState   AppliedState
	RefusedReason  string
}

// BatchAgentStatus is the per-agent outcome status in a batch run (spec.md
// §4.10).
type BatchAgentStatus string

const (
	BatchStatusApplied  BatchAgentStatus = "applied"
	BatchStatusFailed   BatchAgentStatus = "failed"
	BatchStatusSkipped  BatchAgentStatus = "skipped"
	BatchStatusUpToDate BatchAgentStatus = "up-to-date"
)

// BatchAgentResult is one agent's outcome within a BatchUpgradeResult.
type BatchAgentResult struct {
	AgentID  string
	Status   BatchAgentStatus
	Reason   string
	Plan     *UpgradePlan
	Apply    *ApplyUpgradeResult
	Err      string
	DurationMs int64
}

// BatchStats is the aggregated count/duration rollup a batch run returns
// (spec.md §4.10 invariant: succeeded+failed+skipped+upToDate == total).
type BatchStats struct {
	Total                int
	Succeeded            int
	Failed               int
	Skipped              int
	UpToDate             int
	TotalChangesApplied  int
	TotalBreakingChanges int
	TotalSafeChanges     int
	TotalDurationMs      int64
}

// BatchUpgradeResult is the batch executor's output.
type BatchUpgradeResult struct {
	Results []BatchAgentResult
	Stats   BatchStats
}

// BatchProgress is delivered before each agent is processed (spec.md
// §4.10).
type BatchProgress struct {
	CurrentAgent         string
	Current              int
	Total                int
	Percentage           float64
	ElapsedMs            int64
	EstimatedRemainingMs int64
}
