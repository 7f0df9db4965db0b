// Package mcpreport builds the MCP Setup Report (spec.md §4.9). Because
// the MCP diff engine is strictly observe-only, this is the only place
// MCP server setup state is surfaced to an operator — as a structured,
// format-agnostic report rather than mutating actions.
package mcpreport

import (
	"fmt"
	"sort"
	"strings"

	v1 "github.com/Smarty-Pants-Inc/letta-sync/api/v1"
)

// StepKind enumerates the setup steps spec.md §4.9 lists per server.
type StepKind string

const (
	StepCreate         StepKind = "create"
	StepConfigureToken StepKind = "configure-tokens"
	StepConfigureEnv   StepKind = "configure-env"
	StepSyncTools      StepKind = "sync-tools"
	StepVerify         StepKind = "verify"
)

// StepStatus is the observed state of a single setup step.
type StepStatus string

const (
	StepPending StepStatus = "pending"
	StepDone    StepStatus = "done"
	StepBlocked StepStatus = "blocked"
)

// Step is one line of a server's setup report.
type Step struct {
	Kind                StepKind
	Status              StepStatus
	RequiresCredentials bool
	Detail              string
}

// ToolBundleReadiness tracks whether a server's tools are fully synced.
type ToolBundleReadiness struct {
	ServerConfigured bool
	MissingTools     []string
}

// ServerReport is the per-server entry in a SetupReport.
type ServerReport struct {
	Name             string
	CredentialStatus v1.CredentialStatus
	Steps            []Step
	ToolReadiness    ToolBundleReadiness
}

// SetupReport aggregates every MCP server's setup state for one
// reconcile run.
type SetupReport struct {
	Servers []ServerReport
}

// Build constructs a SetupReport from MCP diff classifications.
// desiredTools maps server name to the tool names the manifest expects
// it to expose; discoveredTools maps server name to the tool names
// actually observed (e.g. via Verify). A server absent from
// discoveredTools is reported with every desired tool missing.
func Build(classified []v1.ClassifiedEntry, desiredTools, discoveredTools map[string][]string) *SetupReport {
	report := &SetupReport{}
	names := make([]string, 0, len(classified))
	byName := map[string]v1.ClassifiedEntry{}
	for _, c := range classified {
		names = append(names, c.Remote.Name)
		byName[c.Remote.Name] = c
	}
	sort.Strings(names)

	for _, name := range names {
		c := byName[name]
		sr := ServerReport{
			Name:             name,
			CredentialStatus: c.Remote.CredentialStatus,
		}
		requiresCreds := c.Remote.CredentialStatus != v1.CredentialNone
		sr.Steps = buildSteps(c, requiresCreds)
		sr.ToolReadiness = buildReadiness(name, desiredTools[name], discoveredTools[name])
		report.Servers = append(report.Servers, sr)
	}
	return report
}

func buildSteps(c v1.ClassifiedEntry, requiresCreds bool) []Step {
	exists := c.Class != v1.Unmanaged || c.Remote.RemoteID != ""
	createStatus := StepPending
	if exists {
		createStatus = StepDone
	}

	tokenStatus := StepPending
	if !requiresCreds {
		tokenStatus = StepDone
	} else if c.Remote.CredentialStatus == v1.CredentialConfigured || c.Remote.CredentialStatus == v1.CredentialOAuth {
		tokenStatus = StepDone
	} else if !exists {
		tokenStatus = StepBlocked
	}

	envStatus := StepPending
	if !requiresCreds {
		envStatus = StepDone
	}

	return []Step{
		{Kind: StepCreate, Status: createStatus, RequiresCredentials: false},
		{Kind: StepConfigureToken, Status: tokenStatus, RequiresCredentials: requiresCreds},
		{Kind: StepConfigureEnv, Status: envStatus, RequiresCredentials: requiresCreds},
		{Kind: StepSyncTools, Status: StepPending, RequiresCredentials: requiresCreds},
		{Kind: StepVerify, Status: StepPending, RequiresCredentials: requiresCreds},
	}
}

func buildReadiness(server string, desired, discovered []string) ToolBundleReadiness {
	discoveredSet := map[string]bool{}
	for _, t := range discovered {
		discoveredSet[t] = true
	}
	var missing []string
	for _, t := range desired {
		if !discoveredSet[t] {
			missing = append(missing, t)
		}
	}
	return ToolBundleReadiness{
		ServerConfigured: len(discovered) > 0,
		MissingTools:     missing,
	}
}

// RenderText renders the report as the format-agnostic plain-text view
// spec.md §4.9 calls for ("consumable as text, markdown, or JSON").
func (r *SetupReport) RenderText() string {
	var b strings.Builder
	for _, s := range r.Servers {
		fmt.Fprintf(&b, "%s (credentials: %s)\n", s.Name, s.CredentialStatus)
		for _, step := range s.Steps {
			fmt.Fprintf(&b, "  - %s: %s\n", step.Kind, step.Status)
		}
		if len(s.ToolReadiness.MissingTools) > 0 {
			fmt.Fprintf(&b, "  missing tools: %s\n", strings.Join(s.ToolReadiness.MissingTools, ", "))
		}
	}
	return b.String()
}

// RenderMarkdown renders the report as a Markdown checklist.
func (r *SetupReport) RenderMarkdown() string {
	var b strings.Builder
	for _, s := range r.Servers {
		fmt.Fprintf(&b, "### %s\n\n", s.Name)
		for _, step := range s.Steps {
			mark := " "
			if step.Status == StepDone {
				mark = "x"
			}
			fmt.Fprintf(&b, "- [%s] %s\n", mark, step.Kind)
		}
		if len(s.ToolReadiness.MissingTools) > 0 {
			fmt.Fprintf(&b, "\nMissing tools: `%s`\n", strings.Join(s.ToolReadiness.MissingTools, "`, `"))
		}
		b.WriteString("\n")
	}
	return b.String()
}
