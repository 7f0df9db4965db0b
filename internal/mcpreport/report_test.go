package mcpreport

import (
	"testing"

	v1 "github.com/Smarty-Pants-Inc/letta-sync/api/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildReportsBlockedTokenStepWhenCredentialsMissing(t *testing.T) {
	classified := []v1.ClassifiedEntry{
		{
			Remote: v1.RemoteEntry{Name: "github", CredentialStatus: v1.CredentialUnknown},
			Class:  v1.Unmanaged,
		},
	}
	report := Build(classified, nil, nil)
	require.Len(t, report.Servers, 1)
	assert.Equal(t, "github", report.Servers[0].Name)

	var tokenStep Step
	for _, s := range report.Servers[0].Steps {
		if s.Kind == StepConfigureToken {
			tokenStep = s
		}
	}
	assert.Equal(t, StepBlocked, tokenStep.Status)
}

func TestBuildTracksMissingTools(t *testing.T) {
	classified := []v1.ClassifiedEntry{
		{Remote: v1.RemoteEntry{Name: "github", CredentialStatus: v1.CredentialConfigured}, Class: v1.Managed},
	}
	desired := map[string][]string{"github": {"search_repos", "open_pr"}}
	discovered := map[string][]string{"github": {"search_repos"}}

	report := Build(classified, desired, discovered)
	require.Len(t, report.Servers, 1)
	assert.Equal(t, []string{"open_pr"}, report.Servers[0].ToolReadiness.MissingTools)
	assert.True(t, report.Servers[0].ToolReadiness.ServerConfigured)
}

func TestRenderTextAndMarkdownDoNotPanic(t *testing.T) {
	classified := []v1.ClassifiedEntry{
		{Remote: v1.RemoteEntry{Name: "github", CredentialStatus: v1.CredentialConfigured}, Class: v1.Managed},
	}
	report := Build(classified, nil, nil)
	assert.NotEmpty(t, report.RenderText())
	assert.NotEmpty(t, report.RenderMarkdown())
}
