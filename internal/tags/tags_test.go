package tags

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAndValidate(t *testing.T) {
	tg, err := Parse("layer:org")
	require.NoError(t, err)
	assert.Equal(t, "layer", tg.Namespace)
	assert.Equal(t, "org", tg.Value)
	assert.NoError(t, Validate(tg))

	tg, err = Parse("applied:base@abc1234")
	require.NoError(t, err)
	assert.Equal(t, "abc1234", tg.Version)
	assert.NoError(t, Validate(tg))
}

func TestValidateRejectsBadValues(t *testing.T) {
	tg, err := Parse("layer:staging")
	require.NoError(t, err)
	assert.Error(t, Validate(tg))

	tg, err = Parse("applied:base")
	require.NoError(t, err)
	assert.Error(t, Validate(tg), "applied namespace requires a version suffix")

	tg, err = Parse("managed:someone-else")
	require.NoError(t, err)
	assert.Error(t, Validate(tg))
}

func TestValidateAllLenientDropsInvalid(t *testing.T) {
	cleaned, err := ValidateAll([]string{"layer:org", "not-a-tag", "channel:stable"}, false)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"layer:org", "channel:stable"}, cleaned)
}

func TestValidateAllStrictFailsFast(t *testing.T) {
	_, err := ValidateAll([]string{"layer:org", "not-a-tag"}, true)
	assert.Error(t, err)
}

func TestDiff(t *testing.T) {
	desired := []string{"layer:org", "role:lane-dev"}
	existing := []string{"layer:org", "user:custom"}

	result := Diff(desired, existing, DiffOptions{})
	assert.Equal(t, []string{"role:lane-dev"}, result.ToAdd)
	assert.Equal(t, []string{"user:custom"}, result.ToRemove)
	assert.Equal(t, []string{"layer:org"}, result.Unchanged)
}

func TestMergePreservesUserTags(t *testing.T) {
	desired := []string{"managed:letta-sync", "layer:org"}
	existing := []string{"managed:letta-sync", "layer:base", "user:keep-me"}

	merged := Merge(desired, existing, DefaultMergeOptions())
	assert.Contains(t, merged, "user:keep-me")
	assert.Contains(t, merged, "layer:org")
	assert.NotContains(t, merged, "layer:base")
}

func TestUpdateAppliedTagsReplacesStaleVersion(t *testing.T) {
	existing := []string{"applied:base@aaaaaaa", "applied:org@bbbbbbb", "role:lane-dev"}
	next := UpdateAppliedTags(existing, "base", "ccccccc")

	assert.Contains(t, next, "applied:base@ccccccc")
	assert.NotContains(t, next, "applied:base@aaaaaaa")
	assert.Contains(t, next, "applied:org@bbbbbbb")
}

func TestRemoveManagedMarkerRequiresOptIn(t *testing.T) {
	existing := []string{"managed:letta-sync", "layer:org"}
	next := []string{"layer:org"}

	assert.Error(t, RemoveManagedMarker(existing, next, false))
	assert.NoError(t, RemoveManagedMarker(existing, next, true))
}

func TestNormalizeValue(t *testing.T) {
	assert.Equal(t, "my-team", NormalizeValue("My Team"))
}
