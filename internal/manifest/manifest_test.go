package manifest

import (
	"os"
	"path/filepath"
	"testing"

	v1 "github.com/Smarty-Pants-Inc/letta-sync/api/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const blockYAML = `
apiVersion: letta-sync.smarty-pants.dev/v1
kind: Block
metadata:
  name: project-overview
spec:
  layer: org
  label: project
  value: "This project syncs agent tenants from manifests."
  tags:
    - role:repo-curator
---
apiVersion: letta-sync.smarty-pants.dev/v1
kind: Tool
metadata:
  name: search_docs
spec:
  layer: org
  sourceType: python
  sourceCode: "def search_docs(): pass"
  jsonSchema:
    type: function
    function:
      name: search_docs
`

func TestLoadPackageMultiDocumentYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "resources.yaml", blockYAML)

	pkg, err := LoadPackage(dir, LoadOptions{DefaultLayer: v1.LayerOrg})
	require.NoError(t, err)
	require.Len(t, pkg.Resources, 2)

	err = ValidatePackage(pkg)
	assert.NoError(t, err)
}

func TestLoadPackageSkipsNonResourceDocuments(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "junk.yaml", "just: a plain map\nwith: no apiVersion\n")

	pkg, err := LoadPackage(dir, LoadOptions{DefaultLayer: v1.LayerBase})
	require.NoError(t, err)
	assert.Empty(t, pkg.Resources)
}

func TestLoadPackageNotFound(t *testing.T) {
	_, err := LoadPackage(filepath.Join(t.TempDir(), "missing"), LoadOptions{})
	assert.Error(t, err)
}

func TestValidatePackageRejectsMissingRequiredFields(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.yaml", `
apiVersion: letta-sync.smarty-pants.dev/v1
kind: Block
metadata:
  name: broken
spec:
  layer: org
  isTemplate: true
`)
	pkg, err := LoadPackage(dir, LoadOptions{DefaultLayer: v1.LayerOrg})
	require.NoError(t, err)

	err = ValidatePackage(pkg)
	assert.Error(t, err)
}

func TestLoadPackageRejectsDuplicateResource(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "dup.yaml", `
apiVersion: letta-sync.smarty-pants.dev/v1
kind: Block
metadata:
  name: dup
spec:
  layer: org
  label: project
  value: v
---
apiVersion: letta-sync.smarty-pants.dev/v1
kind: Block
metadata:
  name: dup
spec:
  layer: org
  label: project
  value: v2
`)
	_, err := LoadPackage(dir, LoadOptions{DefaultLayer: v1.LayerOrg})
	assert.Error(t, err)
}

func TestLoadPackageJSONSingleResource(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "block.json", `{
  "apiVersion": "letta-sync.smarty-pants.dev/v1",
  "kind": "Folder",
  "metadata": {"name": "kb"},
  "spec": {
    "layer": "org",
    "embeddingConfig": {"model": "text-embedding-3-small"}
  }
}`)
	pkg, err := LoadPackage(dir, LoadOptions{DefaultLayer: v1.LayerOrg})
	require.NoError(t, err)
	require.Len(t, pkg.Resources, 1)
	assert.Equal(t, v1.KindFolder, pkg.Resources[0].Kind)
	assert.NoError(t, ValidatePackage(pkg))
}
