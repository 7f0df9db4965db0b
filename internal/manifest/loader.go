// Package manifest implements the manifest loader: reading layered
// directories of YAML/JSON Resource documents into typed Packages
// (spec.md §4.1).
package manifest

import (
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	v1 "github.com/Smarty-Pants-Inc/letta-sync/api/v1"
	"github.com/Smarty-Pants-Inc/letta-sync/internal/errorsx"
	"gopkg.in/yaml.v3"
)

var manifestExtensions = map[string]bool{
	".yaml": true,
	".yml":  true,
	".json": true,
}

// LoadOptions configures LoadPackage/LoadLayeredPackages.
type LoadOptions struct {
	// DefaultLayer is assigned to any resource that doesn't set spec.layer.
	DefaultLayer v1.Layer
}

// LoadPackage reads every manifest file under path (recursively, if path is
// a directory) and returns the resulting Package. If path is a file, only
// that file is loaded.
func LoadPackage(path string, opts LoadOptions) (*v1.Package, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &errorsx.PackageNotFound{Path: path, Err: err}
		}
		return nil, &errorsx.PackageNotFound{Path: path, Err: err}
	}

	var files []string
	if info.IsDir() {
		files, err = collectManifestFiles(path)
		if err != nil {
			return nil, err
		}
	} else {
		files = []string{path}
	}

	pkg := &v1.Package{
		Name:       filepath.Base(path),
		Layer:      opts.DefaultLayer,
		SourcePath: path,
	}

	seen := map[v1.Key]bool{}
	var mostSpecific v1.Layer
	for _, f := range files {
		resources, err := loadFile(f)
		if err != nil {
			return nil, err
		}
		for _, r := range resources {
			if r.Layer() == "" {
				r.SetLayer(opts.DefaultLayer)
			}
			if !r.Layer().Valid() {
				return nil, &errorsx.PackageParseError{Path: f, Err: errInvalidLayer(r.Layer())}
			}
			key := r.Key()
			if seen[key] {
				ve := &errorsx.PackageValidationError{Path: path}
				ve.Add("duplicate resource %s/%s in package", r.Kind, r.Metadata.Name)
				return nil, ve
			}
			seen[key] = true
			pkg.Resources = append(pkg.Resources, r)
			mostSpecific = moreSpecific(mostSpecific, r.Layer())
		}
	}
	if mostSpecific != "" {
		pkg.Layer = mostSpecific
	}
	return pkg, nil
}

// LoadLayeredPackages loads each provided path with its layer assigned as
// the per-resource default (spec.md §4.1).
func LoadLayeredPackages(basePath, orgPath, projectPath string) (*v1.LayeredPackages, error) {
	out := &v1.LayeredPackages{}
	var err error
	if basePath != "" {
		if out.Base, err = LoadPackage(basePath, LoadOptions{DefaultLayer: v1.LayerBase}); err != nil {
			return nil, err
		}
	}
	if orgPath != "" {
		if out.Org, err = LoadPackage(orgPath, LoadOptions{DefaultLayer: v1.LayerOrg}); err != nil {
			return nil, err
		}
	}
	if projectPath != "" {
		if out.Project, err = LoadPackage(projectPath, LoadOptions{DefaultLayer: v1.LayerProject}); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func collectManifestFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if manifestExtensions[strings.ToLower(filepath.Ext(path))] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, &errorsx.PackageNotFound{Path: root, Err: err}
	}
	sort.Strings(files)
	return files, nil
}

func loadFile(path string) ([]*v1.Resource, error) {
	ext := strings.ToLower(filepath.Ext(path))
	f, err := os.Open(path)
	if err != nil {
		return nil, &errorsx.PackageNotFound{Path: path, Err: err}
	}
	defer f.Close()

	if ext == ".json" {
		var raw map[string]json.RawMessage
		if err := json.NewDecoder(f).Decode(&raw); err != nil {
			return nil, &errorsx.PackageParseError{Path: path, Err: err}
		}
		r, err := decodeJSONDocument(raw)
		if err != nil {
			return nil, &errorsx.PackageParseError{Path: path, Err: err}
		}
		if r == nil {
			return nil, nil
		}
		return []*v1.Resource{r}, nil
	}

	var out []*v1.Resource
	dec := yaml.NewDecoder(f)
	for {
		var node yaml.Node
		if err := dec.Decode(&node); err != nil {
			if err == io.EOF {
				break
			}
			return nil, &errorsx.PackageParseError{Path: path, Err: err}
		}
		// A document node wraps the actual mapping in a DocumentNode.
		target := &node
		if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
			target = node.Content[0]
		}
		r, err := decodeYAMLNode(target)
		if err != nil {
			return nil, &errorsx.PackageParseError{Path: path, Err: err}
		}
		if r != nil {
			out = append(out, r)
		}
	}
	return out, nil
}

func moreSpecific(a, b v1.Layer) v1.Layer {
	rank := map[v1.Layer]int{v1.LayerBase: 1, v1.LayerOrg: 2, v1.LayerProject: 3}
	if rank[b] > rank[a] {
		return b
	}
	return a
}

func errInvalidLayer(l v1.Layer) error {
	return &invalidLayerError{layer: l}
}

type invalidLayerError struct{ layer v1.Layer }

func (e *invalidLayerError) Error() string {
	return "invalid layer " + string(e.layer) + ": must be one of base, org, project"
}
