package manifest

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Pack represents one installed convention pack.
type Pack struct {
	// Name is the pack identifier (e.g., "go-service").
	Name string `yaml:"name"`

	// Version is the pack version string (e.g., "1.2.0").
	Version string `yaml:"version"`

	// Path is the pack's directory relative to the project root.
	Path string `yaml:"path"`
}

// packManifestFile represents the raw YAML structure of .cairn/packs.yaml.
type packManifestFile struct {
	Packs []Pack `yaml:"packs"`
}

// PackManifest holds the installed convention packs.
type PackManifest struct {
	Packs []Pack
}

// ReadPacksFromFile reads and parses a pack manifest YAML file.
//
// The expected location is .cairn/packs.yaml relative to the project root.
// The YAML format is:
//
//	packs:
//	  - name: go-service
//	    version: "1.2.0"
//	    path: packs/go-service
//	  - name: house-style
//	    version: "0.3.0"
//	    path: packs/house-style
func ReadPacksFromFile(path string) (*PackManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read pack manifest")
	}

	return ReadPacksFromBytes(data)
}

// ReadPacksFromBytes parses a pack manifest from YAML bytes.
func ReadPacksFromBytes(data []byte) (*PackManifest, error) {
	var raw packManifestFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "failed to parse pack manifest")
	}

	if len(raw.Packs) == 0 {
		return nil, errors.New("pack manifest contains no packs")
	}

	for i, p := range raw.Packs {
		if p.Name == "" {
			return nil, errors.Errorf("pack at index %d has no name", i)
		}
		if p.Path == "" {
			return nil, errors.Errorf("pack %q has no path", p.Name)
		}
	}

	return &PackManifest{Packs: raw.Packs}, nil
}

// HasPack returns true if a pack with the given name is installed.
// The name comparison is case-sensitive.
func (pm *PackManifest) HasPack(name string) bool {
	for _, p := range pm.Packs {
		if p.Name == name {
			return true
		}
	}
	return false
}

// GetPack returns the pack with the given name, or nil if not found.
func (pm *PackManifest) GetPack(name string) *Pack {
	for _, p := range pm.Packs {
		if p.Name == name {
			return &p
		}
	}
	return nil
}

// Names returns all installed pack names in sorted order.
func (pm *PackManifest) Names() []string {
	names := make([]string, len(pm.Packs))
	for i, p := range pm.Packs {
		names[i] = p.Name
	}
	sort.Strings(names)
	return names
}

// ConventionDirs returns each pack's conventions directory resolved against
// the project root, in manifest order. The directories join the resource
// search path after the repo-local and user-global defaults.
func (pm *PackManifest) ConventionDirs(basePath string) []string {
	dirs := make([]string, 0, len(pm.Packs))
	for _, p := range pm.Packs {
		dirs = append(dirs, filepath.Join(basePath, p.Path, "conventions"))
	}
	return dirs
}
