package manifest

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/steveyegge/vcspull/internal/vcserrors"
)

// DiscoverFiles implements the discovery order from spec section 6:
// ~/.vcspull.yaml, ~/.vcspull.json, then $XDG_CONFIG_HOME/vcspull/ (or
// ~/.config/vcspull/ when unset) for any *.yaml/*.yml/*.json, then
// ~/.vcspull/*.{yaml,yml,json} as a legacy, last-priority location.
//
// Grounded on original_source/src/vcspull/config.py:find_home_config_files
// and find_config_files — ported to Go's os/filepath idioms rather
// than pathlib's glob.
func DiscoverFiles() ([]string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	var homeConfigs []string
	yamlHome := filepath.Join(home, ".vcspull.yaml")
	jsonHome := filepath.Join(home, ".vcspull.json")
	hasYAML := fileExists(yamlHome)
	hasJSON := fileExists(jsonHome)

	if hasYAML && hasJSON {
		return nil, vcserrors.ErrMultipleConfigs
	}
	if hasYAML {
		homeConfigs = append(homeConfigs, yamlHome)
	}
	if hasJSON {
		homeConfigs = append(homeConfigs, jsonHome)
	}

	var files []string
	files = append(files, homeConfigs...)

	xdgDir := os.Getenv("VCSPULL_CONFIGDIR")
	if xdgDir == "" {
		xdgDir = os.Getenv("XDG_CONFIG_HOME")
	}
	if xdgDir == "" {
		xdgDir = filepath.Join(home, ".config")
	}
	vcspullDir := filepath.Join(xdgDir, "vcspull")
	files = append(files, globManifests(vcspullDir)...)

	legacyDir := filepath.Join(home, ".vcspull")
	files = append(files, globManifests(legacyDir)...)

	return files, nil
}

func globManifests(dir string) []string {
	if !dirExists(dir) {
		return nil
	}
	var found []string
	for _, pattern := range []string{"*.yaml", "*.yml", "*.json"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			continue
		}
		found = append(found, matches...)
	}
	sort.Strings(found)
	return found
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// LoadDiscovered loads and merges every discovered manifest file, in
// discovery-priority order.
func LoadDiscovered() (RawManifest, error) {
	files, err := DiscoverFiles()
	if err != nil {
		return RawManifest{}, err
	}
	return LoadMany(files)
}

// LoadMany loads and merges a fixed list of manifest files in order.
func LoadMany(paths []string) (RawManifest, error) {
	loaded := make([]RawManifest, 0, len(paths))
	for _, p := range paths {
		rm, err := LoadFile(p)
		if err != nil {
			return RawManifest{}, err
		}
		loaded = append(loaded, rm)
	}
	return Merge(loaded...), nil
}
