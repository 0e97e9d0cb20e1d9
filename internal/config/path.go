package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
)

// ResolvePath resolves a palette file reference against the configuration root:
//   - absolute paths are returned as is
//   - ~/file expands to the home directory
//   - npm:pkg/file and npm:@scope/pkg/file resolve inside root/node_modules,
//     honoring string targets of the package's "exports" map
//   - anything else is relative to root
func ResolvePath(path, root string) (string, error) {
	switch {
	case filepath.IsAbs(path):
		return path, nil
	case strings.HasPrefix(path, "~/"):
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("%w: cannot expand %s: %w", ErrConfig, path, err)
		}
		return filepath.Join(home, path[2:]), nil
	case strings.HasPrefix(path, "npm:"):
		return resolveNpm(strings.TrimPrefix(path, "npm:"), root)
	}
	return filepath.Join(root, strings.TrimPrefix(path, "./")), nil
}

func resolveNpm(spec, root string) (string, error) {
	name, subpath, err := splitPackage(spec)
	if err != nil {
		return "", err
	}
	dir := filepath.Join(root, "node_modules", filepath.FromSlash(name))
	if _, err := os.Stat(dir); err != nil {
		return "", fmt.Errorf("%w: npm package %s not found in %s", ErrConfig, name, filepath.Join(root, "node_modules"))
	}
	if subpath == "" {
		return "", fmt.Errorf("%w: npm:%s names a package, not a palette file", ErrConfig, spec)
	}

	if target, ok := exportTarget(dir, "./"+subpath); ok {
		return filepath.Join(dir, filepath.FromSlash(target)), nil
	}
	direct := filepath.Join(dir, filepath.FromSlash(subpath))
	if _, err := os.Stat(direct); err != nil {
		return "", fmt.Errorf("%w: %s not found in package %s", ErrConfig, subpath, name)
	}
	return direct, nil
}

// splitPackage splits "@scope/pkg/a/b" into "@scope/pkg" and "a/b"
func splitPackage(spec string) (name, subpath string, err error) {
	if spec == "" || strings.HasPrefix(spec, "/") {
		return "", "", fmt.Errorf("%w: invalid npm package path %q", ErrConfig, spec)
	}
	parts := strings.SplitN(spec, "/", 3)
	if strings.HasPrefix(spec, "@") {
		if len(parts) < 2 {
			return "", "", fmt.Errorf("%w: scoped package %q needs @scope/name", ErrConfig, spec)
		}
		name = parts[0] + "/" + parts[1]
		if len(parts) == 3 {
			subpath = parts[2]
		}
		return name, subpath, nil
	}
	name, subpath, _ = strings.Cut(spec, "/")
	return name, subpath, nil
}

// exportTarget looks up a subpath in the package's exports map, including
// single-wildcard patterns such as "./colors/*": "./dist/colors/*.json"
func exportTarget(dir, subpath string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(dir, "package.json")) //nolint:gosec // G304: installed package manifest
	if err != nil {
		return "", false
	}
	var pkg struct {
		Exports map[string]any `json:"exports"`
	}
	if err := json.Unmarshal(jsonc.ToJSON(data), &pkg); err != nil {
		return "", false
	}
	if target, ok := pkg.Exports[subpath].(string); ok {
		return target, true
	}
	for pattern, target := range pkg.Exports {
		prefix, suffix, found := strings.Cut(pattern, "*")
		t, ok := target.(string)
		if !found || !ok || len(subpath) < len(prefix)+len(suffix) {
			continue
		}
		if strings.HasPrefix(subpath, prefix) && strings.HasSuffix(subpath, suffix) {
			return strings.Replace(t, "*", subpath[len(prefix):len(subpath)-len(suffix)], 1), true
		}
	}
	return "", false
}
