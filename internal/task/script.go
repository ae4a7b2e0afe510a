package task

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/specialistvlad/taskgrid/internal/config"
	"github.com/tidwall/gjson"
)

// PackageFile is the per-project file whose scripts table defines commands.
const PackageFile = "package.json"

// resolveScript returns the script bound to command for the project in dir.
// The package.json scripts table takes precedence over the manifest.
func resolveScript(dir string, p *config.Project, command string) (string, bool, error) {
	path := filepath.Join(dir, PackageFile)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if !gjson.ValidBytes(data) {
			return "", false, fmt.Errorf("project %s: %s is not valid JSON", p.Name, path)
		}
		// Map lookup avoids gjson path syntax in command names such as "test:unit".
		if script, ok := gjson.GetBytes(data, "scripts").Map()[command]; ok && script.Type == gjson.String {
			return script.String(), true, nil
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return "", false, fmt.Errorf("project %s: read %s: %w", p.Name, PackageFile, err)
	}

	script, ok := p.Scripts[command]
	return script, ok, nil
}
