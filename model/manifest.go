package model

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// ApplicationManifest is the on-disk YAML form of one or more applications.
type ApplicationManifest struct {
	Applications []Application `yaml:"applications"`
}

// ParseApplicationsYAML accepts either a single application document or a
// list under the "applications" key.
func ParseApplicationsYAML(data []byte) ([]*Application, error) {
	var manifest ApplicationManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse application manifest: %w", err)
	}

	if len(manifest.Applications) == 0 {
		var single Application
		if err := yaml.Unmarshal(data, &single); err != nil {
			return nil, fmt.Errorf("failed to parse application manifest: %w", err)
		}
		manifest.Applications = []Application{single}
	}

	apps := make([]*Application, 0, len(manifest.Applications))
	for i := range manifest.Applications {
		app := manifest.Applications[i]
		if err := app.Validate(); err != nil {
			return nil, fmt.Errorf("application %d: %w", i, err)
		}
		base := NewApplication(app.Name)
		app.ObjType = base.ObjType
		app.CreatedAt = base.CreatedAt
		app.UpdatedAt = base.UpdatedAt
		apps = append(apps, &app)
	}
	return apps, nil
}

// LoadApplicationsYAML reads an application manifest from disk.
func LoadApplicationsYAML(path string) ([]*Application, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ParseApplicationsYAML(data)
}

// FindApplication returns the application with the given name or key.
func FindApplication(apps []*Application, nameOrKey string) (*Application, error) {
	if nameOrKey == "" && len(apps) == 1 {
		return apps[0], nil
	}
	for _, app := range apps {
		if app.Name == nameOrKey || (app.Key != "" && app.Key == nameOrKey) {
			return app, nil
		}
	}
	return nil, fmt.Errorf("application %q: %w", nameOrKey, ErrNotFound)
}
