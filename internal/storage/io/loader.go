package io

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vidtree/pybox/internal/model"
)

// Canonical provisioning config field names.
const (
	FieldPythonDownloadURL = "pythonDownloadUrl"
	FieldPipDownloadURL    = "pipDownloadUrl"
	FieldInteriorArchive   = "pythonInteriorZipFile"
	FieldPathConfigFile    = "pthFileName"
)

// ConfigRepository loads provisioning configuration from JSON or YAML files.
type ConfigRepository struct {
	fs fs.FS
}

// NewConfigRepository creates a new config repository.
func NewConfigRepository(filesystem fs.FS) *ConfigRepository {
	return &ConfigRepository{fs: filesystem}
}

// GetConfig loads a provisioning config and returns a validated domain model.
//
// Field names are matched case insensitively ignoring `_` and `-`, so JSON
// camel case and YAML snake case files are both accepted.
func (r *ConfigRepository) GetConfig(ctx context.Context, path string) (model.ProvisioningConfig, error) {
	data, err := fs.ReadFile(r.fs, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.ProvisioningConfig{}, fmt.Errorf("reading config file %s: %w", path, model.ErrConfigNotFound)
		}
		return model.ProvisioningConfig{}, fmt.Errorf("reading config file: %w", err)
	}

	if ctx.Err() != nil {
		return model.ProvisioningConfig{}, ctx.Err()
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return model.ProvisioningConfig{}, fmt.Errorf("parsing config: %w: %w", err, model.ErrConfigInvalid)
	}

	values, invalid, err := mappingValues(&doc)
	if err != nil {
		return model.ProvisioningConfig{}, fmt.Errorf("parsing config: %w", err)
	}

	cfg := ProvisioningConfig{
		PythonDownloadURL: values[normalizeKey(FieldPythonDownloadURL)],
		PipDownloadURL:    values[normalizeKey(FieldPipDownloadURL)],
		InteriorArchive:   values[normalizeKey(FieldInteriorArchive)],
		PathConfigFile:    values[normalizeKey(FieldPathConfigFile)],
	}
	if err := cfg.validate(invalid); err != nil {
		return model.ProvisioningConfig{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg.toModel(), nil
}

// ProvisioningConfig is the flattened file structure of a provisioning config.
type ProvisioningConfig struct {
	PythonDownloadURL string
	PipDownloadURL    string
	InteriorArchive   string
	PathConfigFile    string
}

func (c ProvisioningConfig) validate(invalid []string) error {
	var missing []string
	check := func(name, value string) {
		if strings.TrimSpace(value) == "" && !contains(invalid, name) {
			missing = append(missing, name)
		}
	}

	check(FieldPythonDownloadURL, c.PythonDownloadURL)
	check(FieldPipDownloadURL, c.PipDownloadURL)
	check(FieldInteriorArchive, c.InteriorArchive)
	check(FieldPathConfigFile, c.PathConfigFile)

	if len(missing) == 0 && len(invalid) == 0 {
		return nil
	}

	return &model.ConfigValidationError{MissingFields: missing, InvalidFields: invalid}
}

func (c ProvisioningConfig) toModel() model.ProvisioningConfig {
	return model.ProvisioningConfig{
		PythonDownloadURL: strings.TrimSpace(c.PythonDownloadURL),
		PipDownloadURL:    strings.TrimSpace(c.PipDownloadURL),
		InteriorArchive:   strings.TrimSpace(c.InteriorArchive),
		PathConfigFile:    strings.TrimSpace(c.PathConfigFile),
	}
}

var knownFields = []string{FieldPythonDownloadURL, FieldPipDownloadURL, FieldInteriorArchive, FieldPathConfigFile}

// mappingValues returns the scalar values of the known top level fields keyed
// by their normalized name, and the canonical names of known fields holding
// non scalar values.
func mappingValues(doc *yaml.Node) (map[string]string, []string, error) {
	values := map[string]string{}

	// Empty document.
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return values, nil, nil
	}

	root := doc
	if root.Kind == yaml.DocumentNode {
		root = root.Content[0]
	}
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return values, nil, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, nil, fmt.Errorf("config root must be an object: %w", model.ErrConfigInvalid)
	}

	var invalid []string
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := normalizeKey(root.Content[i].Value)
		canonical, ok := canonicalName(key)
		if !ok {
			continue
		}

		value := root.Content[i+1]
		switch {
		case value.Kind == yaml.ScalarNode && value.Tag == "!!null":
			values[key] = ""
		case value.Kind == yaml.ScalarNode:
			values[key] = value.Value
		default:
			if !contains(invalid, canonical) {
				invalid = append(invalid, canonical)
			}
		}
	}

	return values, invalid, nil
}

func canonicalName(normalized string) (string, bool) {
	for _, f := range knownFields {
		if normalizeKey(f) == normalized {
			return f, true
		}
	}
	return "", false
}

func normalizeKey(k string) string {
	k = strings.ToLower(strings.TrimSpace(k))
	return strings.NewReplacer("_", "", "-", "").Replace(k)
}

func contains(s []string, v string) bool {
	for _, e := range s {
		if e == v {
			return true
		}
	}
	return false
}
