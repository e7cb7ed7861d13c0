// Package parser reads optional pipeline settings files. Settings may be
// written in YAML, JSON or Jsonnet; the format is detected from the file
// extension.
package parser

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/go-jsonnet"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/pipewright/pipewright/common/models"
)

type SettingsType string

const (
	SettingsTypeYAML    SettingsType = "yaml"
	SettingsTypeJSON    SettingsType = "json"
	SettingsTypeJSONNET SettingsType = "jsonnet"
	SettingsTypeInvalid SettingsType = "invalid"
)

func (t SettingsType) String() string {
	return string(t)
}

// TypeFromFilename determines the settings format from a file extension.
func TypeFromFilename(path string) SettingsType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return SettingsTypeYAML
	case ".json":
		return SettingsTypeJSON
	case ".jsonnet":
		return SettingsTypeJSONNET
	default:
		return SettingsTypeInvalid
	}
}

// TriggerSettings overrides parts of the default CI trigger. Nil pointer
// fields mean "keep the default".
type TriggerSettings struct {
	BranchFilters                []string `yaml:"branch_filters" json:"branch_filters"`
	PathFilters                  []string `yaml:"path_filters" json:"path_filters"`
	BatchChanges                 *bool    `yaml:"batch_changes" json:"batch_changes"`
	MaxConcurrentBuildsPerBranch int      `yaml:"max_concurrent_builds_per_branch" json:"max_concurrent_builds_per_branch"`
}

// PipelineSettings is the typed shape of a settings file. Every field is
// optional; command-line flags win over settings from the file.
type PipelineSettings struct {
	AgentQueue string                     `yaml:"agent_queue" json:"agent_queue"`
	Folder     string                     `yaml:"folder" json:"folder"`
	Trigger    *TriggerSettings           `yaml:"trigger" json:"trigger"`
	Variables  map[string]models.Variable `yaml:"variables" json:"variables"`
}

// ApplyTo overlays the settings onto a pipeline spec, touching only the
// fields the file actually set.
func (s *PipelineSettings) ApplyTo(spec *models.PipelineSpec) {
	if s.AgentQueue != "" {
		spec.AgentQueue = s.AgentQueue
	}
	if s.Folder != "" {
		spec.FolderPath = s.Folder
	}
	if s.Trigger != nil {
		if len(s.Trigger.BranchFilters) > 0 {
			spec.Trigger.BranchFilters = s.Trigger.BranchFilters
		}
		if len(s.Trigger.PathFilters) > 0 {
			spec.Trigger.PathFilters = s.Trigger.PathFilters
		}
		if s.Trigger.BatchChanges != nil {
			spec.Trigger.BatchChanges = *s.Trigger.BatchChanges
		}
		if s.Trigger.MaxConcurrentBuildsPerBranch > 0 {
			spec.Trigger.MaxConcurrentBuildsPerBranch = s.Trigger.MaxConcurrentBuildsPerBranch
		}
	}
	if len(s.Variables) > 0 {
		if spec.Variables == nil {
			spec.Variables = make(map[string]models.Variable, len(s.Variables))
		}
		for name, variable := range s.Variables {
			spec.Variables[name] = variable
		}
	}
}

type SettingsParser struct {
}

func NewSettingsParser() *SettingsParser {
	return &SettingsParser{}
}

// ParseFile reads and parses a settings file, detecting the format from the
// file extension.
func (p *SettingsParser) ParseFile(path string) (*PipelineSettings, error) {
	settingsType := TypeFromFilename(path)
	if settingsType == SettingsTypeInvalid {
		return nil, errors.Errorf("error unsupported settings file extension: %s", filepath.Ext(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading settings file %q", path)
	}
	settings, err := p.Parse(data, settingsType)
	if err != nil {
		return nil, errors.Wrapf(err, "error parsing settings file %q", path)
	}
	return settings, nil
}

// Parse parses raw settings in the specified format.
func (p *SettingsParser) Parse(data []byte, settingsType SettingsType) (*PipelineSettings, error) {
	var (
		settings *PipelineSettings
		err      error
	)
	switch settingsType {
	case SettingsTypeYAML:
		settings, err = p.parseFromYAML(data)
	case SettingsTypeJSON:
		settings, err = p.parseFromJSON(data)
	case SettingsTypeJSONNET:
		settings, err = p.parseFromJSONNET(data)
	default:
		return nil, errors.Errorf("error unsupported settings type: %s", settingsType)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "error unmarshalling settings from %s", settingsType)
	}
	return settings, nil
}

func (p *SettingsParser) parseFromYAML(data []byte) (*PipelineSettings, error) {
	settings := &PipelineSettings{}
	err := yaml.UnmarshalStrict(data, settings)
	if err != nil {
		return nil, err
	}
	return settings, nil
}

func (p *SettingsParser) parseFromJSON(data []byte) (*PipelineSettings, error) {
	settings := &PipelineSettings{}
	err := json.Unmarshal(data, settings)
	if err != nil {
		return nil, err
	}
	return settings, nil
}

func (p *SettingsParser) parseFromJSONNET(data []byte) (*PipelineSettings, error) {
	vm := jsonnet.MakeVM()
	rendered, err := vm.EvaluateSnippet("settings", string(data))
	if err != nil {
		return nil, fmt.Errorf("error evaluating jsonnet: %w", err)
	}
	return p.parseFromJSON([]byte(rendered))
}
