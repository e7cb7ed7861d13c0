package models

import (
	"path"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// PipelineFileName is the name of the YAML file that defines the pipeline's
// stages, relative to the directory the pipeline is rooted at.
const PipelineFileName = "azure-pipelines.yaml"

// DefaultAgentQueueName is the Microsoft-hosted agent pool queue used when
// no queue is configured.
const DefaultAgentQueueName = "Azure Pipelines"

// DefaultFolderPath is the root folder in the vendor's pipeline UI.
const DefaultFolderPath = `\`

// Variable is a pipeline variable attached to a build definition.
type Variable struct {
	Value         string `json:"value" yaml:"value"`
	AllowOverride bool   `json:"allow_override" yaml:"allow_override"`
	IsSecret      bool   `json:"is_secret" yaml:"is_secret"`
}

// PipelineSpec is the full set of inputs needed to provision a pipeline:
// where the definition lives (organization/project/folder), what it builds
// (repository, branch, pipeline file), and how it runs (agent queue,
// trigger, variables).
type PipelineSpec struct {
	ServiceName  ServiceName
	PipelineName string
	Organization string
	Project      string
	Repository   Repository
	// PackagesDir is the monorepo directory that contains one subdirectory
	// per service. Empty for a standalone repository.
	PackagesDir  string
	AgentQueue   string
	FolderPath   string
	Trigger      TriggerSettings
	Variables    map[string]Variable
	SkipFirstRun bool
}

// YAMLFilename returns the repository-relative path of the pipeline's YAML
// file: <packages-dir>/<service-name>/azure-pipelines.yaml inside a
// monorepo, or azure-pipelines.yaml at the repository root. The result
// always uses forward slashes because it is a repository path, not a host
// filesystem path.
func (s *PipelineSpec) YAMLFilename() string {
	if s.PackagesDir == "" {
		return PipelineFileName
	}
	packagesDir := strings.ReplaceAll(s.PackagesDir, `\`, "/")
	return path.Join(packagesDir, s.ServiceName.String(), PipelineFileName)
}

// ServicePath returns the repository-relative directory the service lives
// in, or "" for a standalone repository.
func (s *PipelineSpec) ServicePath() string {
	if s.PackagesDir == "" {
		return ""
	}
	packagesDir := strings.ReplaceAll(s.PackagesDir, `\`, "/")
	return path.Join(packagesDir, s.ServiceName.String())
}

func (s *PipelineSpec) Valid() bool {
	return s.Validate() == nil
}

// Validate checks every field and reports all violations together, so a
// user can fix their invocation in one pass.
func (s *PipelineSpec) Validate() error {
	var result *multierror.Error
	if err := s.ServiceName.Validate(); err != nil {
		result = multierror.Append(result, err)
	}
	if s.PipelineName == "" {
		result = multierror.Append(result, errors.New("error pipeline name must be set"))
	}
	if s.Organization == "" {
		result = multierror.Append(result, errors.New("error organization must be set"))
	}
	if s.Project == "" {
		result = multierror.Append(result, errors.New("error project must be set"))
	}
	if err := s.Repository.Validate(); err != nil {
		result = multierror.Append(result, err)
	}
	if s.AgentQueue == "" {
		result = multierror.Append(result, errors.New("error agent queue must be set"))
	}
	return result.ErrorOrNil()
}
