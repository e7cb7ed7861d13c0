// Package provision turns a pipeline specification into vendor-side state:
// it creates build definitions in Azure DevOps and queues builds against
// them. Orchestration is strictly sequential and the first failure aborts;
// transport-level retries live inside the API client.
package provision

import (
	"context"
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"

	"github.com/pipewright/pipewright/azureapi"
	"github.com/pipewright/pipewright/azureapi/documents"
	"github.com/pipewright/pipewright/common/gerror"
	"github.com/pipewright/pipewright/common/logger"
	"github.com/pipewright/pipewright/common/models"
)

type Service struct {
	client *azureapi.APIClient
	clk    clock.Clock
	logger.Log
}

func NewService(client *azureapi.APIClient, clk clock.Clock, logFactory logger.LogFactory) *Service {
	return &Service{
		client: client,
		clk:    clk,
		Log:    logFactory("Provision"),
	}
}

// Pipeline describes a provisioned pipeline.
type Pipeline struct {
	DefinitionID int
	Name         string
	FolderPath   string
	WebURL       string
	// FirstRun is the initial build queued against the new definition, or
	// nil when the first run was skipped.
	FirstRun *Run
}

// Run describes a single queued execution of a pipeline.
type Run struct {
	BuildID     int
	BuildNumber string
	Branch      string
	Status      models.BuildStatus
	Result      models.BuildResult
	WebURL      string
}

// RunRequest asks for a build of an existing pipeline.
type RunRequest struct {
	Project      string
	PipelineName string
	Branch       string
}

// CreatePipeline provisions a new build definition from the spec and, unless
// the spec says otherwise, queues its first build. A failure after the
// definition is created leaves the definition in place and reports the error.
func (s *Service) CreatePipeline(ctx context.Context, spec *models.PipelineSpec) (*Pipeline, error) {
	err := spec.Validate()
	if err != nil {
		return nil, err
	}

	// Verify the project up front so a typo produces a clear error rather
	// than a confusing failure from the definition endpoint.
	project, err := s.client.GetProject(ctx, spec.Project)
	if err != nil {
		return nil, fmt.Errorf("error verifying project %q exists: %w", spec.Project, err)
	}
	s.Debugf("Verified project %q (id %s)", project.Name, project.ID)

	queue, err := s.resolveAgentQueue(ctx, spec.Project, spec.AgentQueue)
	if err != nil {
		return nil, err
	}

	definition := BuildDefinitionFromSpec(spec, queue)
	created, err := s.client.CreateDefinition(ctx, spec.Project, definition)
	if err != nil {
		return nil, fmt.Errorf("error creating build definition %q: %w", spec.PipelineName, err)
	}
	s.Infof("Created build definition %q with id %d", created.Name, created.ID)

	pipeline := &Pipeline{
		DefinitionID: created.ID,
		Name:         created.Name,
		FolderPath:   created.Path,
		WebURL:       created.Links.WebURL(),
	}
	if spec.SkipFirstRun {
		return pipeline, nil
	}

	run, err := s.queueBuild(ctx, spec.Project, created.ID, spec.Repository.Branch)
	if err != nil {
		return nil, fmt.Errorf("error queueing first build of definition %d: %w", created.ID, err)
	}
	pipeline.FirstRun = run
	return pipeline, nil
}

// RunPipeline queues a build of an existing pipeline, resolving the
// definition by name.
func (s *Service) RunPipeline(ctx context.Context, req *RunRequest) (*Run, error) {
	definition, err := s.findDefinitionByName(ctx, req.Project, req.PipelineName)
	if err != nil {
		return nil, err
	}
	run, err := s.queueBuild(ctx, req.Project, definition.ID, req.Branch)
	if err != nil {
		return nil, fmt.Errorf("error queueing build of definition %d: %w", definition.ID, err)
	}
	return run, nil
}

// ListPipelines lists every build definition in the project.
func (s *Service) ListPipelines(ctx context.Context, project string) ([]*documents.BuildDefinition, error) {
	definitions, err := s.client.ListDefinitions(ctx, project, nil)
	if err != nil {
		return nil, fmt.Errorf("error listing build definitions in project %q: %w", project, err)
	}
	return definitions, nil
}

// DeletePipeline resolves a definition by name and deletes it.
func (s *Service) DeletePipeline(ctx context.Context, project string, pipelineName string) error {
	definition, err := s.findDefinitionByName(ctx, project, pipelineName)
	if err != nil {
		return err
	}
	err = s.client.DeleteDefinition(ctx, project, definition.ID)
	if err != nil {
		return fmt.Errorf("error deleting build definition %d: %w", definition.ID, err)
	}
	s.Infof("Deleted build definition %q (id %d)", definition.Name, definition.ID)
	return nil
}

// queueBuild queues a build against a definition ID. The ID is used exactly
// as the vendor returned it from definition creation or lookup.
func (s *Service) queueBuild(ctx context.Context, project string, definitionID int, branch string) (*Run, error) {
	build := &documents.Build{
		Definition:   &documents.DefinitionReference{ID: definitionID},
		SourceBranch: branch,
	}
	queued, err := s.client.QueueBuild(ctx, project, build)
	if err != nil {
		return nil, err
	}
	s.Infof("Queued build %s (id %d) on %s", queued.BuildNumber, queued.ID, queued.SourceBranch)
	return &Run{
		BuildID:     queued.ID,
		BuildNumber: queued.BuildNumber,
		Branch:      queued.SourceBranch,
		Status:      models.BuildStatus(queued.Status),
		Result:      models.BuildResult(queued.Result),
		WebURL:      queued.Links.WebURL(),
	}, nil
}

// resolveAgentQueue resolves a queue name to its ID before the definition is
// created, failing fast with a clear error rather than a vendor 400.
func (s *Service) resolveAgentQueue(ctx context.Context, project string, queueName string) (*documents.AgentQueue, error) {
	queues, err := s.client.GetAgentQueues(ctx, project, queueName)
	if err != nil {
		return nil, fmt.Errorf("error resolving agent queue %q: %w", queueName, err)
	}
	if len(queues) == 0 {
		return nil, gerror.NewErrNotFound(fmt.Sprintf("agent queue %q not found in project %q", queueName, project))
	}
	return queues[0], nil
}

func (s *Service) findDefinitionByName(ctx context.Context, project string, pipelineName string) (*documents.BuildDefinition, error) {
	definitions, err := s.client.ListDefinitions(ctx, project, &azureapi.ListDefinitionsOptions{Name: pipelineName})
	if err != nil {
		return nil, fmt.Errorf("error resolving pipeline %q: %w", pipelineName, err)
	}
	if len(definitions) == 0 {
		return nil, gerror.NewErrNotFound(fmt.Sprintf("pipeline %q not found in project %q", pipelineName, project))
	}
	if len(definitions) > 1 {
		return nil, errors.Errorf("error pipeline name %q matched %d definitions", pipelineName, len(definitions))
	}
	return definitions[0], nil
}
