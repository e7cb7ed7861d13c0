package provision

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/pipewright/pipewright/common/gerror"
	"github.com/pipewright/pipewright/common/models"
)

// starterPipeline is the typed shape of the generated azure-pipelines.yaml.
type starterPipeline struct {
	Trigger starterTrigger `yaml:"trigger"`
	Pool    starterPool    `yaml:"pool"`
	Steps   []starterStep  `yaml:"steps"`
}

type starterTrigger struct {
	Branches starterBranchFilter `yaml:"branches"`
}

type starterBranchFilter struct {
	Include []string `yaml:"include"`
}

type starterPool struct {
	VMImage string `yaml:"vmImage"`
}

type starterStep struct {
	Script      string `yaml:"script"`
	DisplayName string `yaml:"displayName"`
}

// GenerateStarterPipeline renders a minimal azure-pipelines.yaml for a
// service, built from typed structs so the output always parses.
func GenerateStarterPipeline(serviceName models.ServiceName, branch string) ([]byte, error) {
	pipeline := &starterPipeline{
		Trigger: starterTrigger{
			Branches: starterBranchFilter{Include: []string{branchName(branch)}},
		},
		Pool: starterPool{VMImage: "ubuntu-latest"},
		Steps: []starterStep{
			{
				Script:      fmt.Sprintf("echo building %s", serviceName),
				DisplayName: fmt.Sprintf("Build %s", serviceName),
			},
		},
	}
	data, err := yaml.Marshal(pipeline)
	if err != nil {
		return nil, errors.Wrap(err, "error marshaling starter pipeline")
	}
	return data, nil
}

// WriteStarterPipeline writes a starter pipeline file for the service at
// the same repository-relative path create-pipeline will reference,
// refusing to overwrite an existing file unless force is set. It returns
// the path written. The file only reaches the remote repository through the
// user's normal commit flow; nothing is pushed.
func WriteStarterPipeline(repoRoot string, spec *models.PipelineSpec, force bool) (string, error) {
	data, err := GenerateStarterPipeline(spec.ServiceName, spec.Repository.Branch)
	if err != nil {
		return "", err
	}
	target := filepath.Join(repoRoot, filepath.FromSlash(spec.YAMLFilename()))
	if !force {
		_, err := os.Stat(target)
		if err == nil {
			return "", gerror.NewErrAlreadyExists(fmt.Sprintf("%s already exists (use --force to overwrite)", target))
		}
		if !os.IsNotExist(err) {
			return "", errors.Wrapf(err, "error checking for existing file %q", target)
		}
	}
	err = os.MkdirAll(filepath.Dir(target), 0755)
	if err != nil {
		return "", errors.Wrapf(err, "error making directory for %q", target)
	}
	err = os.WriteFile(target, data, 0644)
	if err != nil {
		return "", errors.Wrapf(err, "error writing %q", target)
	}
	return target, nil
}

// branchName strips the refs/heads/ prefix for use in the YAML trigger
// block, which takes bare branch names.
func branchName(ref string) string {
	const prefix = "refs/heads/"
	if len(ref) > len(prefix) && ref[:len(prefix)] == prefix {
		return ref[len(prefix):]
	}
	if ref == "" {
		return "main"
	}
	return ref
}
