package commands

import (
	"os"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pipewright/pipewright/azureapi"
	"github.com/pipewright/pipewright/common/logger"
	"github.com/pipewright/pipewright/provision"
)

const (
	// AccessTokenEnvVar is the az devops CLI convention for supplying a
	// personal access token via the environment.
	AccessTokenEnvVar = "AZURE_DEVOPS_EXT_PAT"
	// SystemAccessTokenEnvVar carries the job access token inside an Azure
	// Pipelines run, usable as a bearer token instead of a PAT.
	SystemAccessTokenEnvVar = "SYSTEM_ACCESSTOKEN"
	// TFBuildEnvVar is set by the Azure Pipelines agent on every job.
	TFBuildEnvVar = "TF_BUILD"
)

// LogSafeFlags is a list of flags by name whose values are safe to log.
// Access tokens are deliberately absent.
var LogSafeFlags = []string{
	"organization",
	"project",
	"pipeline-name",
	"repository-name",
	"repository-url",
	"packages-dir",
	"branch",
	"agent-queue",
	"folder",
	"settings-file",
	"skip-first-run",
	"wait",
	"log-levels",
}

// LogFlagValues debug-logs the values of every flag on the allowlist that
// the user explicitly set.
func LogFlagValues(log logger.Log, flags *flag.FlagSet) {
	for _, name := range LogSafeFlags {
		f := flags.Lookup(name)
		if f != nil && f.Changed {
			log.Debugf("flag %s=%s", name, f.Value.String())
		}
	}
}

// OrgConfig carries the Azure DevOps coordinates and credentials shared by
// every command that talks to the vendor API.
type OrgConfig struct {
	Organization string
	Project      string
	AccessToken  string
}

// RegisterOrgFlags registers the shared organization flags on a command's flag set.
func RegisterOrgFlags(flags *flag.FlagSet, config *OrgConfig) {
	flags.StringVar(
		&config.Organization,
		"organization",
		"",
		"The Azure DevOps organization name.")
	flags.StringVar(
		&config.Project,
		"project",
		"",
		"The Azure DevOps project the pipeline belongs to.")
	flags.StringVar(
		&config.AccessToken,
		"access-token",
		"",
		"A personal access token with Build read & execute scope. Defaults to $"+AccessTokenEnvVar+".")
}

// ApplyConfig backfills values the user did not pass as flags from the
// viper layers, giving flag > environment > config file > default
// precedence. Flag defaults are empty so a set flag always wins.
func (c *OrgConfig) ApplyConfig() {
	if c.Organization == "" {
		c.Organization = viper.GetString("organization")
	}
	if c.Project == "" {
		c.Project = viper.GetString("project")
	}
	if c.AccessToken == "" {
		c.AccessToken = viper.GetString("access-token")
	}
}

// NewAuthenticator resolves credentials in order: the --access-token flag,
// then $AZURE_DEVOPS_EXT_PAT, then (inside an Azure Pipelines job) the
// job's $SYSTEM_ACCESSTOKEN as a bearer token.
func (c *OrgConfig) NewAuthenticator(logFactory logger.LogFactory) (azureapi.Authenticator, error) {
	token := c.AccessToken
	if token == "" {
		token = os.Getenv(AccessTokenEnvVar)
	}
	if token != "" {
		return azureapi.NewPersonalAccessTokenAuthenticator(azureapi.PersonalAccessToken(token), logFactory), nil
	}
	if os.Getenv(TFBuildEnvVar) != "" {
		if systemToken := os.Getenv(SystemAccessTokenEnvVar); systemToken != "" {
			return azureapi.NewStaticBearerTokenAuthenticator(systemToken, logFactory), nil
		}
	}
	return nil, errors.Errorf("error access token must be set via --access-token or $%s", AccessTokenEnvVar)
}

// NewProvisionService wires up an authenticated API client and the
// provisioning service for the configured organization.
func (c *OrgConfig) NewProvisionService(logFactory logger.LogFactory) (*provision.Service, error) {
	if c.Organization == "" {
		return nil, errors.New("error organization must be set")
	}
	authenticator, err := c.NewAuthenticator(logFactory)
	if err != nil {
		return nil, err
	}
	client, err := azureapi.NewAPIClient(azureapi.OrganizationURL(c.Organization), authenticator, logFactory)
	if err != nil {
		return nil, errors.Wrap(err, "error creating API client")
	}
	return provision.NewService(client, clock.New(), logFactory), nil
}
