package commands

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pipewright/pipewright/cmd/pw/cli"
	"github.com/pipewright/pipewright/common/logger"
	"github.com/pipewright/pipewright/common/version"
)

const (
	DefaultConfigDir = "~/"
	ConfigFileName   = ".pipewright"
)

var (
	defaultConfigFilePath = fmt.Sprintf("%s%s.yml", DefaultConfigDir, ConfigFileName)
)

type GlobalConfig struct {
	Debug          bool
	JSON           bool
	ConfigFilePath string
	LogLevels      string
}

var Global = &GlobalConfig{}

func init() {
	cobra.OnInitialize(initConfig)

	RootCmd.PersistentFlags().StringVarP(
		&Global.ConfigFilePath,
		"config",
		"c",
		defaultConfigFilePath,
		"The config file to use when executing commands.")

	RootCmd.PersistentFlags().BoolVarP(
		&Global.Debug,
		"debug",
		"d",
		false,
		"Enable verbose debug output.")

	RootCmd.PersistentFlags().BoolVarP(
		&Global.JSON,
		"json",
		"j",
		false,
		"Enable structured JSON log output.")

	RootCmd.PersistentFlags().StringVar(
		&Global.LogLevels,
		"log-levels",
		"",
		fmt.Sprintf("Per-subsystem log levels as name=level pairs separated by commas. Levels: %s.", logger.ListLogLevels()))
}

// Execute adds all child commands to the root command sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cli.Exit(RootCmd.Execute())
}

// NewLogFactory builds the log factory commands use, honoring --log-levels,
// --debug and --json.
func NewLogFactory() (logger.LogFactory, error) {
	registry, err := logger.NewLogRegistry(logger.LogLevelConfig(Global.LogLevels))
	if err != nil {
		return nil, err
	}
	if Global.Debug {
		registry.SetDefaultLogLevel(logrus.DebugLevel)
	}
	return logger.MakeLogrusLogFactoryStdErr(registry, Global.JSON), nil
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {

	if Global.ConfigFilePath != "" && Global.ConfigFilePath != defaultConfigFilePath {
		viper.SetConfigFile(Global.ConfigFilePath)
	} else {
		viper.SetConfigName(ConfigFileName)
		viper.AddConfigPath(DefaultConfigDir)
		viper.AddConfigPath(".")
	}

	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	err := viper.ReadInConfig()
	if err == nil {
		Global.ConfigFilePath = viper.ConfigFileUsed()
		cli.Stderr.Printf("Using config file: %s", viper.ConfigFileUsed())
	} else {
		switch err.(type) {
		case viper.ConfigFileNotFoundError:
		default:
			cli.Exit(fmt.Errorf("error loading config file (%s): %s", viper.ConfigFileUsed(), err))
		}
	}
}

var RootCmd = &cobra.Command{
	Use:     "pw",
	Short:   "Pipewright",
	Long:    `Pipewright provisions Azure DevOps CI pipelines for software services.`,
	Version: version.VersionToString(),
}
