package models

import (
	"fmt"
	"regexp"

	"github.com/pkg/errors"
)

const serviceNameMaxLength = 100
const ServiceNameRegexStr = "^[a-zA-Z0-9_-]{1,100}$"

var ServiceNameRegex = regexp.MustCompile(ServiceNameRegexStr)

// ServiceName is the human-specified identifier of the software service a
// pipeline is provisioned for. It is used to derive the default pipeline
// name and the pipeline file path inside a monorepo, so it must conform to
// length and character set requirements (see serviceNameMaxLength and
// ServiceNameRegex).
type ServiceName string

func (s ServiceName) String() string {
	return string(s)
}

func (s ServiceName) Valid() bool {
	return s.Validate() == nil
}

func (s ServiceName) Validate() error {
	if s == "" {
		return errors.New("error service name must be set")
	}
	if len(s) > serviceNameMaxLength {
		return fmt.Errorf("error service name must not exceed %d characters", serviceNameMaxLength)
	}
	if !ServiceNameRegex.MatchString(s.String()) {
		return fmt.Errorf("error service name must only contain alphanumeric, dash or underscore characters: '%s'", s)
	}
	return nil
}
