package config

import (
	"os"
	"strings"

	"github.com/gin-gonic/gin"
)

// Environment is the deployment stage the process runs in.
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

// GetEnvironment reads ENV. CI=true wins over everything else.
func GetEnvironment() Environment {
	if os.Getenv("CI") == "true" {
		return CI
	}
	return ParseEnvironment(os.Getenv("ENV"))
}

// ParseEnvironment maps a name onto an Environment, defaulting to Development.
func ParseEnvironment(name string) Environment {
	switch env := Environment(strings.ToLower(strings.TrimSpace(name))); env {
	case Production, Test, CI:
		return env
	case "prod":
		return Production
	default:
		return Development
	}
}

func (e Environment) IsProduction() bool {
	return e == Production
}

// GinMode is the gin mode matching the environment.
func (e Environment) GinMode() string {
	switch e {
	case Production:
		return gin.ReleaseMode
	case Test, CI:
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}
