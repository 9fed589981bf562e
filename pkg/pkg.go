//nolint:gochecknoglobals
package pkg

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version is the semantic version of the dcsmiz module embedded at build
// time, without surrounding whitespace.
var Version = strings.TrimSpace(version)

const (
	// Name is the command and module identifier. It appears in help text,
	// default config paths and the environment variable prefix.
	Name = "dcsmiz"
	// Description is a short summary used in help output.
	Description = "DCS World mission file reader"
)

// EnvPrefix returns the prefix of environment variables read by the CLI.
func EnvPrefix() string {
	return strings.ToUpper(Name) + "_"
}

// AuthorInfo represents an individual author's name and email address.
type AuthorInfo struct {
	Name  string
	Email string
}

// Author lists the primary author(s) of the project.
var Author = []AuthorInfo{
	{"ardnew", "andrew@ardnew.com"},
}
