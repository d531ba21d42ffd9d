// Package schema provides the `monorel schema` command, which prints the JSON schema of an emitted document.
package schema

import (
	"fmt"
	"slices"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/urfave/cli/v2"

	"github.com/monorel/monorel/internal/changes"
	"github.com/monorel/monorel/internal/errors"
	"github.com/monorel/monorel/internal/orchestrator"
	"github.com/monorel/monorel/internal/output"
	"github.com/monorel/monorel/internal/report"
	"github.com/monorel/monorel/internal/schema"
	"github.com/monorel/monorel/internal/workspace"
)

const (
	CommandName = "schema"

	// DocumentReport names the report artifact.
	DocumentReport = "report"
)

// Schemas maps document names to their schema.
var Schemas = map[string]func() *jsonschema.Schema{
	output.KeyDiscoveredPackages: workspace.DiscoveredPackagesSchema,
	output.KeyChangedPackages:    changes.ChangedPackagesSchema,
	output.KeyBuildResults:       orchestrator.BuildResultsSchema,
	DocumentReport:               report.Schema,
}

// UnknownDocumentError is returned for a document name without schema.
type UnknownDocumentError struct {
	Name string
}

func (err UnknownDocumentError) Error() string {
	return fmt.Sprintf("unknown document %q, expected one of: %s", err.Name, strings.Join(documentNames(), ", "))
}

func NewCommand() *cli.Command {
	return &cli.Command{
		Name:      CommandName,
		Usage:     "Print the JSON schema of an emitted document: " + strings.Join(documentNames(), ", ") + ".",
		ArgsUsage: "<document>",
		Action: func(ctx *cli.Context) error {
			name := ctx.Args().First()

			newSchema, ok := Schemas[name]
			if !ok {
				return errors.New(UnknownDocumentError{Name: name})
			}

			return schema.Write(ctx.App.Writer, newSchema())
		},
	}
}

func documentNames() []string {
	names := make([]string, 0, len(Schemas))
	for name := range Schemas {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}
