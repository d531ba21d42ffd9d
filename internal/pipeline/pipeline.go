//go:generate mockgen -source=$GOFILE -destination=mocks/mock_$GOFILE -package=mocks

package pipeline

import (
	"context"

	"github.com/monorel/monorel/internal/workspace"
	"github.com/monorel/monorel/options"
	"github.com/monorel/monorel/pkg/log"
)

// RestoreFunc undoes a scoped change of the working tree.
type RestoreFunc func() error

// RegistryConfigurer writes the registry authentication artifact used while one package is processed.
type RegistryConfigurer interface {
	Configure(ctx context.Context, l log.Logger, pkg *workspace.Package, registry options.RegistryOptions) (RestoreFunc, error)
}

// PublishRequest is everything the publisher needs to build and publish one package.
type PublishRequest struct {
	Package  *workspace.Package
	Registry options.RegistryOptions
	// Versions maps workspace package names to the versions `workspace:` specifiers resolve to.
	Versions map[string]string
	Version  string
	Tag      string
	Publish  bool
	DryRun   bool
}

// Publisher builds a package and publishes it under the requested version and tag.
type Publisher interface {
	Publish(ctx context.Context, l log.Logger, req *PublishRequest) error
}

// AuditRequest describes the vulnerability audit of one package.
type AuditRequest struct {
	Package *workspace.Package
	// Level is the lowest severity that fails the audit.
	Level string
	// ArtifactPath receives the JSON audit summary.
	ArtifactPath string
}

// Auditor audits the dependencies of a package.
type Auditor interface {
	Audit(ctx context.Context, l log.Logger, req *AuditRequest) error
}
