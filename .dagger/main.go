// Streampipe CI/CD
//
// Package main provides reproducible builds and tests locally and in GitHub actions.
// It is the main harness for handling nearly all dev operations.
package main

import (
	"context"

	"dagger/streampipe/internal/dagger"
)

// Streampipe is the main module for the Streampipe CI/CD pipeline
type Streampipe struct {
	// Project source directory
	//
	// +private
	Source *dagger.Directory
}

// New creates a new Streampipe CI/CD module instance
func New(
	// Project source directory.
	//
	// +defaultPath="/"
	// +ignore=[".git", ".direnv", ".devenv", "build", "tmp"]
	source *dagger.Directory,
) *Streampipe {
	return &Streampipe{
		Source: source,
	}
}

// goContainer returns a Go container with the project source mounted
// and module/build caches attached.
//
// It is the shared foundation for tests, builds, and linting.
func (s *Streampipe) goContainer() *dagger.Container {
	return dag.Container().
		From("golang:1.25-bookworm").
		WithEnvVariable("CGO_ENABLED", "0").
		WithEnvVariable("PATH", "/go/bin:$PATH", dagger.ContainerWithEnvVariableOpts{Expand: true}).
		WithMountedCache("/go/pkg/mod", dag.CacheVolume("go-mod")).
		WithMountedCache("/root/.cache/go-build", dag.CacheVolume("go-build")).
		WithWorkdir("/src").
		WithDirectory("/src", s.Source)
}

// Test runs the streampipe unit tests via "go test"
func (s *Streampipe) Test(ctx context.Context) (string, error) {
	return s.goContainer().
		WithExec([]string{"go", "test", "-v", "./..."}).
		Stdout(ctx)
}
