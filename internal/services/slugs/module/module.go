// Package module wires the slug backfill service
package module

import (
	"backstitch/internal/modkit"
	"backstitch/internal/modkit/repokit"

	runsrepo "backstitch/internal/services/runs/repo"
	runssvc "backstitch/internal/services/runs/service"
	"backstitch/internal/services/slugs/domain"
	"backstitch/internal/services/slugs/repo"
	"backstitch/internal/services/slugs/service"
)

// Ports defines the slugs module ports
type Ports struct {
	Runner domain.RunnerPort
}

// Module implements the slugs module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the slugs module
// It wires the repo binder, the run recorder, and the service using config from deps.Cfg
func New(deps modkit.Deps) *Module {
	opts := FromConfig(deps.Cfg)

	storeBinder := repo.NewPG()
	recorder := runssvc.New(repokit.TxRunner(deps.PG), runsrepo.NewPG())

	svc := service.New(
		repokit.TxRunner(deps.PG), storeBinder, recorder,
		service.Config{DryRun: opts.DryRun, MaxPosts: opts.MaxPosts},
	)

	m := &Module{deps: deps}
	m.ports = Ports{Runner: svc}
	return m
}

// Name returns the module name
func (m *Module) Name() string { return "slugs" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
