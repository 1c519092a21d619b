// Package module wires the likes backfill service
package module

import (
	"backstitch/internal/modkit"
	"backstitch/internal/modkit/repokit"

	"backstitch/internal/services/likes/domain"
	"backstitch/internal/services/likes/repo"
	"backstitch/internal/services/likes/service"
	runsrepo "backstitch/internal/services/runs/repo"
	runssvc "backstitch/internal/services/runs/service"
)

// Ports defines the likes module ports
type Ports struct {
	Runner domain.RunnerPort
}

// Module implements the likes module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the likes module
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
func (m *Module) Name() string { return "likes" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
