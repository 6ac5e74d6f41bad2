package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/stratum/internal/adapters/cas"     //nolint:depguard // Wired in app layer
	"go.trai.ch/stratum/internal/adapters/config"  //nolint:depguard // Wired in app layer
	"go.trai.ch/stratum/internal/adapters/logger"  //nolint:depguard // Wired in app layer
	"go.trai.ch/stratum/internal/adapters/remote"  //nolint:depguard // Wired in app layer
	"go.trai.ch/stratum/internal/adapters/sandbox" //nolint:depguard // Wired in app layer
	"go.trai.ch/stratum/internal/adapters/shell"   //nolint:depguard // Wired in app layer
	"go.trai.ch/stratum/internal/core/ports"
	"go.trai.ch/stratum/internal/engine/kinds"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components contains the initialized application components the CLI needs.
type Components struct {
	App    *App
	Logger ports.Logger
}

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			logger.NodeID,
			cas.NodeID,
			remote.NodeID,
			sandbox.NodeID,
			shell.NodeID,
			kinds.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			a, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return &Components{App: a, Logger: log}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}
	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}
	opener, err := graft.Dep[*cas.Opener](ctx)
	if err != nil {
		return nil, err
	}
	dialer, err := graft.Dep[*remote.Dialer](ctx)
	if err != nil {
		return nil, err
	}
	stager, err := graft.Dep[ports.Stager](ctx)
	if err != nil {
		return nil, err
	}
	executor, err := graft.Dep[ports.Executor](ctx)
	if err != nil {
		return nil, err
	}
	registry, err := graft.Dep[*kinds.Registry](ctx)
	if err != nil {
		return nil, err
	}
	return New(loader, log, opener, dialer, stager, executor, registry), nil
}
