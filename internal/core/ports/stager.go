package ports

import "go.trai.ch/stratum/internal/core/domain"

// Stager composes layers into a single sandbox tree.
//
//go:generate mockgen -source=stager.go -destination=mocks/mock_stager.go -package=mocks
type Stager interface {
	// Compose overlays layers in order on top of an empty root. It either
	// returns the complete tree or an error; nothing is partially applied.
	Compose(layers []domain.Layer, policy domain.StagePolicy) (*domain.StageResult, error)
}
