package cas

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/stratum/internal/core/domain"
)

// NodeID is the unique identifier for the CAS opener Graft node.
const NodeID graft.ID = "adapter.cas"

// Opener opens the store of a cache directory. The directory is only known
// once the project file has been loaded, so the application opens stores
// lazily through it.
type Opener struct{}

// Open returns the store and materializer for cacheDir.
func (Opener) Open(cacheDir string) (*Store, *Materializer, error) {
	store, err := NewStore(domain.CASPath(cacheDir))
	if err != nil {
		return nil, nil, err
	}
	return store, NewMaterializer(store), nil
}

func init() {
	graft.Register(graft.Node[*Opener]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Opener, error) {
			return &Opener{}, nil
		},
	})
}
