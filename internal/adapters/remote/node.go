package remote

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/stratum/internal/core/ports"
)

// NodeID is the unique identifier for the remote dialer Graft node.
const NodeID graft.ID = "adapter.remote"

// Dialer opens clients for the remote named in the project file.
type Dialer struct{}

// Dial connects to url.
func (Dialer) Dial(url string) (ports.Remote, error) {
	c, err := Dial(url)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func init() {
	graft.Register(graft.Node[*Dialer]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Dialer, error) {
			return &Dialer{}, nil
		},
	})
}
