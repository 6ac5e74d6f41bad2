package remote

import (
	"context"
	"errors"
	"net"
	"slices"

	casv1 "go.trai.ch/stratum/api/cas/v1"
	"go.trai.ch/stratum/internal/core/domain"
	"go.trai.ch/stratum/internal/core/ports"
	"go.trai.ch/zerr"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// maxMessageBytes bounds a single request or response. Batches are cut at
// a quarter of this so the framing always fits.
const maxMessageBytes = 16 << 20

// RefStore keeps artifact records by ref.
type RefStore interface {
	ReadRef(ctx context.Context, ref string) ([]byte, error)
	WriteRef(ctx context.Context, ref string, data []byte) error
}

// Server serves a content store and its artifact refs over gRPC.
type Server struct {
	store      ports.ContentStore
	refs       RefStore
	logger     ports.Logger
	grpcServer *grpc.Server
}

// NewServer creates a server backed by store and refs.
func NewServer(store ports.ContentStore, refs RefStore, logger ports.Logger) *Server {
	s := &Server{
		store:  store,
		refs:   refs,
		logger: logger,
		grpcServer: grpc.NewServer(
			grpc.MaxRecvMsgSize(maxMessageBytes),
			grpc.MaxSendMsgSize(maxMessageBytes),
		),
	}
	casv1.RegisterContentAddressableStorageServer(s.grpcServer, casService{Server: s})
	casv1.RegisterArtifactServiceServer(s.grpcServer, artifactService{Server: s})
	return s
}

// Serve accepts connections on lis until ctx is cancelled, then stops
// gracefully.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.grpcServer.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		s.grpcServer.GracefulStop()
		return nil
	case err := <-errCh:
		return zerr.Wrap(err, "remote server stopped")
	}
}

type casService struct {
	casv1.UnimplementedContentAddressableStorageServer
	*Server
}

type artifactService struct {
	casv1.UnimplementedArtifactServiceServer
	*Server
}

func (s casService) FindMissingBlobs(ctx context.Context, req *casv1.FindMissingBlobsRequest) (*casv1.FindMissingBlobsResponse, error) {
	digests, err := fromProtoDigests(req.GetBlobDigests())
	if err != nil {
		return nil, toStatus(err)
	}
	resp := &casv1.FindMissingBlobsResponse{}
	for _, d := range digests {
		ok, err := s.store.Has(ctx, d)
		if err != nil {
			return nil, toStatus(err)
		}
		if !ok {
			resp.MissingBlobDigests = append(resp.MissingBlobDigests, toProtoDigest(d))
		}
	}
	return resp, nil
}

func (s casService) BatchUpdateBlobs(ctx context.Context, req *casv1.BatchUpdateBlobsRequest) (*casv1.BatchUpdateBlobsResponse, error) {
	resp := &casv1.BatchUpdateBlobsResponse{}
	for _, e := range req.GetRequests() {
		out := &casv1.Blob{Digest: e.GetDigest()}
		d, err := fromProtoDigest(e.GetDigest())
		if err == nil {
			err = d.Verify(e.GetData())
		}
		if err != nil {
			out.Code, out.Message = int32(codes.InvalidArgument), err.Error()
		} else if _, err := s.store.Put(ctx, e.GetData()); err != nil {
			out.Code, out.Message = int32(status.Code(toStatus(err))), err.Error()
		}
		resp.Responses = append(resp.Responses, out)
	}
	return resp, nil
}

func (s casService) BatchReadBlobs(ctx context.Context, req *casv1.BatchReadBlobsRequest) (*casv1.BatchReadBlobsResponse, error) {
	resp := &casv1.BatchReadBlobsResponse{}
	for _, pd := range req.GetDigests() {
		out := &casv1.Blob{Digest: pd}
		d, err := fromProtoDigest(pd)
		var data []byte
		if err == nil {
			data, err = s.store.Get(ctx, d)
		}
		if err != nil {
			out.Code, out.Message = int32(status.Code(toStatus(err))), err.Error()
		} else {
			out.Data = data
		}
		resp.Responses = append(resp.Responses, out)
	}
	return resp, nil
}

// GetTree returns every directory node below the root, root first.
func (s casService) GetTree(ctx context.Context, req *casv1.GetTreeRequest) (*casv1.GetTreeResponse, error) {
	root, err := fromProtoDigest(req.GetRootDigest())
	if err != nil {
		return nil, toStatus(err)
	}
	tree, err := s.store.GetTree(ctx, root)
	if err != nil {
		return nil, toStatus(err)
	}
	resp := &casv1.GetTreeResponse{}
	seen := make(map[domain.Digest]bool)
	if _, err := domain.EncodeTree(tree, func(d domain.Digest, data []byte) error {
		if !seen[d] {
			seen[d] = true
			resp.Directories = append(resp.Directories, data)
		}
		return nil
	}); err != nil {
		return nil, toStatus(err)
	}
	slices.Reverse(resp.Directories)
	return resp, nil
}

func (s artifactService) GetArtifact(ctx context.Context, req *casv1.GetArtifactRequest) (*casv1.GetArtifactResponse, error) {
	data, err := s.refs.ReadRef(ctx, req.GetRef())
	if err != nil {
		return nil, toStatus(err)
	}
	return &casv1.GetArtifactResponse{Artifact: data}, nil
}

// UpdateArtifact refuses records that reference content the store does
// not have, so a ref never points at a partial upload.
func (s artifactService) UpdateArtifact(ctx context.Context, req *casv1.UpdateArtifactRequest) (*casv1.UpdateArtifactResponse, error) {
	art, err := domain.UnmarshalArtifact(req.GetArtifact())
	if err != nil {
		return nil, toStatus(err)
	}
	for _, d := range art.Digests() {
		ok, err := s.store.Has(ctx, d)
		if err != nil {
			return nil, toStatus(err)
		}
		if !ok {
			return nil, status.Errorf(codes.FailedPrecondition, "artifact %s references missing blob %s", req.GetRef(), d)
		}
	}
	if err := s.refs.WriteRef(ctx, req.GetRef(), req.GetArtifact()); err != nil {
		return nil, toStatus(err)
	}
	s.logger.Info("stored artifact " + req.GetRef())
	return &casv1.UpdateArtifactResponse{}, nil
}

// toStatus maps store errors to gRPC status codes.
func toStatus(err error) error {
	code := codes.Internal
	switch {
	case errors.Is(err, domain.ErrNotFound):
		code = codes.NotFound
	case errors.Is(err, domain.ErrInvalidDigest),
		errors.Is(err, domain.ErrInvalidPath),
		errors.Is(err, domain.ErrCorruptArtifact),
		errors.Is(err, domain.ErrDigestMismatch):
		code = codes.InvalidArgument
	case errors.Is(err, domain.ErrCorruptTree), errors.Is(err, domain.ErrCorruptBlob):
		code = codes.DataLoss
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	}
	return status.Error(code, err.Error())
}
