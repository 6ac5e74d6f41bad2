// Package remote implements the gRPC transport of the shared artifact
// cache: a client satisfying ports.Remote and a server exposing a local
// store to other machines.
package remote

import (
	"context"
	"errors"
	"strings"

	casv1 "go.trai.ch/stratum/api/cas/v1"
	"go.trai.ch/stratum/internal/core/domain"
	"go.trai.ch/zerr"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

// Client implements ports.Remote.
type Client struct {
	conn      *grpc.ClientConn
	cas       casv1.ContentAddressableStorageClient
	artifacts casv1.ArtifactServiceClient
}

// Dial connects to the remote at url. Both "grpc://host:port" and a bare
// "host:port" are accepted.
// Note: grpc.NewClient returns immediately; the connection is made on the first call.
func Dial(url string, opts ...grpc.DialOption) (*Client, error) {
	target := strings.TrimPrefix(url, "grpc://")
	if target == "" {
		return nil, zerr.Wrap(domain.ErrRemoteNotConfigured, "empty remote url")
	}
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(
			grpc.MaxCallRecvMsgSize(maxMessageBytes),
			grpc.MaxCallSendMsgSize(maxMessageBytes),
		),
	}, opts...)
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "remote client creation failed"), "url", url)
	}
	return &Client{
		conn:      conn,
		cas:       casv1.NewContentAddressableStorageClient(conn),
		artifacts: casv1.NewArtifactServiceClient(conn),
	}, nil
}

// FindMissing implements ports.Remote.
func (c *Client) FindMissing(ctx context.Context, digests []domain.Digest) ([]domain.Digest, error) {
	resp, err := c.cas.FindMissingBlobs(ctx, &casv1.FindMissingBlobsRequest{BlobDigests: toProtoDigests(digests)})
	if err != nil {
		return nil, fromStatus(err, "find missing blobs")
	}
	return fromProtoDigests(resp.GetMissingBlobDigests())
}

// Upload implements ports.Remote.
func (c *Client) Upload(ctx context.Context, blobs map[domain.Digest][]byte) error {
	req := &casv1.BatchUpdateBlobsRequest{}
	for d, data := range blobs {
		req.Requests = append(req.Requests, &casv1.Blob{Digest: toProtoDigest(d), Data: data})
	}
	resp, err := c.cas.BatchUpdateBlobs(ctx, req)
	if err != nil {
		return fromStatus(err, "upload blobs")
	}
	for _, e := range resp.GetResponses() {
		if e.GetCode() != int32(codes.OK) {
			err := fromStatus(status.Error(codes.Code(e.GetCode()), e.GetMessage()), "upload blob") //nolint:gosec // decoded status code
			return zerr.With(err, "digest", e.GetDigest().GetHash())
		}
	}
	return nil
}

// Download implements ports.Remote.
func (c *Client) Download(ctx context.Context, digests []domain.Digest) (map[domain.Digest][]byte, error) {
	resp, err := c.cas.BatchReadBlobs(ctx, &casv1.BatchReadBlobsRequest{Digests: toProtoDigests(digests)})
	if err != nil {
		return nil, fromStatus(err, "download blobs")
	}
	out := make(map[domain.Digest][]byte, len(resp.GetResponses()))
	for _, e := range resp.GetResponses() {
		d, err := fromProtoDigest(e.GetDigest())
		if err != nil {
			return nil, err
		}
		switch codes.Code(e.GetCode()) { //nolint:gosec // decoded status code
		case codes.OK:
			out[d] = e.GetData()
		case codes.NotFound:
		default:
			err := fromStatus(status.Error(codes.Code(e.GetCode()), e.GetMessage()), "download blob") //nolint:gosec // decoded status code
			return nil, zerr.With(err, "digest", d.String())
		}
	}
	return out, nil
}

// GetTree implements ports.Remote.
func (c *Client) GetTree(ctx context.Context, root domain.Digest) ([][]byte, error) {
	resp, err := c.cas.GetTree(ctx, &casv1.GetTreeRequest{RootDigest: toProtoDigest(root)})
	if err != nil {
		return nil, zerr.With(fromStatus(err, "get tree"), "digest", root.String())
	}
	return resp.GetDirectories(), nil
}

// GetArtifact implements ports.Remote.
func (c *Client) GetArtifact(ctx context.Context, ref string) ([]byte, error) {
	resp, err := c.artifacts.GetArtifact(ctx, &casv1.GetArtifactRequest{Ref: ref})
	if err != nil {
		return nil, zerr.With(fromStatus(err, "get artifact"), "ref", ref)
	}
	return resp.GetArtifact(), nil
}

// UpdateArtifact implements ports.Remote.
func (c *Client) UpdateArtifact(ctx context.Context, ref string, artifact []byte) error {
	if _, err := c.artifacts.UpdateArtifact(ctx, &casv1.UpdateArtifactRequest{Ref: ref, Artifact: artifact}); err != nil {
		return zerr.With(fromStatus(err, "update artifact"), "ref", ref)
	}
	return nil
}

// Close implements ports.Remote.
func (c *Client) Close() error {
	return c.conn.Close()
}

// fromStatus maps a gRPC error to the domain. Transient failures become
// domain.ErrRemoteUnavailable so callers may retry them.
func fromStatus(err error, op string) error {
	st, ok := status.FromError(err)
	if !ok {
		if errors.Is(err, context.Canceled) {
			return zerr.Wrap(domain.ErrCancelled, op)
		}
		return zerr.Wrap(err, op)
	}
	var sentinel error
	switch st.Code() {
	case codes.NotFound:
		sentinel = domain.ErrNotFound
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted:
		sentinel = domain.ErrRemoteUnavailable
	case codes.Canceled:
		sentinel = domain.ErrCancelled
	case codes.InvalidArgument:
		if strings.Contains(st.Message(), domain.ErrDigestMismatch.Error()) {
			sentinel = domain.ErrDigestMismatch
		}
	}
	if sentinel == nil {
		return zerr.With(zerr.Wrap(err, op), "code", st.Code().String())
	}
	return zerr.With(zerr.Wrap(sentinel, op+": "+st.Message()), "code", st.Code().String())
}
