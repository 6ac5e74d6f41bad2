package remote

import (
	casv1 "go.trai.ch/stratum/api/cas/v1"
	"go.trai.ch/stratum/internal/core/domain"
)

func toProtoDigest(d domain.Digest) *casv1.Digest {
	return &casv1.Digest{Hash: d.Hash, SizeBytes: d.Size}
}

func toProtoDigests(ds []domain.Digest) []*casv1.Digest {
	out := make([]*casv1.Digest, 0, len(ds))
	for _, d := range ds {
		out = append(out, toProtoDigest(d))
	}
	return out
}

// fromProtoDigest validates d, so a malformed digest never reaches the store.
func fromProtoDigest(d *casv1.Digest) (domain.Digest, error) {
	out := domain.Digest{Hash: d.GetHash(), Size: d.GetSizeBytes()}
	if err := out.Validate(); err != nil {
		return domain.Digest{}, err
	}
	return out, nil
}

func fromProtoDigests(ds []*casv1.Digest) ([]domain.Digest, error) {
	out := make([]domain.Digest, 0, len(ds))
	for _, d := range ds {
		dd, err := fromProtoDigest(d)
		if err != nil {
			return nil, err
		}
		out = append(out, dd)
	}
	return out, nil
}
