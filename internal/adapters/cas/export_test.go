package cas

import (
	"os"

	"go.trai.ch/stratum/internal/core/domain"
)

// HoldShared takes the store session lock the way a writer does and returns
// its release.
func HoldShared(s *Store) (func(), error) {
	if err := s.session.RLock(); err != nil {
		return nil, err
	}
	return s.session.RUnlock, nil
}

// HoldExclusive takes the store session lock the way a collection does and
// returns its release.
func HoldExclusive(s *Store) (func(), error) {
	if err := s.session.Lock(); err != nil {
		return nil, err
	}
	return s.session.Unlock, nil
}

// StatCached returns the digest the stat cache holds for the file at p.
func StatCached(m *Materializer, p string) (domain.Digest, bool) {
	info, err := os.Lstat(p)
	if err != nil {
		return domain.Digest{}, false
	}
	key, ok := statKey(info)
	if !ok {
		return domain.Digest{}, false
	}
	return m.stats.Get(key)
}
