package cas

import (
	"errors"
	"os"
	"sync"

	"go.trai.ch/stratum/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/sys/unix"
)

// sessionLock is a reader/writer lock that also excludes other processes
// through flock(2) on a file in the store root. Readers in one process share
// a single open file, taken shared by the first reader and released by the
// last one. A writer takes the file exclusively.
type sessionLock struct {
	path string
	mu   sync.RWMutex

	refs    sync.Mutex
	readers int
	file    *os.File
}

// RLock takes the lock shared, waiting for a collection in any process.
func (l *sessionLock) RLock() error {
	l.mu.RLock()
	l.refs.Lock()
	defer l.refs.Unlock()

	if l.readers == 0 {
		f, err := l.acquire(unix.LOCK_SH)
		if err != nil {
			l.mu.RUnlock()
			return err
		}
		l.file = f
	}
	l.readers++
	return nil
}

// RUnlock releases a shared hold taken by RLock.
func (l *sessionLock) RUnlock() {
	l.refs.Lock()
	l.readers--
	if l.readers == 0 {
		_ = l.file.Close()
		l.file = nil
	}
	l.refs.Unlock()
	l.mu.RUnlock()
}

// Lock takes the lock exclusively, waiting for readers in any process.
func (l *sessionLock) Lock() error {
	l.mu.Lock()
	f, err := l.acquire(unix.LOCK_EX)
	if err != nil {
		l.mu.Unlock()
		return err
	}
	l.file = f
	return nil
}

// Unlock releases the exclusive hold taken by Lock.
func (l *sessionLock) Unlock() {
	_ = l.file.Close()
	l.file = nil
	l.mu.Unlock()
}

// acquire opens the lock file and flocks it. Closing the file releases the lock.
func (l *sessionLock) acquire(how int) (*os.File, error) {
	f, err := os.OpenFile(l.path, os.O_RDWR|os.O_CREATE, domain.FilePerm)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrStoreLockFailed, err.Error()), "path", l.path)
	}
	for {
		err = unix.Flock(int(f.Fd()), how)
		if !errors.Is(err, unix.EINTR) {
			break
		}
	}
	if err != nil {
		_ = f.Close()
		return nil, zerr.With(zerr.Wrap(domain.ErrStoreLockFailed, err.Error()), "path", l.path)
	}
	return f, nil
}
