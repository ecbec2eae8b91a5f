//go:build unix

package index

import (
	"os"

	"golang.org/x/sys/unix"

	"github.com/dselans/fastx/errs"
)

// flockLock is an exclusive, non-blocking advisory lock on a companion
// "<sidecar>.lock" file, per spec.md §5's "coordinated by filesystem
// advisory locks" requirement. Open takes it for every Store, whether the
// Store goes on to build or only reads, and Close releases it; a second
// Open of the same sidecar fails while the lock is held.
type flockLock struct {
	f *os.File
}

func lockExclusive(path string) (*flockLock, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, errs.WrapIoError(err, "opening %s for locking", path)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		return nil, errs.WrapIoError(err, "acquiring exclusive lock on %s", path)
	}
	return &flockLock{f: f}, nil
}

func (l *flockLock) Unlock() error {
	if l == nil || l.f == nil {
		return nil
	}
	_ = unix.Flock(int(l.f.Fd()), unix.LOCK_UN)
	return l.f.Close()
}
