package store

import (
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// ErrLockTimeout marks a lock that could not be acquired within the bounded
// wait. The wait is bounded so a wedged invocation can never stall dnsmasq's
// lease handling indefinitely.
var ErrLockTimeout = errors.New("timed out waiting for registry lock")

const lockRetryInterval = 100 * time.Millisecond

// WithLock runs fn while holding an exclusive advisory lock on the lock file.
// The lock is acquired with a bounded wait and released on every exit path.
// All registry and marker access happens inside this scope.
func (s *Store) WithLock(fn func() error) error {
	f, err := os.OpenFile(s.lockPath, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return fmt.Errorf("open lock file %s: %w", s.lockPath, err)
	}
	defer f.Close()

	fd := int(f.Fd())
	deadline := time.Now().Add(s.lockTimeout)
	for {
		err = unix.Flock(fd, unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			break
		}
		if err != unix.EWOULDBLOCK && err != unix.EAGAIN {
			return fmt.Errorf("lock %s: %w", s.lockPath, err)
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: %s after %s", ErrLockTimeout, s.lockPath, s.lockTimeout)
		}
		time.Sleep(lockRetryInterval)
	}
	defer unix.Flock(fd, unix.LOCK_UN)

	return fn()
}
