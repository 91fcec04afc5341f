//go:build unix && !cgo

package native

import (
	"errors"
	"os/user"
	"strconv"
	"syscall"

	"golang.org/x/sys/unix"

	"osident/internal/domain"
)

// CgoEnabled reports whether the libc backend calls the C library directly.
const CgoEnabled = false

// pureLibc serves builds without cgo: group and uid queries go through
// x/sys/unix and the password database is read by os/user's Go parser.
type pureLibc struct{}

// NewLibc returns the host C library.
func NewLibc() Libc { return pureLibc{} }

func (pureLibc) Allocator() Allocator { return GoAllocator{} }

// PasswdSize is zero: the Go parser does not need a struct passwd.
func (pureLibc) PasswdSize() int { return 0 }

func (pureLibc) Getuid() int32 { return int32(unix.Getuid()) }

func (pureLibc) Getgroups(list []int32) (int, error) {
	gids, err := unix.Getgroups()
	if err != nil {
		return 0, domain.ErrNativeCall("getgroups", errnoOf(err), err)
	}
	if len(list) == 0 {
		return len(gids), nil
	}
	n := copy(list, toInt32(gids))
	return n, nil
}

func (pureLibc) GetpwuidR(uid uint32, _, _ []byte) (PasswdEntry, bool, error) {
	u, err := user.LookupId(strconv.FormatUint(uint64(uid), 10))
	if err != nil {
		var unknown user.UnknownUserIdError
		if errors.As(err, &unknown) {
			return PasswdEntry{}, false, nil
		}
		return PasswdEntry{}, false, domain.ErrNativeCall("getpwuid_r", errnoOf(err), err)
	}
	puid, err := strconv.ParseUint(u.Uid, 10, 32)
	if err != nil {
		return PasswdEntry{}, false, domain.ErrNativeCall("getpwuid_r", int(syscall.EINVAL), err)
	}
	pgid, err := strconv.ParseUint(u.Gid, 10, 32)
	if err != nil {
		return PasswdEntry{}, false, domain.ErrNativeCall("getpwuid_r", int(syscall.EINVAL), err)
	}
	return PasswdEntry{
		Name: u.Username,
		UID:  int32(uint32(puid)),
		GID:  int32(uint32(pgid)),
	}, true, nil
}

func toInt32(gids []int) []int32 {
	out := make([]int32, len(gids))
	for i, g := range gids {
		out[i] = int32(uint32(g))
	}
	return out
}

func errnoOf(err error) int {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return int(errno)
	}
	return 0
}
