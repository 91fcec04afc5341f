//go:build unix && cgo

package native

/*
#cgo solaris CFLAGS: -D_POSIX_PTHREAD_SEMANTICS
#include <errno.h>
#include <pwd.h>
#include <stdlib.h>
#include <sys/types.h>
#include <unistd.h>

static int osident_getgroups(int size, int *list) {
	return getgroups(size, (gid_t *)list);
}

static int osident_getpwuid_r(int uid, struct passwd *pwd, char *buf, size_t buflen, struct passwd **result) {
	return getpwuid_r((uid_t)(unsigned int)uid, pwd, buf, buflen, result);
}

static int osident_getpwuid_r_wide(long uid, struct passwd *pwd, char *buf, size_t buflen, struct passwd **result) {
	return getpwuid_r((uid_t)uid, pwd, buf, buflen, result);
}
*/
import "C"

import (
	"syscall"
	"unsafe"

	"osident/internal/domain"
)

// CgoEnabled reports whether the libc backend calls the C library directly.
const CgoEnabled = true

// CAllocator allocates with malloc so that the C library may store pointers
// into the blocks it is handed.
type CAllocator struct{}

// Alloc implements Allocator.
func (CAllocator) Alloc(n int) unsafe.Pointer { return C.malloc(C.size_t(n)) }

// Free implements Allocator.
func (CAllocator) Free(p unsafe.Pointer) { C.free(p) }

type cgoLibc struct{}

// NewLibc returns the host C library.
func NewLibc() Libc { return cgoLibc{} }

func (cgoLibc) Allocator() Allocator { return CAllocator{} }

func (cgoLibc) PasswdSize() int { return int(C.sizeof_struct_passwd) }

func (cgoLibc) Getuid() int32 { return int32(C.getuid()) }

func (cgoLibc) Getgroups(list []int32) (int, error) {
	var p *C.int
	if len(list) > 0 {
		p = (*C.int)(unsafe.Pointer(&list[0]))
	}
	n, err := C.osident_getgroups(C.int(len(list)), p)
	if n == -1 {
		errno, _ := err.(syscall.Errno)
		return 0, domain.ErrNativeCall("getgroups", int(errno), err)
	}
	return int(n), nil
}

func (cgoLibc) GetpwuidR(uid uint32, pwd, scratch []byte) (PasswdEntry, bool, error) {
	var result *C.struct_passwd
	cpwd := (*C.struct_passwd)(unsafe.Pointer(&pwd[0]))
	cbuf := (*C.char)(unsafe.Pointer(&scratch[0]))

	var rc C.int
	if WideUIDArg {
		rc = C.osident_getpwuid_r_wide(C.long(uid), cpwd, cbuf, C.size_t(len(scratch)), &result)
	} else {
		rc = C.osident_getpwuid_r(C.int(int32(uid)), cpwd, cbuf, C.size_t(len(scratch)), &result)
	}
	if rc != 0 {
		errno := syscall.Errno(rc)
		return PasswdEntry{}, false, domain.ErrNativeCall("getpwuid_r", int(rc), errno)
	}
	if result == nil {
		return PasswdEntry{}, false, nil
	}
	return PasswdEntry{
		Name: C.GoString(result.pw_name),
		UID:  int32(result.pw_uid),
		GID:  int32(result.pw_gid),
	}, true, nil
}
