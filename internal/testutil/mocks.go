// Package testutil provides mock implementations of the native call layer
// for use in tests across the codebase.
package testutil

import (
	"sync"
	"unicode/utf16"
	"unsafe"

	"osident/internal/domain"
	"osident/internal/native"
)

// === Libc Mock ===

// MockLibc implements native.Libc for testing. Unset functions return zero values.
type MockLibc struct {
	GetgroupsFn func(list []int32) (int, error)
	GetuidFn    func() int32
	GetpwuidRFn func(uid uint32, pwd, scratch []byte) (native.PasswdEntry, bool, error)
	Size        int // reported struct passwd size

	mu    sync.Mutex
	calls []string
}

func (m *MockLibc) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

// Calls returns the native calls made so far, in order.
func (m *MockLibc) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// Getgroups implements the interface method for testing.
func (m *MockLibc) Getgroups(list []int32) (int, error) {
	m.record("getgroups")
	if m.GetgroupsFn != nil {
		return m.GetgroupsFn(list)
	}
	return 0, nil
}

// Getuid implements the interface method for testing.
func (m *MockLibc) Getuid() int32 {
	m.record("getuid")
	if m.GetuidFn != nil {
		return m.GetuidFn()
	}
	return 0
}

// GetpwuidR implements the interface method for testing.
func (m *MockLibc) GetpwuidR(uid uint32, pwd, scratch []byte) (native.PasswdEntry, bool, error) {
	m.record("getpwuid_r")
	if m.GetpwuidRFn != nil {
		return m.GetpwuidRFn(uid, pwd, scratch)
	}
	return native.PasswdEntry{}, false, nil
}

// PasswdSize implements the interface method for testing.
func (m *MockLibc) PasswdSize() int { return m.Size }

// Allocator implements the interface method for testing.
func (m *MockLibc) Allocator() native.Allocator { return native.GoAllocator{} }

// Groups returns a GetgroupsFn that reports gids: the count for an empty
// list, the IDs otherwise.
func Groups(gids ...int32) func(list []int32) (int, error) {
	return func(list []int32) (int, error) {
		if len(list) == 0 {
			return len(gids), nil
		}
		return copy(list, gids), nil
	}
}

// Passwd returns a GetpwuidRFn that finds one record.
func Passwd(name string, uid, gid int32) func(uint32, []byte, []byte) (native.PasswdEntry, bool, error) {
	return func(uint32, []byte, []byte) (native.PasswdEntry, bool, error) {
		return native.PasswdEntry{Name: name, UID: uid, GID: gid}, true, nil
	}
}

// === TokenAPI Mock ===

// ErrInsufficientBuffer is what the mock's size query reports, like the real
// GetTokenInformation called with a nil buffer.
var ErrInsufficientBuffer = &domain.NativeCallError{Call: "GetTokenInformation", Code: 122, Message: "insufficient buffer"}

// MockTokenAPI implements native.TokenAPI for testing. NewMockToken fills
// every function from a fixed user, primary group and group list; tests
// override single functions to inject failures.
type MockTokenAPI struct {
	UserNameFn         func(buf []uint16) (int, error)
	OpenProcessTokenFn func() (native.Token, error)
	TokenInformationFn func(t native.Token, class native.TokenClass, buf []byte) (uint32, error)
	TokenSIDsFn        func(class native.TokenClass, buf []byte) []native.SIDRef
	SIDStringFn        func(sid native.SIDRef) (string, error)
	CloseTokenFn       func(t native.Token) error

	mu     sync.Mutex
	calls  []string
	opened int
	closed int
}

// sidTable backs the SIDRefs NewMockToken hands out: user, primary group,
// then the groups.
type sidTable struct {
	entries []string
}

func (s *sidTable) refs(class native.TokenClass) []native.SIDRef {
	var lo, hi int
	switch class {
	case native.TokenUser:
		lo, hi = 0, 1
	case native.TokenPrimaryGroup:
		lo, hi = 1, 2
	case native.TokenGroups:
		lo, hi = 2, len(s.entries)
	}
	out := make([]native.SIDRef, 0, hi-lo)
	for i := lo; i < hi; i++ {
		out = append(out, native.SIDRef(unsafe.Pointer(&s.entries[i])))
	}
	return out
}

// NewMockToken returns a MockTokenAPI whose token holds the given SIDs and
// whose user name is username. An empty SID string fails conversion.
func NewMockToken(username, user, primaryGroup string, groups ...string) *MockTokenAPI {
	table := &sidTable{entries: append([]string{user, primaryGroup}, groups...)}

	m := &MockTokenAPI{}
	m.UserNameFn = func(buf []uint16) (int, error) {
		n := copy(buf, utf16.Encode([]rune(username)))
		return n + 1, nil
	}
	m.OpenProcessTokenFn = func() (native.Token, error) { return native.Token(42), nil }
	m.TokenInformationFn = func(_ native.Token, class native.TokenClass, buf []byte) (uint32, error) {
		size := uint32(8 + 16*len(table.refs(class)))
		if len(buf) == 0 {
			return size, ErrInsufficientBuffer
		}
		return size, nil
	}
	m.TokenSIDsFn = func(class native.TokenClass, _ []byte) []native.SIDRef {
		return table.refs(class)
	}
	m.SIDStringFn = func(sid native.SIDRef) (string, error) {
		s := *(*string)(sid)
		if s == "" {
			return "", &domain.NativeCallError{Call: "ConvertSidToStringSidW", Code: 1337, Message: "invalid sid"}
		}
		return s, nil
	}
	m.CloseTokenFn = func(native.Token) error { return nil }
	return m
}

func (m *MockTokenAPI) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

// Calls returns the native calls made so far, in order.
func (m *MockTokenAPI) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// OpenTokens returns the number of tokens opened and not yet closed.
func (m *MockTokenAPI) OpenTokens() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opened - m.closed
}

// UserName implements the interface method for testing.
func (m *MockTokenAPI) UserName(buf []uint16) (int, error) {
	m.record("GetUserNameW")
	if m.UserNameFn != nil {
		return m.UserNameFn(buf)
	}
	return 0, nil
}

// OpenProcessToken implements the interface method for testing.
func (m *MockTokenAPI) OpenProcessToken() (native.Token, error) {
	m.record("OpenProcessToken")
	if m.OpenProcessTokenFn == nil {
		return 0, nil
	}
	t, err := m.OpenProcessTokenFn()
	if err == nil {
		m.mu.Lock()
		m.opened++
		m.mu.Unlock()
	}
	return t, err
}

// TokenInformation implements the interface method for testing.
func (m *MockTokenAPI) TokenInformation(t native.Token, class native.TokenClass, buf []byte) (uint32, error) {
	m.record("GetTokenInformation")
	if m.TokenInformationFn != nil {
		return m.TokenInformationFn(t, class, buf)
	}
	return 0, nil
}

// TokenSIDs implements the interface method for testing.
func (m *MockTokenAPI) TokenSIDs(class native.TokenClass, buf []byte) []native.SIDRef {
	if m.TokenSIDsFn != nil {
		return m.TokenSIDsFn(class, buf)
	}
	return nil
}

// SIDString implements the interface method for testing.
func (m *MockTokenAPI) SIDString(sid native.SIDRef) (string, error) {
	m.record("ConvertSidToStringSidW")
	if m.SIDStringFn != nil {
		return m.SIDStringFn(sid)
	}
	return "", nil
}

// CloseToken implements the interface method for testing.
func (m *MockTokenAPI) CloseToken(t native.Token) error {
	m.record("CloseHandle")
	m.mu.Lock()
	m.closed++
	m.mu.Unlock()
	if m.CloseTokenFn != nil {
		return m.CloseTokenFn(t)
	}
	return nil
}
