//go:build windows

package native

import (
	"errors"
	"unsafe"

	"golang.org/x/sys/windows"

	"osident/internal/domain"
)

var (
	modadvapi32      = windows.NewLazySystemDLL("advapi32.dll")
	procGetUserNameW = modadvapi32.NewProc("GetUserNameW")
)

type winTokenAPI struct{}

// NewTokenAPI returns the host security API.
func NewTokenAPI() TokenAPI { return winTokenAPI{} }

func (winTokenAPI) UserName(buf []uint16) (int, error) {
	if len(buf) == 0 {
		return 0, domain.ErrNativeCall("GetUserNameW", int(windows.ERROR_INSUFFICIENT_BUFFER), windows.ERROR_INSUFFICIENT_BUFFER)
	}
	size := uint32(len(buf))
	r1, _, e1 := procGetUserNameW.Call(uintptr(unsafe.Pointer(&buf[0])), uintptr(unsafe.Pointer(&size)))
	if r1 == 0 {
		return 0, winCallError("GetUserNameW", e1)
	}
	return int(size), nil
}

func (winTokenAPI) OpenProcessToken() (Token, error) {
	var t windows.Token
	if err := windows.OpenProcessToken(windows.CurrentProcess(), windows.TOKEN_QUERY, &t); err != nil {
		return 0, winCallError("OpenProcessToken", err)
	}
	return Token(t), nil
}

func (winTokenAPI) TokenInformation(t Token, class TokenClass, buf []byte) (uint32, error) {
	var (
		needed uint32
		p      *byte
	)
	if len(buf) > 0 {
		p = &buf[0]
	}
	if err := windows.GetTokenInformation(windows.Token(t), uint32(class), p, uint32(len(buf)), &needed); err != nil {
		return needed, winCallError("GetTokenInformation", err)
	}
	return needed, nil
}

// TokenSIDs maps the TOKEN_USER, TOKEN_PRIMARY_GROUP and TOKEN_GROUPS layouts
// onto the x/sys/windows structure definitions.
func (winTokenAPI) TokenSIDs(class TokenClass, buf []byte) []SIDRef {
	if len(buf) == 0 {
		return nil
	}
	base := unsafe.Pointer(&buf[0])
	switch class {
	case TokenUser:
		if uintptr(len(buf)) < unsafe.Sizeof(windows.Tokenuser{}) {
			return nil
		}
		return []SIDRef{SIDRef(unsafe.Pointer((*windows.Tokenuser)(base).User.Sid))}
	case TokenPrimaryGroup:
		if uintptr(len(buf)) < unsafe.Sizeof(windows.Tokenprimarygroup{}) {
			return nil
		}
		return []SIDRef{SIDRef(unsafe.Pointer((*windows.Tokenprimarygroup)(base).PrimaryGroup))}
	case TokenGroups:
		if uintptr(len(buf)) < unsafe.Offsetof(windows.Tokengroups{}.Groups) {
			return nil
		}
		tg := (*windows.Tokengroups)(base)
		end := unsafe.Offsetof(tg.Groups) + uintptr(tg.GroupCount)*unsafe.Sizeof(windows.SIDAndAttributes{})
		if uintptr(len(buf)) < end {
			return nil
		}
		groups := tg.AllGroups()
		refs := make([]SIDRef, len(groups))
		for i := range groups {
			refs[i] = SIDRef(unsafe.Pointer(groups[i].Sid))
		}
		return refs
	default:
		return nil
	}
}

func (winTokenAPI) SIDString(sid SIDRef) (string, error) {
	if sid == nil {
		return "", domain.ErrNativeCall("ConvertSidToStringSidW", int(windows.ERROR_INVALID_SID), windows.ERROR_INVALID_SID)
	}
	var p *uint16
	if err := windows.ConvertSidToStringSid((*windows.SID)(sid), &p); err != nil {
		return "", winCallError("ConvertSidToStringSidW", err)
	}
	// The string lives in a LocalAlloc block owned by the caller.
	defer func() { _, _ = windows.LocalFree(windows.Handle(unsafe.Pointer(p))) }()
	return windows.UTF16PtrToString(p), nil
}

func (winTokenAPI) CloseToken(t Token) error {
	if err := windows.Token(t).Close(); err != nil {
		return winCallError("CloseHandle", err)
	}
	return nil
}

func winCallError(call string, err error) error {
	var errno windows.Errno
	if errors.As(err, &errno) {
		return domain.ErrNativeCall(call, int(errno), errno)
	}
	return domain.ErrNativeCall(call, 0, err)
}
