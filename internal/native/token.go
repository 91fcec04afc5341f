package native

import "unsafe"

// Token is an opaque process token handle.
type Token uintptr

// SIDRef is an opaque pointer to a SID inside a token information buffer.
type SIDRef unsafe.Pointer

// TokenClass is a TOKEN_INFORMATION_CLASS value.
type TokenClass uint32

// Token information classes read by the resolver.
const (
	TokenUser         TokenClass = 1
	TokenGroups       TokenClass = 2
	TokenPrimaryGroup TokenClass = 5
)

func (c TokenClass) String() string {
	switch c {
	case TokenUser:
		return "TokenUser"
	case TokenGroups:
		return "TokenGroups"
	case TokenPrimaryGroup:
		return "TokenPrimaryGroup"
	default:
		return "TokenClass(?)"
	}
}

// UserNameBufferLen is the size, in UTF-16 code units, of the GetUserNameW buffer.
const UserNameBufferLen = 256

// TokenAPI is the set of Windows security calls the identity resolver makes.
type TokenAPI interface {
	// UserName calls GetUserNameW into buf and returns the reported size,
	// which includes the terminating NUL.
	UserName(buf []uint16) (int, error)

	// OpenProcessToken opens the current process token with query access.
	OpenProcessToken() (Token, error)

	// TokenInformation calls GetTokenInformation. With an empty buf it only
	// reports the required size.
	TokenInformation(t Token, class TokenClass, buf []byte) (uint32, error)

	// TokenSIDs decodes the SID pointers out of a filled information buffer.
	TokenSIDs(class TokenClass, buf []byte) []SIDRef

	// SIDString converts a SID to its canonical text and releases the
	// platform-allocated string before returning.
	SIDString(sid SIDRef) (string, error)

	// CloseToken releases the token handle.
	CloseToken(t Token) error
}
