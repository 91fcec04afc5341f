// Package domain defines the identity data model and the errors the resolver returns.
package domain

import "fmt"

// NativeCallError indicates a native call returned its documented failure sentinel.
type NativeCallError struct {
	Call    string // name of the native function, e.g. "getgroups"
	Code    int    // errno on POSIX, the Win32 error code on Windows
	Message string // platform text for Code
	Cause   error
}

func (e *NativeCallError) Error() string {
	return fmt.Sprintf("%s failed: %s (code %d)", e.Call, e.Message, e.Code)
}

func (e *NativeCallError) Unwrap() error { return e.Cause }

// UserNotFoundError indicates the password lookup succeeded but produced no record.
type UserNotFoundError struct {
	UID uint32
}

func (e *UserNotFoundError) Error() string {
	return fmt.Sprintf("no password entry for uid %d", e.UID)
}

// AccessDeniedError indicates the process token could not be opened under the strict policy.
type AccessDeniedError struct {
	Message string
	Cause   error
}

func (e *AccessDeniedError) Error() string { return e.Message }

func (e *AccessDeniedError) Unwrap() error { return e.Cause }

// UnsupportedPlatformError indicates there is no identity backend for the host OS.
type UnsupportedPlatformError struct {
	GOOS string
}

func (e *UnsupportedPlatformError) Error() string {
	return fmt.Sprintf("no identity backend for %s", e.GOOS)
}

// ErrNativeCall creates a NativeCallError. cause may be nil.
func ErrNativeCall(call string, code int, cause error) *NativeCallError {
	msg := "unknown error"
	if cause != nil {
		msg = cause.Error()
	}
	return &NativeCallError{Call: call, Code: code, Message: msg, Cause: cause}
}

// ErrUserNotFound creates a UserNotFoundError.
func ErrUserNotFound(uid uint32) *UserNotFoundError {
	return &UserNotFoundError{UID: uid}
}

// ErrAccessDenied creates an AccessDeniedError with a formatted message.
func ErrAccessDenied(cause error, format string, args ...interface{}) *AccessDeniedError {
	return &AccessDeniedError{Message: fmt.Sprintf(format, args...), Cause: cause}
}
