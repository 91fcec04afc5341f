//go:build !unix

package native

// CgoEnabled reports whether the libc backend calls the C library directly.
const CgoEnabled = false
