//go:build !ppc64 && !ppc64le && !s390x

package native

// WideUIDArg reports that getpwuid_r receives the uid widened to a C long
// on this architecture.
const WideUIDArg = false
