package identity

// Family is the operating system family a backend serves.
type Family string

// Families.
const (
	FamilyPOSIX       Family = "posix"
	FamilyWindows     Family = "windows"
	FamilyUnsupported Family = "unsupported"
)

// HostFamily returns the family of the host. It is fixed at build time.
func HostFamily() Family { return hostFamily }
