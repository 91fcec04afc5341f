package native

// PasswdScratchSize is the scratch buffer handed to getpwuid_r. It fits every
// password record observed on supported platforms.
const PasswdScratchSize = 4096

// PasswdEntry is the decoded part of a struct passwd. UID and GID keep the
// raw signed value the C ABI returns; callers reinterpret them as unsigned.
type PasswdEntry struct {
	Name string
	UID  int32
	GID  int32
}

// Libc is the set of POSIX calls the identity resolver makes.
type Libc interface {
	// Getgroups fills list with the supplementary group IDs and returns how
	// many there are. An empty list only queries the count. Failures are
	// returned as *domain.NativeCallError.
	Getgroups(list []int32) (int, error)

	// Getuid returns the real user ID. It cannot fail.
	Getuid() int32

	// GetpwuidR looks up uid in the password database using pwd as the
	// struct passwd and scratch for its strings. found is false when the
	// call succeeded but returned a null record.
	GetpwuidR(uid uint32, pwd, scratch []byte) (entry PasswdEntry, found bool, err error)

	// PasswdSize returns the size of the platform's struct passwd.
	PasswdSize() int

	// Allocator returns the allocator buffers passed to this Libc must come from.
	Allocator() Allocator
}
