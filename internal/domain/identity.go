package domain

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// PrincipalKind tells which representation a PrincipalID carries.
type PrincipalKind int

// Principal kinds.
const (
	PrincipalNone    PrincipalKind = iota // absent
	PrincipalNumeric                      // POSIX uid/gid
	PrincipalSID                          // Windows security identifier
)

// PrincipalID identifies a user or group. On POSIX it is an unsigned 32-bit
// number, on Windows the canonical SID string.
type PrincipalID struct {
	kind PrincipalKind
	num  uint32
	sid  string
}

// NumericID returns a POSIX principal.
func NumericID(id uint32) PrincipalID {
	return PrincipalID{kind: PrincipalNumeric, num: id}
}

// SIDPrincipal returns a Windows principal. An empty sid yields the zero PrincipalID.
func SIDPrincipal(sid string) PrincipalID {
	if sid == "" {
		return PrincipalID{}
	}
	return PrincipalID{kind: PrincipalSID, sid: sid}
}

// Kind returns the representation of the ID.
func (p PrincipalID) Kind() PrincipalKind { return p.kind }

// IsZero reports whether the ID is absent.
func (p PrincipalID) IsZero() bool { return p.kind == PrincipalNone }

// Numeric returns the POSIX number and whether the ID is numeric.
func (p PrincipalID) Numeric() (uint32, bool) {
	return p.num, p.kind == PrincipalNumeric
}

// SID returns the SID string and whether the ID is a SID.
func (p PrincipalID) SID() (string, bool) {
	return p.sid, p.kind == PrincipalSID
}

func (p PrincipalID) String() string {
	switch p.kind {
	case PrincipalNumeric:
		return strconv.FormatUint(uint64(p.num), 10)
	case PrincipalSID:
		return p.sid
	default:
		return ""
	}
}

// MarshalJSON renders numeric IDs as numbers, SIDs as strings and absent IDs as null.
func (p PrincipalID) MarshalJSON() ([]byte, error) {
	switch p.kind {
	case PrincipalNumeric:
		return []byte(strconv.FormatUint(uint64(p.num), 10)), nil
	case PrincipalSID:
		return json.Marshal(p.sid)
	default:
		return []byte("null"), nil
	}
}

// MarshalYAML mirrors MarshalJSON.
func (p PrincipalID) MarshalYAML() (interface{}, error) {
	switch p.kind {
	case PrincipalNumeric:
		return p.num, nil
	case PrincipalSID:
		return p.sid, nil
	default:
		return nil, nil
	}
}

// UserIdentity is an immutable snapshot of the current user's identity.
// A later resolution produces a new value; nothing refreshes one in place.
type UserIdentity struct {
	username       string
	hasUsername    bool
	primaryID      PrincipalID
	primaryGroupID PrincipalID
	groupIDs       []PrincipalID
	partial        bool
}

// NewPosixIdentity builds a snapshot from POSIX numeric IDs.
func NewPosixIdentity(username string, uid, gid uint32, groups []uint32) *UserIdentity {
	ids := make([]PrincipalID, 0, len(groups))
	for _, g := range groups {
		ids = append(ids, NumericID(g))
	}
	return &UserIdentity{
		username:       username,
		hasUsername:    true,
		primaryID:      NumericID(uid),
		primaryGroupID: NumericID(gid),
		groupIDs:       ids,
	}
}

// NewWindowsIdentity builds a snapshot from SID strings. A nil username means
// the name could not be resolved; empty SIDs are absent. partial marks a
// snapshot assembled after the process token could not be opened.
func NewWindowsIdentity(username *string, userSID, groupSID string, groupSIDs []string, partial bool) *UserIdentity {
	ids := make([]PrincipalID, 0, len(groupSIDs))
	for _, s := range groupSIDs {
		if s != "" {
			ids = append(ids, SIDPrincipal(s))
		}
	}
	u := &UserIdentity{
		primaryID:      SIDPrincipal(userSID),
		primaryGroupID: SIDPrincipal(groupSID),
		groupIDs:       ids,
		partial:        partial,
	}
	if username != nil {
		u.username = *username
		u.hasUsername = true
	}
	return u
}

// Username returns the login name and whether the platform resolved one.
func (u *UserIdentity) Username() (string, bool) { return u.username, u.hasUsername }

// PrimaryID returns the user's principal ID.
func (u *UserIdentity) PrimaryID() PrincipalID { return u.primaryID }

// PrimaryGroupID returns the user's default group.
func (u *UserIdentity) PrimaryGroupID() PrincipalID { return u.primaryGroupID }

// GroupIDs returns a copy of the group memberships. Never nil.
func (u *UserIdentity) GroupIDs() []PrincipalID {
	out := make([]PrincipalID, len(u.groupIDs))
	copy(out, u.groupIDs)
	return out
}

// Partial reports whether the snapshot was degraded to the fields that resolved.
func (u *UserIdentity) Partial() bool { return u.partial }

// Equal reports whether two snapshots carry the same values.
func (u *UserIdentity) Equal(other *UserIdentity) bool {
	if u == nil || other == nil {
		return u == other
	}
	return u.username == other.username &&
		u.hasUsername == other.hasUsername &&
		u.primaryID == other.primaryID &&
		u.primaryGroupID == other.primaryGroupID &&
		u.partial == other.partial &&
		slices.Equal(u.groupIDs, other.groupIDs)
}

func (u *UserIdentity) String() string {
	name := "<none>"
	if u.hasUsername {
		name = u.username
	}
	groups := make([]string, len(u.groupIDs))
	for i, g := range u.groupIDs {
		groups[i] = g.String()
	}
	return fmt.Sprintf("UserIdentity(username=%s, primaryId=%s, primaryGroupId=%s, groupIds=[%s])",
		name, u.primaryID, u.primaryGroupID, strings.Join(groups, ", "))
}

// identityView is the wire shape shared by the JSON and YAML encoders.
type identityView struct {
	Username       *string       `json:"username" yaml:"username"`
	PrimaryID      PrincipalID   `json:"primary_id" yaml:"primary_id"`
	PrimaryGroupID PrincipalID   `json:"primary_group_id" yaml:"primary_group_id"`
	GroupIDs       []PrincipalID `json:"group_ids" yaml:"group_ids"`
	Partial        bool          `json:"partial" yaml:"partial"`
}

func (u *UserIdentity) view() identityView {
	v := identityView{
		PrimaryID:      u.primaryID,
		PrimaryGroupID: u.primaryGroupID,
		GroupIDs:       u.GroupIDs(),
		Partial:        u.partial,
	}
	if u.hasUsername {
		name := u.username
		v.Username = &name
	}
	return v
}

// MarshalJSON encodes the snapshot; an unresolved username becomes null.
func (u *UserIdentity) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.view())
}

// MarshalYAML encodes the snapshot for gopkg.in/yaml.v3.
func (u *UserIdentity) MarshalYAML() (interface{}, error) {
	return u.view(), nil
}
