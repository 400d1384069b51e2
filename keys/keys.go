// Package keys names the cache key space.
//
// Keys are colon-delimited paths, "<domain>:<subject>:<qualifier>". Readers build
// keys and writers invalidate through the same Region values, so a reader and
// the writer that stales it can never disagree on the spelling of a key.
package keys

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/infodht/nightapi/pattern"
)

// Separator joins key segments.
const Separator = ":"

// TTL tiers, by how often the underlying data changes.
const (
	TTLMaster = 24 * time.Hour
	TTLMenus  = time.Hour
	TTLAccess = 30 * time.Minute
	TTLList   = 10 * time.Minute
	TTLDraft  = 5 * time.Minute
)

// ErrMalformedKey is returned by Validate.
var ErrMalformedKey = errors.New("malformed cache key")

// Region is one key, or with a wildcard qualifier one family of keys.
type Region struct {
	domain    string
	subject   string
	qualifier string
	ttl       time.Duration
}

func region(domain, subject, qualifier string, ttl time.Duration) Region {
	return Region{domain: domain, subject: subject, qualifier: qualifier, ttl: ttl}
}

// Key is the concrete cache key. For a family it is the pattern itself.
func (r Region) Key() string { return Build(r.domain, r.subject, r.qualifier) }

// Pattern matches every key sharing the region's domain and subject.
func (r Region) Pattern() string { return Build(r.domain, r.subject, pattern.Wildcard) }

// TTL is the tier the region is cached with.
func (r Region) TTL() time.Duration { return r.ttl }

// IsFamily reports whether the region stands for many keys.
func (r Region) IsFamily() bool { return pattern.HasWildcard(r.qualifier) }

// Family widens the region to all qualifiers of its subject.
func (r Region) Family() Region {
	r.qualifier = pattern.Wildcard
	return r
}

func (r Region) String() string { return r.Key() }

// Master data, cached for a day.
var (
	MasterJobTitles      = region("master", "job_titles", "all", TTLMaster)
	MasterSkills         = region("master", "skills", "all", TTLMaster)
	MasterCareFacilities = region("master", "care_facilities", "all", TTLMaster)
	MasterCountryCodes   = region("master", "country_codes", "all", TTLMaster)
)

// Menu and role lists.
var (
	MenusMaster = region("menus", "master", "all", TTLMenus)
	RolesMaster = region("roles", "master", "all", TTLMenus)
)

// AccessPermissions is the resolved permission set of one role.
func AccessPermissions(roleID string) Region {
	return region("access", "permissions", roleID, TTLAccess)
}

// AccessSidebar is the sidebar menu tree built for one role.
func AccessSidebar(roleID string) Region {
	return region("access", "sidebar", roleID, TTLAccess)
}

// Families over every role.
var (
	AllAccessPermissions = AccessPermissions(pattern.Wildcard)
	AllAccessSidebars    = AccessSidebar(pattern.Wildcard)
)

// DraftEmail is a saved email draft.
func DraftEmail(emailID string) Region {
	return region("drafts", "email", emailID, TTLDraft)
}

// ListPage is one page of a paginated or searched list. query should be a
// canonical encoding of the page, filters and sort order.
func ListPage(entity, query string) Region {
	return region("list", entity, query, TTLList)
}

// AllListPages is every cached page of entity.
func AllListPages(entity string) Region {
	return ListPage(entity, pattern.Wildcard)
}

var masters = map[string]Region{
	"job_titles":      MasterJobTitles,
	"skills":          MasterSkills,
	"care_facilities": MasterCareFacilities,
	"country_codes":   MasterCountryCodes,
}

// Master looks up a master-data region by its subject name ("skills", ...).
func Master(subject string) (Region, bool) {
	r, ok := masters[subject]
	return r, ok
}

// MasterSubjects lists the known master-data subjects.
func MasterSubjects() []string {
	out := make([]string, 0, len(masters))
	for s := range masters {
		out = append(out, s)
	}
	return out
}

// Build joins segments into a key.
func Build(segments ...string) string {
	return strings.Join(segments, Separator)
}

// Validate checks the naming convention. The cache itself accepts any string;
// this exists for callers that want to catch typos early.
func Validate(key string) error {
	if key == "" {
		return fmt.Errorf("%w: empty", ErrMalformedKey)
	}
	for i, seg := range strings.Split(key, Separator) {
		if seg == "" {
			return fmt.Errorf("%w: %q has an empty segment at %d", ErrMalformedKey, key, i)
		}
	}
	return nil
}

// ValidID checks an id taken from outside (a URL, a request body) before it
// becomes a qualifier. An id holding the wildcard would turn a single-key
// region into a family.
func ValidID(id string) error {
	switch {
	case id == "":
		return fmt.Errorf("%w: empty id", ErrMalformedKey)
	case pattern.HasWildcard(id):
		return fmt.Errorf("%w: id %q contains %q", ErrMalformedKey, id, pattern.Wildcard)
	case strings.Contains(id, Separator):
		return fmt.Errorf("%w: id %q contains %q", ErrMalformedKey, id, Separator)
	}
	return nil
}
