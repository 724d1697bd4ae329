package cache

import (
	"fmt"
	"net/url"
	"strings"
)

// Family groups every key that belongs to one backend resource, so a
// mutation can drop all of its cached reads at once.
type Family string

const (
	FamilyServices  Family = "services"
	FamilyJobs      Family = "jobs"
	FamilyPrograms  Family = "programs"
	FamilyBlogs     Family = "blogs"
	FamilySettings  Family = "settings"
	FamilyDashboard Family = "dashboard"
)

type Kind string

const (
	KindList   Kind = "list"
	KindDetail Kind = "detail"
	KindSlug   Kind = "slug"
	KindAll    Kind = "all"
	KindPublic Kind = "public"
	KindStats  Kind = "stats"
)

// Key is a structured cache key. Its string form is "family:kind[:param...]",
// with each param query-escaped so a param can never contain a separator.
type Key struct {
	Family Family
	Kind   Kind
	Params []string
}

func NewKey(family Family, kind Kind, params ...any) Key {
	k := Key{Family: family, Kind: kind}
	for _, p := range params {
		k.Params = append(k.Params, fmt.Sprint(p))
	}
	return k
}

func (k Key) String() string {
	var b strings.Builder
	b.WriteString(string(k.Family))
	b.WriteByte(':')
	b.WriteString(string(k.Kind))
	for _, p := range k.Params {
		b.WriteByte(':')
		b.WriteString(url.QueryEscape(p))
	}
	return b.String()
}

// FamilyPrefix is the prefix shared by every key of the family.
func FamilyPrefix(f Family) string {
	return string(f) + ":"
}

// Families lists every known family, used by admin tooling.
func Families() []Family {
	return []Family{FamilyServices, FamilyJobs, FamilyPrograms, FamilyBlogs, FamilySettings, FamilyDashboard}
}

// ParseFamily returns the family named s.
func ParseFamily(s string) (Family, bool) {
	for _, f := range Families() {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}
