package cache

import (
	"fmt"
	"strings"
)

type Op string

const (
	OpAll      Op = "all"
	OpExact    Op = "exact"
	OpPrefix   Op = "prefix"
	OpContains Op = "contains"
)

// Rule selects the keys removed by one invalidation.
type Rule struct {
	Op    Op     `json:"op"`
	Value string `json:"value,omitempty"`
}

func (r Rule) Match(key string) bool {
	switch r.Op {
	case OpAll:
		return true
	case OpExact:
		return key == r.Value
	case OpPrefix:
		return strings.HasPrefix(key, r.Value)
	case OpContains:
		return strings.Contains(key, r.Value)
	}
	return false
}

func (r Rule) String() string {
	if r.Op == OpAll {
		return "all"
	}
	return fmt.Sprintf("%s(%q)", r.Op, r.Value)
}
