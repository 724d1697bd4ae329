package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey_String(t *testing.T) {
	assert.Equal(t, "services:list:false", NewKey(FamilyServices, KindList, false).String())
	assert.Equal(t, "blogs:slug:a%3Ab+c", NewKey(FamilyBlogs, KindSlug, "a:b c").String())
	assert.Equal(t, "settings:all", NewKey(FamilySettings, KindAll).String())
}

func TestParseFamily(t *testing.T) {
	f, ok := ParseFamily("jobs")
	assert.True(t, ok)
	assert.Equal(t, FamilyJobs, f)

	_, ok = ParseFamily("nope")
	assert.False(t, ok)
}

func TestRule_Match(t *testing.T) {
	assert.True(t, Rule{Op: OpAll}.Match("anything"))
	assert.True(t, Rule{Op: OpExact, Value: "a"}.Match("a"))
	assert.False(t, Rule{Op: OpExact, Value: "a"}.Match("ab"))
	assert.True(t, Rule{Op: OpPrefix, Value: "jobs:"}.Match("jobs:list:true"))
	assert.False(t, Rule{Op: OpPrefix, Value: "jobs:"}.Match("blogs:jobs:"))
	assert.True(t, Rule{Op: OpContains, Value: "job"}.Match("blogs:slug:job-fair"))
	assert.False(t, Rule{Op: "bogus", Value: "x"}.Match("x"))
}
