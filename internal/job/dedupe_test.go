package job

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeKeepsFirstOccurrence(t *testing.T) {
	a := Candidate{Statement: "SELECT 1", Summary: "one", SourceID: "s1"}
	aDup := Candidate{Statement: "SELECT 1", Summary: "one", SourceID: "s2"}
	b := Candidate{Statement: "SELECT 2", Summary: "two"}

	got := Dedupe([]Candidate{a, aDup, b})

	assert.Equal(t, []Candidate{a, b}, got, "first occurrence wins, order preserved")
}

func TestDedupeIsIdempotent(t *testing.T) {
	in := []Candidate{
		{Statement: "SELECT 1", Summary: "one"},
		{Statement: "SELECT 1", Summary: "one"},
		{Statement: "SELECT 2", Summary: "two"},
		{Statement: "SELECT 1", Summary: "one"},
	}

	once := Dedupe(in)
	twice := Dedupe(once)
	assert.Equal(t, once, twice)
}

func TestDedupeIsSyntactic(t *testing.T) {
	// Same SQL with a different summary is a different candidate; no
	// whitespace or case folding either.
	in := []Candidate{
		{Statement: "SELECT 1", Summary: "one"},
		{Statement: "SELECT 1", Summary: "uno"},
		{Statement: "select 1", Summary: "one"},
		{Statement: "SELECT 1 ", Summary: "one"},
	}

	assert.Len(t, Dedupe(in), 4)
}

func TestDedupeSmallInputs(t *testing.T) {
	assert.Empty(t, Dedupe(nil))
	single := []Candidate{{Statement: "SELECT 1", Summary: "one"}}
	assert.Equal(t, single, Dedupe(single))
}

func TestTruncate(t *testing.T) {
	in := []Candidate{
		{Statement: "SELECT 1"}, {Statement: "SELECT 2"},
		{Statement: "SELECT 3"}, {Statement: "SELECT 4"},
	}

	assert.Len(t, Truncate(in, 3), 3)
	assert.Equal(t, in, Truncate(in, 4))
	assert.Equal(t, in, Truncate(in, 0), "non-positive n keeps everything")
	assert.Equal(t, Candidate{Statement: "SELECT 1"}, Truncate(in, 3)[0])
}
