package job

// Candidate is one generated result surfaced to the client, e.g. a SQL
// statement with its natural-language summary.
type Candidate struct {
	Statement string `json:"sql"`
	Summary   string `json:"summary"`
	SourceID  string `json:"source_id,omitempty"`
}

type candidateKey struct {
	statement string
	summary   string
}

// Dedupe removes duplicate candidates, keeping the first occurrence and
// preserving input order. Identity is exact (statement, summary) equality;
// no whitespace or case normalization, dedup is syntactic on purpose.
// Order matters because downstream truncation keeps the head of the list.
func Dedupe(candidates []Candidate) []Candidate {
	if len(candidates) < 2 {
		return candidates
	}
	seen := make(map[candidateKey]struct{}, len(candidates))
	out := candidates[:0:0]
	for _, c := range candidates {
		k := candidateKey{statement: c.Statement, summary: c.Summary}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, c)
	}
	return out
}

// Truncate keeps at most n candidates from the head of the list.
func Truncate(candidates []Candidate, n int) []Candidate {
	if n <= 0 || len(candidates) <= n {
		return candidates
	}
	return candidates[:n]
}
