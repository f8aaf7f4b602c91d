// Package prefilter narrows the candidate set per predicate using lexical rules
// on the predicate name.
package prefilter

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/wkg-uslp/internal/model"
)

// Rule restricts predicates ending in Suffix (case-insensitive) to candidates typed Type.
type Rule struct {
	Suffix string
	Type   string
}

// DefaultRules are the country and county restrictions.
func DefaultRules() []Rule {
	return []Rule{
		{Suffix: "Country", Type: "Country"},
		{Suffix: "County", Type: "County"},
	}
}

// Prefilter maps predicates to the candidate positions eligible for scoring.
type Prefilter struct {
	rules      []Rule
	candidates []model.Candidate
	all        []int
	byType     map[string][]int
	fold       cases.Caser
}

// New builds a prefilter over candidates. A nil rules slice means DefaultRules.
func New(candidates []model.Candidate, rules []Rule) *Prefilter {
	if rules == nil {
		rules = DefaultRules()
	}
	pf := &Prefilter{
		rules:      rules,
		candidates: candidates,
		all:        make([]int, len(candidates)),
		byType:     make(map[string][]int),
		fold:       cases.Fold(),
	}
	for i, c := range candidates {
		pf.all[i] = i
		pf.byType[c.Type] = append(pf.byType[c.Type], i)
	}
	return pf
}

// Match returns the first rule whose suffix matches predicate.
func (pf *Prefilter) Match(predicate string) (Rule, bool) {
	name := pf.fold.String(predicate)
	for _, r := range pf.rules {
		if strings.HasSuffix(name, pf.fold.String(r.Suffix)) {
			return r, true
		}
	}
	return Rule{}, false
}

// Eligible returns candidate table positions, in table order, that may be
// scored against predicate. The returned slice must not be modified.
func (pf *Prefilter) Eligible(predicate string) []int {
	if r, ok := pf.Match(predicate); ok {
		return pf.byType[r.Type]
	}
	return pf.all
}

// Groups resolves Eligible once per predicate.
func (pf *Prefilter) Groups(predicates []string) map[string][]int {
	out := make(map[string][]int, len(predicates))
	for _, p := range predicates {
		out[p] = pf.Eligible(p)
	}
	return out
}
