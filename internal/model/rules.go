package model

import (
	"strings"

	"github.com/samber/lo"
)

// Facts are what the builder knows about a property before classifying it.
type Facts struct {
	InRequest         bool
	InResponse        bool
	RequiredInRequest bool
	HasDefault        bool
	Nullable          bool
	ReadOnly          bool
	WriteOnly         bool
}

// Rule classifies an attribute if Match reports true.
type Rule struct {
	Name  string
	Match func(Facts) bool
	Apply func(*Attribute, Facts)
}

// ClassificationRules decide required, optional and computed. The first match wins.
var ClassificationRules = []Rule{
	{
		Name:  "server-owned",
		Match: func(f Facts) bool { return !f.InRequest || f.ReadOnly },
		Apply: func(a *Attribute, _ Facts) { a.Computed = true },
	},
	{
		Name:  "required",
		Match: func(f Facts) bool { return f.RequiredInRequest && !f.HasDefault && !f.Nullable },
		Apply: func(a *Attribute, _ Facts) { a.Required = true },
	},
	{
		Name:  "defaulted",
		Match: func(f Facts) bool { return f.HasDefault },
		Apply: func(a *Attribute, _ Facts) {
			a.Optional = true
			a.Computed = true
		},
	},
	{
		Name:  "optional",
		Match: func(Facts) bool { return true },
		Apply: func(a *Attribute, f Facts) {
			a.Optional = true
			a.Computed = f.InResponse && !f.WriteOnly
		},
	},
}

// Classify applies the first matching rule and returns its name.
func Classify(a *Attribute, f Facts) string {
	for _, r := range ClassificationRules {
		if r.Match(f) {
			r.Apply(a, f)
			return r.Name
		}
	}
	return ""
}

// SensitiveWords mark an attribute sensitive when its snake case name contains one of them as words.
var SensitiveWords = []string{
	"password",
	"secret",
	"token",
	"api_key",
	"private_key",
	"credential",
	"passphrase",
}

// IsSensitiveName applies the name heuristic.
func IsSensitiveName(snake string) bool {
	words := strings.Split(snake, "_")
	return lo.ContainsBy(SensitiveWords, func(w string) bool {
		parts := strings.Split(w, "_")
		for i := 0; i+len(parts) <= len(words); i++ {
			if wordsMatch(words[i:i+len(parts)], parts) {
				return true
			}
		}
		return false
	})
}

func wordsMatch(words, parts []string) bool {
	for i, p := range parts {
		w := words[i]
		if w != p && w != p+"s" {
			return false
		}
	}
	return true
}
