package sheet

import (
	"strings"
	"unicode"
)

// ComponentKey turns a component description into a snake_case key.
// Words break on spaces, punctuation and case transitions, so
// "Skating Skills" and "SkatingSkills" both become "skating_skills", and
// an upper-case run keeps together: "PCSComposition" is "pcs_composition".
func ComponentKey(desc string) string {
	runes := []rune(desc)
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, strings.ToLower(string(cur)))
			cur = cur[:0]
		}
	}

	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if unicode.IsUpper(r) && len(cur) > 0 {
			prev := cur[len(cur)-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if !unicode.IsUpper(prev) || nextLower {
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return strings.Join(words, "_")
}

// SplitName separates a printed skater name into first and last name: words
// written entirely in upper case belong to the last name.
func SplitName(name string) (first, last string) {
	var firsts, lasts []string
	for _, w := range strings.Fields(name) {
		if isUpperWord(w) {
			lasts = append(lasts, w)
		} else {
			firsts = append(firsts, w)
		}
	}
	return strings.Join(firsts, " "), strings.Join(lasts, " ")
}

func isUpperWord(w string) bool {
	hasLetter := false
	for _, r := range w {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}
