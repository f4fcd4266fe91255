package competition

import (
	"net/url"
	"regexp"
)

// sep matches the characters that delimit short codes in names and URL paths.
const sep = `[\s_\-/.]`

var typePatterns = []struct {
	name string
	re   *regexp.Regexp
}{
	{"TF", regexp.MustCompile(`(?i)(?:^|` + sep + `)TF(?:$|` + sep + `)`)},
	{"TdF", regexp.MustCompile(`(?i)TROPH[EÉ]E DE FRANCE|(?:^|` + sep + `)TDF(?:$|` + sep + `)`)},
	{"Challenge", regexp.MustCompile(`(?i)CHALLENGE`)},
	{"SFC", regexp.MustCompile(`(?i)S[EÉ]LECTION FRANCE CLUB|(?:^|` + sep + `)SFC(?:$|` + sep + `)`)},
	{"Criterium", regexp.MustCompile(`(?i)CRIT[EÉ]RIUM|(?:^|` + sep + `)CRIT(?:$|` + sep + `)`)},
	{"CdF", regexp.MustCompile(`(?i)COUPE DE FRANCE|(?:^|` + sep + `)CDF(?:$|` + sep + `)`)},
}

// InferType guesses the competition type from its name, then from the path
// of its results URL. It returns "" when nothing or more than one type matches.
func InferType(name, rawURL string) string {
	if t, found := matchType(name); found {
		return t
	}
	if u, err := url.Parse(rawURL); err == nil {
		t, _ := matchType(u.Path)
		return t
	}
	return ""
}

// matchType reports the single type matching s. found is true whenever at
// least one pattern matched, even if the result was ambiguous.
func matchType(s string) (string, bool) {
	var matched []string
	for _, p := range typePatterns {
		if p.re.MatchString(s) {
			matched = append(matched, p.name)
		}
	}
	if len(matched) == 1 {
		return matched[0], true
	}
	return "", len(matched) > 0
}
