package utils

import (
	"regexp"
	"strings"
)

// doiPattern matches the modern Crossref DOI shape: a 10.xxxx prefix and a
// non-empty suffix. Legacy suffixes are permissive on purpose.
var doiPattern = regexp.MustCompile(`^10\.\d{4,9}/\S+$`)

// ValidDOI reports whether the given string is a syntactically plausible
// DOI. It does not resolve the DOI.
func ValidDOI(doi string) bool {
	return doiPattern.MatchString(strings.TrimSpace(doi))
}

// NormalizeDOI strips common resolver prefixes and whitespace so stored
// DOIs compare equal regardless of how they were pasted in.
func NormalizeDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	for _, prefix := range []string{"https://doi.org/", "http://doi.org/", "doi:"} {
		if strings.HasPrefix(strings.ToLower(doi), prefix) {
			doi = doi[len(prefix):]
			break
		}
	}
	return strings.TrimSpace(doi)
}
