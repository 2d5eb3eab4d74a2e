package pdf

import (
	"regexp"
	"strings"
)

// doiPattern matches 10.<registrant>/<suffix>.
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

// InfoDOI returns the first DOI found in the Title, Subject or Keywords entry
// of the info dictionary. Authoring tools often leave "doi:10..." as the title.
func InfoDOI(info Info) string {
	for _, v := range []string{info.Title, info.Subject, info.Keywords} {
		if doi := FindDOI(v); doi != "" {
			return doi
		}
	}
	return ""
}

// FindDOI returns the first plausible DOI in text.
func FindDOI(text string) string {
	for _, match := range doiPattern.FindAllString(text, -1) {
		match = strings.TrimRight(match, ".,;:)")
		if isValidDOI(match) {
			return match
		}
	}
	return ""
}

// DOIURL returns the resolver URL of a DOI.
func DOIURL(doi string) string {
	return "https://doi.org/" + doi
}

func isValidDOI(doi string) bool {
	if len(doi) < 10 || !strings.HasPrefix(doi, "10.") {
		return false
	}
	slashIdx := strings.Index(doi, "/")
	return slashIdx != -1 && slashIdx < len(doi)-1
}
