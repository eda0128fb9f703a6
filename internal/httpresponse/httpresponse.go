// Package httpresponse holds the canonicalized HTTP response value used by
// Stage 3 vhost discrimination, and the response-similarity equivalence
// relation it is compared under. Grounded on original_source/vhosts-sieve.py's
// HttpResponse/is_similar/_parse_location_header, with the similarity ratio
// delegated to github.com/pmezard/go-difflib (the Go port of Python's
// difflib.SequenceMatcher) rather than a hand-rolled distance metric, per
// SPEC_FULL.md §9.
package httpresponse

import (
	"github.com/pmezard/go-difflib/difflib"
	"github.com/slicingmelon/go-rawurlparser"
)

// bodyPrefixLen is the number of leading characters of a decoded body kept
// for similarity comparison when no Location header is present.
const bodyPrefixLen = 512

// similarityThreshold is the minimum ratio() for two responses to be
// considered equivalent.
const similarityThreshold = 0.80

// Response is the canonicalized form of an HTTP response: only the fields
// the equivalence relation and optional logging need.
type Response struct {
	Status      int
	LocationKey string
	BodyPrefix  string
	BodyFull    string
	Headers     map[string]string
}

// New builds a Response from raw fields, computing LocationKey and
// truncating BodyPrefix per the canonicalization rules in SPEC_FULL.md §3.
func New(status int, locationHeader string, body string, headers map[string]string) Response {
	r := Response{
		Status:  status,
		BodyFull: body,
		Headers: headers,
	}
	if locationHeader != "" {
		r.LocationKey = locationKey(locationHeader)
	}
	if r.LocationKey == "" {
		r.BodyPrefix = truncate(body, bodyPrefixLen)
	}
	return r
}

// locationKey parses a Location header value into scheme||netloc||path,
// dropping query and fragment (SPEC_FULL.md §9 open-question decision,
// confirmed against original_source/vhosts-sieve.py's
// _parse_location_header). Returns "" if the header is empty or unparseable.
func locationKey(location string) string {
	if location == "" {
		return ""
	}
	parsed, err := rawurlparser.RawURLParse(location)
	if err != nil {
		return ""
	}
	return parsed.Scheme + parsed.Host + parsed.Path
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// IsSimilar implements the response equivalence relation A ≈ B: equal
// status, equal location key, and a body-prefix ratio() at or above
// similarityThreshold. Reflexive and symmetric; transitivity is not
// required (SPEC_FULL.md §3/§8).
func IsSimilar(a, b Response) bool {
	if a.Status != b.Status {
		return false
	}
	if a.LocationKey != b.LocationKey {
		return false
	}
	return Ratio(a.BodyPrefix, b.BodyPrefix) >= similarityThreshold
}

// Ratio is the classic Python-difflib SequenceMatcher ratio: 2*M/(|a|+|b|),
// where M is the total matched-character count under a greedy
// matching-blocks decomposition. Two empty strings yield ratio 1.0 (matching
// SPEC_FULL.md §8 invariant 4).
func Ratio(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	sm := difflib.NewMatcherWithJunk(splitChars(a), splitChars(b), false, nil)
	return sm.Ratio()
}

func splitChars(s string) []string {
	r := []rune(s)
	out := make([]string, len(r))
	for i, c := range r {
		out[i] = string(c)
	}
	return out
}
