package args

import "strings"

// ParseImageURLs normalizes a comma-separated list of URLs or shorthand
// names for edit workflows. Tokens carrying a scheme pass through verbatim;
// shorthand names get a ".jpg" extension when their last path segment has
// none, then the base prefix.
func ParseImageURLs(spec, baseURL string) []string {
	out := []string{}
	for _, raw := range strings.Split(spec, ",") {
		token := strings.TrimSpace(raw)
		if token == "" {
			continue
		}
		if strings.Contains(token, "://") {
			out = append(out, token)
			continue
		}
		if last := token[strings.LastIndex(token, "/")+1:]; !strings.Contains(last, ".") {
			token += ".jpg"
		}
		out = append(out, baseURL+token)
	}
	return out
}
