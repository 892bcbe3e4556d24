package feeds

import "strings"

// Filter removes aggregator articles that fail the configured rules.
// RSS articles are exempt from every rule: an editorially curated feed
// has already made its selection, the rules exist to tame community
// submissions.
//
// A reddit article survives only if all of these hold:
//   - RequireExternalLink is off, or its URL is an http(s) link
//   - RequireNewsDomain is off, or its domain is unknown, or its domain
//     matches the trusted allow-list
//   - its score is at least cfg.MinScore
func Filter(articles []Article, cfg FilterConfig, trustedDomains []string) []Article {
	result := make([]Article, 0, len(articles))
	for _, a := range articles {
		if a.Source.Type == SourceRSS {
			result = append(result, a)
			continue
		}
		if cfg.RequireExternalLink && !strings.HasPrefix(a.URL, "http") {
			continue
		}
		if cfg.RequireNewsDomain && a.Domain != "" && !domainTrusted(a.Domain, trustedDomains) {
			continue
		}
		if a.Score < cfg.MinScore {
			continue
		}
		result = append(result, a)
	}
	return result
}

func domainTrusted(domain string, trusted []string) bool {
	for _, t := range trusted {
		if strings.Contains(domain, t) {
			return true
		}
	}
	return false
}
