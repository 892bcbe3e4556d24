package feeds

// Dedupe collapses articles sharing a URL down to one survivor. The URL
// is the story's identity: the same link surfacing from an RSS feed and
// a subreddit is one story, not two.
//
// Tie-break policy when a later article matches an earlier one's URL:
//   - an RSS article always replaces a reddit article
//   - between two reddit articles, the higher score wins
//   - otherwise the first-seen article is kept
//
// Input order is preserved for survivors. Idempotent.
func Dedupe(articles []Article) []Article {
	type slot struct {
		index   int
		article Article
	}

	byURL := make(map[string]*slot, len(articles))
	order := make([]*slot, 0, len(articles))

	for _, a := range articles {
		existing, ok := byURL[a.URL]
		if !ok {
			s := &slot{index: len(order), article: a}
			byURL[a.URL] = s
			order = append(order, s)
			continue
		}
		if supersedes(a, existing.article) {
			existing.article = a
		}
	}

	result := make([]Article, len(order))
	for i, s := range order {
		result[i] = s.article
	}
	return result
}

// supersedes reports whether candidate should replace incumbent when
// both share a URL.
func supersedes(candidate, incumbent Article) bool {
	if candidate.Source.Type == SourceRSS && incumbent.Source.Type != SourceRSS {
		return true
	}
	if candidate.Source.Type == SourceReddit && incumbent.Source.Type == SourceReddit {
		return candidate.Score > incumbent.Score
	}
	return false
}
