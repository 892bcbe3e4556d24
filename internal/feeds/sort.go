package feeds

import "sort"

// oneLinerThreshold is the title length below which an article is
// treated as a one-liner for ranking purposes.
const oneLinerThreshold = 100

// Sort orders articles newest-first. With DeprioritizeOneLiners set,
// articles whose title is shorter than the threshold sink below
// longer-titled articles regardless of recency; recency still orders
// articles within each partition. The sort is stable.
func Sort(articles []Article, cfg FilterConfig) {
	sort.SliceStable(articles, func(i, j int) bool {
		if cfg.DeprioritizeOneLiners {
			si, sj := isOneLiner(articles[i]), isOneLiner(articles[j])
			if si != sj {
				return !si // long titles first
			}
		}
		return articles[i].Published.After(articles[j].Published)
	})
}

func isOneLiner(a Article) bool {
	return len([]rune(a.Title)) < oneLinerThreshold
}
