package feed

import (
	"github.com/mmcdole/gofeed"
)

// FeedAdapter は gofeed.Feed から検索結果リンクを取り出すためのアダプターです。
type FeedAdapter struct {
	*gofeed.Feed
}

// NewFeedAdapter は gofeed.Feed から新しいアダプターを作成します。
func NewFeedAdapter(feed *gofeed.Feed) *FeedAdapter {
	return &FeedAdapter{Feed: feed}
}

// GetLinks は、アイテムのリンクをフィード内の順序のまま返します。空のリンクは除外します。
func (a *FeedAdapter) GetLinks() []string {
	if a.Feed == nil || len(a.Items) == 0 {
		return []string{}
	}

	urls := make([]string, 0, len(a.Items))
	for _, item := range a.Items {
		if item == nil || item.Link == "" {
			continue
		}
		urls = append(urls, item.Link)
	}
	return urls
}
