package source

import (
	"context"
	"fmt"
	"io"

	"github.com/mmcdole/gofeed"
)

// FetchFeed downloads an RSS or Atom feed and returns its items.
func FetchFeed(ctx context.Context, feedURL string) ([]Item, error) {
	feed, err := gofeed.NewParser().ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", feedURL, err)
	}
	return feedItems(feed), nil
}

// ParseFeed parses an RSS or Atom document.
func ParseFeed(r io.Reader) ([]Item, error) {
	feed, err := gofeed.NewParser().Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return feedItems(feed), nil
}

func feedItems(feed *gofeed.Feed) []Item {
	items := make([]Item, 0, len(feed.Items))
	for i, it := range feed.Items {
		item := Item{
			URL:    it.Link,
			Title:  it.Title,
			Outlet: feed.Title,
			Rank:   i + 1,
		}
		if it.PublishedParsed != nil {
			item.PublishedAt = *it.PublishedParsed
		} else if it.UpdatedParsed != nil {
			item.PublishedAt = *it.UpdatedParsed
		}
		items = append(items, item)
	}
	return items
}
