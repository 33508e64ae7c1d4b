package notify

import "testing"

func TestFeedNewestFirst(t *testing.T) {
	feed := NewFeed(10)
	feed.Notify("info", "first")
	feed.Notify("error", "second")

	notices := feed.List()
	if len(notices) != 2 {
		t.Fatalf("expected 2 notices, got %d", len(notices))
	}
	if notices[0].Message != "second" || notices[1].Message != "first" {
		t.Fatalf("notices not newest-first: %+v", notices)
	}
	if notices[0].ID == notices[1].ID {
		t.Fatalf("notice ids not unique")
	}
}

func TestFeedCapsLength(t *testing.T) {
	feed := NewFeed(3)
	for i := 0; i < 5; i++ {
		feed.Notify("info", "notice")
	}
	if got := len(feed.List()); got != 3 {
		t.Fatalf("expected 3 notices, got %d", got)
	}
}

func TestFeedReadFlags(t *testing.T) {
	feed := NewFeed(10)
	feed.Notify("info", "one")
	feed.Notify("info", "two")
	if got := feed.Unread(); got != 2 {
		t.Fatalf("expected 2 unread, got %d", got)
	}

	feed.MarkAllRead()
	if got := feed.Unread(); got != 0 {
		t.Fatalf("expected 0 unread, got %d", got)
	}
	for _, n := range feed.List() {
		if !n.Read {
			t.Fatalf("notice left unread: %+v", n)
		}
	}

	feed.Notify("info", "three")
	if got := feed.Unread(); got != 1 {
		t.Fatalf("expected 1 unread after new notice, got %d", got)
	}
}
