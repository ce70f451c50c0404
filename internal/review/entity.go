// AngelaMos | 2026
// entity.go

package review

import (
	"time"
)

const (
	MinScore = 1
	MaxScore = 10
)

// Review is one user's verdict on a title. The pair (TitleID, AuthorID) is
// unique: a second review from the same author is rejected, not merged.
// PubDate is set once on creation and survives edits.
type Review struct {
	ID       int64     `db:"id"`
	TitleID  int64     `db:"title_id"`
	AuthorID string    `db:"author_id"`
	Text     string    `db:"text"`
	Score    int       `db:"score"`
	PubDate  time.Time `db:"pub_date"`
}

// Comment hangs off a review and dies with it.
type Comment struct {
	ID       int64     `db:"id"`
	ReviewID int64     `db:"review_id"`
	AuthorID string    `db:"author_id"`
	Text     string    `db:"text"`
	PubDate  time.Time `db:"pub_date"`
}
