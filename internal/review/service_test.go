// AngelaMos | 2026
// service_test.go

package review

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/revue/internal/core"
	"github.com/angelamos/revue/internal/policy"
)

var (
	authorActor = policy.Actor{ID: "u-author", Username: "author", Role: "user"}
	otherActor  = policy.Actor{ID: "u-other", Username: "other", Role: "user"}
	modActor    = policy.Actor{ID: "u-mod", Username: "mod", Role: "moderator"}
	adminActor  = policy.Actor{ID: "u-admin", Username: "admin", Role: "admin"}
)

type fakeTitles struct {
	ids map[int64]bool
}

func (f *fakeTitles) TitleExists(_ context.Context, id int64) (bool, error) {
	return f.ids[id], nil
}

type fakeRepo struct {
	reviews  map[int64]*ReviewDetail
	comments map[int64]*CommentDetail
	nextID   int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		reviews:  make(map[int64]*ReviewDetail),
		comments: make(map[int64]*CommentDetail),
	}
}

func (f *fakeRepo) CreateReview(_ context.Context, rev *Review) error {
	for _, existing := range f.reviews {
		if existing.TitleID == rev.TitleID &&
			existing.AuthorID == rev.AuthorID {
			return fmt.Errorf("create review: %w", core.ErrConflict)
		}
	}

	f.nextID++
	rev.ID = f.nextID
	rev.PubDate = time.Now()

	f.reviews[rev.ID] = &ReviewDetail{
		Review:         *rev,
		AuthorUsername: rev.AuthorID,
	}
	return nil
}

func (f *fakeRepo) GetReview(
	_ context.Context,
	titleID, reviewID int64,
) (*ReviewDetail, error) {
	if d, ok := f.reviews[reviewID]; ok && d.TitleID == titleID {
		copied := *d
		return &copied, nil
	}
	return nil, fmt.Errorf("get review: %w", core.ErrNotFound)
}

func (f *fakeRepo) UpdateReview(_ context.Context, rev *Review) error {
	d, ok := f.reviews[rev.ID]
	if !ok {
		return fmt.Errorf("update review: %w", core.ErrNotFound)
	}
	pubDate := d.PubDate
	d.Review = *rev
	d.PubDate = pubDate
	return nil
}

func (f *fakeRepo) DeleteReview(
	_ context.Context,
	titleID, reviewID int64,
) error {
	if d, ok := f.reviews[reviewID]; ok && d.TitleID == titleID {
		delete(f.reviews, reviewID)
		return nil
	}
	return fmt.Errorf("delete review: %w", core.ErrNotFound)
}

func (f *fakeRepo) ListReviews(
	_ context.Context,
	titleID int64,
	_ ListParams,
) ([]ReviewDetail, int, error) {
	var out []ReviewDetail
	for _, d := range f.reviews {
		if d.TitleID == titleID {
			out = append(out, *d)
		}
	}
	return out, len(out), nil
}

func (f *fakeRepo) HasReview(
	_ context.Context,
	titleID int64,
	authorID string,
) (bool, error) {
	for _, d := range f.reviews {
		if d.TitleID == titleID && d.AuthorID == authorID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) CreateComment(_ context.Context, c *Comment) error {
	f.nextID++
	c.ID = f.nextID
	c.PubDate = time.Now()

	f.comments[c.ID] = &CommentDetail{
		Comment:        *c,
		AuthorUsername: c.AuthorID,
	}
	return nil
}

func (f *fakeRepo) GetComment(
	_ context.Context,
	reviewID, commentID int64,
) (*CommentDetail, error) {
	if d, ok := f.comments[commentID]; ok && d.ReviewID == reviewID {
		copied := *d
		return &copied, nil
	}
	return nil, fmt.Errorf("get comment: %w", core.ErrNotFound)
}

func (f *fakeRepo) UpdateComment(_ context.Context, c *Comment) error {
	d, ok := f.comments[c.ID]
	if !ok {
		return fmt.Errorf("update comment: %w", core.ErrNotFound)
	}
	pubDate := d.PubDate
	d.Comment = *c
	d.PubDate = pubDate
	return nil
}

func (f *fakeRepo) DeleteComment(
	_ context.Context,
	reviewID, commentID int64,
) error {
	if d, ok := f.comments[commentID]; ok && d.ReviewID == reviewID {
		delete(f.comments, commentID)
		return nil
	}
	return fmt.Errorf("delete comment: %w", core.ErrNotFound)
}

func (f *fakeRepo) ListComments(
	_ context.Context,
	reviewID int64,
	_ ListParams,
) ([]CommentDetail, int, error) {
	var out []CommentDetail
	for _, d := range f.comments {
		if d.ReviewID == reviewID {
			out = append(out, *d)
		}
	}
	return out, len(out), nil
}

const testTitleID = int64(7)

func newTestService() (*Service, *fakeRepo) {
	repo := newFakeRepo()
	titles := &fakeTitles{ids: map[int64]bool{testTitleID: true}}
	return NewService(repo, titles), repo
}

func TestCreateReview(t *testing.T) {
	svc, _ := newTestService()

	detail, err := svc.CreateReview(
		context.Background(),
		authorActor,
		testTitleID,
		CreateReviewRequest{Text: "solid", Score: 8},
	)
	require.NoError(t, err)

	assert.Equal(t, 8, detail.Score)
	assert.Equal(t, authorActor.ID, detail.AuthorID)
	assert.False(t, detail.PubDate.IsZero())
}

func TestCreateReviewRequiresAuth(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateReview(
		context.Background(),
		policy.Actor{},
		testTitleID,
		CreateReviewRequest{Text: "anon", Score: 5},
	)
	assert.True(t, errors.Is(err, core.ErrUnauthorized))
}

func TestCreateReviewMissingTitle(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateReview(
		context.Background(),
		authorActor,
		999,
		CreateReviewRequest{Text: "where", Score: 5},
	)
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestCreateReviewDuplicateConflicts(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateReview(
		context.Background(),
		authorActor,
		testTitleID,
		CreateReviewRequest{Text: "first take", Score: 8},
	)
	require.NoError(t, err)

	_, err = svc.CreateReview(
		context.Background(),
		authorActor,
		testTitleID,
		CreateReviewRequest{Text: "second take", Score: 3},
	)
	assert.True(t, errors.Is(err, core.ErrConflict),
		"one review per author per title")

	// A different author reviewing the same title is fine.
	_, err = svc.CreateReview(
		context.Background(),
		otherActor,
		testTitleID,
		CreateReviewRequest{Text: "disagree", Score: 4},
	)
	assert.NoError(t, err)
}

func TestUpdateReviewOwnership(t *testing.T) {
	svc, _ := newTestService()

	detail, err := svc.CreateReview(
		context.Background(),
		authorActor,
		testTitleID,
		CreateReviewRequest{Text: "original", Score: 6},
	)
	require.NoError(t, err)

	newText := "revised"
	_, err = svc.UpdateReview(
		context.Background(),
		otherActor,
		testTitleID,
		detail.ID,
		UpdateReviewRequest{Text: &newText},
	)
	assert.True(t, errors.Is(err, core.ErrForbidden),
		"strangers cannot edit someone else's review")

	updated, err := svc.UpdateReview(
		context.Background(),
		modActor,
		testTitleID,
		detail.ID,
		UpdateReviewRequest{Text: &newText},
	)
	require.NoError(t, err, "moderators can edit any review")
	assert.Equal(t, "revised", updated.Text)
	assert.Equal(t, detail.PubDate, updated.PubDate,
		"editing does not move the publication date")
	assert.Equal(t, authorActor.ID, updated.AuthorID,
		"authorship never changes on edit")
}

func TestDeleteReviewOwnership(t *testing.T) {
	svc, _ := newTestService()

	detail, err := svc.CreateReview(
		context.Background(),
		authorActor,
		testTitleID,
		CreateReviewRequest{Text: "target", Score: 2},
	)
	require.NoError(t, err)

	err = svc.DeleteReview(
		context.Background(), otherActor, testTitleID, detail.ID)
	assert.True(t, errors.Is(err, core.ErrForbidden))

	err = svc.DeleteReview(
		context.Background(), adminActor, testTitleID, detail.ID)
	assert.NoError(t, err)

	_, err = svc.GetReview(context.Background(), testTitleID, detail.ID)
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestReviewNotUnderTitleIs404(t *testing.T) {
	svc, repo := newTestService()

	detail, err := svc.CreateReview(
		context.Background(),
		authorActor,
		testTitleID,
		CreateReviewRequest{Text: "here", Score: 7},
	)
	require.NoError(t, err)

	// Register a second title and look the review up under it.
	titles := &fakeTitles{ids: map[int64]bool{testTitleID: true, 8: true}}
	svc = NewService(repo, titles)

	_, err = svc.GetReview(context.Background(), 8, detail.ID)
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestCommentLifecycle(t *testing.T) {
	svc, _ := newTestService()

	rev, err := svc.CreateReview(
		context.Background(),
		authorActor,
		testTitleID,
		CreateReviewRequest{Text: "discussable", Score: 9},
	)
	require.NoError(t, err)

	comment, err := svc.CreateComment(
		context.Background(),
		otherActor,
		testTitleID,
		rev.ID,
		CreateCommentRequest{Text: "agreed"},
	)
	require.NoError(t, err)
	assert.Equal(t, otherActor.ID, comment.AuthorID)

	newText := "strongly agreed"
	_, err = svc.UpdateComment(
		context.Background(),
		authorActor,
		testTitleID,
		rev.ID,
		comment.ID,
		UpdateCommentRequest{Text: &newText},
	)
	assert.True(t, errors.Is(err, core.ErrForbidden),
		"review author has no special rights over others' comments")

	updated, err := svc.UpdateComment(
		context.Background(),
		otherActor,
		testTitleID,
		rev.ID,
		comment.ID,
		UpdateCommentRequest{Text: &newText},
	)
	require.NoError(t, err)
	assert.Equal(t, "strongly agreed", updated.Text)

	err = svc.DeleteComment(
		context.Background(), modActor, testTitleID, rev.ID, comment.ID)
	assert.NoError(t, err, "moderators can remove any comment")
}

func TestCommentOnMissingReview(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateComment(
		context.Background(),
		authorActor,
		testTitleID,
		404,
		CreateCommentRequest{Text: "void"},
	)
	assert.True(t, errors.Is(err, core.ErrNotFound))
}
