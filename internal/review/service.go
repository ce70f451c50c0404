// AngelaMos | 2026
// service.go

package review

import (
	"context"
	"fmt"

	"github.com/angelamos/revue/internal/core"
	"github.com/angelamos/revue/internal/policy"
)

// TitleChecker confirms the parent title exists before anything nests
// under it. Satisfied by the catalog service.
type TitleChecker interface {
	TitleExists(ctx context.Context, id int64) (bool, error)
}

type Service struct {
	repo   Repository
	titles TitleChecker
}

func NewService(repo Repository, titles TitleChecker) *Service {
	return &Service{repo: repo, titles: titles}
}

// CreateReview enforces one review per author per title. The duplicate is a
// conflict, not a validation error: the request is well-formed, the state
// disallows it.
func (s *Service) CreateReview(
	ctx context.Context,
	actor policy.Actor,
	titleID int64,
	req CreateReviewRequest,
) (*ReviewDetail, error) {
	if err := policy.CanCreateAuthored(actor); err != nil {
		return nil, err
	}

	if err := s.requireTitle(ctx, titleID); err != nil {
		return nil, err
	}

	exists, err := s.repo.HasReview(ctx, titleID, actor.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf(
			"you have already reviewed this title: %w",
			core.ErrConflict,
		)
	}

	rev := &Review{
		TitleID:  titleID,
		AuthorID: actor.ID,
		Text:     req.Text,
		Score:    req.Score,
	}

	if err := s.repo.CreateReview(ctx, rev); err != nil {
		return nil, err
	}

	return s.repo.GetReview(ctx, titleID, rev.ID)
}

func (s *Service) GetReview(
	ctx context.Context,
	titleID, reviewID int64,
) (*ReviewDetail, error) {
	if err := s.requireTitle(ctx, titleID); err != nil {
		return nil, err
	}
	return s.repo.GetReview(ctx, titleID, reviewID)
}

func (s *Service) ListReviews(
	ctx context.Context,
	titleID int64,
	params ListParams,
) ([]ReviewDetail, int, error) {
	if err := s.requireTitle(ctx, titleID); err != nil {
		return nil, 0, err
	}
	return s.repo.ListReviews(ctx, titleID, params)
}

func (s *Service) UpdateReview(
	ctx context.Context,
	actor policy.Actor,
	titleID, reviewID int64,
	req UpdateReviewRequest,
) (*ReviewDetail, error) {
	detail, err := s.repo.GetReview(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}

	if err := policy.CanModifyAuthored(actor, detail.AuthorID); err != nil {
		return nil, err
	}

	rev := detail.Review
	if req.Text != nil {
		rev.Text = *req.Text
	}
	if req.Score != nil {
		rev.Score = *req.Score
	}

	if err := s.repo.UpdateReview(ctx, &rev); err != nil {
		return nil, err
	}

	return s.repo.GetReview(ctx, titleID, reviewID)
}

func (s *Service) DeleteReview(
	ctx context.Context,
	actor policy.Actor,
	titleID, reviewID int64,
) error {
	detail, err := s.repo.GetReview(ctx, titleID, reviewID)
	if err != nil {
		return err
	}

	if err := policy.CanModifyAuthored(actor, detail.AuthorID); err != nil {
		return err
	}

	return s.repo.DeleteReview(ctx, titleID, reviewID)
}

func (s *Service) CreateComment(
	ctx context.Context,
	actor policy.Actor,
	titleID, reviewID int64,
	req CreateCommentRequest,
) (*CommentDetail, error) {
	if err := policy.CanCreateAuthored(actor); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}

	c := &Comment{
		ReviewID: reviewID,
		AuthorID: actor.ID,
		Text:     req.Text,
	}

	if err := s.repo.CreateComment(ctx, c); err != nil {
		return nil, err
	}

	return s.repo.GetComment(ctx, reviewID, c.ID)
}

func (s *Service) GetComment(
	ctx context.Context,
	titleID, reviewID, commentID int64,
) (*CommentDetail, error) {
	if _, err := s.repo.GetReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	return s.repo.GetComment(ctx, reviewID, commentID)
}

func (s *Service) ListComments(
	ctx context.Context,
	titleID, reviewID int64,
	params ListParams,
) ([]CommentDetail, int, error) {
	if _, err := s.repo.GetReview(ctx, titleID, reviewID); err != nil {
		return nil, 0, err
	}
	return s.repo.ListComments(ctx, reviewID, params)
}

func (s *Service) UpdateComment(
	ctx context.Context,
	actor policy.Actor,
	titleID, reviewID, commentID int64,
	req UpdateCommentRequest,
) (*CommentDetail, error) {
	if _, err := s.repo.GetReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}

	detail, err := s.repo.GetComment(ctx, reviewID, commentID)
	if err != nil {
		return nil, err
	}

	if err := policy.CanModifyAuthored(actor, detail.AuthorID); err != nil {
		return nil, err
	}

	c := detail.Comment
	if req.Text != nil {
		c.Text = *req.Text
	}

	if err := s.repo.UpdateComment(ctx, &c); err != nil {
		return nil, err
	}

	return s.repo.GetComment(ctx, reviewID, commentID)
}

func (s *Service) DeleteComment(
	ctx context.Context,
	actor policy.Actor,
	titleID, reviewID, commentID int64,
) error {
	if _, err := s.repo.GetReview(ctx, titleID, reviewID); err != nil {
		return err
	}

	detail, err := s.repo.GetComment(ctx, reviewID, commentID)
	if err != nil {
		return err
	}

	if err := policy.CanModifyAuthored(actor, detail.AuthorID); err != nil {
		return err
	}

	return s.repo.DeleteComment(ctx, reviewID, commentID)
}

func (s *Service) requireTitle(ctx context.Context, titleID int64) error {
	exists, err := s.titles.TitleExists(ctx, titleID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("title %d: %w", titleID, core.ErrNotFound)
	}
	return nil
}
