// AngelaMos | 2026
// dto.go

package review

import (
	"time"
)

type CreateReviewRequest struct {
	Text  string `json:"text"  validate:"required,max=10000"`
	Score int    `json:"score" validate:"required,gte=1,lte=10"`
}

type UpdateReviewRequest struct {
	Text  *string `json:"text,omitempty"  validate:"omitempty,max=10000"`
	Score *int    `json:"score,omitempty" validate:"omitempty,gte=1,lte=10"`
}

type ReviewResponse struct {
	ID      int64     `json:"id"`
	Author  string    `json:"author"`
	Text    string    `json:"text"`
	Score   int       `json:"score"`
	PubDate time.Time `json:"pub_date"`
}

type CreateCommentRequest struct {
	Text string `json:"text" validate:"required,max=10000"`
}

type UpdateCommentRequest struct {
	Text *string `json:"text,omitempty" validate:"omitempty,max=10000"`
}

type CommentResponse struct {
	ID      int64     `json:"id"`
	Author  string    `json:"author"`
	Text    string    `json:"text"`
	PubDate time.Time `json:"pub_date"`
}

type ListParams struct {
	Page     int
	PageSize int
}

func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToReviewResponse(d *ReviewDetail) ReviewResponse {
	return ReviewResponse{
		ID:      d.ID,
		Author:  d.AuthorUsername,
		Text:    d.Text,
		Score:   d.Score,
		PubDate: d.PubDate,
	}
}

func ToReviewResponseList(details []ReviewDetail) []ReviewResponse {
	responses := make([]ReviewResponse, 0, len(details))
	for i := range details {
		responses = append(responses, ToReviewResponse(&details[i]))
	}
	return responses
}

func ToCommentResponse(d *CommentDetail) CommentResponse {
	return CommentResponse{
		ID:      d.ID,
		Author:  d.AuthorUsername,
		Text:    d.Text,
		PubDate: d.PubDate,
	}
}

func ToCommentResponseList(details []CommentDetail) []CommentResponse {
	responses := make([]CommentResponse, 0, len(details))
	for i := range details {
		responses = append(responses, ToCommentResponse(&details[i]))
	}
	return responses
}
