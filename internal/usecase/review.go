package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/core/domain"
	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/core/port"
	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/repository"
)

const (
	minReviewScore = 1
	maxReviewScore = 10
)

// ReviewService manages reviews and their comment threads.
type ReviewService struct {
	reviews  port.ReviewRepository
	comments port.CommentRepository
	titles   port.TitleRepository
	events   port.EventPublisher
	logger   *zap.Logger

	now func() time.Time
}

// NewReviewService constructs a review service.
func NewReviewService(reviews port.ReviewRepository, comments port.CommentRepository, titles port.TitleRepository, events port.EventPublisher, logger *zap.Logger) *ReviewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReviewService{
		reviews:  reviews,
		comments: comments,
		titles:   titles,
		events:   events,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ReviewInput carries review creation and update payloads.
type ReviewInput struct {
	Text  string
	Score int
}

// CommentInput carries comment creation and update payloads.
type CommentInput struct {
	Text string
}

// ListReviews returns a page of reviews under the title plus the unpaged
// total, newest first.
func (s *ReviewService) ListReviews(ctx context.Context, titleID string, filter port.PageFilter) ([]domain.Review, int, error) {
	if err := s.requireTitle(ctx, titleID); err != nil {
		return nil, 0, err
	}

	reviews, err := s.reviews.ListByTitle(ctx, titleID, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}

	total, err := s.reviews.CountByTitle(ctx, titleID)
	if err != nil {
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}

	return reviews, total, nil
}

// GetReview loads a review scoped to its title.
func (s *ReviewService) GetReview(ctx context.Context, titleID, reviewID string) (*domain.Review, error) {
	if err := s.requireTitle(ctx, titleID); err != nil {
		return nil, err
	}

	review, err := s.reviews.GetByID(ctx, titleID, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("get review: %w", err)
	}
	return review, nil
}

// CreateReview posts the author's review on a title. An author gets exactly
// one review per title; the unique constraint backs the pre-check so two
// concurrent requests cannot both land.
func (s *ReviewService) CreateReview(ctx context.Context, actor *domain.User, titleID string, input ReviewInput) (*domain.Review, error) {
	if err := s.requireTitle(ctx, titleID); err != nil {
		return nil, err
	}

	if err := validateReviewInput(input); err != nil {
		return nil, err
	}

	exists, err := s.reviews.ExistsForAuthor(ctx, titleID, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("check existing review: %w", err)
	}
	if exists {
		return nil, ErrReviewExists
	}

	review := domain.Review{
		ID:             uuid.NewString(),
		TitleID:        titleID,
		AuthorID:       actor.ID,
		AuthorUsername: actor.Username,
		Text:           input.Text,
		Score:          input.Score,
		PubDate:        s.now(),
	}

	if err := s.reviews.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrReviewExists
		}
		return nil, fmt.Errorf("create review: %w", err)
	}

	s.publishReviewCreated(ctx, review)

	return &review, nil
}

// UpdateReview replaces the review's text and score.
func (s *ReviewService) UpdateReview(ctx context.Context, titleID, reviewID string, input ReviewInput) (*domain.Review, error) {
	review, err := s.GetReview(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}

	if err := validateReviewInput(input); err != nil {
		return nil, err
	}

	review.Text = input.Text
	review.Score = input.Score

	if err := s.reviews.Update(ctx, *review); err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}

	return review, nil
}

// DeleteReview removes a review and its comments.
func (s *ReviewService) DeleteReview(ctx context.Context, titleID, reviewID string) error {
	review, err := s.GetReview(ctx, titleID, reviewID)
	if err != nil {
		return err
	}

	if err := s.reviews.Delete(ctx, review.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("delete review: %w", err)
	}
	return nil
}

// ListComments returns a page of comments under the review plus the unpaged
// total, newest first.
func (s *ReviewService) ListComments(ctx context.Context, titleID, reviewID string, filter port.PageFilter) ([]domain.Comment, int, error) {
	review, err := s.GetReview(ctx, titleID, reviewID)
	if err != nil {
		return nil, 0, err
	}

	comments, err := s.comments.ListByReview(ctx, review.ID, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list comments: %w", err)
	}

	total, err := s.comments.CountByReview(ctx, review.ID)
	if err != nil {
		return nil, 0, fmt.Errorf("count comments: %w", err)
	}

	return comments, total, nil
}

// GetComment loads a comment scoped to its review and title.
func (s *ReviewService) GetComment(ctx context.Context, titleID, reviewID, commentID string) (*domain.Comment, error) {
	review, err := s.GetReview(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}

	comment, err := s.comments.GetByID(ctx, review.ID, commentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return comment, nil
}

// CreateComment posts a reply to a review.
func (s *ReviewService) CreateComment(ctx context.Context, actor *domain.User, titleID, reviewID string, input CommentInput) (*domain.Comment, error) {
	review, err := s.GetReview(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}

	if err := validateCommentInput(input); err != nil {
		return nil, err
	}

	comment := domain.Comment{
		ID:             uuid.NewString(),
		ReviewID:       review.ID,
		AuthorID:       actor.ID,
		AuthorUsername: actor.Username,
		Text:           input.Text,
		PubDate:        s.now(),
	}

	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	return &comment, nil
}

// UpdateComment replaces the comment's text.
func (s *ReviewService) UpdateComment(ctx context.Context, titleID, reviewID, commentID string, input CommentInput) (*domain.Comment, error) {
	comment, err := s.GetComment(ctx, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}

	if err := validateCommentInput(input); err != nil {
		return nil, err
	}

	comment.Text = input.Text

	if err := s.comments.Update(ctx, *comment); err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}

	return comment, nil
}

// DeleteComment removes a comment.
func (s *ReviewService) DeleteComment(ctx context.Context, titleID, reviewID, commentID string) error {
	comment, err := s.GetComment(ctx, titleID, reviewID, commentID)
	if err != nil {
		return err
	}

	if err := s.comments.Delete(ctx, comment.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCommentNotFound
		}
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

func (s *ReviewService) requireTitle(ctx context.Context, titleID string) error {
	if _, err := s.titles.GetByID(ctx, titleID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTitleNotFound
		}
		return fmt.Errorf("get title: %w", err)
	}
	return nil
}

func (s *ReviewService) publishReviewCreated(ctx context.Context, review domain.Review) {
	if s.events == nil {
		return
	}

	event := domain.ReviewCreatedEvent{
		EventID:   uuid.NewString(),
		ReviewID:  review.ID,
		TitleID:   review.TitleID,
		AuthorID:  review.AuthorID,
		Score:     review.Score,
		CreatedAt: review.PubDate,
	}

	if err := s.events.PublishReviewCreated(ctx, event); err != nil {
		s.logger.Warn("publish review.created failed",
			zap.String("review_id", review.ID),
			zap.Error(err),
		)
	}
}

func validateReviewInput(input ReviewInput) error {
	verr := NewValidationError()

	if strings.TrimSpace(input.Text) == "" {
		verr.Add("text", "This field is required.")
	}
	if input.Score < minReviewScore || input.Score > maxReviewScore {
		verr.Add("score", fmt.Sprintf("Score must be between %d and %d.", minReviewScore, maxReviewScore))
	}

	return verr.ErrOrNil()
}

func validateCommentInput(input CommentInput) error {
	verr := NewValidationError()

	if strings.TrimSpace(input.Text) == "" {
		verr.Add("text", "This field is required.")
	}

	return verr.ErrOrNil()
}
