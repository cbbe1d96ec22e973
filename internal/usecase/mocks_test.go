package usecase

import (
	"context"
	"strings"
	"sync"

	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/core/domain"
	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/core/port"
	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/repository"
)

func testUser(id, username, email string) domain.User {
	return domain.User{
		ID:       id,
		Username: username,
		Email:    email,
		Role:     domain.RoleUser,
	}
}

type stubUserRepo struct {
	mu    sync.Mutex
	users map[string]domain.User

	createErr error
	updateErr error

	createdCodes map[string]string
}

func newStubUserRepo(seed ...domain.User) *stubUserRepo {
	repo := &stubUserRepo{
		users:        make(map[string]domain.User),
		createdCodes: make(map[string]string),
	}
	for _, user := range seed {
		repo.users[user.ID] = user
	}
	return repo
}

func (r *stubUserRepo) Create(_ context.Context, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.createErr != nil {
		return r.createErr
	}

	for _, existing := range r.users {
		if existing.Username == user.Username || strings.EqualFold(existing.Email, user.Email) {
			return repository.ErrConflict
		}
	}

	r.users[user.ID] = user
	return nil
}

func (r *stubUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user, ok := r.users[id]; ok {
		copied := user
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (r *stubUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.Username == username {
			copied := user
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *stubUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) {
			copied := user
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *stubUserRepo) Update(_ context.Context, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrNotFound
	}

	r.users[user.ID] = user
	return nil
}

func (r *stubUserRepo) UpdateConfirmationCode(_ context.Context, id, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}

	user.ConfirmationCode = code
	r.users[id] = user
	r.createdCodes[id] = code
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *stubUserRepo) List(_ context.Context, filter port.UserFilter) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users := make([]domain.User, 0, len(r.users))
	for _, user := range r.users {
		if filter.Search != "" && !strings.Contains(user.Username, filter.Search) {
			continue
		}
		users = append(users, user)
	}
	return users, nil
}

func (r *stubUserRepo) Count(_ context.Context, filter port.UserFilter) (int, error) {
	users, _ := r.List(context.Background(), filter)
	return len(users), nil
}

// stubTxRunner hands fn the same repo; rollback is simulated by snapshotting
// the user map and restoring it when fn fails.
type stubTxRunner struct {
	repo *stubUserRepo
}

func (t *stubTxRunner) InUserTx(_ context.Context, fn func(port.UserRepository) error) error {
	t.repo.mu.Lock()
	snapshot := make(map[string]domain.User, len(t.repo.users))
	for id, user := range t.repo.users {
		snapshot[id] = user
	}
	t.repo.mu.Unlock()

	if err := fn(t.repo); err != nil {
		t.repo.mu.Lock()
		t.repo.users = snapshot
		t.repo.mu.Unlock()
		return err
	}
	return nil
}

type stubMailer struct {
	mu   sync.Mutex
	sent []port.Mail
	err  error
}

func (m *stubMailer) Send(_ context.Context, mail port.Mail) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, mail)
	return nil
}

type stubPublisher struct {
	mu       sync.Mutex
	signups  []domain.UserSignedUpEvent
	reviews  []domain.ReviewCreatedEvent
	failWith error
}

func (p *stubPublisher) PublishUserSignedUp(_ context.Context, event domain.UserSignedUpEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.failWith != nil {
		return p.failWith
	}
	p.signups = append(p.signups, event)
	return nil
}

func (p *stubPublisher) PublishReviewCreated(_ context.Context, event domain.ReviewCreatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.failWith != nil {
		return p.failWith
	}
	p.reviews = append(p.reviews, event)
	return nil
}

type stubTitleRepo struct {
	titles map[string]domain.Title
}

func newStubTitleRepo(seed ...domain.Title) *stubTitleRepo {
	repo := &stubTitleRepo{titles: make(map[string]domain.Title)}
	for _, title := range seed {
		repo.titles[title.ID] = title
	}
	return repo
}

func (r *stubTitleRepo) Create(_ context.Context, title domain.Title, _ []string) error {
	r.titles[title.ID] = title
	return nil
}

func (r *stubTitleRepo) GetByID(_ context.Context, id string) (*domain.Title, error) {
	if title, ok := r.titles[id]; ok {
		copied := title
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (r *stubTitleRepo) Update(_ context.Context, title domain.Title, _ []string) error {
	if _, ok := r.titles[title.ID]; !ok {
		return repository.ErrNotFound
	}
	r.titles[title.ID] = title
	return nil
}

func (r *stubTitleRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.titles[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.titles, id)
	return nil
}

func (r *stubTitleRepo) List(_ context.Context, _ port.TitleFilter) ([]domain.Title, error) {
	titles := make([]domain.Title, 0, len(r.titles))
	for _, title := range r.titles {
		titles = append(titles, title)
	}
	return titles, nil
}

func (r *stubTitleRepo) Count(_ context.Context, _ port.TitleFilter) (int, error) {
	return len(r.titles), nil
}

type stubReviewRepo struct {
	reviews   map[string]domain.Review
	createErr error
}

func newStubReviewRepo(seed ...domain.Review) *stubReviewRepo {
	repo := &stubReviewRepo{reviews: make(map[string]domain.Review)}
	for _, review := range seed {
		repo.reviews[review.ID] = review
	}
	return repo
}

func (r *stubReviewRepo) Create(_ context.Context, review domain.Review) error {
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.reviews {
		if existing.TitleID == review.TitleID && existing.AuthorID == review.AuthorID {
			return repository.ErrConflict
		}
	}
	r.reviews[review.ID] = review
	return nil
}

func (r *stubReviewRepo) GetByID(_ context.Context, titleID, id string) (*domain.Review, error) {
	if review, ok := r.reviews[id]; ok && review.TitleID == titleID {
		copied := review
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (r *stubReviewRepo) Update(_ context.Context, review domain.Review) error {
	if _, ok := r.reviews[review.ID]; !ok {
		return repository.ErrNotFound
	}
	r.reviews[review.ID] = review
	return nil
}

func (r *stubReviewRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.reviews[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.reviews, id)
	return nil
}

func (r *stubReviewRepo) ListByTitle(_ context.Context, titleID string, _ port.PageFilter) ([]domain.Review, error) {
	reviews := make([]domain.Review, 0)
	for _, review := range r.reviews {
		if review.TitleID == titleID {
			reviews = append(reviews, review)
		}
	}
	return reviews, nil
}

func (r *stubReviewRepo) CountByTitle(ctx context.Context, titleID string) (int, error) {
	reviews, _ := r.ListByTitle(ctx, titleID, port.PageFilter{})
	return len(reviews), nil
}

func (r *stubReviewRepo) ExistsForAuthor(_ context.Context, titleID, authorID string) (bool, error) {
	for _, review := range r.reviews {
		if review.TitleID == titleID && review.AuthorID == authorID {
			return true, nil
		}
	}
	return false, nil
}

type stubCommentRepo struct {
	comments map[string]domain.Comment
}

func newStubCommentRepo(seed ...domain.Comment) *stubCommentRepo {
	repo := &stubCommentRepo{comments: make(map[string]domain.Comment)}
	for _, comment := range seed {
		repo.comments[comment.ID] = comment
	}
	return repo
}

func (r *stubCommentRepo) Create(_ context.Context, comment domain.Comment) error {
	r.comments[comment.ID] = comment
	return nil
}

func (r *stubCommentRepo) GetByID(_ context.Context, reviewID, id string) (*domain.Comment, error) {
	if comment, ok := r.comments[id]; ok && comment.ReviewID == reviewID {
		copied := comment
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (r *stubCommentRepo) Update(_ context.Context, comment domain.Comment) error {
	if _, ok := r.comments[comment.ID]; !ok {
		return repository.ErrNotFound
	}
	r.comments[comment.ID] = comment
	return nil
}

func (r *stubCommentRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.comments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.comments, id)
	return nil
}

func (r *stubCommentRepo) ListByReview(_ context.Context, reviewID string, _ port.PageFilter) ([]domain.Comment, error) {
	comments := make([]domain.Comment, 0)
	for _, comment := range r.comments {
		if comment.ReviewID == reviewID {
			comments = append(comments, comment)
		}
	}
	return comments, nil
}

func (r *stubCommentRepo) CountByReview(ctx context.Context, reviewID string) (int, error) {
	comments, _ := r.ListByReview(ctx, reviewID, port.PageFilter{})
	return len(comments), nil
}

type stubCategoryRepo struct {
	categories map[string]domain.Category
}

func newStubCategoryRepo(seed ...domain.Category) *stubCategoryRepo {
	repo := &stubCategoryRepo{categories: make(map[string]domain.Category)}
	for _, category := range seed {
		repo.categories[category.Slug] = category
	}
	return repo
}

func (r *stubCategoryRepo) Create(_ context.Context, category domain.Category) error {
	if _, ok := r.categories[category.Slug]; ok {
		return repository.ErrConflict
	}
	r.categories[category.Slug] = category
	return nil
}

func (r *stubCategoryRepo) GetBySlug(_ context.Context, slug string) (*domain.Category, error) {
	if category, ok := r.categories[slug]; ok {
		copied := category
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (r *stubCategoryRepo) DeleteBySlug(_ context.Context, slug string) error {
	if _, ok := r.categories[slug]; !ok {
		return repository.ErrNotFound
	}
	delete(r.categories, slug)
	return nil
}

func (r *stubCategoryRepo) List(_ context.Context, _ port.SlugFilter) ([]domain.Category, error) {
	categories := make([]domain.Category, 0, len(r.categories))
	for _, category := range r.categories {
		categories = append(categories, category)
	}
	return categories, nil
}

func (r *stubCategoryRepo) Count(_ context.Context, _ port.SlugFilter) (int, error) {
	return len(r.categories), nil
}

type stubGenreRepo struct {
	genres map[string]domain.Genre
}

func newStubGenreRepo(seed ...domain.Genre) *stubGenreRepo {
	repo := &stubGenreRepo{genres: make(map[string]domain.Genre)}
	for _, genre := range seed {
		repo.genres[genre.Slug] = genre
	}
	return repo
}

func (r *stubGenreRepo) Create(_ context.Context, genre domain.Genre) error {
	if _, ok := r.genres[genre.Slug]; ok {
		return repository.ErrConflict
	}
	r.genres[genre.Slug] = genre
	return nil
}

func (r *stubGenreRepo) GetBySlug(_ context.Context, slug string) (*domain.Genre, error) {
	if genre, ok := r.genres[slug]; ok {
		copied := genre
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (r *stubGenreRepo) DeleteBySlug(_ context.Context, slug string) error {
	if _, ok := r.genres[slug]; !ok {
		return repository.ErrNotFound
	}
	delete(r.genres, slug)
	return nil
}

func (r *stubGenreRepo) List(_ context.Context, _ port.SlugFilter) ([]domain.Genre, error) {
	genres := make([]domain.Genre, 0, len(r.genres))
	for _, genre := range r.genres {
		genres = append(genres, genre)
	}
	return genres, nil
}

func (r *stubGenreRepo) Count(_ context.Context, _ port.SlugFilter) (int, error) {
	return len(r.genres), nil
}
