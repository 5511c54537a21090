package post

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/team-gbm/hophacks-2025-backend/internal/store"
)

const ListLimit = 100

var ErrInvalidInput = errors.New("invalid input")

// Service implements the post actions. Like, comment and share are each two
// independent writes, a counter increment and a log row; there is no transaction
// between them and nothing reconciles the two if one fails.
type Service struct {
	repo *Repository
	now  func() time.Time
}

func NewService(repo *Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

func (s *Service) Create(ctx context.Context, req *CreateRequest) (*Post, error) {
	createdAt, err := store.ParseTimestamp(req.CreatedAt, s.now)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	p := &Post{
		AuthorID:  req.AuthorID,
		Content:   req.Content,
		Media:     req.Media,
		CreatedAt: createdAt,
	}
	if p.Media == nil {
		p.Media = []string{}
	}
	return s.repo.CreatePost(ctx, p)
}

func (s *Service) Get(ctx context.Context, id store.ID) (*Post, error) {
	return s.repo.GetPostByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Post, error) {
	return s.repo.ListPosts(ctx, ListLimit)
}

// Like increments the counter first and only then records the like, so a like on a
// missing post leaves no row behind.
func (s *Service) Like(ctx context.Context, postID store.ID, userID string) error {
	if userID == "" {
		return fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}
	if err := s.repo.IncrementCounter(ctx, postID, FieldLikes); err != nil {
		return err
	}
	return s.repo.SaveLike(ctx, &Like{
		PostID:    postID,
		UserID:    userID,
		CreatedAt: store.Timestamp(s.now()),
	})
}

func (s *Service) Comment(ctx context.Context, postID store.ID, userID, text string) error {
	if userID == "" || text == "" {
		return fmt.Errorf("%w: user_id and text are required", ErrInvalidInput)
	}
	err := s.repo.SaveComment(ctx, &Comment{
		PostID:    postID,
		UserID:    userID,
		Text:      text,
		CreatedAt: store.Timestamp(s.now()),
	})
	if err != nil {
		return err
	}
	return s.repo.IncrementCounter(ctx, postID, FieldComments)
}

func (s *Service) Share(ctx context.Context, postID store.ID, userID string) error {
	if userID == "" {
		return fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}
	err := s.repo.SaveShare(ctx, &Share{
		PostID:    postID,
		UserID:    userID,
		CreatedAt: store.Timestamp(s.now()),
	})
	if err != nil {
		return err
	}
	return s.repo.IncrementCounter(ctx, postID, FieldShares)
}

func (s *Service) Comments(ctx context.Context, postID store.ID) ([]Comment, error) {
	return s.repo.CommentsFor(ctx, postID)
}
