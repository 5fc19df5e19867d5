package crud

import (
	"gorm.io/gorm"

	"github.com/nasahack25/airq/domain"
	"github.com/nasahack25/airq/errs"
)

// FeedService provides the read-only projections over posts. It has no
// validator layer because it never writes; every method reflects the latest
// committed state of the store.
// It implements the domain.FeedService interface.
type FeedService struct {
	feedGorm
}

// feedGorm runs read queries on the database.
type feedGorm struct {
	db *gorm.DB
}

// NewFeedService returns an instance of FeedService.
func NewFeedService(db *gorm.DB) *FeedService {
	return &FeedService{
		feedGorm{
			db: db,
		},
	}
}

// Ensure the FeedService struct properly implements the domain.FeedService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.FeedService = &FeedService{}

// Posts retrieves all posts with their author summaries and counters,
// newest first. Ties on created_at break by id descending, so the ordering
// is deterministic and stable.
func (fg *feedGorm) Posts() ([]domain.Post, error) {
	var posts []domain.Post
	err := fg.db.
		Preload("Author").
		Order("created_at DESC, id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// PostByID retrieves a single post with its author, its counters, and its
// comments in the order they were written (created_at ascending, ties by id
// ascending), each with their own author summary.
func (fg *feedGorm) PostByID(id int) (*domain.Post, error) {
	var post domain.Post
	err := fg.db.
		Preload("Author").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at ASC, comments.id ASC")
		}).
		Preload("Comments.Author").
		First(&post, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.Errorf(errs.ENOTFOUND, "Post not found.")
		}
		return nil, err
	}
	return &post, nil
}
