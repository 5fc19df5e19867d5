package crud

import (
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/nasahack25/airq/domain"
	"github.com/nasahack25/airq/errs"
)

// PostService manages Posts.
// It implements the domain.PostService interface.
type PostService struct {
	postValidator
}

// postValidator runs validations on incoming Post data.
// On success, it passes the data on to postGorm.
// Otherwise, it returns the error of the validation that has failed.
type postValidator struct {
	postGorm
}

// postGorm runs CRUD operations on the database using incoming Post data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type postGorm struct {
	db *gorm.DB
}

// NewPostService returns an instance of PostService.
func NewPostService(db *gorm.DB) *PostService {
	return &PostService{
		postValidator{
			postGorm{
				db: db,
			},
		},
	}
}

// Ensure the PostService struct properly implements the domain.PostService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.PostService = &PostService{}

// CreatePost stamps the post with the principal's identity and runs the
// validations needed for creating new Post database records. New posts
// always start with both counters at zero.
func (pv *postValidator) CreatePost(principal domain.Principal, post *domain.Post) error {
	post.AuthorID = principal.ID
	post.LikeCount = 0
	post.CommentCount = 0
	err := runPostValFns(post,
		pv.authorIdValid,
		pv.contentMinLength,
		pv.contentMaxLength)
	if err != nil {
		return err
	}
	return pv.postGorm.CreatePost(post)
}

// runPostValFns runs any number of functions of type postValFn on the passed in Post object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runPostValFns(post *domain.Post, fns ...postValFn) error {
	for _, fn := range fns {
		if err := fn(post); err != nil {
			return err
		}
	}
	return nil
}

// A postValFn is any function that takes in a pointer to a domain.Post object and returns an error.
type postValFn func(post *domain.Post) error

// authorIdValid ensures that the author's user ID is not empty.
func (pv *postValidator) authorIdValid(post *domain.Post) error {
	if post.AuthorID <= 0 {
		return errs.Errorf(errs.EUNAUTHORIZED, "A post must have an author.")
	}
	return nil
}

// contentMinLength makes sure that the post's content is not empty.
func (pv *postValidator) contentMinLength(post *domain.Post) error {
	contentStripped := strings.TrimSpace(post.Content)
	if contentStripped == "" {
		return errs.FieldErrors(map[string]string{
			"content": "Content cannot be empty.",
		})
	}
	return nil
}

// contentMaxLength makes sure that the post's content does not exceed 280 characters.
func (pv *postValidator) contentMaxLength(post *domain.Post) error {
	if utf8.RuneCountInString(post.Content) > 280 {
		return errs.FieldErrors(map[string]string{
			"content": "Content cannot exceed 280 characters.",
		})
	}
	return nil
}

// CreatePost stores the data from the Post object in a new database record.
// On success, it eager-loads (preloads) the author relation, so that the
// json response displays the post's author summary.
func (pg *postGorm) CreatePost(post *domain.Post) error {
	if err := pg.db.Create(post).Error; err != nil {
		return err
	}
	return pg.db.Preload("Author").First(post, "id = ?", post.ID).Error
}
