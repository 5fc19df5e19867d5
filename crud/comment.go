package crud

import (
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/nasahack25/airq/domain"
	"github.com/nasahack25/airq/errs"
)

// CommentService manages Comments.
// It implements the domain.CommentService interface.
type CommentService struct {
	commentValidator
}

// commentValidator runs validations on incoming Comment data.
// On success, it passes the data on to commentGorm.
// Otherwise, it returns the error of the validation that has failed.
type commentValidator struct {
	commentGorm
}

// commentGorm runs CRUD operations on the database using incoming Comment data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type commentGorm struct {
	db *gorm.DB
}

// NewCommentService returns an instance of CommentService.
func NewCommentService(db *gorm.DB) *CommentService {
	return &CommentService{
		commentValidator{
			commentGorm{
				db: db,
			},
		},
	}
}

// Ensure the CommentService struct properly implements the domain.CommentService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.CommentService = &CommentService{}

// CreateComment stamps the comment with the principal's identity and runs
// the validations needed for creating new Comment database records.
func (cv *commentValidator) CreateComment(principal domain.Principal, comment *domain.Comment) error {
	comment.AuthorID = principal.ID
	err := runCommentValFns(comment,
		cv.authorIdValid,
		cv.postIdValid,
		cv.contentMinLength,
		cv.contentMaxLength)
	if err != nil {
		return err
	}
	return cv.commentGorm.CreateComment(comment)
}

// runCommentValFns runs any number of functions of type commentValFn on the passed in Comment object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runCommentValFns(comment *domain.Comment, fns ...commentValFn) error {
	for _, fn := range fns {
		if err := fn(comment); err != nil {
			return err
		}
	}
	return nil
}

// A commentValFn is any function that takes in a pointer to a domain.Comment object and returns an error.
type commentValFn func(comment *domain.Comment) error

// authorIdValid ensures that the author's user ID is not empty.
func (cv *commentValidator) authorIdValid(comment *domain.Comment) error {
	if comment.AuthorID <= 0 {
		return errs.Errorf(errs.EUNAUTHORIZED, "A comment must have an author.")
	}
	return nil
}

// postIdValid ensures that the target post ID is not empty. Whether the
// post actually exists is checked inside the creating transaction, so a
// concurrent observer can never see a comment on a missing post.
func (cv *commentValidator) postIdValid(comment *domain.Comment) error {
	if comment.PostID <= 0 {
		return errs.Errorf(errs.ENOTFOUND, "The post does not exist.")
	}
	return nil
}

// contentMinLength makes sure that the comment's content is not empty.
func (cv *commentValidator) contentMinLength(comment *domain.Comment) error {
	contentStripped := strings.TrimSpace(comment.Content)
	if contentStripped == "" {
		return errs.FieldErrors(map[string]string{
			"content": "Comment cannot be empty.",
		})
	}
	return nil
}

// contentMaxLength makes sure that the comment's content does not exceed 200 characters.
func (cv *commentValidator) contentMaxLength(comment *domain.Comment) error {
	if utf8.RuneCountInString(comment.Content) > 200 {
		return errs.FieldErrors(map[string]string{
			"content": "Comment cannot exceed 200 characters.",
		})
	}
	return nil
}

// CreateComment inserts the Comment record and increments the parent post's
// comment_count by exactly 1 as one atomic unit. The increment doubles as
// the existence check: updating zero rows means there is no such post, and
// the transaction rolls back without inserting anything.
func (cg *commentGorm) CreateComment(comment *domain.Comment) error {
	err := cg.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Post{}).
			Where("id = ?", comment.PostID).
			UpdateColumn("comment_count", gorm.Expr("comment_count + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errs.Errorf(errs.ENOTFOUND, "The post does not exist.")
		}
		return tx.Create(comment).Error
	})
	if err != nil {
		return err
	}
	return cg.db.Preload("Author").First(comment, "id = ?", comment.ID).Error
}
