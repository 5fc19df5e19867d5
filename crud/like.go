package crud

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nasahack25/airq/domain"
	"github.com/nasahack25/airq/errs"
)

// LikeService manages Likes.
// It implements the domain.LikeService interface.
type LikeService struct {
	likeValidator
}

// likeValidator runs validations on incoming Like data.
// On success, it passes the data on to likeGorm.
// Otherwise, it returns the error of the validation that has failed.
type likeValidator struct {
	likeGorm
}

// likeGorm runs CRUD operations on the database using incoming Like data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type likeGorm struct {
	db *gorm.DB
}

// NewLikeService returns an instance of LikeService.
func NewLikeService(db *gorm.DB) *LikeService {
	return &LikeService{
		likeValidator{
			likeGorm{
				db: db,
			},
		},
	}
}

// Ensure the LikeService struct properly implements the domain.LikeService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.LikeService = &LikeService{}

// ToggleLike runs validations needed for toggling a Like, then hands the
// toggle to likeGorm.
func (lv *likeValidator) ToggleLike(principal domain.Principal, postID int) (bool, error) {
	if !principal.Valid() {
		return false, errs.Errorf(errs.EUNAUTHORIZED, "A like must have a user.")
	}
	if postID <= 0 {
		return false, errs.Errorf(errs.ENOTFOUND, "The post does not exist.")
	}
	return lv.likeGorm.ToggleLike(principal, postID)
}

// ToggleLike flips the like relation for the given user and post. The whole
// toggle runs in a single transaction, and both branches are written as
// atomic conditional statements, so two concurrent toggles on the same
// (user, post) pair can never both observe the same starting state:
//
//   - The keyed delete reports how many rows it removed. Removing one means
//     the user liked the post, and the counter is decremented in the same
//     transaction.
//   - Otherwise an insert with ON CONFLICT DO NOTHING either creates the
//     like and increments the counter, or affects zero rows because a
//     concurrent toggle won the race. In that case the target state already
//     holds and the counter is left alone; the winner counted it.
//
// Toggling is not idempotent per request. Calling it twice flips state
// twice; correctness is defined over the sequence of toggles for a pair.
func (lg *likeGorm) ToggleLike(principal domain.Principal, postID int) (bool, error) {
	var liked bool
	err := lg.db.Transaction(func(tx *gorm.DB) error {
		var post domain.Post
		err := tx.Select("id").First(&post, "id = ?", postID).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return errs.Errorf(errs.ENOTFOUND, "The post does not exist.")
			}
			return err
		}

		res := tx.Where("user_id = ? AND post_id = ?", principal.ID, postID).Delete(&domain.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			liked = false
			return tx.Model(&domain.Post{}).
				Where("id = ?", postID).
				UpdateColumn("like_count", gorm.Expr("like_count - ?", res.RowsAffected)).Error
		}

		like := domain.Like{UserID: principal.ID, PostID: postID}
		ins := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
			DoNothing: true,
		}).Create(&like)
		if ins.Error != nil {
			return ins.Error
		}
		liked = true
		if ins.RowsAffected == 0 {
			// A concurrent toggle inserted the row first. The like already
			// exists and has been counted.
			return nil
		}
		return tx.Model(&domain.Post{}).
			Where("id = ?", postID).
			UpdateColumn("like_count", gorm.Expr("like_count + 1")).Error
	})
	if err != nil {
		return false, err
	}
	return liked, nil
}

// Likes takes a user ID and a post ID and returns a boolean expressing
// whether the given user likes the given post or not.
func (lg *likeGorm) Likes(userID, postID int) bool {
	err := lg.db.First(&domain.Like{}, "user_id = ? AND post_id = ?", userID, postID).Error
	return err == nil
}
