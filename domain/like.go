package domain

import "time"

// Like represents a many-to-many relationship between a User and a Post.
// Its existence for a (user, post) pair is the single source of truth for
// "user X likes post Y"; the composite unique index makes a duplicate pair
// impossible at the storage layer. Likes are created and destroyed by
// toggling, never updated.
type Like struct {
	ID     int `json:"id"`
	UserID int `json:"user_id" gorm:"notNull;uniqueIndex:idx_likes_user_post"`
	PostID int `json:"post_id" gorm:"notNull;uniqueIndex:idx_likes_user_post"`

	CreatedAt time.Time `json:"created_at"`
}

// LikeService is a set of methods to manipulate and work with the Like model.
type LikeService interface {
	// ToggleLike flips the like relation for the given principal and post
	// and returns the resulting state. The check and the mutation run as a
	// single atomic unit together with the counter adjustment.
	ToggleLike(principal Principal, postID int) (liked bool, err error)
	// Likes reports whether the given user currently likes the given post.
	Likes(userID, postID int) bool
}
