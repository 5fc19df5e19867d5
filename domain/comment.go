package domain

import "time"

// Comment belongs to exactly one Post. Comments are created once and never
// edited or deleted; creating one increments the parent post's CommentCount
// in the same unit of work.
type Comment struct {
	ID       int    `json:"id"`
	PostID   int    `json:"post_id" gorm:"notNull;index"`
	AuthorID int    `json:"-" gorm:"notNull;index"`
	Author   User   `json:"author"`
	Content  string `json:"content"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CommentService is a set of methods to manipulate and work with the Comment model.
type CommentService interface {
	CreateComment(principal Principal, comment *Comment) error
}
