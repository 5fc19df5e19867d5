package domain

import "time"

// Post is a single entry in the community feed. LikeCount and CommentCount
// are denormalized counters; after every settled operation each one equals
// the number of Like / Comment rows referencing the post. The store is the
// only component allowed to touch them, and always in the same transaction
// as the row mutation they mirror.
type Post struct {
	ID       int    `json:"id"`
	AuthorID int    `json:"-" gorm:"notNull;index"`
	Author   User   `json:"author"`
	Content  string `json:"content"`

	// ImageURL is an opaque string produced by the media storage
	// collaborator. The store persists it verbatim.
	ImageURL string `json:"image_url,omitempty"`

	LikeCount    int `json:"like_count" gorm:"notNull;default:0"`
	CommentCount int `json:"comment_count" gorm:"notNull;default:0"`

	Comments []Comment `json:"comments,omitempty" gorm:"foreignKey:PostID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PostService is a set of methods to manipulate and work with the Post model.
type PostService interface {
	CreatePost(principal Principal, post *Post) error
}

// FeedService provides read-only projections over posts. It never locks and
// never mutates; it always reflects the latest committed state of the store.
type FeedService interface {
	Posts() ([]Post, error)
	PostByID(id int) (*Post, error)
}
