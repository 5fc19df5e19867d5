// Package client is the Go consumer of the community feed API. It holds the
// session cookie, mirrors the server's json shapes, and drives the
// optimistic like reconciler.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"strings"
	"time"
)

// Client calls the feed API. It keeps the remember-token cookie between
// calls, so one Client represents one signed-in user.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a Client for the API at baseURL.
func New(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Jar: jar},
	}, nil
}

// HTTP exposes the underlying http client, cookie jar included, for
// requests the typed API doesn't cover, like multipart uploads.
func (c *Client) HTTP() *http.Client {
	return c.http
}

// Author is the author summary embedded in posts and comments.
type Author struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
}

// Post mirrors the server's post shape.
type Post struct {
	ID           int       `json:"id"`
	Author       Author    `json:"author"`
	Content      string    `json:"content"`
	ImageURL     string    `json:"image_url,omitempty"`
	LikeCount    int       `json:"like_count"`
	CommentCount int       `json:"comment_count"`
	Comments     []Comment `json:"comments,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Comment mirrors the server's comment shape.
type Comment struct {
	ID        int       `json:"id"`
	PostID    int       `json:"post_id"`
	Author    Author    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
	Fields     map[string]string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d message=%s", e.StatusCode, e.Message)
}

// Register creates a new account and signs it in.
func (c *Client) Register(ctx context.Context, username, email, password string) error {
	body := map[string]string{"username": username, "email": email, "password": password}
	return c.do(ctx, http.MethodPost, "/register", body, nil)
}

// Login signs an existing account in.
func (c *Client) Login(ctx context.Context, email, password string) error {
	body := map[string]string{"email": email, "password": password}
	return c.do(ctx, http.MethodPost, "/login", body, nil)
}

// Logout invalidates the current session.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/logout", nil, nil)
}

// Feed fetches all posts, newest first.
func (c *Client) Feed(ctx context.Context) ([]Post, error) {
	var posts []Post
	if err := c.do(ctx, http.MethodGet, "/posts", nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// Post fetches a single post with its comments.
func (c *Client) Post(ctx context.Context, id int) (*Post, error) {
	var post Post
	if err := c.do(ctx, http.MethodGet, "/posts/"+strconv.Itoa(id), nil, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// CreatePost creates a text post.
func (c *Client) CreatePost(ctx context.Context, content string) (*Post, error) {
	var post Post
	body := map[string]string{"content": content}
	if err := c.do(ctx, http.MethodPost, "/posts", body, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// CreateComment adds a comment to a post.
func (c *Client) CreateComment(ctx context.Context, postID int, content string) (*Comment, error) {
	var comment Comment
	body := map[string]string{"content": content}
	path := fmt.Sprintf("/posts/%d/comments", postID)
	if err := c.do(ctx, http.MethodPost, path, body, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// ToggleLike flips the like relation between the signed-in user and the
// given post and returns the state the server resolved to.
func (c *Client) ToggleLike(ctx context.Context, postID int) (bool, error) {
	var result struct {
		Liked   bool   `json:"liked"`
		Message string `json:"message"`
	}
	path := fmt.Sprintf("/posts/%d/like", postID)
	if err := c.do(ctx, http.MethodPost, path, nil, &result); err != nil {
		return false, err
	}
	return result.Liked, nil
}

// do performs a json request against the API and decodes the response into
// out, if out is non-nil. Non-2xx responses come back as *APIError.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errBody struct {
			Message string            `json:"message"`
			Errors  map[string]string `json:"errors"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errBody); err == nil {
			apiErr.Message = errBody.Message
			apiErr.Fields = errBody.Errors
		}
		return apiErr
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
