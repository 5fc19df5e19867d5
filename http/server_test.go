package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/nasahack25/airq/client"
	"github.com/nasahack25/airq/crud"
	"github.com/nasahack25/airq/domain"
	"github.com/nasahack25/airq/storage"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(domain.User{}, domain.Post{}, domain.Comment{}, domain.Like{}))

	services, err := crud.NewServices(
		db,
		crud.WithUser("test-pepper", "test-hmac-key"),
		crud.WithPost(),
		crud.WithComment(),
		crud.WithLike(),
		crud.WithFeed(),
	)
	require.NoError(t, err)

	uploadDir := t.TempDir()
	backend, err := storage.NewLocal(uploadDir)
	require.NoError(t, err)
	images := storage.NewImageService(backend)

	server := NewServer(false, "http://localhost:3000", uploadDir, services, images)
	ts := httptest.NewServer(server.Router())
	t.Cleanup(ts.Close)
	return ts
}

func signedUpClient(t *testing.T, ts *httptest.Server, username string) *client.Client {
	t.Helper()
	c, err := client.New(ts.URL)
	require.NoError(t, err)
	err = c.Register(context.Background(), username, username+"@example.com", "super-secret")
	require.NoError(t, err)
	return c
}

func TestPostLifecycle(t *testing.T) {
	ts := testServer(t)
	ctx := context.Background()
	amara := signedUpClient(t, ts, "amara")
	bodhi := signedUpClient(t, ts, "bodhi")
	chen := signedUpClient(t, ts, "chen")

	// Amara posts into the feed.
	post, err := amara.CreatePost(ctx, "Air today is clear!")
	require.NoError(t, err)
	assert.Equal(t, "amara", post.Author.Username)
	assert.Equal(t, 0, post.LikeCount)
	assert.Equal(t, 0, post.CommentCount)

	// Bodhi likes it, then changes his mind.
	liked, err := bodhi.ToggleLike(ctx, post.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	feed, err := bodhi.Feed(ctx)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, 1, feed[0].LikeCount)

	liked, err = bodhi.ToggleLike(ctx, post.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	// Chen comments.
	comment, err := chen.CreateComment(ctx, post.ID, "Great!")
	require.NoError(t, err)
	assert.Equal(t, "chen", comment.Author.Username)

	detail, err := amara.Post(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, detail.LikeCount)
	assert.Equal(t, 1, detail.CommentCount)
	require.Len(t, detail.Comments, 1)
	assert.Equal(t, "Great!", detail.Comments[0].Content)
}

func TestFeedOrderedNewestFirst(t *testing.T) {
	ts := testServer(t)
	ctx := context.Background()
	amara := signedUpClient(t, ts, "amara")

	for _, content := range []string{"one", "two", "three"} {
		_, err := amara.CreatePost(ctx, content)
		require.NoError(t, err)
	}

	feed, err := amara.Feed(ctx)
	require.NoError(t, err)
	require.Len(t, feed, 3)
	for i := 1; i < len(feed); i++ {
		assert.False(t, feed[i].CreatedAt.After(feed[i-1].CreatedAt))
		assert.Greater(t, feed[i-1].ID, feed[i].ID)
	}
}

func TestMutationsRequireAuth(t *testing.T) {
	ts := testServer(t)
	ctx := context.Background()
	anonymous, err := client.New(ts.URL)
	require.NoError(t, err)

	_, err = anonymous.CreatePost(ctx, "who am I")
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)

	_, err = anonymous.ToggleLike(ctx, 1)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)

	// Reads stay public.
	feed, err := anonymous.Feed(ctx)
	require.NoError(t, err)
	assert.Empty(t, feed)
}

func TestValidationSurfacesFieldErrors(t *testing.T) {
	ts := testServer(t)
	ctx := context.Background()
	amara := signedUpClient(t, ts, "amara")

	_, err := amara.CreatePost(ctx, strings.Repeat("a", 281))
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Fields, "content")
}

func TestMissingPostReturns404(t *testing.T) {
	ts := testServer(t)
	ctx := context.Background()
	amara := signedUpClient(t, ts, "amara")

	_, err := amara.Post(ctx, 9999)
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)

	_, err = amara.CreateComment(ctx, 9999, "lost")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)

	_, err = amara.ToggleLike(ctx, 9999)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

// A minimal valid png file: the signature is all DetectContentType needs.
var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 512)...)

func TestCreatePostWithImage(t *testing.T) {
	ts := testServer(t)
	amara := signedUpClient(t, ts, "amara")

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	require.NoError(t, form.WriteField("content", "hazy skyline"))
	part, err := form.CreateFormFile("image", "skyline.png")
	require.NoError(t, err)
	_, err = part.Write(pngBytes)
	require.NoError(t, err)
	require.NoError(t, form.Close())

	// The multipart request goes through the signed-in client's transport,
	// so the session cookie rides along.
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/posts", &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", form.FormDataContentType())
	resp, err := amara.HTTP().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	feed, err := amara.Feed(context.Background())
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.True(t, strings.HasPrefix(feed[0].ImageURL, "/uploads/"))
	assert.Equal(t, "hazy skyline", feed[0].Content)

	// The stored image is served back with its own content type, not the
	// api's json default.
	imgResp, err := http.Get(ts.URL + feed[0].ImageURL)
	require.NoError(t, err)
	defer imgResp.Body.Close()
	assert.Equal(t, http.StatusOK, imgResp.StatusCode)
	assert.Equal(t, "image/png", imgResp.Header.Get("Content-Type"))
}

func TestPreflightRequests(t *testing.T) {
	ts := testServer(t)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/posts", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
}

func TestCreateIgnoresClientSuppliedFields(t *testing.T) {
	ts := testServer(t)
	amara := signedUpClient(t, ts, "amara")

	// A caller presetting record fields only gets the content through.
	payload := `{"id": 999, "content": "hello", "like_count": 50, "created_at": "2000-01-01T00:00:00Z"}`
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/posts", strings.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := amara.HTTP().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var post client.Post
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&post))
	assert.NotEqual(t, 999, post.ID)
	assert.Equal(t, "hello", post.Content)
	assert.Equal(t, 0, post.LikeCount)
	assert.NotEqual(t, 2000, post.CreatedAt.Year())

	payload = `{"id": 777, "post_id": 4242, "content": "hi"}`
	url := fmt.Sprintf("%s/posts/%d/comments", ts.URL, post.ID)
	req, err = http.NewRequest(http.MethodPost, url, strings.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err = amara.HTTP().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var comment client.Comment
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&comment))
	assert.NotEqual(t, 777, comment.ID)
	assert.Equal(t, post.ID, comment.PostID)
	assert.Equal(t, "hi", comment.Content)
}
