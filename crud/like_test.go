package crud

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nasahack25/airq/domain"
	"github.com/nasahack25/airq/errs"
)

func TestToggleLike(t *testing.T) {
	db := testDB(t)
	ls := NewLikeService(db)
	author := seedUser(t, db, "amara")
	liker := seedUser(t, db, "bodhi")
	post := seedPost(t, db, author, "Air today is clear!")
	principal := domain.Principal{ID: liker.ID}

	liked, err := ls.ToggleLike(principal, post.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, 1, reloadPost(t, db, post.ID).LikeCount)
	assert.True(t, ls.Likes(liker.ID, post.ID))

	liked, err = ls.ToggleLike(principal, post.ID)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, 0, reloadPost(t, db, post.ID).LikeCount)
	assert.False(t, ls.Likes(liker.ID, post.ID))
}

// Toggling twice in sequence returns both the relation and the counter to
// their starting values, whatever those were.
func TestToggleLikePairIdempotence(t *testing.T) {
	db := testDB(t)
	ls := NewLikeService(db)
	author := seedUser(t, db, "amara")
	liker := seedUser(t, db, "bodhi")
	other := seedUser(t, db, "chen")
	post := seedPost(t, db, author, "double tap")

	// Start from a non-zero baseline so the test catches absolute writes.
	_, err := ls.ToggleLike(domain.Principal{ID: other.ID}, post.ID)
	require.NoError(t, err)

	before := reloadPost(t, db, post.ID).LikeCount
	principal := domain.Principal{ID: liker.ID}
	_, err = ls.ToggleLike(principal, post.ID)
	require.NoError(t, err)
	_, err = ls.ToggleLike(principal, post.ID)
	require.NoError(t, err)

	assert.Equal(t, before, reloadPost(t, db, post.ID).LikeCount)
	assert.False(t, ls.Likes(liker.ID, post.ID))
}

func TestToggleLikeMissingPost(t *testing.T) {
	db := testDB(t)
	ls := NewLikeService(db)
	liker := seedUser(t, db, "bodhi")

	_, err := ls.ToggleLike(domain.Principal{ID: liker.ID}, 9999)
	require.Error(t, err)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
}

func TestToggleLikeRequiresPrincipal(t *testing.T) {
	db := testDB(t)
	ls := NewLikeService(db)
	author := seedUser(t, db, "amara")
	post := seedPost(t, db, author, "anonymous likes")

	_, err := ls.ToggleLike(domain.Principal{}, post.ID)
	require.Error(t, err)
	assert.Equal(t, errs.EUNAUTHORIZED, errs.ErrorCode(err))
}

// N concurrent toggles from the same user on the same post must converge to
// the parity of N, with the counter never drifting from the surviving rows.
func TestToggleLikeConcurrentConvergence(t *testing.T) {
	db := testDB(t)
	ls := NewLikeService(db)
	author := seedUser(t, db, "amara")
	liker := seedUser(t, db, "bodhi")
	post := seedPost(t, db, author, "race me")
	principal := domain.Principal{ID: liker.ID}

	const n = 7
	var wg sync.WaitGroup
	errCh := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ls.ToggleLike(principal, post.ID)
			errCh <- err
		}()
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		require.NoError(t, err)
	}

	rows := countRows(t, db, &domain.Like{}, post.ID)
	stored := reloadPost(t, db, post.ID)
	assert.Equal(t, rows, stored.LikeCount, "counter must equal surviving like rows")
	assert.Equal(t, 1, rows, "odd number of toggles must end liked")
	assert.True(t, ls.Likes(liker.ID, post.ID))
}

// No sequence of toggles may ever produce two like rows for one pair.
func TestToggleLikeUniqueness(t *testing.T) {
	db := testDB(t)
	ls := NewLikeService(db)
	author := seedUser(t, db, "amara")
	liker := seedUser(t, db, "bodhi")
	post := seedPost(t, db, author, "only once")
	principal := domain.Principal{ID: liker.ID}

	for i := 0; i < 9; i++ {
		_, err := ls.ToggleLike(principal, post.ID)
		require.NoError(t, err)
	}

	var count int64
	err := db.Model(&domain.Like{}).
		Where("user_id = ? AND post_id = ?", liker.ID, post.ID).
		Count(&count).Error
	require.NoError(t, err)
	assert.LessOrEqual(t, count, int64(1))
	assert.Equal(t, int(count), reloadPost(t, db, post.ID).LikeCount)
}

// Likes on different posts are independent units of work.
func TestToggleLikeIndependentPosts(t *testing.T) {
	db := testDB(t)
	ls := NewLikeService(db)
	author := seedUser(t, db, "amara")
	liker := seedUser(t, db, "bodhi")
	first := seedPost(t, db, author, "first")
	second := seedPost(t, db, author, "second")
	principal := domain.Principal{ID: liker.ID}

	_, err := ls.ToggleLike(principal, first.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, reloadPost(t, db, first.ID).LikeCount)
	assert.Equal(t, 0, reloadPost(t, db, second.ID).LikeCount)
	assert.False(t, ls.Likes(liker.ID, second.ID))
}
