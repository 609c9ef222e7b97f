// internal/domain/content/service_test.go
package content

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/agency-backend/internal/config"
	"github.com/your-org/agency-backend/internal/pkg/email"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&BlogCategory{},
		&BlogTag{},
		&BlogPost{},
		&Comment{},
		&Testimonial{},
		&TeamMember{},
		&ContactMessage{},
		&Subscriber{},
	))

	cfg := &config.Config{}
	return NewService(db, cfg, email.NewEmailService(cfg)), db
}

func seedPost(t *testing.T, db *gorm.DB, title, slug string, published bool) *BlogPost {
	t.Helper()
	post := BlogPost{Title: title, Slug: slug, Body: "body", IsPublished: published}
	if published {
		now := time.Now().UTC()
		post.PublishedAt = &now
	}
	require.NoError(t, db.Create(&post).Error)
	return &post
}

func TestListPostsPublishedOnly(t *testing.T) {
	svc, db := newTestService(t)

	seedPost(t, db, "Published", "published", true)
	seedPost(t, db, "Draft", "draft", false)

	resp, err := svc.ListPosts(1, "", "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Total)
	require.Len(t, resp.Posts, 1)
	assert.Equal(t, "published", resp.Posts[0].Slug)
}

func TestListPostsByTag(t *testing.T) {
	svc, db := newTestService(t)

	tag := BlogTag{Name: "Design", Slug: "design"}
	require.NoError(t, db.Create(&tag).Error)

	tagged := seedPost(t, db, "Tagged", "tagged", true)
	require.NoError(t, db.Model(tagged).Association("Tags").Append(&tag))
	seedPost(t, db, "Untagged", "untagged", true)

	resp, err := svc.ListPosts(1, "", "design")
	require.NoError(t, err)
	require.Len(t, resp.Posts, 1)
	assert.Equal(t, "tagged", resp.Posts[0].Slug)
}

func TestGetPostHidesUnapprovedComments(t *testing.T) {
	svc, db := newTestService(t)

	post := seedPost(t, db, "Commented", "commented", true)

	_, err := svc.AddComment("commented", &CommentRequest{
		Name: "Reader", Email: "reader@example.com", Body: "Nice work",
	})
	require.NoError(t, err)

	fetched, err := svc.GetPost("commented")
	require.NoError(t, err)
	assert.Empty(t, fetched.Comments)

	var comment Comment
	require.NoError(t, db.Where("blog_post_id = ?", post.ID).First(&comment).Error)
	require.NoError(t, svc.ApproveComment(comment.ID))

	fetched, err = svc.GetPost("commented")
	require.NoError(t, err)
	assert.Len(t, fetched.Comments, 1)
}

func TestGetPostUnpublished(t *testing.T) {
	svc, db := newTestService(t)

	seedPost(t, db, "Draft", "draft", false)
	_, err := svc.GetPost("draft")
	assert.Error(t, err)
}

func TestSubmitContactStoresMessage(t *testing.T) {
	svc, db := newTestService(t)

	msg, err := svc.SubmitContact(context.Background(), &ContactRequest{
		Name:    "Ayşe",
		Email:   "AYSE@Example.com",
		Subject: "Quote",
		Message: "Need a website",
	})
	require.NoError(t, err)
	assert.Equal(t, "ayse@example.com", msg.Email)

	var count int64
	require.NoError(t, db.Model(&ContactMessage{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSubscribeLifecycle(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	sub, err := svc.Subscribe(ctx, "Reader@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, "reader@example.com", sub.Email)
	assert.True(t, sub.IsActive)

	_, err = svc.Subscribe(ctx, "reader@example.com")
	assert.ErrorIs(t, err, ErrAlreadySubscribed)

	require.NoError(t, svc.Unsubscribe("reader@example.com"))

	// Re-subscribing a deactivated address reactivates it
	sub, err = svc.Subscribe(ctx, "reader@example.com")
	require.NoError(t, err)
	assert.Equal(t, "reader@example.com", sub.Email)

	assert.Error(t, svc.Unsubscribe("never@example.com"))
}

func TestCreateAndUpdatePost(t *testing.T) {
	svc, db := newTestService(t)

	tag := BlogTag{Name: "News", Slug: "news"}
	require.NoError(t, db.Create(&tag).Error)

	post, err := svc.CreatePost(1, &PostRequest{
		Title: "Launch", Slug: "launch", Body: "We launched",
		TagIDs: []uint{tag.ID}, IsPublished: true,
	})
	require.NoError(t, err)
	assert.NotNil(t, post.PublishedAt)

	fetched, err := svc.GetPost("launch")
	require.NoError(t, err)
	assert.Len(t, fetched.Tags, 1)

	// Update clears tags when none are sent
	_, err = svc.UpdatePost(post.ID, &PostRequest{
		Title: "Launch v2", Slug: "launch", Body: "We launched, twice",
		IsPublished: true,
	})
	require.NoError(t, err)

	fetched, err = svc.GetPost("launch")
	require.NoError(t, err)
	assert.Equal(t, "Launch v2", fetched.Title)
	assert.Empty(t, fetched.Tags)
}
