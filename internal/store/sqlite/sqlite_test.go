package sqlite

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/inkwell-app/inkwell/internal/model"
	"github.com/inkwell-app/inkwell/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	st, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return st
}

func createTestUser(t *testing.T, st *Store, username, email string) string {
	t.Helper()
	id, err := st.CreateUser(context.Background(), &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: "x",
		CreatedAt:    time.Now(),
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return id
}

func TestUserLifecycle(t *testing.T) {
	st := newTestStore(t)
	defer st.Close()

	id := createTestUser(t, st, "ada", "ada@example.com")

	got, err := st.GetUser(context.Background(), id)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.Username != "ada" || got.Email != "ada@example.com" {
		t.Fatalf("unexpected user: %+v", got)
	}
	if got.IsAdmin {
		t.Fatal("new user should not be admin")
	}

	byEmail, err := st.FindUserByEmail(context.Background(), "ada@example.com")
	if err != nil {
		t.Fatalf("find by email: %v", err)
	}
	if byEmail.ID != id {
		t.Fatalf("expected %s, got %s", id, byEmail.ID)
	}

	if _, err := st.GetUser(context.Background(), "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDuplicateEmailsAllowed(t *testing.T) {
	st := newTestStore(t)
	defer st.Close()

	first, err := st.CreateUser(context.Background(), &model.User{
		Username:     "first",
		Email:        "shared@example.com",
		PasswordHash: "x",
		CreatedAt:    time.Now().Add(-time.Hour),
	})
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	if _, err := st.CreateUser(context.Background(), &model.User{
		Username:     "second",
		Email:        "shared@example.com",
		PasswordHash: "x",
		CreatedAt:    time.Now(),
	}); err != nil {
		t.Fatalf("second user with same email should be allowed: %v", err)
	}

	got, err := st.FindUserByEmail(context.Background(), "shared@example.com")
	if err != nil {
		t.Fatalf("find by email: %v", err)
	}
	if got.ID != first {
		t.Fatalf("expected oldest user %s, got %s", first, got.ID)
	}
}

func TestPostLifecycle(t *testing.T) {
	st := newTestStore(t)
	defer st.Close()

	authorID := createTestUser(t, st, "ada", "ada@example.com")

	post := model.Post{
		Title:     "Hello",
		Content:   "First post",
		AuthorID:  authorID,
		CreatedAt: time.Now(),
	}
	id, err := st.CreatePost(context.Background(), &post)
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	if id != post.ID {
		t.Fatalf("returned id %s does not match post.ID %s", id, post.ID)
	}

	got, err := st.GetPost(context.Background(), id)
	if err != nil {
		t.Fatalf("get post: %v", err)
	}
	if got.Title != "Hello" || got.AuthorID != authorID {
		t.Fatalf("unexpected post: %+v", got)
	}
	if got.Author != "ada" {
		t.Fatalf("expected resolved author name, got %q", got.Author)
	}

	if err := st.UpdatePost(context.Background(), id, "Hello v2", "Edited"); err != nil {
		t.Fatalf("update post: %v", err)
	}
	got, _ = st.GetPost(context.Background(), id)
	if got.Title != "Hello v2" || got.Content != "Edited" {
		t.Fatalf("update not applied: %+v", got)
	}

	if err := st.DeletePost(context.Background(), id); err != nil {
		t.Fatalf("delete post: %v", err)
	}
	if _, err := st.GetPost(context.Background(), id); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := st.DeletePost(context.Background(), id); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double delete, got %v", err)
	}
	if err := st.UpdatePost(context.Background(), id, "x", "y"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound updating deleted post, got %v", err)
	}
}

func TestListPostsNewestFirst(t *testing.T) {
	st := newTestStore(t)
	defer st.Close()

	authorID := createTestUser(t, st, "ada", "ada@example.com")

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		_, err := st.CreatePost(context.Background(), &model.Post{
			Title:     fmt.Sprintf("post %d", i),
			Content:   "c",
			AuthorID:  authorID,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("create post %d: %v", i, err)
		}
	}

	posts, err := st.ListPosts(context.Background())
	if err != nil {
		t.Fatalf("list posts: %v", err)
	}
	if len(posts) != 3 {
		t.Fatalf("expected 3 posts, got %d", len(posts))
	}
	if posts[0].Title != "post 2" || posts[2].Title != "post 0" {
		t.Fatalf("posts not newest first: %s ... %s", posts[0].Title, posts[2].Title)
	}
}

func TestCommentsSurviveWithoutPost(t *testing.T) {
	st := newTestStore(t)
	defer st.Close()

	authorID := createTestUser(t, st, "ada", "ada@example.com")

	// Comment on an id that never existed as a post.
	_, err := st.CreateComment(context.Background(), &model.Comment{
		PostID:    "no-such-post",
		Content:   "shouting into the void",
		AuthorID:  authorID,
		CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("comment on missing post should succeed: %v", err)
	}

	comments, err := st.ListCommentsByPost(context.Background(), "no-such-post")
	if err != nil {
		t.Fatalf("list comments: %v", err)
	}
	if len(comments) != 1 {
		t.Fatalf("expected 1 comment, got %d", len(comments))
	}
	if comments[0].Author != "ada" {
		t.Fatalf("expected resolved author, got %q", comments[0].Author)
	}

	// Deleting a post leaves its comments behind.
	postID, err := st.CreatePost(context.Background(), &model.Post{
		Title:     "doomed",
		Content:   "c",
		AuthorID:  authorID,
		CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	if _, err := st.CreateComment(context.Background(), &model.Comment{
		PostID:    postID,
		Content:   "orphan-to-be",
		AuthorID:  authorID,
		CreatedAt: time.Now(),
	}); err != nil {
		t.Fatalf("create comment: %v", err)
	}
	if err := st.DeletePost(context.Background(), postID); err != nil {
		t.Fatalf("delete post: %v", err)
	}
	orphans, err := st.ListCommentsByPost(context.Background(), postID)
	if err != nil {
		t.Fatalf("list comments after delete: %v", err)
	}
	if len(orphans) != 1 {
		t.Fatalf("expected orphaned comment to remain, got %d", len(orphans))
	}
}

func TestCommentsOldestFirst(t *testing.T) {
	st := newTestStore(t)
	defer st.Close()

	authorID := createTestUser(t, st, "ada", "ada@example.com")

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		_, err := st.CreateComment(context.Background(), &model.Comment{
			PostID:    "p1",
			Content:   fmt.Sprintf("comment %d", i),
			AuthorID:  authorID,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("create comment %d: %v", i, err)
		}
	}

	comments, err := st.ListCommentsByPost(context.Background(), "p1")
	if err != nil {
		t.Fatalf("list comments: %v", err)
	}
	if comments[0].Content != "comment 0" || comments[2].Content != "comment 2" {
		t.Fatalf("comments not oldest first: %s ... %s", comments[0].Content, comments[2].Content)
	}
}

func TestSiteStats(t *testing.T) {
	st := newTestStore(t)
	defer st.Close()

	authorID := createTestUser(t, st, "ada", "ada@example.com")
	createTestUser(t, st, "grace", "grace@example.com")

	postID, _ := st.CreatePost(context.Background(), &model.Post{
		Title: "t", Content: "c", AuthorID: authorID, CreatedAt: time.Now(),
	})
	_, _ = st.CreateComment(context.Background(), &model.Comment{
		PostID: postID, Content: "c", AuthorID: authorID, CreatedAt: time.Now(),
	})

	stats, err := st.GetSiteStats(context.Background())
	if err != nil {
		t.Fatalf("get stats: %v", err)
	}
	if stats.Users != 2 || stats.Posts != 1 || stats.Comments != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}
