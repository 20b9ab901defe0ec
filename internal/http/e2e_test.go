package httpapp_test

import (
	"net/http/httptest"
	"testing"

	"github.com/inkwell-app/inkwell/internal/auth"
	"github.com/inkwell-app/inkwell/internal/client"
	"github.com/inkwell-app/inkwell/internal/config"
	httpapp "github.com/inkwell-app/inkwell/internal/http"
	"github.com/inkwell-app/inkwell/internal/store/sqlite"
	"github.com/inkwell-app/inkwell/internal/token"
)

// TestEndToEnd drives the server through the client package, the same
// path the CLI and the seeder take.
func TestEndToEnd(t *testing.T) {
	st, err := sqlite.Open("file:e2e_test?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	tokens := token.NewManager("e2e-secret")
	authSvc := auth.NewService(st, tokens)
	server := httpapp.NewServer(st, authSvc, config.Config{Version: config.Version})

	ts := httptest.NewServer(server)
	defer ts.Close()

	ada := client.New(ts.URL)
	if err := ada.Register("ada", "ada@example.com", "s3cret"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := ada.Login("ada@example.com", "s3cret"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if !ada.IsAuthenticated() {
		t.Fatal("expected client to hold a token after login")
	}

	me, err := ada.Me()
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if me.Username != "ada" {
		t.Fatalf("expected ada, got %s", me.Username)
	}

	post, err := ada.CreatePost("Hello", "First post")
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	if post.AuthorID != me.ID {
		t.Fatalf("post author %s does not match user %s", post.AuthorID, me.ID)
	}

	grace := client.New(ts.URL)
	if err := grace.Register("grace", "grace@example.com", "hopper"); err != nil {
		t.Fatalf("register grace: %v", err)
	}
	if err := grace.Login("grace@example.com", "hopper"); err != nil {
		t.Fatalf("login grace: %v", err)
	}

	if _, err := grace.AddComment(post.ID, "Nice first post"); err != nil {
		t.Fatalf("add comment: %v", err)
	}

	comments, err := grace.GetComments(post.ID)
	if err != nil {
		t.Fatalf("get comments: %v", err)
	}
	if len(comments) != 1 || comments[0].Author != "grace" {
		t.Fatalf("unexpected comments: %+v", comments)
	}

	// Grace cannot touch Ada's post.
	title := "Hijacked"
	if _, err := grace.UpdatePost(post.ID, &title, nil); err == nil {
		t.Fatal("expected update of another user's post to fail")
	}
	if err := grace.DeletePost(post.ID); err == nil {
		t.Fatal("expected delete of another user's post to fail")
	}

	// Ada edits and then removes her post.
	newTitle := "Hello again"
	updated, err := ada.UpdatePost(post.ID, &newTitle, nil)
	if err != nil {
		t.Fatalf("update post: %v", err)
	}
	if updated.Title != "Hello again" || updated.Content != "First post" {
		t.Fatalf("unexpected updated post: %+v", updated)
	}

	if err := ada.DeletePost(post.ID); err != nil {
		t.Fatalf("delete post: %v", err)
	}
	if _, err := ada.GetPost(post.ID); err == nil {
		t.Fatal("expected get of deleted post to fail")
	}

	posts, err := ada.GetPosts()
	if err != nil {
		t.Fatalf("get posts: %v", err)
	}
	if len(posts) != 0 {
		t.Fatalf("expected no posts left, got %d", len(posts))
	}

	version, err := ada.Version()
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if version != config.Version {
		t.Fatalf("expected version %s, got %s", config.Version, version)
	}
}
