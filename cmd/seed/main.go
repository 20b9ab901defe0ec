package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"

	"github.com/inkwell-app/inkwell/internal/client"
)

var users = []struct {
	username string
	email    string
}{
	{"ada", "ada@example.com"},
	{"grace", "grace@example.com"},
	{"linus", "linus@example.com"},
	{"margaret", "margaret@example.com"},
	{"dennis", "dennis@example.com"},
}

var posts = []struct {
	title   string
	content string
}{
	{"Welcome to Inkwell", "A small blog backend with accounts, posts and comments. This is the first post."},
	{"Why I still write plain SQL", "ORMs are convenient until they aren't. Here is how far you can get with database/sql and a handful of helpers."},
	{"Notes on bearer tokens", "A token in the Authorization header, a claims struct, and a shared secret. That is most of what a small API needs."},
	{"Migrating a blog off a managed platform", "Export, transform, import. The hard part is the redirects, not the data."},
	{"Comments are harder than posts", "Flat comments are easy. Threads, moderation and spam are where the real work starts."},
	{"On writing shorter posts", "Most drafts improve when you delete the first paragraph."},
	{"A weekend with SQLite", "One file, no server, and it handles more traffic than almost any side project will ever see."},
	{"What I learned shipping a JSON API", "Consistent error shapes matter more than clever routing."},
}

var comments = []string{
	"Great post, thanks for writing this up.",
	"I disagree with the premise here, but it is well argued.",
	"Has anyone tried this in production? Curious about the edge cases.",
	"This matches my experience almost exactly.",
	"Would love a follow-up on this topic.",
	"Short and to the point. More of this please.",
	"The example in the middle section really made it click for me.",
	"Saving this for later, very useful.",
	"I tried this over the weekend and it worked great.",
	"Interesting take. I wonder how it scales.",
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Inkwell server URL")
	password := flag.String("password", "seed-password", "Password for seeded accounts")
	flag.Parse()

	log.Printf("Seeding %s...", *baseURL)

	// Register all users and log them in
	var clients []*client.Client
	for _, u := range users {
		c := client.New(*baseURL)
		if err := c.Register(u.username, u.email, *password); err != nil {
			log.Fatalf("register %s: %v", u.username, err)
		}
		if err := c.Login(u.email, *password); err != nil {
			log.Fatalf("login %s: %v", u.username, err)
		}
		log.Printf("registered %s", u.username)
		clients = append(clients, c)
	}

	// Create posts from random users
	var postIDs []string
	for _, p := range posts {
		idx := rand.Intn(len(clients))
		post, err := clients[idx].CreatePost(p.title, p.content)
		if err != nil {
			log.Printf("create post failed: %v", err)
			continue
		}
		postIDs = append(postIDs, post.ID)
		log.Printf("posted %q (by %s)", p.title, users[idx].username)
	}

	// Scatter comments across posts
	count := 0
	for _, text := range comments {
		if len(postIDs) == 0 {
			break
		}
		postID := postIDs[rand.Intn(len(postIDs))]
		c := clients[rand.Intn(len(clients))]
		if _, err := c.AddComment(postID, text); err != nil {
			log.Printf("comment failed: %v", err)
			continue
		}
		count++
	}

	fmt.Printf("Seeded %d users, %d posts, %d comments\n", len(clients), len(postIDs), count)
}
