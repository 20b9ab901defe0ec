package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/cors"

	"github.com/inkwell-app/inkwell/internal/auth"
	"github.com/inkwell-app/inkwell/internal/client"
	"github.com/inkwell-app/inkwell/internal/config"
	httpapp "github.com/inkwell-app/inkwell/internal/http"
	"github.com/inkwell-app/inkwell/internal/store/sqlite"
	"github.com/inkwell-app/inkwell/internal/token"
)

// CLIConfig holds the CLI client configuration persisted to disk.
type CLIConfig struct {
	BaseURL string `json:"base_url"`
	Email   string `json:"email"`
	Token   string `json:"token"`
}

func main() {
	if len(os.Args) < 2 {
		runServer()
		return
	}

	cmd := os.Args[1]

	if cmd == "-h" || cmd == "--help" || cmd == "help" {
		printUsage()
		return
	}

	if cmd == "-v" || cmd == "--version" || cmd == "version" {
		fmt.Println("inkwell v" + config.Version)
		return
	}

	if strings.HasPrefix(cmd, "-") {
		runServer()
		return
	}

	args := os.Args[2:]

	switch cmd {
	case "server", "serve":
		runServer()
	case "register":
		cmdRegister(args)
	case "login", "auth":
		cmdLogin(args)
	case "whoami", "status":
		cmdWhoami(args)
	case "post", "submit":
		cmdPost(args)
	case "read", "list":
		cmdRead(args)
	case "comment":
		cmdComment(args)
	case "update", "edit":
		cmdUpdate(args)
	case "delete", "rm":
		cmdDelete(args)
	case "stats":
		cmdStats(args)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`inkwell - Multi-user blog backend

Usage: inkwell <command> [options]

Quick Start:
  inkwell register --username ada --email ada@example.com --password s3cret
  inkwell login --email ada@example.com --password s3cret
  inkwell post --title "Hello" --content "First post"

Client Commands:
  register            Create an account
  login               Log in and store the bearer token
  whoami              Show the authenticated user
  post                Create a new post
  read                Read posts (all, or one with its comments)
  comment             Comment on a post
  update              Update one of your posts
  delete              Delete one of your posts (admins can delete any)
  stats               Show site statistics (admin only)

Server:
  server              Start the Inkwell server (default if no command)

Examples:
  inkwell post --title "Cool Article" --content "Some thoughts..."
  inkwell read                                      # List all posts
  inkwell read --post <id>                          # View post with comments
  inkwell comment --post <id> --content "Nice!"
  inkwell update --post <id> --title "New title"
  inkwell delete --post <id>

Environment Variables (server):
  INKWELL_ADDR           Listen address (default: :8080)
  INKWELL_DB             Database path (default: inkwell.db)
  INKWELL_JWT_SECRET     Token signing secret
  INKWELL_CORS_ORIGIN    Allowed CORS origin (default: *)`)
}

// ============================================================================
// SERVER
// ============================================================================

func runServer() {
	cfg := config.Load()

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer store.Close()

	tokens := token.NewManager(cfg.JWTSecret)
	authSvc := auth.NewService(store, tokens)

	server := httpapp.NewServer(store, authSvc, cfg)

	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.CORSOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	})

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           corsHandler(server),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("inkwell listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctx)
}

// ============================================================================
// CLIENT COMMANDS
// ============================================================================

func cmdRegister(args []string) {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	username := fs.String("username", "", "Username (required)")
	email := fs.String("email", "", "Email (required)")
	password := fs.String("password", "", "Password (required)")
	url := fs.String("url", "http://localhost:8080", "Inkwell server URL")
	fs.Parse(args)

	if *username == "" || *email == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "Error: --username, --email and --password are required")
		os.Exit(1)
	}

	c := client.New(strings.TrimSuffix(*url, "/"))
	if err := c.Register(*username, *email, *password); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg := CLIConfig{BaseURL: c.BaseURL, Email: *email}
	if err := saveCLIConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Registered '%s'\n", *username)
	fmt.Println("Next: inkwell login --email", *email, "--password <password>")
}

func cmdLogin(args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "Email (required if not saved)")
	password := fs.String("password", "", "Password (required)")
	url := fs.String("url", "", "Inkwell server URL")
	fs.Parse(args)

	cfg, _ := loadCLIConfig()
	if *url != "" {
		cfg.BaseURL = strings.TrimSuffix(*url, "/")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8080"
	}
	if *email != "" {
		cfg.Email = *email
	}
	if cfg.Email == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "Error: --email and --password are required")
		os.Exit(1)
	}

	c := client.New(cfg.BaseURL)
	if err := c.Login(cfg.Email, *password); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg.Token = c.Token
	if err := saveCLIConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Logged in as %s\n", cfg.Email)
}

func cmdWhoami(args []string) {
	c, err := loadAuthenticatedClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	user, err := c.Me()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("User:   %s\n", user.Username)
	fmt.Printf("Email:  %s\n", user.Email)
	fmt.Printf("ID:     %s\n", user.ID)
	if user.IsAdmin {
		fmt.Println("Role:   admin")
	}
}

func cmdPost(args []string) {
	fs := flag.NewFlagSet("post", flag.ExitOnError)
	title := fs.String("title", "", "Post title (required)")
	content := fs.String("content", "", "Post content (required)")
	fs.Parse(args)

	if *title == "" || *content == "" {
		fmt.Fprintln(os.Stderr, "Error: --title and --content are required")
		os.Exit(1)
	}

	c, err := loadAuthenticatedClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	post, err := c.CreatePost(*title, *content)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Posted '%s' (%s)\n", post.Title, post.ID)
}

func cmdRead(args []string) {
	fs := flag.NewFlagSet("read", flag.ExitOnError)
	postID := fs.String("post", "", "Show a single post with its comments")
	url := fs.String("url", "", "Inkwell server URL")
	fs.Parse(args)

	cfg, _ := loadCLIConfig()
	baseURL := cfg.BaseURL
	if *url != "" {
		baseURL = strings.TrimSuffix(*url, "/")
	}
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	c := client.New(baseURL)

	if *postID != "" {
		post, err := c.GetPost(*postID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("# %s\n", post.Title)
		fmt.Printf("by %s on %s\n\n", post.Author, post.CreatedAt.Format("2006-01-02"))
		fmt.Println(post.Content)

		comments, err := c.GetComments(*postID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if len(comments) > 0 {
			fmt.Printf("\n%d comment(s):\n", len(comments))
			for _, comment := range comments {
				fmt.Printf("  [%s] %s\n", comment.Author, comment.Content)
			}
		}
		return
	}

	posts, err := c.GetPosts()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(posts) == 0 {
		fmt.Println("No posts yet")
		return
	}
	for _, post := range posts {
		fmt.Printf("%s  %-30s  by %s\n", post.ID, post.Title, post.Author)
	}
}

func cmdComment(args []string) {
	fs := flag.NewFlagSet("comment", flag.ExitOnError)
	postID := fs.String("post", "", "Post ID (required)")
	content := fs.String("content", "", "Comment text (required)")
	fs.Parse(args)

	if *postID == "" || *content == "" {
		fmt.Fprintln(os.Stderr, "Error: --post and --content are required")
		os.Exit(1)
	}

	c, err := loadAuthenticatedClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	comment, err := c.AddComment(*postID, *content)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Comment added (%s)\n", comment.ID)
}

func cmdUpdate(args []string) {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	postID := fs.String("post", "", "Post ID (required)")
	title := fs.String("title", "", "New title")
	content := fs.String("content", "", "New content")
	fs.Parse(args)

	if *postID == "" {
		fmt.Fprintln(os.Stderr, "Error: --post is required")
		os.Exit(1)
	}
	if *title == "" && *content == "" {
		fmt.Fprintln(os.Stderr, "Error: provide --title and/or --content")
		os.Exit(1)
	}

	c, err := loadAuthenticatedClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var titlePtr, contentPtr *string
	if *title != "" {
		titlePtr = title
	}
	if *content != "" {
		contentPtr = content
	}

	post, err := c.UpdatePost(*postID, titlePtr, contentPtr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Updated '%s'\n", post.Title)
}

func cmdDelete(args []string) {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	postID := fs.String("post", "", "Post ID (required)")
	fs.Parse(args)

	if *postID == "" {
		fmt.Fprintln(os.Stderr, "Error: --post is required")
		os.Exit(1)
	}

	c, err := loadAuthenticatedClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := c.DeletePost(*postID); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Post deleted")
}

func cmdStats(args []string) {
	c, err := loadAuthenticatedClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	stats, err := c.AdminStats()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Users:    %d\n", stats.Users)
	fmt.Printf("Posts:    %d\n", stats.Posts)
	fmt.Printf("Comments: %d\n", stats.Comments)
}

// ============================================================================
// HELPERS
// ============================================================================

func cliConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".inkwell", "config.json")
}

func loadCLIConfig() (CLIConfig, error) {
	data, err := os.ReadFile(cliConfigPath())
	if err != nil {
		return CLIConfig{}, errors.New("not initialized - run 'inkwell register' or 'inkwell login'")
	}
	var cfg CLIConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return CLIConfig{}, err
	}
	return cfg, nil
}

func saveCLIConfig(cfg CLIConfig) error {
	path := cliConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, _ := json.MarshalIndent(cfg, "", "  ")
	return os.WriteFile(path, data, 0600)
}

func loadAuthenticatedClient() (*client.Client, error) {
	cfg, err := loadCLIConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Token == "" {
		return nil, errors.New("not authenticated - run 'inkwell login'")
	}

	c := client.New(cfg.BaseURL)
	c.Token = cfg.Token
	return c, nil
}
