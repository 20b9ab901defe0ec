package httpapp

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/inkwell-app/inkwell/internal/auth"
	"github.com/inkwell-app/inkwell/internal/config"
	"github.com/inkwell-app/inkwell/internal/model"
	"github.com/inkwell-app/inkwell/internal/store"

	_ "github.com/inkwell-app/inkwell/docs" // swagger docs

	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/swaggo/swag"
)

type Server struct {
	store store.Store
	auth  *auth.Service
	cfg   config.Config
}

func NewServer(store store.Store, authSvc *auth.Service, cfg config.Config) *Server {
	return &Server{store: store, auth: authSvc, cfg: cfg}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/swagger/") {
		httpSwagger.WrapHandler.ServeHTTP(w, r)
		return
	}

	segments := splitPath(r.URL.Path)

	switch {
	case len(segments) == 2 && segments[0] == "users" && segments[1] == "register":
		if r.Method == http.MethodPost {
			s.handleRegister(w, r)
			return
		}
	case len(segments) == 2 && segments[0] == "users" && segments[1] == "login":
		if r.Method == http.MethodPost {
			s.handleLogin(w, r)
			return
		}
	case len(segments) == 2 && segments[0] == "users" && segments[1] == "user":
		if r.Method == http.MethodGet {
			s.handleCurrentUser(w, r)
			return
		}
	case len(segments) == 1 && segments[0] == "posts":
		if r.Method == http.MethodPost {
			s.handleCreatePost(w, r)
			return
		}
		if r.Method == http.MethodGet {
			s.handleListPosts(w, r)
			return
		}
	case len(segments) == 2 && segments[0] == "posts":
		if r.Method == http.MethodGet {
			s.handleGetPost(w, r, segments[1])
			return
		}
		if r.Method == http.MethodPut {
			s.handleUpdatePost(w, r, segments[1])
			return
		}
		if r.Method == http.MethodDelete {
			s.handleDeletePost(w, r, segments[1])
			return
		}
	case len(segments) == 3 && segments[0] == "posts" && segments[2] == "comments":
		if r.Method == http.MethodPost {
			s.handleAddComment(w, r, segments[1])
			return
		}
		if r.Method == http.MethodGet {
			s.handleListComments(w, r, segments[1])
			return
		}
	case len(segments) == 2 && segments[0] == "admin" && segments[1] == "stats":
		if r.Method == http.MethodGet {
			s.handleAdminStats(w, r)
			return
		}
	case len(segments) == 1 && segments[0] == "version":
		if r.Method == http.MethodGet {
			s.handleVersion(w, r)
			return
		}
	case len(segments) == 1 && segments[0] == "openapi.json":
		if r.Method == http.MethodGet {
			s.serveOpenAPIJSON(w, r)
			return
		}
	default:
		notFound(w)
		return
	}

	methodNotAllowed(w)
}

// handleRegister godoc
//
//	@Summary		Register a new user
//	@Description	Create a user account. New accounts are never admins.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			user	body		object{username=string,email=string,password=string}	true	"Registration data"
//	@Success		201		{object}	map[string]string	"Confirmation message"
//	@Failure		400		{object}	map[string]string	"Missing fields"
//	@Failure		500		{object}	map[string]string	"Store error"
//	@Router			/users/register [post]
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, errors.New("username, email and password required"))
		return
	}

	if _, err := s.auth.Register(r.Context(), req.Username, req.Email, req.Password); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "user registered successfully"})
}

// handleLogin godoc
//
//	@Summary		Log in
//	@Description	Exchange email and password for a bearer token.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			credentials	body		object{email=string,password=string}	true	"Login credentials"
//	@Success		200			{object}	map[string]string	"Bearer token"
//	@Failure		401			{object}	map[string]string	"Invalid credentials"
//	@Router			/users/login [post]
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	tok, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": tok})
}

// handleCurrentUser godoc
//
//	@Summary		Get the authenticated user
//	@Description	Return the caller's user record, without the password hash.
//	@Tags			Users
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	model.User
//	@Failure		401	{object}	map[string]string	"Invalid token"
//	@Failure		403	{object}	map[string]string	"Missing token"
//	@Router			/users/user [get]
func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireAuth(w, r)
	if !ok {
		return
	}

	user, err := s.store.GetUser(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// handleCreatePost godoc
//
//	@Summary		Create a post
//	@Description	Create a post authored by the authenticated user.
//	@Tags			Posts
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			post	body		object{title=string,content=string}	true	"Post data"
//	@Success		201		{object}	model.Post
//	@Failure		400		{object}	map[string]string	"Missing fields"
//	@Failure		500		{object}	map[string]string	"Store error"
//	@Router			/posts [post]
func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireAuth(w, r)
	if !ok {
		return
	}

	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Title == "" || req.Content == "" {
		writeError(w, http.StatusBadRequest, errors.New("title and content required"))
		return
	}

	post := model.Post{
		Title:     req.Title,
		Content:   req.Content,
		AuthorID:  identity.UserID,
		CreatedAt: time.Now(),
	}
	if _, err := s.store.CreatePost(r.Context(), &post); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

// handleListPosts godoc
//
//	@Summary		List all posts
//	@Description	Return every post with the author username resolved. No pagination.
//	@Tags			Posts
//	@Produce		json
//	@Success		200	{array}		model.Post
//	@Failure		500	{object}	map[string]string	"Store error"
//	@Router			/posts [get]
func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := s.store.ListPosts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if posts == nil {
		posts = []model.Post{}
	}
	writeJSON(w, http.StatusOK, posts)
}

// handleGetPost godoc
//
//	@Summary		Get a post
//	@Description	Return a single post by id with the author username resolved.
//	@Tags			Posts
//	@Produce		json
//	@Param			id	path		string	true	"Post ID"
//	@Success		200	{object}	model.Post
//	@Failure		404	{object}	map[string]string	"Post not found"
//	@Router			/posts/{id} [get]
func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request, id string) {
	post, err := s.store.GetPost(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, errors.New("post not found"))
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// handleUpdatePost godoc
//
//	@Summary		Update a post
//	@Description	Overwrite the provided fields on a post you own. A missing post
//	@Description	and someone else's post both yield 403.
//	@Tags			Posts
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string								true	"Post ID"
//	@Param			post	body		object{title=string,content=string}	true	"Fields to overwrite"
//	@Success		200		{object}	model.Post
//	@Failure		403		{object}	map[string]string	"Unauthorized or absent"
//	@Router			/posts/{id} [put]
func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request, id string) {
	identity, ok := s.requireAuth(w, r)
	if !ok {
		return
	}

	post, err := s.store.GetPost(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Absent and not-owned are deliberately indistinguishable.
			writeError(w, http.StatusForbidden, errors.New("unauthorized"))
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if post.AuthorID != identity.UserID {
		writeError(w, http.StatusForbidden, errors.New("unauthorized"))
		return
	}

	// Allow-listed fields only: authorId and createdAt are not
	// reachable from the payload.
	var req struct {
		Title   *string `json:"title"`
		Content *string `json:"content"`
	}
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Title != nil {
		post.Title = *req.Title
	}
	if req.Content != nil {
		post.Content = *req.Content
	}

	if err := s.store.UpdatePost(r.Context(), post.ID, post.Title, post.Content); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// handleDeletePost godoc
//
//	@Summary		Delete a post
//	@Description	Delete a post as its author or as an admin. Comments on the
//	@Description	post are not removed.
//	@Tags			Posts
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Post ID"
//	@Success		200	{object}	map[string]string	"Confirmation message"
//	@Failure		403	{object}	map[string]string	"Unauthorized or absent"
//	@Router			/posts/{id} [delete]
func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request, id string) {
	identity, ok := s.requireAuth(w, r)
	if !ok {
		return
	}

	post, err := s.store.GetPost(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusForbidden, errors.New("unauthorized"))
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if post.AuthorID != identity.UserID && !identity.IsAdmin {
		writeError(w, http.StatusForbidden, errors.New("unauthorized"))
		return
	}

	if err := s.store.DeletePost(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "post deleted"})
}

// handleAddComment godoc
//
//	@Summary		Comment on a post
//	@Description	Add a comment. The post id is not checked for existence.
//	@Tags			Comments
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			postId	path		string					true	"Post ID"
//	@Param			comment	body		object{content=string}	true	"Comment data"
//	@Success		201		{object}	model.Comment
//	@Failure		400		{object}	map[string]string	"Missing fields"
//	@Failure		500		{object}	map[string]string	"Store error"
//	@Router			/posts/{postId}/comments [post]
func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request, postID string) {
	identity, ok := s.requireAuth(w, r)
	if !ok {
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, errors.New("content required"))
		return
	}

	comment := model.Comment{
		PostID:    postID,
		Content:   req.Content,
		AuthorID:  identity.UserID,
		CreatedAt: time.Now(),
	}
	if _, err := s.store.CreateComment(r.Context(), &comment); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

// handleListComments godoc
//
//	@Summary		List comments on a post
//	@Description	Return all comments for a post id, oldest first, with author
//	@Description	usernames resolved. The post itself is not checked for existence.
//	@Tags			Comments
//	@Produce		json
//	@Param			postId	path		string	true	"Post ID"
//	@Success		200		{array}		model.Comment
//	@Failure		500		{object}	map[string]string	"Store error"
//	@Router			/posts/{postId}/comments [get]
func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request, postID string) {
	comments, err := s.store.ListCommentsByPost(r.Context(), postID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if comments == nil {
		comments = []model.Comment{}
	}
	writeJSON(w, http.StatusOK, comments)
}

// handleAdminStats godoc
//
//	@Summary		Site statistics
//	@Description	Counts of users, posts and comments. Admin only.
//	@Tags			Admin
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	model.SiteStats
//	@Failure		403	{object}	map[string]string	"Admins only"
//	@Router			/admin/stats [get]
func (s *Server) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}

	stats, err := s.store.GetSiteStats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.cfg.Version})
}

func (s *Server) serveOpenAPIJSON(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_, _ = w.Write([]byte(doc))
}

// requireAuth extracts and verifies the bearer token. A missing header is
// 403 and a bad token is 401, mirroring the original API contract.
func (s *Server) requireAuth(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		writeError(w, http.StatusForbidden, errors.New("a token is required for authentication"))
		return auth.Identity{}, false
	}
	bearer := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	identity, err := s.auth.Authenticate(bearer)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err)
		return auth.Identity{}, false
	}
	return identity, true
}

// requireAdmin runs requireAuth and then enforces the admin flag.
func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	identity, ok := s.requireAuth(w, r)
	if !ok {
		return auth.Identity{}, false
	}
	if !identity.IsAdmin {
		writeError(w, http.StatusForbidden, errors.New("access denied: admins only"))
		return auth.Identity{}, false
	}
	return identity, true
}

func readJSON(body io.ReadCloser, dest any) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dest)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"error": err.Error()})
}

func notFound(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, errors.New("not found"))
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
