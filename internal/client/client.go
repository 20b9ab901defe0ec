// Package client provides a Go client for the Inkwell API.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/inkwell-app/inkwell/internal/model"
)

// Client is an Inkwell API client. Login stores the bearer token on the
// client; subsequent requests send it automatically.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Token      string
}

// New creates a new Inkwell client.
func New(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Register creates a new account on the server.
func (c *Client) Register(username, email, password string) error {
	resp, err := c.doRequest(http.MethodPost, "/users/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return apiError("register", resp)
	}
	return nil
}

// Login exchanges credentials for a bearer token and stores it on the client.
func (c *Client) Login(email, password string) error {
	resp, err := c.doRequest(http.MethodPost, "/users/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError("login", resp)
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return err
	}
	c.Token = result.Token
	return nil
}

// IsAuthenticated returns true if the client holds a token.
func (c *Client) IsAuthenticated() bool {
	return c.Token != ""
}

// Me returns the authenticated user.
func (c *Client) Me() (*model.User, error) {
	resp, err := c.doRequest(http.MethodGet, "/users/user", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError("get user", resp)
	}

	var user model.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreatePost creates a new post authored by the authenticated user.
func (c *Client) CreatePost(title, content string) (*model.Post, error) {
	resp, err := c.doRequest(http.MethodPost, "/posts", map[string]string{
		"title":   title,
		"content": content,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, apiError("create post", resp)
	}

	var post model.Post
	if err := json.NewDecoder(resp.Body).Decode(&post); err != nil {
		return nil, err
	}
	return &post, nil
}

// GetPosts returns all posts, newest first.
func (c *Client) GetPosts() ([]model.Post, error) {
	resp, err := c.doRequest(http.MethodGet, "/posts", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError("list posts", resp)
	}

	var posts []model.Post
	if err := json.NewDecoder(resp.Body).Decode(&posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetPost returns a single post by id.
func (c *Client) GetPost(id string) (*model.Post, error) {
	resp, err := c.doRequest(http.MethodGet, "/posts/"+id, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError("get post", resp)
	}

	var post model.Post
	if err := json.NewDecoder(resp.Body).Decode(&post); err != nil {
		return nil, err
	}
	return &post, nil
}

// UpdatePost overwrites the provided fields on a post. Nil fields are
// left unchanged on the server.
func (c *Client) UpdatePost(id string, title, content *string) (*model.Post, error) {
	reqBody := map[string]any{}
	if title != nil {
		reqBody["title"] = *title
	}
	if content != nil {
		reqBody["content"] = *content
	}

	resp, err := c.doRequest(http.MethodPut, "/posts/"+id, reqBody)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError("update post", resp)
	}

	var post model.Post
	if err := json.NewDecoder(resp.Body).Decode(&post); err != nil {
		return nil, err
	}
	return &post, nil
}

// DeletePost deletes a post by id.
func (c *Client) DeletePost(id string) error {
	resp, err := c.doRequest(http.MethodDelete, "/posts/"+id, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError("delete post", resp)
	}
	return nil
}

// AddComment comments on a post.
func (c *Client) AddComment(postID, content string) (*model.Comment, error) {
	resp, err := c.doRequest(http.MethodPost, "/posts/"+postID+"/comments", map[string]string{
		"content": content,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, apiError("add comment", resp)
	}

	var comment model.Comment
	if err := json.NewDecoder(resp.Body).Decode(&comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// GetComments returns all comments on a post, oldest first.
func (c *Client) GetComments(postID string) ([]model.Comment, error) {
	resp, err := c.doRequest(http.MethodGet, "/posts/"+postID+"/comments", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError("list comments", resp)
	}

	var comments []model.Comment
	if err := json.NewDecoder(resp.Body).Decode(&comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// AdminStats returns site-wide counts. Requires an admin token.
func (c *Client) AdminStats() (*model.SiteStats, error) {
	resp, err := c.doRequest(http.MethodGet, "/admin/stats", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError("admin stats", resp)
	}

	var stats model.SiteStats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Version returns the server version string.
func (c *Client) Version() (string, error) {
	resp, err := c.doRequest(http.MethodGet, "/version", nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", apiError("version", resp)
	}

	var result struct {
		Version string `json:"version"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	return result.Version, nil
}

// doRequest performs an authenticated HTTP request.
func (c *Client) doRequest(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	return c.HTTPClient.Do(req)
}

func apiError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("%s failed (%d): %s", op, resp.StatusCode, string(body))
}
