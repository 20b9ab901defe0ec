package store

import (
	"context"
	"errors"

	"github.com/inkwell-app/inkwell/internal/model"
)

var ErrNotFound = errors.New("not found")

type Store interface {
	UserStore
	PostStore
	CommentStore
	GetSiteStats(ctx context.Context) (model.SiteStats, error)
	Close() error
}

type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) (string, error)
	GetUser(ctx context.Context, id string) (model.User, error)
	FindUserByEmail(ctx context.Context, email string) (model.User, error)
}

type PostStore interface {
	CreatePost(ctx context.Context, post *model.Post) (string, error)
	GetPost(ctx context.Context, id string) (model.Post, error)
	ListPosts(ctx context.Context) ([]model.Post, error)
	UpdatePost(ctx context.Context, id, title, content string) error
	DeletePost(ctx context.Context, id string) error
}

type CommentStore interface {
	CreateComment(ctx context.Context, comment *model.Comment) (string, error)
	ListCommentsByPost(ctx context.Context, postID string) ([]model.Comment, error)
}
