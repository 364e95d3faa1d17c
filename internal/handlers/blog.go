package handlers

import (
	"context"
	"errors"
	"slices"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/wastefinder/internal/datastore"
	"github.com/serroba/wastefinder/internal/directory"
	"go.uber.org/zap"
)

// BlogHandler serves blog posts and categories.
type BlogHandler struct {
	posts      *datastore.Collection[directory.BlogPost]
	categories *datastore.Collection[directory.BlogCategory]
	newID      IDGenerator
	now        Clock
	logger     *zap.Logger
}

// NewBlogHandler creates a new blog handler.
func NewBlogHandler(
	posts *datastore.Collection[directory.BlogPost],
	categories *datastore.Collection[directory.BlogCategory],
	newID IDGenerator,
	now Clock,
	logger *zap.Logger,
) *BlogHandler {
	return &BlogHandler{
		posts:      posts,
		categories: categories,
		newID:      newID,
		now:        now,
		logger:     logger,
	}
}

// ListPosts returns published posts, newest first. All includes drafts.
func (h *BlogHandler) ListPosts(ctx context.Context, req *ListBlogPostsRequest) (*ListBlogPostsResponse, error) {
	posts, err := h.posts.Get(ctx)
	if err != nil {
		h.logger.Error("failed to load blog posts", zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to load blog posts")
	}

	out := make([]directory.BlogPost, 0, len(posts))

	for _, p := range posts {
		if !req.All && !p.Published {
			continue
		}

		if req.Category != "" && p.CategoryID != req.Category {
			continue
		}

		out = append(out, p)
	}

	slices.SortStableFunc(out, func(a, b directory.BlogPost) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	resp := &ListBlogPostsResponse{}
	resp.Body.Posts = out

	return resp, nil
}

func (h *BlogHandler) GetPost(ctx context.Context, req *IDRequest) (*BlogPostResponse, error) {
	post, ok, err := h.posts.FindByID(ctx, req.ID)
	if err != nil {
		h.logger.Error("failed to load blog post", zap.String("id", req.ID), zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to load blog post")
	}

	if !ok {
		return nil, huma.Error404NotFound("blog post not found")
	}

	return &BlogPostResponse{Body: post}, nil
}

func (h *BlogHandler) CreatePost(ctx context.Context, req *CreateBlogPostRequest) (*BlogPostResponse, error) {
	in := req.Body
	now := h.now()
	post := directory.BlogPost{
		ID:         h.newID(),
		Title:      in.Title,
		Slug:       in.Slug,
		Excerpt:    in.Excerpt,
		Content:    in.Content,
		CategoryID: in.CategoryID,
		Author:     in.Author,
		Published:  in.Published,
		CreatedAt:  now,
	}

	if post.Published {
		post.PublishedAt = now
	}

	if err := h.posts.Add(ctx, post); err != nil {
		h.logger.Error("failed to save blog post", zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to save blog post")
	}

	return &BlogPostResponse{Body: post}, nil
}

func (h *BlogHandler) UpdatePost(ctx context.Context, req *UpdateBlogPostRequest) (*BlogPostResponse, error) {
	fields := patchFields(req.Body)
	if published, ok := fields["published"].(bool); ok && published {
		if _, set := fields["publishedAt"]; !set {
			fields["publishedAt"] = h.now()
		}
	}

	post, err := h.posts.Update(ctx, req.ID, fields)
	if err != nil {
		return nil, h.writeError(err, req.ID)
	}

	return &BlogPostResponse{Body: post}, nil
}

func (h *BlogHandler) DeletePost(ctx context.Context, req *IDRequest) (*struct{}, error) {
	if err := h.posts.Remove(ctx, req.ID); err != nil {
		return nil, h.writeError(err, req.ID)
	}

	return nil, nil
}

func (h *BlogHandler) ListCategories(ctx context.Context, _ *struct{}) (*ListBlogCategoriesResponse, error) {
	categories, err := h.categories.Get(ctx)
	if err != nil {
		h.logger.Error("failed to load blog categories", zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to load blog categories")
	}

	resp := &ListBlogCategoriesResponse{}
	resp.Body.Categories = nonNil(categories)

	return resp, nil
}

func (h *BlogHandler) writeError(err error, id string) error {
	if errors.Is(err, datastore.ErrNotFound) {
		return huma.Error404NotFound("blog post not found")
	}

	if errors.Is(err, datastore.ErrInvalidUpdate) {
		return huma.Error422UnprocessableEntity("invalid blog post fields")
	}

	h.logger.Error("failed to write blog post", zap.String("id", id), zap.Error(err))

	return huma.Error500InternalServerError("failed to save blog post")
}
