package handlers

import (
	"context"
	"errors"
	"net/http"

	"devconnector/apperr"
	"devconnector/models"
	"devconnector/subdoc"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const postNotFound = "Post not found"

type PostRequest struct {
	Text string `json:"text" validate:"required" msg:"Text is required"`
}

// CreatePost handles POST /api/posts.
func (h *Handler) CreatePost(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	var req PostRequest
	if err := bind(c, &req); err != nil {
		h.fail(c, err)
		return
	}

	ctx, cancel := h.context(c)
	defer cancel()

	author, err := h.users.FindByID(ctx, userID)
	if err != nil {
		h.fail(c, notFoundAs(err, "User not found"))
		return
	}

	post := &models.Post{
		User:     userID,
		Text:     req.Text,
		Name:     author.Name,
		Avatar:   author.Avatar,
		Likes:    []models.Like{},
		Comments: []models.Comment{},
		Date:     h.now(),
	}
	if err := h.posts.Create(ctx, post); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// ListPosts handles GET /api/posts. Newest first.
func (h *Handler) ListPosts(c *gin.Context) {
	ctx, cancel := h.context(c)
	defer cancel()

	posts, err := h.posts.List(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// GetPost handles GET /api/posts/:id.
func (h *Handler) GetPost(c *gin.Context) {
	ctx, cancel := h.context(c)
	defer cancel()

	post, err := h.loadPost(ctx, c)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// DeletePost handles DELETE /api/posts/:id. Only the author may delete.
func (h *Handler) DeletePost(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	ctx, cancel := h.context(c)
	defer cancel()

	post, err := h.loadPost(ctx, c)
	if err != nil {
		h.fail(c, err)
		return
	}
	if post.User != userID {
		h.fail(c, apperr.Forbidden("User not authorized"))
		return
	}
	if err := h.posts.Delete(ctx, post.ID); err != nil {
		h.fail(c, notFoundAs(err, postNotFound))
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "Post removed"})
}

// LikePost handles PUT /api/posts/like/:id and responds with the likes.
func (h *Handler) LikePost(c *gin.Context) {
	h.editPost(c, func(ctx context.Context, p *models.Post, userID primitive.ObjectID) (any, error) {
		likes, err := subdoc.ToggleLike(p.Likes, userID)
		if errors.Is(err, subdoc.ErrAlreadyLiked) {
			return nil, apperr.Conflict("Post already liked")
		}
		p.Likes = likes
		return p.Likes, nil
	})
}

// UnlikePost handles PUT /api/posts/unlike/:id and responds with the likes.
func (h *Handler) UnlikePost(c *gin.Context) {
	h.editPost(c, func(ctx context.Context, p *models.Post, userID primitive.ObjectID) (any, error) {
		likes, err := subdoc.RemoveLike(p.Likes, userID)
		if errors.Is(err, subdoc.ErrNotLiked) {
			return nil, apperr.Conflict("Post has not yet been liked")
		}
		p.Likes = likes
		return p.Likes, nil
	})
}

// CommentOnPost handles POST /api/posts/comment/:id and responds with the
// comments.
func (h *Handler) CommentOnPost(c *gin.Context) {
	var req PostRequest
	if err := bind(c, &req); err != nil {
		h.fail(c, err)
		return
	}

	h.editPost(c, func(ctx context.Context, p *models.Post, userID primitive.ObjectID) (any, error) {
		author, err := h.users.FindByID(ctx, userID)
		if err != nil {
			return nil, notFoundAs(err, "User not found")
		}
		p.Comments = subdoc.Insert(p.Comments, models.Comment{
			User:   userID,
			Text:   req.Text,
			Name:   author.Name,
			Avatar: author.Avatar,
			Date:   h.now(),
		})
		return p.Comments, nil
	})
}

// DeleteComment handles DELETE /api/posts/comment/:id/:comment_id. Only the
// comment's author may remove it.
func (h *Handler) DeleteComment(c *gin.Context) {
	commentID, err := objectIDParam(c, "comment_id", "Comment does not exist")
	if err != nil {
		h.fail(c, err)
		return
	}

	h.editPost(c, func(ctx context.Context, p *models.Post, userID primitive.ObjectID) (any, error) {
		comment, ok := subdoc.Find(p.Comments, commentID)
		if !ok {
			return nil, apperr.NotFound("Comment does not exist")
		}
		if comment.User != userID {
			return nil, apperr.Forbidden("User not authorized")
		}
		p.Comments, _ = subdoc.RemoveByEntryID(p.Comments, commentID)
		return p.Comments, nil
	})
}

// editPost loads the post named by :id, lets edit change it, saves it and
// responds with whatever edit returned.
func (h *Handler) editPost(c *gin.Context, edit func(ctx context.Context, p *models.Post, userID primitive.ObjectID) (any, error)) {
	userID, err := currentUser(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	ctx, cancel := h.context(c)
	defer cancel()

	post, err := h.loadPost(ctx, c)
	if err != nil {
		h.fail(c, err)
		return
	}

	out, err := edit(ctx, post, userID)
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.posts.Save(ctx, post); err != nil {
		h.fail(c, notFoundAs(err, postNotFound))
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) loadPost(ctx context.Context, c *gin.Context) (*models.Post, error) {
	id, err := objectIDParam(c, "id", postNotFound)
	if err != nil {
		return nil, err
	}
	post, err := h.posts.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, postNotFound)
	}
	return post, nil
}
