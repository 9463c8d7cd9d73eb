package handlers

import (
	"context"
	"errors"
	"io"
	"time"

	"devconnector/apperr"
	"devconnector/database"
	"devconnector/github"
	"devconnector/middleware"
	"devconnector/models"
	"devconnector/profile"
	"devconnector/validate"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const requestTimeout = 10 * time.Second

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindSummaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.UserSummary, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type ProfileStore interface {
	FindByUser(ctx context.Context, userID primitive.ObjectID) (*models.Profile, error)
	List(ctx context.Context) ([]models.Profile, error)
	Upsert(ctx context.Context, userID primitive.ObjectID, fields profile.Fields) (*models.Profile, error)
	Save(ctx context.Context, p *models.Profile) error
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) error
}

type PostStore interface {
	Create(ctx context.Context, p *models.Post) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	List(ctx context.Context) ([]models.Post, error)
	Save(ctx context.Context, p *models.Post) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) error
}

type TokenIssuer interface {
	Issue(userID string) (string, error)
}

type RepoFetcher interface {
	Repos(ctx context.Context, username string) ([]github.Repo, error)
}

type Handler struct {
	users    UserStore
	profiles ProfileStore
	posts    PostStore
	tokens   TokenIssuer
	github   RepoFetcher
	logger   *zap.Logger
	now      func() time.Time
}

func New(users UserStore, profiles ProfileStore, posts PostStore, tokens TokenIssuer, gh RepoFetcher, logger *zap.Logger) *Handler {
	return &Handler{
		users:    users,
		profiles: profiles,
		posts:    posts,
		tokens:   tokens,
		github:   gh,
		logger:   logger,
		now:      time.Now,
	}
}

func (h *Handler) context(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

// fail writes err as the response. Errors outside the taxonomy are logged
// and reported to the client as a bare 500.
func (h *Handler) fail(c *gin.Context, err error) {
	e := apperr.From(err)
	if e.Kind == apperr.KindInternal || e.Kind == apperr.KindUpstream {
		h.logger.Error("request failed",
			zap.String("request_id", middleware.RequestID(c)),
			zap.String("route", c.FullPath()),
			zap.Error(err))
	}
	c.AbortWithStatusJSON(e.Status, e.Body())
}

// currentUser is the id placed on the context by middleware.RequireAuth.
func currentUser(c *gin.Context) (primitive.ObjectID, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return primitive.NilObjectID, apperr.Unauthorized("No token, authorization denied")
	}
	return id, nil
}

// bind decodes the JSON body into req and runs its validate tags.
func bind(c *gin.Context, req any) error {
	// an empty body still gets per-field messages
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		return apperr.ValidationFailed([]apperr.FieldError{{Msg: "Invalid request body"}})
	}
	return validate.Check(req)
}

// objectIDParam parses a path parameter. A malformed id is reported with
// notFound, the same as an id that matches nothing.
func objectIDParam(c *gin.Context, name, notFound string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		return primitive.NilObjectID, apperr.NotFound(notFound)
	}
	return id, nil
}

// notFoundAs turns database.ErrNotFound into a NotFound with msg.
func notFoundAs(err error, msg string) error {
	if errors.Is(err, database.ErrNotFound) {
		return apperr.NotFound(msg)
	}
	return err
}
