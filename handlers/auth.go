package handlers

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"devconnector/apperr"
	"devconnector/auth"
	"devconnector/database"
	"devconnector/models"

	"github.com/gin-gonic/gin"
)

type RegisterRequest struct {
	Name     string `json:"name" validate:"required" msg:"Name is required"`
	Email    string `json:"email" validate:"email" msg:"Please include a valid email"`
	Password string `json:"password" validate:"min=6" msg:"Please enter a password with 6 or more characters"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"email" msg:"Please include a valid email"`
	Password string `json:"password" validate:"required" msg:"Password is required"`
}

// Register handles POST /api/users.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := bind(c, &req); err != nil {
		h.fail(c, err)
		return
	}

	ctx, cancel := h.context(c)
	defer cancel()

	email := strings.ToLower(strings.TrimSpace(req.Email))
	_, err := h.users.FindByEmail(ctx, email)
	if err == nil {
		h.fail(c, apperr.Conflict("User already exists"))
		return
	}
	if !errors.Is(err, database.ErrNotFound) {
		h.fail(c, err)
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		h.fail(c, fmt.Errorf("hash password: %w", err))
		return
	}

	user := &models.User{
		Name:     req.Name,
		Email:    email,
		Password: hashed,
		Avatar:   gravatarURL(email),
		Date:     h.now(),
	}
	if err := h.users.Create(ctx, user); err != nil {
		// lost a race with a concurrent registration of the same email
		if errors.Is(err, database.ErrDuplicate) {
			h.fail(c, apperr.Conflict("User already exists"))
			return
		}
		h.fail(c, err)
		return
	}

	h.respondWithToken(c, user)
}

// Login handles POST /api/auth.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := bind(c, &req); err != nil {
		h.fail(c, err)
		return
	}

	ctx, cancel := h.context(c)
	defer cancel()

	invalid := apperr.ValidationFailed([]apperr.FieldError{{Msg: "Invalid Credentials"}})

	user, err := h.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if errors.Is(err, database.ErrNotFound) {
		h.fail(c, invalid)
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	ok, err := auth.CheckPassword(user.Password, req.Password)
	if err != nil {
		h.fail(c, fmt.Errorf("check password: %w", err))
		return
	}
	if !ok {
		h.fail(c, invalid)
		return
	}

	h.respondWithToken(c, user)
}

// Me handles GET /api/auth.
func (h *Handler) Me(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	ctx, cancel := h.context(c)
	defer cancel()

	user, err := h.users.FindByID(ctx, userID)
	if err != nil {
		h.fail(c, notFoundAs(err, "User not found"))
		return
	}

	// Password is excluded by its json tag.
	c.JSON(http.StatusOK, user)
}

func (h *Handler) respondWithToken(c *gin.Context, user *models.User) {
	token, err := h.tokens.Issue(user.ID.Hex())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// gravatarURL is the 200px, PG-rated avatar for email, falling back to the
// "mystery man" silhouette.
func gravatarURL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return "https://www.gravatar.com/avatar/" + hex.EncodeToString(sum[:]) + "?s=200&r=pg&d=mm"
}
