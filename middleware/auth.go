package middleware

import (
	"errors"
	"net/http"
	"strings"

	"devconnector/apperr"
	"devconnector/auth"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const userIDKey = "userId"

// Verifier validates a bearer token and returns the user id it carries.
type Verifier interface {
	Verify(token string) (string, error)
}

// RequireAuth rejects requests without a valid token. The token is read from
// "Authorization: Bearer <token>", or from the x-auth-token header older
// clients send.
func RequireAuth(v Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := bearerToken(c)
		if err != nil {
			abort(c, apperr.Unauthorized(err.Error()))
			return
		}

		id, err := v.Verify(tokenString)
		if err != nil {
			msg := "Token is not valid"
			if errors.Is(err, auth.ErrExpired) {
				msg = "Token has expired"
			}
			abort(c, apperr.Unauthorized(msg))
			return
		}

		userID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			abort(c, apperr.Unauthorized("Token is not valid"))
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// UserID returns the id RequireAuth stored on the context.
func UserID(c *gin.Context) (primitive.ObjectID, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return primitive.NilObjectID, false
	}
	id, ok := v.(primitive.ObjectID)
	return id, ok
}

func bearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		if token := c.GetHeader("x-auth-token"); token != "" {
			return token, nil
		}
		return "", errors.New("No token, authorization denied")
	}

	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("Authorization header must be: Bearer <token>")
	}
	return parts[1], nil
}

func abort(c *gin.Context, e *apperr.Error) {
	c.AbortWithStatusJSON(e.Status, e.Body())
}

// NoRoute answers unknown paths with the API error body.
func NoRoute(c *gin.Context) {
	e := apperr.NotFound("Endpoint not found")
	c.JSON(http.StatusNotFound, e.Body())
}
