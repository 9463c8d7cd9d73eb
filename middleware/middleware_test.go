package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"devconnector/auth"
	"devconnector/config"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthRouter(tokens *auth.Tokens) *gin.Engine {
	r := gin.New()
	r.GET("/private", RequireAuth(tokens), func(c *gin.Context) {
		id, ok := UserID(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, id.Hex())
	})
	return r
}

func TestRequireAuth(t *testing.T) {
	tokens := auth.NewTokens(config.JWTConfig{Secret: "test-secret", Expiry: time.Hour})
	userID := primitive.NewObjectID()
	valid, _ := tokens.Issue(userID.Hex())
	notAnID, _ := tokens.Issue("u1")

	tests := []struct {
		name    string
		headers map[string]string
		status  int
		msg     string
	}{
		{"bearer", map[string]string{"Authorization": "Bearer " + valid}, http.StatusOK, ""},
		{"x-auth-token", map[string]string{"x-auth-token": valid}, http.StatusOK, ""},
		{"missing", nil, http.StatusUnauthorized, "No token, authorization denied"},
		{"bad scheme", map[string]string{"Authorization": "Basic abc"}, http.StatusUnauthorized, "Authorization header must be: Bearer <token>"},
		{"garbage", map[string]string{"Authorization": "Bearer nope"}, http.StatusUnauthorized, "Token is not valid"},
		{"non-object id subject", map[string]string{"Authorization": "Bearer " + notAnID}, http.StatusUnauthorized, "Token is not valid"},
	}

	r := newAuthRouter(tokens)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body.String())
			}
			if tt.status == http.StatusOK {
				if rec.Body.String() != userID.Hex() {
					t.Errorf("user id = %q", rec.Body.String())
				}
				return
			}

			var body struct {
				Errors []struct {
					Msg string `json:"msg"`
				} `json:"errors"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if len(body.Errors) != 1 || body.Errors[0].Msg != tt.msg {
				t.Errorf("errors = %+v, want %q", body.Errors, tt.msg)
			}
		})
	}
}

func TestRequireAuthExpired(t *testing.T) {
	tokens := auth.NewTokens(config.JWTConfig{Secret: "test-secret", Expiry: -time.Minute})
	signed, _ := tokens.Issue(primitive.NewObjectID().Hex())

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	newAuthRouter(tokens).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized || !bytes.Contains(rec.Body.Bytes(), []byte("Token has expired")) {
		t.Errorf("status = %d body = %s", rec.Code, rec.Body.String())
	}
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	r := gin.New()
	r.Use(RequestLogger(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, RequestID(c)) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))
	id := rec.Header().Get(RequestIDHeader)
	if id == "" || rec.Body.String() != id {
		t.Errorf("request id header %q, body %q", id, rec.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if got := rec.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("incoming request id not honoured: %q", got)
	}

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("got %d log entries, want 2", len(entries))
	}
	if entries[0].Level != zapcore.InfoLevel || entries[1].Level != zapcore.ErrorLevel {
		t.Errorf("levels = %v, %v", entries[0].Level, entries[1].Level)
	}
	if entries[1].ContextMap()["request_id"] != "abc-123" {
		t.Errorf("context = %v", entries[1].ContextMap())
	}
}
