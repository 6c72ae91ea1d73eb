package api

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"farm-records-backend/internal/mw"
	"farm-records-backend/internal/store"
)

type registerRequest struct {
	Username string  `json:"username" binding:"required,min=3,max=50"`
	Password string  `json:"password" binding:"required,min=6,max=72"`
	Email    *string `json:"email" binding:"omitempty,email,max=255"`
	FarmName *string `json:"farmName" binding:"omitempty,max=255"`
	Location *string `json:"location" binding:"omitempty,max=255"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// dummyHash is compared against when the username does not exist so that
// both failure paths cost one bcrypt comparison.
var dummyHash = sync.OnceValue(func() []byte {
	h, _ := bcrypt.GenerateFromPassword([]byte("farm-records-dummy-password"), bcrypt.DefaultCost)
	return h
})

func invalidCredentials(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
}

// Register handles POST /api/auth/register.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	issues, ok := decodeJSON(c, &req)
	if !ok {
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if !hasIssue(issues, "username") {
		switch n := utf8.RuneCountInString(req.Username); {
		case n == 0:
			issues = append(issues, FieldIssue{Field: "username", Message: "is required"})
		case n < 3:
			issues = append(issues, FieldIssue{Field: "username", Message: "must be at least 3 characters"})
		}
	}
	if len(issues) > 0 {
		validationFailed(c, issues...)
		return
	}
	ctx := c.Request.Context()

	existing, err := h.store.GetUserByUsername(ctx, req.Username)
	if err != nil {
		internalError(c, err)
		return
	}
	if existing != nil {
		validationFailed(c, FieldIssue{Field: "username", Message: "username already exists"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.hashCost)
	if err != nil {
		internalError(c, err)
		return
	}

	user, err := h.store.CreateUser(ctx, store.NewUser{
		Username:     req.Username,
		PasswordHash: string(hash),
		Email:        req.Email,
		FarmName:     req.FarmName,
		Location:     req.Location,
	})
	if errors.Is(err, store.ErrDuplicateUsername) {
		validationFailed(c, FieldIssue{Field: "username", Message: "username already exists"})
		return
	}
	if err != nil {
		internalError(c, err)
		return
	}

	if err := h.sessions.Start(c, user.ID); err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.store.GetUserByUsername(c.Request.Context(), strings.TrimSpace(req.Username))
	if err != nil {
		internalError(c, err)
		return
	}
	if user == nil {
		_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(req.Password))
		invalidCredentials(c)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		invalidCredentials(c)
		return
	}

	if err := h.sessions.Start(c, user.ID); err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Logout handles POST /api/auth/logout.
func (h *Handler) Logout(c *gin.Context) {
	h.sessions.End(c)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me handles GET /api/auth/me.
func (h *Handler) Me(c *gin.Context) {
	user, err := h.store.GetUser(c.Request.Context(), mw.UserID(c))
	if err != nil {
		internalError(c, err)
		return
	}
	if user == nil {
		notFound(c, "user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
