package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmdiary/internal/service/auth"
)

const sessionKey = "session"

// AuthHandler exposes register/login/logout for one user realm.
type AuthHandler struct {
	manager  *auth.Manager
	onLogout func()
	logger   *zap.Logger
}

// NewAuthHandler constructs the auth HTTP adapter. onLogout, when set, runs
// after a successful logout.
func NewAuthHandler(manager *auth.Manager, onLogout func(), logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{manager: manager, onLogout: onLogout, logger: logger}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account and signs it in.
func (h *AuthHandler) Register(c *gin.Context) {
	var req auth.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, fmt.Errorf("%w: invalid request body", errBadRequest))
		return
	}

	sess, err := h.manager.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": sess.User.Profile()})
}

// Login signs an existing account in.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, fmt.Errorf("%w: invalid request body", errBadRequest))
		return
	}

	sess, err := h.manager.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": sess.User.Profile()})
}

// Logout ends the current session.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.manager.Logout(c.Request.Context()); err != nil {
		respondError(c, h.logger, err)
		return
	}
	if h.onLogout != nil {
		h.onLogout()
	}
	c.Status(http.StatusNoContent)
}

// Me returns the signed-in user.
func (h *AuthHandler) Me(c *gin.Context) {
	sess, err := h.manager.Current()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": sess.User.Profile()})
}

// RequireSession rejects requests made while signed out and stores the
// session in the gin context.
func (h *AuthHandler) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := h.manager.Current()
		if err != nil {
			respondError(c, h.logger, err)
			c.Abort()
			return
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

func sessionFrom(c *gin.Context) *auth.Session {
	return c.MustGet(sessionKey).(*auth.Session)
}
