package httpHandler

import (
	"net/http"
	"time"

	"lung-server/usecases"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	accounts  *usecases.AccountUseCase
	cookieTTL time.Duration
}

// NewAuthHandler sets login cookies to expire together with the token.
func NewAuthHandler(accounts *usecases.AccountUseCase, cookieTTL time.Duration) *AuthHandler {
	return &AuthHandler{accounts: accounts, cookieTTL: cookieTTL}
}

type SignUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUp handles POST /signup
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing fields"})
		return
	}

	session, err := h.accounts.SignUp(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondError(c, err, http.StatusBadRequest)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully",
		"user_id": session.User.ID,
		"token":   session.Token,
	})
}

// Login handles POST /login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing fields"})
		return
	}

	session, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err, http.StatusBadRequest)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(authCookie, session.Token, int(h.cookieTTL/time.Second), "", "", false, true)

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user_id": session.User.ID,
		"token":   session.Token,
	})
}
