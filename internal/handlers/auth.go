package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/t-azam747/SecureRelief-sub003/internal/middleware"
	"github.com/t-azam747/SecureRelief-sub003/internal/models"
	"github.com/t-azam747/SecureRelief-sub003/internal/service"
)

// userResponse is the public projection returned with a session.
type userResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Status string `json:"status"`
}

type profileResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	WalletAddress string `json:"walletAddress"`
	Role          string `json:"role"`
	Status        string `json:"status"`
}

type authResponse struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	User         userResponse `json:"user"`
}

type precheckRequest struct {
	Email string `json:"email"`
}

func (h HandlerSet) Precheck(c *gin.Context) {
	var req precheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c)
		return
	}

	result, err := h.authService.Precheck(c.Request.Context(), req.Email)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"walletAddress": result.WalletAddress,
		"nonce":         result.Nonce,
	})
}

type nonceRequest struct {
	WalletAddress string `json:"walletAddress"`
}

func (h HandlerSet) Nonce(c *gin.Context) {
	var req nonceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c)
		return
	}

	nonce, err := h.authService.NonceForWallet(c.Request.Context(), req.WalletAddress)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"nonce": nonce})
}

func (h HandlerSet) RegisterUser(c *gin.Context) {
	var req service.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c)
		return
	}

	if _, err := h.authService.Register(c.Request.Context(), req); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Registration successful. Please log in with your wallet."})
}

type loginRequest struct {
	Email     string `json:"email"`
	Message   string `json:"message"`
	Signature string `json:"signature"`
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), service.LoginInput{
		Email:     req.Email,
		Message:   req.Message,
		Signature: req.Signature,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	sendAuthResponse(c, result)
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (h HandlerSet) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c)
		return
	}

	result, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		writeError(c, err)
		return
	}

	sendAuthResponse(c, result)
}

// Logout never fails. A bearer token, if sent, is revoked when revocation
// is enabled.
func (h HandlerSet) Logout(c *gin.Context) {
	token, _ := middleware.BearerToken(c)
	h.authService.Logout(c.Request.Context(), token)

	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (h HandlerSet) Me(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	user, err := h.authService.Me(c.Request.Context(), claims)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toProfile(user))
}

func sendAuthResponse(c *gin.Context, result service.LoginResult) {
	c.JSON(http.StatusOK, authResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		User: userResponse{
			ID:     result.User.ID,
			Name:   result.User.Name,
			Email:  result.User.Email,
			Role:   string(result.User.Role),
			Status: string(result.User.Status),
		},
	})
}

func toProfile(user models.User) profileResponse {
	return profileResponse{
		ID:            user.ID,
		Name:          user.Name,
		Email:         user.Email,
		WalletAddress: user.WalletAddress,
		Role:          string(user.Role),
		Status:        string(user.Status),
	}
}
