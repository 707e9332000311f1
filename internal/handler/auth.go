package handler

import (
	"net/http"

	"github.com/templui/apiplate/internal/ctxkeys"
	"github.com/templui/apiplate/internal/model"
	"github.com/templui/apiplate/internal/response"
	"github.com/templui/apiplate/internal/service"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

type userData struct {
	User model.PublicUser `json:"user"`
}

type loginData struct {
	AccessToken string           `json:"access_token"`
	TokenType   string           `json:"token_type"`
	ExpiresIn   int64            `json:"expires_in"`
	User        model.PublicUser `json:"user"`
}

type authHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *authHandler {
	return &authHandler{authService: authService}
}

func (h *authHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	err := response.Decode(w, r, &req)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	res, err := h.authService.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.SuccessWithWarning(w, http.StatusCreated, "User registered. Check email to verify.", res.User, res.Delivery.Warning)
}

func (h *authHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	err := response.Decode(w, r, &req)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	res, err := h.authService.Verify(r.Context(), req.Email, req.Code)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.SuccessWithWarning(w, http.StatusOK, "Account verified successfully!", userData{User: res.User}, res.Delivery.Warning)
}

func (h *authHandler) ResendVerificationCode(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	err := response.Decode(w, r, &req)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	delivery, err := h.authService.ResendVerificationCode(r.Context(), req.Email)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.SuccessWithWarning(w, http.StatusOK, "A verification code has been sent to your email address", nil, delivery.Warning)
}

func (h *authHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	err := response.Decode(w, r, &req)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	res, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.Success(w, http.StatusOK, "Login successful", loginData{
		AccessToken: res.AccessToken,
		TokenType:   res.TokenType,
		ExpiresIn:   res.ExpiresIn,
		User:        res.User,
	})
}

func (h *authHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	err := response.Decode(w, r, &req)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	delivery, err := h.authService.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.SuccessWithWarning(w, http.StatusOK, "Password reset email sent successfully.", nil, delivery.Warning)
}

func (h *authHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	err := response.Decode(w, r, &req)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	err = h.authService.ResetPassword(r.Context(), req.Email, req.Code, req.NewPassword)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.Success(w, http.StatusOK, "Password reset successfully.", nil)
}

// Me returns the user resolved by RequireAuth.
func (h *authHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	response.Success(w, http.StatusOK, "User retrieved successfully", user)
}
