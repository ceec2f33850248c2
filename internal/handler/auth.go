package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/seatbook/internal/middleware"
	"github.com/iliyamo/seatbook/internal/service"
)

// AuthService registers accounts and logs them in.
type AuthService interface {
	Signup(ctx context.Context, in service.SignupInput) (service.AccountView, error)
	Login(ctx context.Context, email, password string) (service.LoginResult, error)
}

// AuthHandler serves signup, login and me.  Its error bodies use the
// "message" key.
type AuthHandler struct {
	Auth AuthService
}

func NewAuthHandler(a AuthService) *AuthHandler {
	if a == nil {
		panic("nil service passed to NewAuthHandler")
	}
	return &AuthHandler{Auth: a}
}

type signupReq struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup handles POST /api/signup.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if _, err := h.Auth.Signup(ctx, service.SignupInput{
		FullName: req.FullName, Email: req.Email, Password: req.Password,
	}); err != nil {
		return fail(c, "message", err, "Server error", nil)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "User created successfully"})
}

// Login handles POST /api/login.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	res, err := h.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return fail(c, "message", err, "Server error", nil)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":   "Login successful",
		"token":     res.Token,
		"expiresAt": res.ExpiresAt,
		"user":      res.User,
	})
}

// Me handles GET /api/me and echoes the claims JWTAuth put on the context.
func (h *AuthHandler) Me(c echo.Context) error {
	id, _ := c.Get(middleware.ContextAccountID).(string)
	if id == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	email, _ := c.Get(middleware.ContextEmail).(string)
	return c.JSON(http.StatusOK, echo.Map{"id": id, "email": email})
}
