package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/identito/auth-service/internal/api/metrics"
	"github.com/identito/auth-service/internal/core/domain"
	"github.com/identito/auth-service/internal/core/ports"
)

// AuditSink receives auth events for asynchronous persistence.
type AuditSink interface {
	Enqueue(event ports.AuthEventInput)
}

// AuthHandler translates HTTP requests into auth service calls: account
// registration, session login/logout, profile lookup, and password reset.
type AuthHandler struct {
	auth       ports.AuthService
	audit      AuditSink
	cookieName string
}

// NewAuthHandler builds an AuthHandler. audit may be nil to disable the
// audit trail (handy in tests).
func NewAuthHandler(auth ports.AuthService, audit AuditSink, cookieName string) *AuthHandler {
	return &AuthHandler{auth: auth, audit: audit, cookieName: cookieName}
}

type registerRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

type resetRequest struct {
	Email string `json:"email" form:"email" validate:"required,email"`
}

type resetCompleteRequest struct {
	Email       string `json:"email" form:"email" validate:"required,email"`
	ResetToken  string `json:"reset_token" form:"reset_token" validate:"required"`
	NewPassword string `json:"new_password" form:"new_password" validate:"required"`
}

type messageResponse struct {
	Email   string `json:"email,omitempty"`
	Message string `json:"message"`
}

type resetTokenResponse struct {
	Email      string `json:"email"`
	ResetToken string `json:"reset_token"`
}

// Welcome handles GET / — the unauthenticated landing route.
func (h *AuthHandler) Welcome(c echo.Context) error {
	return c.JSON(http.StatusOK, messageResponse{Message: "Bienvenue"})
}

// Register creates a new user account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Email and password"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /users [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.auth.Register(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		switch err {
		case domain.ErrUserExists:
			metrics.RegistrationsTotal.WithLabelValues("duplicate").Inc()
		default:
			metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		}
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues("created").Inc()
	h.record(c, user.Email, domain.ActionRegistered)
	return c.JSON(http.StatusOK, messageResponse{Email: user.Email, Message: "user created"})
}

// Login validates credentials, mints a session, and sets the session
// cookie.
//
// @Summary      Log in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  messageResponse
// @Failure      401   {object}  map[string]string
// @Router       /sessions [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	if !h.auth.ValidLogin(ctx, req.Email, req.Password) {
		metrics.LoginAttemptsTotal.WithLabelValues("failure").Inc()
		h.record(c, req.Email, domain.ActionLoginFailed)
		return domain.ErrInvalidCredentials
	}

	token, err := h.auth.CreateSession(ctx, req.Email)
	if err != nil {
		return err
	}
	if token == "" {
		// The account vanished between the checks; treat as a failed login.
		metrics.LoginAttemptsTotal.WithLabelValues("failure").Inc()
		return domain.ErrInvalidCredentials
	}

	c.SetCookie(h.sessionCookie(token, 0))
	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	metrics.SessionsCreatedTotal.Inc()
	h.record(c, req.Email, domain.ActionLoginSucceeded)
	h.record(c, req.Email, domain.ActionSessionCreated)
	return c.JSON(http.StatusOK, messageResponse{Email: req.Email, Message: "logged in"})
}

// Logout destroys the current session and redirects to the landing route.
// Routed behind the Session middleware, so an invalid cookie never gets
// here.
//
// @Summary      Log out
// @Tags         auth
// @Success      302
// @Failure      403   {object}  map[string]string
// @Router       /sessions [delete]
func (h *AuthHandler) Logout(c echo.Context) error {
	user, _, err := sessionUser(c)
	if err != nil {
		return err
	}

	if err := h.auth.DestroySession(c.Request().Context(), user.ID); err != nil {
		return err
	}

	c.SetCookie(h.sessionCookie("", -1))
	metrics.SessionsDestroyedTotal.Inc()
	h.record(c, user.Email, domain.ActionSessionDestroyed)
	return c.Redirect(http.StatusFound, "/")
}

// Profile returns the authenticated user's email.
//
// @Summary      Current user profile
// @Tags         auth
// @Produce      json
// @Success      200   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /profile [get]
func (h *AuthHandler) Profile(c echo.Context) error {
	user, _, err := sessionUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"email": user.Email})
}

// RequestReset issues a single-use password reset token.
//
// @Summary      Request a password reset token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      resetRequest  true  "Account email"
// @Success      200   {object}  resetTokenResponse
// @Failure      403   {object}  map[string]string
// @Router       /reset_password [post]
func (h *AuthHandler) RequestReset(c echo.Context) error {
	var req resetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, err := h.auth.RequestPasswordReset(c.Request().Context(), req.Email)
	if err != nil {
		metrics.PasswordResetsTotal.WithLabelValues("requested", "rejected").Inc()
		return err
	}

	metrics.PasswordResetsTotal.WithLabelValues("requested", "ok").Inc()
	h.record(c, req.Email, domain.ActionResetRequested)
	return c.JSON(http.StatusOK, resetTokenResponse{Email: req.Email, ResetToken: token})
}

// CompleteReset consumes a reset token and installs the new password.
//
// @Summary      Complete a password reset
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      resetCompleteRequest  true  "Reset token and new password"
// @Success      200   {object}  messageResponse
// @Failure      403   {object}  map[string]string
// @Router       /reset_password [put]
func (h *AuthHandler) CompleteReset(c echo.Context) error {
	var req resetCompleteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.auth.CompletePasswordReset(c.Request().Context(), req.ResetToken, req.NewPassword); err != nil {
		metrics.PasswordResetsTotal.WithLabelValues("completed", "rejected").Inc()
		return err
	}

	metrics.PasswordResetsTotal.WithLabelValues("completed", "ok").Inc()
	h.record(c, req.Email, domain.ActionResetCompleted)
	return c.JSON(http.StatusOK, messageResponse{Email: req.Email, Message: "Password updated"})
}

func (h *AuthHandler) sessionCookie(token string, maxAge int) *http.Cookie {
	cookie := &http.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   maxAge,
	}
	if maxAge < 0 {
		cookie.Expires = time.Unix(0, 0)
	}
	return cookie
}

func (h *AuthHandler) record(c echo.Context, email string, action domain.AuthAction) {
	if h.audit == nil {
		return
	}
	h.audit.Enqueue(ports.AuthEventInput{
		Email:     email,
		Action:    action,
		RequestID: c.Response().Header().Get(echo.HeaderXRequestID),
		Timestamp: time.Now().UTC(),
	})
}
