// File: internal/auth/handler.go
package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"microtask_gateway/internal/common"
	"microtask_gateway/internal/config"
	"microtask_gateway/internal/guard"
	"microtask_gateway/internal/identity"
	"microtask_gateway/internal/profile"
	"microtask_gateway/internal/session"
	"microtask_gateway/internal/upstream"
)

// Handler owns the sign-in/sign-up/sign-out surface of the gateway.
type Handler struct {
	cfg         *config.Config
	identitySvc *identity.Service
	resolver    *profile.Resolver
	google      GoogleService
	logger      *zap.Logger
}

// NewHandler creates a new auth handler.
func NewHandler(
	cfg *config.Config,
	identitySvc *identity.Service,
	resolver *profile.Resolver,
	google GoogleService,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		cfg:         cfg,
		identitySvc: identitySvc,
		resolver:    resolver,
		google:      google,
		logger:      logger,
	}
}

// RegisterRoutes sets up the routes for authentication operations. The
// guarded middleware applies only to /auth/me and /auth/logout.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, guardMW gin.HandlerFunc) {
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", h.login)
		authGroup.POST("/register", h.register)
		authGroup.GET("/google/login", h.googleLogin)
		authGroup.GET("/google/callback", h.googleCallback)

		protected := authGroup.Group("", guardMW)
		{
			protected.GET("/me", h.me)
			protected.POST("/logout", h.logout)
		}
	}
}

func (h *Handler) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Login: Invalid request body", zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	sess, err := h.identitySvc.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	h.setSessionCookie(c, sess)
	common.RespondOK(c, "Login successful.", h.sessionResponse(c, sess, req.From))
}

func (h *Handler) register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Register: Invalid request body", zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	sess, err := h.identitySvc.SignUp(c.Request.Context(), req.Email, req.Password, req.Name, req.PhotoURL)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	// Seed the backend profile with the role the user picked and its signup
	// coin grant.
	prof, err := h.resolver.Ensure(c.Request.Context(), sess, sess.Identity, common.ParseRole(req.Role))
	if err != nil {
		h.logger.Error("Failed to seed backend profile after sign-up",
			zap.String("email", req.Email), zap.Error(err))
		common.RespondWithError(c, upstream.AsAPIError(err))
		return
	}

	h.setSessionCookie(c, sess)
	resp := h.sessionResponse(c, sess, "")
	resp.Profile = prof
	common.RespondCreated(c, "Account created.", resp)
}

func (h *Handler) logout(c *gin.Context) {
	sess := guard.SessionFromContext(c)
	if sess != nil {
		h.identitySvc.SignOut(c.Request.Context(), sess.ID)
	}
	h.clearSessionCookie(c)
	common.RespondNoContent(c)
}

func (h *Handler) me(c *gin.Context) {
	sess := guard.SessionFromContext(c)
	if sess == nil {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}

	prof, err := h.resolver.Resolve(c.Request.Context(), sess, sess.Identity.Email)
	if err != nil {
		common.RespondWithError(c, upstream.AsAPIError(err))
		return
	}

	resp := h.sessionResponse(c, sess, "")
	resp.Profile = prof
	common.RespondOK(c, "Session retrieved.", resp)
}

func (h *Handler) googleLogin(c *gin.Context) {
	authURL, err := h.google.LoginURL(c)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, authURL)
}

func (h *Handler) googleCallback(c *gin.Context) {
	code := c.Query("code")
	state := c.Query("state")
	if errorParam := c.Query("error"); errorParam != "" {
		h.logger.Error("Google OAuth callback error", zap.String("error", errorParam))
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Google sign-in failed: "+errorParam))
		return
	}
	if code == "" || state == "" {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Missing authorization code or state from Google."))
		return
	}

	sess, err := h.google.HandleCallback(c, code, state)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	// Federated sign-in has no role picker yet, so first-time accounts get
	// the configured default role and its coin grant.
	prof, err := h.resolver.Ensure(c.Request.Context(), sess, sess.Identity, common.ParseRole(h.cfg.FederatedDefaultRole))
	if err != nil {
		common.RespondWithError(c, upstream.AsAPIError(err))
		return
	}

	h.setSessionCookie(c, sess)
	resp := h.sessionResponse(c, sess, "")
	resp.Profile = prof
	common.RespondOK(c, "Google sign-in processed successfully.", resp)
}

func (h *Handler) sessionResponse(c *gin.Context, sess *session.Session, from string) *SessionResponse {
	return &SessionResponse{
		User:      sess.Identity,
		ExpiresAt: sess.ExpiresAt,
		ReturnTo:  from,
	}
}

func (h *Handler) setSessionCookie(c *gin.Context, sess *session.Session) {
	maxAge := int(h.cfg.SessionTTL.Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.SessionCookieName, sess.ID, maxAge, "/", "", h.cfg.SessionCookieSecure, true)
}

func (h *Handler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.SessionCookieName, "", -1, "/", "", h.cfg.SessionCookieSecure, true)
}
