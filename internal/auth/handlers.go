package auth

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	msgInvalidCredentials = "Invalid credentials."
	msgUsernameTaken      = "Username already taken."
	msgMissingFields      = "Username and password are required."
	msgTooManyAttempts    = "Too many login attempts. Please try again later."
	msgSessionFailed      = "Could not start a session. Please try again."
	msgUsernameTooLong    = "Username must be at most 64 characters."
	msgPasswordTooLong    = "Password must be at most 72 bytes."
)

// AuthController serves the login, registration and logout endpoints.
type AuthController struct {
	service  *Service
	sessions SessionStore
	limiter  *LoginLimiter
	logger   *zap.Logger
}

// NewAuthController wires the controller. limiter may be nil to disable
// login throttling.
func NewAuthController(service *Service, sessions SessionStore, limiter *LoginLimiter, logger *zap.Logger) *AuthController {
	return &AuthController{
		service:  service,
		sessions: sessions,
		limiter:  limiter,
		logger:   logger,
	}
}

// RegisterRoutes registers authentication routes on the router.
func (ac *AuthController) RegisterRoutes(router gin.IRoutes) {
	router.GET("/login", ac.LoginPage)
	router.POST("/login", ac.Login)
	router.GET("/register", ac.RegisterPage)
	router.POST("/register", ac.Register)
	router.POST("/logout", ac.Logout)
}

func (ac *AuthController) LoginPage(c *gin.Context) {
	ac.renderForm(c, http.StatusOK, "login.html", "Login", "", "")
}

// Login checks the submitted credentials and starts a session.
func (ac *AuthController) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	clientIP := c.ClientIP()

	if ac.limiter != nil {
		if allowed, retryAfter := ac.limiter.Allow(clientIP, username); !allowed {
			c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
			ac.renderForm(c, http.StatusTooManyRequests, "login.html", "Login", username, msgTooManyAttempts)
			return
		}
	}

	user, err := ac.service.Authenticate(c.Request.Context(), username, password)
	if err != nil {
		if !errors.Is(err, ErrInvalidCredentials) {
			ac.logger.Error("login failed", zap.Error(err))
			ac.renderForm(c, http.StatusInternalServerError, "login.html", "Login", username, msgSessionFailed)
			return
		}
		if ac.limiter != nil && ac.limiter.RecordFailure(clientIP, username) {
			ac.logger.Warn("login locked out", zap.String("username", username), zap.String("client_ip", clientIP))
		}
		ac.renderForm(c, http.StatusBadRequest, "login.html", "Login", username, msgInvalidCredentials)
		return
	}

	if ac.limiter != nil {
		ac.limiter.RecordSuccess(clientIP, username)
	}

	if err := ac.sessions.Login(c, user.ID); err != nil {
		ac.logger.Error("failed to create session", zap.Error(err), zap.Uint("user_id", user.ID))
		ac.renderForm(c, http.StatusInternalServerError, "login.html", "Login", username, msgSessionFailed)
		return
	}

	ac.logger.Info("user logged in", zap.String("username", user.Username))
	c.Redirect(http.StatusSeeOther, "/add")
}

func (ac *AuthController) RegisterPage(c *gin.Context) {
	ac.renderForm(c, http.StatusOK, "register.html", "Register", "", "")
}

// Register creates the account and logs it in.
func (ac *AuthController) Register(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	if username == "" || password == "" {
		ac.renderForm(c, http.StatusBadRequest, "register.html", "Register", username, msgMissingFields)
		return
	}

	user, err := ac.service.Register(c.Request.Context(), username, password)
	switch {
	case errors.Is(err, ErrUserExists):
		ac.renderForm(c, http.StatusBadRequest, "register.html", "Register", username, msgUsernameTaken)
		return
	case errors.Is(err, ErrUsernameTooLong):
		ac.renderForm(c, http.StatusBadRequest, "register.html", "Register", username, msgUsernameTooLong)
		return
	case errors.Is(err, ErrPasswordTooLong):
		ac.renderForm(c, http.StatusBadRequest, "register.html", "Register", username, msgPasswordTooLong)
		return
	case err != nil:
		ac.logger.Error("registration failed", zap.Error(err))
		ac.renderForm(c, http.StatusInternalServerError, "register.html", "Register", username, msgSessionFailed)
		return
	}

	if err := ac.sessions.Login(c, user.ID); err != nil {
		ac.logger.Error("failed to create session", zap.Error(err), zap.Uint("user_id", user.ID))
		ac.renderForm(c, http.StatusInternalServerError, "register.html", "Register", username, msgSessionFailed)
		return
	}

	ac.logger.Info("user registered", zap.String("username", user.Username))
	c.Redirect(http.StatusSeeOther, "/add")
}

// Logout clears the session whether or not one existed.
func (ac *AuthController) Logout(c *gin.Context) {
	if err := ac.sessions.Logout(c); err != nil {
		ac.logger.Error("failed to destroy session", zap.Error(err))
	}
	c.Redirect(http.StatusSeeOther, "/login")
}

func (ac *AuthController) renderForm(c *gin.Context, status int, name, title, username, errMsg string) {
	c.HTML(status, name, gin.H{
		"Title":     title,
		"Username":  username,
		"Error":     errMsg,
		"CSRFToken": GetCSRFToken(c),
		"CSRFField": CSRFFieldName,
		"LoggedIn":  ac.sessions.UserID(c) != 0,
	})
}
