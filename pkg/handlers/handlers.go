package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/arnavshah/shiftboard/pkg/auth"
	"github.com/arnavshah/shiftboard/pkg/config"
	"github.com/arnavshah/shiftboard/pkg/database"
	"github.com/arnavshah/shiftboard/pkg/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const viewerKey = "viewer"

// Handler contains dependencies for the route handlers
type Handler struct {
	DB     *gorm.DB
	Tokens *auth.Tokens
	Logger *zap.Logger
	// Now and Location decide what "today" is for past-date checks and
	// default weeks.
	Now      func() time.Time
	Location *time.Location
}

func (h *Handler) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}

func (h *Handler) today() time.Time {
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	return now().In(h.loc())
}

func (h *Handler) loc() *time.Location {
	if h.Location == nil {
		return time.Local
	}
	return h.Location
}

func jsonError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, models.ErrorResponse{Error: msg})
}

// Register mounts every route on r.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Shift schedule API",
			"version": "1.0.0",
		})
	})
	r.POST("/auth/login", h.Login)

	schedule := r.Group("/schedule")
	schedule.Use(h.AuthMiddleware(), RequireStaff())
	{
		schedule.GET("", h.ListWeek)
		schedule.POST("", h.CreateShift)
		schedule.GET("/summary", h.Summary)
		schedule.GET("/staff", RequireManager(), h.ListStaff)
		schedule.DELETE("/:id", h.DeleteShift)
	}
}

// RequestLogger logs one line per request through zap.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			logger.Error("request", fields...)
		case c.Writer.Status() >= http.StatusBadRequest:
			logger.Warn("request", fields...)
		default:
			logger.Info("request", fields...)
		}
	}
}

// AuthMiddleware verifies the bearer token and stores the viewer
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			jsonError(c, http.StatusUnauthorized, "Authorization header required")
			return
		}

		// Strip "Bearer " if present
		if len(token) > 7 && strings.EqualFold(token[:7], "Bearer ") {
			token = token[7:]
		}

		claims, err := h.Tokens.VerifyToken(token)
		if err != nil {
			jsonError(c, http.StatusUnauthorized, "Invalid token")
			return
		}

		c.Set(viewerKey, claims.Viewer())
		c.Next()
	}
}

func viewerFrom(c *gin.Context) models.Viewer {
	v, ok := c.Get(viewerKey)
	if !ok {
		return models.Viewer{}
	}
	viewer, _ := v.(models.Viewer)
	return viewer
}

// RequireStaff rejects accounts that cannot see the schedule.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !viewerFrom(c).IsStaff() {
			jsonError(c, http.StatusForbidden, "insufficient permissions")
			return
		}
		c.Next()
	}
}

// RequireManager rejects accounts without manager rights.
func RequireManager() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !viewerFrom(c).CanManageAll() {
			jsonError(c, http.StatusForbidden, "insufficient permissions")
			return
		}
		c.Next()
	}
}

// Login handles staff login
func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, err.Error())
		return
	}

	staff, err := auth.Authenticate(h.DB, strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			h.logger().Error("login lookup failed", zap.Error(err))
		}
		jsonError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	role := models.ParseRole(staff.Role)
	token, err := h.Tokens.CreateToken(staff.ID, staff.Username, role)
	if err != nil {
		jsonError(c, http.StatusInternalServerError, "Could not create token")
		return
	}

	c.JSON(http.StatusOK, models.LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		StaffID:     staff.ID,
		Role:        role,
	})
}

// NewRouter wires middleware and routes onto a fresh gin engine.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(RequestLogger(h.logger()), gin.Recovery())
	h.Register(r)
	return r
}

// Setup opens the database, seeds the default accounts and builds the router.
func Setup(cfg *config.Config, logger *zap.Logger) (*gin.Engine, error) {
	if err := cfg.ValidateServer(); err != nil {
		return nil, err
	}
	if cfg.Server.GinMode != "" {
		gin.SetMode(cfg.Server.GinMode)
	}

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := auth.EnsureAdminExists(db, cfg.Auth, cfg.Server.SeedStaff, logger); err != nil {
		return nil, fmt.Errorf("seed accounts: %w", err)
	}

	h := &Handler{
		DB:     db,
		Tokens: auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Logger: logger,
	}
	return NewRouter(h), nil
}
