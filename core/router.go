package core

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RouterDeps are the collaborators shared by every handler.
type RouterDeps struct {
	Config  Config
	Logger  *slog.Logger
	Auth    *AuthService
	Books   BookRepository
	Reviews ReviewRepository
	Cache   BookCache
	Metrics *Metrics
}

// NewRouter constructs the Gin engine with routes wired.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Cache == nil {
		deps.Cache = NoopBookCache{}
	}
	if deps.Metrics == nil {
		deps.Metrics = NewMetrics()
	}
	logger := deps.Logger
	metrics := deps.Metrics
	auth := deps.Auth
	carrier := NewSessionCarrier(deps.Config)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(logger))
	r.Use(metrics.Middleware())
	r.Use(CORSMiddleware(deps.Config))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	r.POST("/register", func(c *gin.Context) {
		var req RegisterInput
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, errCodeValidation, "invalid json")
			return
		}

		id, err := auth.Register(c.Request.Context(), req)
		if err != nil {
			metrics.RecordAuth("register", authOutcome(err))
			respondServiceError(c, logger, err)
			return
		}

		metrics.RecordAuth("register", outcomeSuccess)
		logger.Info("account registered", "user_id", id, "request_id", requestID(c))
		c.JSON(http.StatusOK, gin.H{"message": "Registration successful!"})
	})

	r.POST("/login", func(c *gin.Context) {
		var req LoginInput
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, errCodeValidation, "invalid json")
			return
		}

		token, account, err := auth.Login(c.Request.Context(), req)
		if err != nil {
			metrics.RecordAuth("login", authOutcome(err))
			respondServiceError(c, logger, err)
			return
		}

		carrier.Attach(c.Writer, token)
		metrics.RecordAuth("login", outcomeSuccess)
		logger.Info("account logged in", "user_id", account.ID, "request_id", requestID(c))
		c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Logged in successfully"})
	})

	r.GET("/logout", func(c *gin.Context) {
		carrier.Clear(c.Writer)
		metrics.RecordAuth("logout", outcomeSuccess)
		c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Logged out successfully"})
	})

	r.GET("/protected", RequireAuth(auth, carrier, metrics, logger), func(c *gin.Context) {
		id, _ := CurrentIdentity(c)
		c.JSON(http.StatusOK, gin.H{"info": "protected info", "user": id})
	})

	r.GET("/getuser", func(c *gin.Context) {
		email := c.Query("email")
		if email == "" {
			respondValidation(c, []FieldError{{Field: fieldEmail, Message: "email is required"}})
			return
		}
		username, err := auth.UsernameByEmail(c.Request.Context(), email)
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "User not found"})
			return
		}
		if err != nil {
			respondServiceError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "success", "username": username})
	})

	registerCatalogRoutes(r, &catalogHandlers{
		books:   deps.Books,
		reviews: deps.Reviews,
		cache:   deps.Cache,
		logger:  logger,
	})

	return r
}

// authOutcome classifies a register/login failure for metrics.
func authOutcome(err error) string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return outcomeRejected
	}
	return outcomeError
}
