// Package app wires the HTTP routes to the services
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"inkwell/blog-api/app/post"
	"inkwell/blog-api/app/root"
	"inkwell/blog-api/app/user"
	"inkwell/blog-api/db"
	"inkwell/blog-api/internal"
	"inkwell/blog-api/internal/moderation"
	"inkwell/blog-api/internal/service"
	"inkwell/blog-api/pkg/middleware"
	"inkwell/blog-api/pkg/security"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	v "github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var defaultOrigins = []string{"http://localhost:3000"}

// Options are the router settings that don't live in Deps
type Options struct {
	Origins   []string
	RateLimit int
	Turnstile middleware.TurnstileConfig

	// Cache lifetime of public GET responses, zero disables caching. Cached
	// follower and like/dislike sets lag writes by up to this long.
	CacheTTL time.Duration

	// Cancelling it stops the background goroutines started by the router
	Context context.Context
}

// NewRouter builds every dependency from the loaded config and mounts the
// routes on top of them. The returned Deps must be closed on shutdown.
func NewRouter(ctx context.Context) (*gin.Engine, *internal.Deps, error) {
	makeLogger(v.GetString("app.log_level"))

	gdb, err := db.New(v.GetString("database.driver"), v.GetString("database.dsn"))
	if err != nil {
		return nil, nil, err
	}

	gate, err := newGate()
	if err != nil {
		return nil, nil, err
	}

	var notifier service.Notifier = service.LogSink{}
	if v.GetBool("mail.enabled") {
		notifier = service.NewMailSink(
			v.GetString("mail.host"),
			v.GetInt("mail.port"),
			v.GetString("mail.username"),
			v.GetString("mail.password"),
			v.GetString("mail.sender"),
		)
	}

	d := internal.NewDeps(
		gdb,
		security.New(),
		security.NewSessionIssuer(v.GetString("jwt.secret"), v.GetString("jwt.issuer"), v.GetDuration("jwt.ttl")),
		security.NewTokenCodec(v.GetDuration("token.ttl")),
		gate,
		notifier,
		v.GetString("app.base_url"),
	)

	ctx, cancel := context.WithCancel(ctx)
	d.Cancel = cancel

	service.TokenCleanup(ctx, v.GetDuration("cleanup.interval"), v.GetDuration("cleanup.retention"), gdb)

	router := Mount(d, Options{
		Origins:   splitOrigins(v.GetStringSlice("host.cors")),
		RateLimit: v.GetInt("security.rate_limit"),
		Turnstile: middleware.TurnstileConfig{
			Enabled: v.GetBool("security.turnstile.enabled"),
			Secret:  v.GetString("security.turnstile.secret_token"),
		},
		CacheTTL: v.GetDuration("cache.ttl"),
		Context:  ctx,
	})

	return router, d, nil
}

func newGate() (*moderation.Gate, error) {
	words := v.GetStringSlice("moderation.words")

	if path := v.GetString("moderation.word_file"); path != "" {
		gate, err := moderation.NewFromFile(path, words...)
		if err != nil {
			return nil, fmt.Errorf("failed to load moderation word list, %w", err)
		}

		return gate, nil
	}

	return moderation.New(words...), nil
}

// splitOrigins accepts both a toml list and a comma separated env value
func splitOrigins(raw []string) []string {
	var out []string

	for _, r := range raw {
		for _, o := range strings.Split(r, ",") {
			if o = strings.TrimSpace(o); o != "" {
				out = append(out, o)
			}
		}
	}

	return out
}

// Mount registers every route on a new engine
func Mount(d *internal.Deps, opts Options) *gin.Engine {
	if len(opts.Origins) == 0 {
		opts.Origins = defaultOrigins
	}

	if opts.Context == nil {
		opts.Context = context.Background()
	}

	router := gin.New()

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     opts.Origins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "TurnstileToken"},
			ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true

	jwt := middleware.NewJWTMiddleware(d.Auth)
	admin := middleware.AdminOnly()
	turnstile := middleware.NewTurnstileMiddleware(opts.Turnstile)
	rateLimiter := middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
		RequestsPerSecond: opts.RateLimit,
		Burst:             opts.RateLimit * 2,
		Context:           opts.Context,
	})

	// A store per engine so tests never share cached responses
	store := persist.NewMemoryStore(time.Minute)
	cacheFor := func(ttl time.Duration) gin.HandlerFunc {
		if ttl <= 0 {
			return func(c *gin.Context) { c.Next() }
		}

		return cache.CacheByRequestURI(store, ttl)
	}

	main := router.Group("/api", rateLimiter)
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		main.HEAD("/heartbeat", root.Heartbeat)

		// GET /api/validate		-> Validates a session token
		main.GET("/validate", jwt, root.Validate)
	}

	users := main.Group("/users", middleware.BodySizeLimiter(1<<20))
	{
		// POST /api/users/register 		-> Registers a new user
		users.POST("/register", turnstile, func(c *gin.Context) { user.UserRegister(c, d) })

		// POST /api/users/login 		-> Logs in a user and returns a session token
		users.POST("/login", func(c *gin.Context) { user.UserLogin(c, d) })

		// POST /api/users/logout 		-> Clears the session cookies
		users.POST("/logout", user.UserLogout)

		// POST /api/users/forgot-password-token -> Mails a password reset link
		users.POST("/forgot-password-token", turnstile, func(c *gin.Context) { user.UserForgotPassword(c, d) })

		// PUT /api/users/reset-password 	-> Sets a new password using a reset token
		users.PUT("/reset-password", func(c *gin.Context) { user.UserResetPassword(c, d) })

		// GET /api/users 			-> Lists every user
		users.GET("", jwt, admin, func(c *gin.Context) { user.UserList(c, d) })

		// GET /api/users/profile 		-> Returns the caller's own profile
		users.GET("/profile", jwt, func(c *gin.Context) { user.UserProfile(c, d) })

		// GET /api/users/:id 			-> Returns the public profile of a user
		users.GET("/:id", cacheFor(opts.CacheTTL), func(c *gin.Context) { user.UserDetails(c, d) })

		// PUT /api/users 			-> Updates the caller's profile
		users.PUT("", jwt, func(c *gin.Context) { user.UserUpdate(c, d) })

		// PUT /api/users/password 		-> Changes the caller's password
		users.PUT("/password", jwt, func(c *gin.Context) { user.UserUpdatePassword(c, d) })

		// PUT /api/users/follow 		-> Follows a user
		users.PUT("/follow", jwt, func(c *gin.Context) { user.UserFollow(c, d) })

		// PUT /api/users/unfollow 		-> Unfollows a user
		users.PUT("/unfollow", jwt, func(c *gin.Context) { user.UserUnfollow(c, d) })

		// POST /api/users/generate-verify-email-token -> Mails an account verification link
		users.POST("/generate-verify-email-token", jwt, func(c *gin.Context) { user.UserStartVerification(c, d) })

		// PUT /api/users/verify-account 	-> Verifies the caller's account
		users.PUT("/verify-account", jwt, func(c *gin.Context) { user.UserVerify(c, d) })

		// PUT /api/users/block-user/:id 	-> Blocks a user
		users.PUT("/block-user/:id", jwt, admin, func(c *gin.Context) { user.UserBlock(c, d) })

		// PUT /api/users/unblock-user/:id 	-> Unblocks a user
		users.PUT("/unblock-user/:id", jwt, admin, func(c *gin.Context) { user.UserUnblock(c, d) })

		// DELETE /api/users/:id 		-> Deletes a user and everything they own
		users.DELETE("/:id", jwt, admin, func(c *gin.Context) { user.UserDelete(c, d) })
	}

	posts := main.Group("/posts", middleware.BodySizeLimiter(1<<20))
	{
		// POST /api/posts 			-> Creates a post
		posts.POST("", jwt, func(c *gin.Context) { post.PostCreate(c, d) })

		// GET /api/posts 			-> Lists posts, optionally by ?category=
		posts.GET("", cacheFor(opts.CacheTTL/2), func(c *gin.Context) { post.PostList(c, d) })

		// PUT /api/posts/likes 		-> Toggles a like
		posts.PUT("/likes", jwt, func(c *gin.Context) { post.PostToggleLike(c, d) })

		// PUT /api/posts/dislikes 		-> Toggles a dislike
		posts.PUT("/dislikes", jwt, func(c *gin.Context) { post.PostToggleDislike(c, d) })

		// GET /api/posts/:id 			-> Returns a post and counts the view
		posts.GET("/:id", func(c *gin.Context) { post.PostFetch(c, d) })

		// PUT /api/posts/:id 			-> Updates a post owned by the caller
		posts.PUT("/:id", jwt, func(c *gin.Context) { post.PostUpdate(c, d) })

		// DELETE /api/posts/:id 		-> Deletes a post owned by the caller
		posts.DELETE("/:id", jwt, func(c *gin.Context) { post.PostDelete(c, d) })
	}

	return router
}
