package routes

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"eventhub/config"
	"eventhub/middlewares"
	"eventhub/models"
	"eventhub/utils"
	"eventhub/workflow"
)

// Deps are the repositories and clients the handlers run against. Redis may be nil, which turns
// off the response cache and the quota.
type Deps struct {
	Tx            models.TxRunner
	Users         models.UserRepository
	Groups        models.GroupRepository
	Events        models.EventRepository
	RSVPs         models.RSVPRepository
	Notifications models.NotificationRepository
	Redis         *redis.Client
	Clock         models.Clock
	Log           *zap.Logger
}

// Options tune the middleware stack. Zero values disable the matching middleware.
type Options struct {
	Services       []string // nil mounts every service
	RequestTimeout time.Duration
	CacheTTL       time.Duration
	QuotaLimit     int
	QuotaWindow    time.Duration
	RateRPS        float64
	RateBurst      int
	AuthRateRPS    float64
	AuthRateBurst  int
}

// 依賴注入容器
type deps struct {
	users  models.UserRepository
	groups models.GroupRepository
	events models.EventRepository
	rsvps  models.RSVPRepository
	notes  models.NotificationRepository

	eventFlow *workflow.Events
	groupFlow *workflow.Groups

	inv *utils.CacheInvalidator
	log *zap.Logger
}

// RegisterRoutes mounts the middleware stack and the endpoints of every enabled service.
// The rate limiters' janitors stop when ctx is done.
func RegisterRoutes(ctx context.Context, server *gin.Engine, in Deps, opt Options) {
	log := in.Log
	if log == nil {
		log = zap.NewNop()
	}
	d := &deps{
		users:     in.Users,
		groups:    in.Groups,
		events:    in.Events,
		rsvps:     in.RSVPs,
		notes:     in.Notifications,
		eventFlow: workflow.NewEvents(in.Tx, in.Users, in.Groups, in.Events, in.Notifications, in.Clock, log),
		groupFlow: workflow.NewGroups(in.Tx, in.Groups, log),
		inv:       utils.NewCacheInvalidator(in.Redis),
		log:       log,
	}

	server.Use(middlewares.RequestLogger(log))
	server.Use(middlewares.Timeout(opt.RequestTimeout))

	// ===== 全域 IP 限速 =====
	if opt.RateRPS > 0 {
		global := middlewares.NewRateLimiter(ctx, middlewares.LimiterConfig{
			RPS:     opt.RateRPS,
			Burst:   opt.RateBurst,
			IdleTTL: 3 * time.Minute,
		})
		server.Use(global.Middleware(middlewares.ClientIPKey("ip")))
	}

	if in.Redis != nil {
		if opt.QuotaLimit > 0 {
			server.Use(middlewares.Quota(in.Redis, middlewares.QuotaRule{
				Limit:  opt.QuotaLimit,
				Window: opt.QuotaWindow,
				KeyFn:  middlewares.WriteQuotaKey,
			}))
		}
		if opt.CacheTTL > 0 {
			server.Use(middlewares.ResponseCache(in.Redis, opt.CacheTTL))
		}
	}

	server.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Events API is running!", "version": "1.0.0"})
	})
	server.GET("/health", d.health)

	enabled := func(name string) bool { return opt.Services == nil || slices.Contains(opt.Services, name) }

	if enabled(config.ServiceUsers) {
		// ===== 登入、註冊用更嚴的限速 =====
		authLimit := func(string) gin.HandlerFunc { return func(c *gin.Context) { c.Next() } }
		if opt.AuthRateRPS > 0 {
			authLimiter := middlewares.NewRateLimiter(ctx, middlewares.LimiterConfig{
				RPS:     opt.AuthRateRPS,
				Burst:   opt.AuthRateBurst,
				IdleTTL: 10 * time.Minute,
			})
			authLimit = func(prefix string) gin.HandlerFunc {
				return authLimiter.Middleware(middlewares.ClientIPKey(prefix))
			}
		}
		server.POST("/login", authLimit("login"), d.login)
		server.POST("/register", authLimit("register"), d.register)
	}

	if enabled(config.ServiceGroups) {
		g := server.Group("/groups")
		g.GET("/", d.listGroupIDs)
		g.POST("/by_id/", d.groupsByID)
		g.POST("/create", d.createGroup)
		g.POST("/join/:groupID", d.joinGroup)
		g.POST("/leave/:groupID", d.leaveGroup)
		g.GET("/user/:username", d.userGroups)
		g.GET("/admin/:username", d.adminGroups)
	}

	if enabled(config.ServiceEvents) {
		e := server.Group("/events")
		e.GET("/user/:username", d.userEvents)
		e.GET("/group/:groupID", d.groupEvents)
		e.GET("/:eventID", d.getEvent)
		e.POST("/group/:groupID", d.createGroupEvent)
		e.POST("/:username", d.createUserEvent)
		e.PUT("/:username/:eventID", d.updateUserEvent)
		e.DELETE("/:username/:eventID", d.deleteUserEvent)
	}

	if enabled(config.ServiceRSVP) {
		r := server.Group("/rsvp")
		r.GET("/:eventID/:username", d.checkRSVP)
		r.POST("/:eventID", d.addRSVP)
		r.DELETE("/:eventID/:username", d.removeRSVP)
	}

	if enabled(config.ServiceNotifications) {
		n := server.Group("/notifications")
		n.GET("/:username", d.userNotifications)
		n.PUT("/:username/:eventID/read", d.markRead)
	}
}
