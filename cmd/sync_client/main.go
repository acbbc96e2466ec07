package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	adminapp "edu_social_client/internal/admin/app"
	adminrepo "edu_social_client/internal/admin/repository"
	"edu_social_client/internal/api/handlers"
	"edu_social_client/internal/api/router"
	chatapp "edu_social_client/internal/chat/app"
	chatrepo "edu_social_client/internal/chat/repository"
	groupapp "edu_social_client/internal/group/app"
	grouprepo "edu_social_client/internal/group/repository"
	postapp "edu_social_client/internal/post/app"
	postdomain "edu_social_client/internal/post/domain"
	postrepo "edu_social_client/internal/post/repository"
	"edu_social_client/internal/realtime"
	"edu_social_client/internal/session"
	"edu_social_client/pkg/config"
	"edu_social_client/pkg/database"
	"edu_social_client/pkg/httpclient"
	"edu_social_client/pkg/logger"
	testtool "edu_social_client/pkg/test_tool"
	"edu_social_client/pkg/token"
	"edu_social_client/pkg/workerpool"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.SyncClient, config.EnvConfig.SyncClientLogPath)
	defer logger.Log.Sync()

	cfg := config.MustLoadConfig[config.Client](config.EnvConfig.SyncClient, config.EnvConfig.SyncClientYAMLPath)
	if config.EnvConfig.SyncClientPort != "" {
		cfg.Port = config.EnvConfig.SyncClientPort
	}
	cfg.Normalize()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.PprofAddr != "" {
		testtool.StartPprof(cfg.PprofAddr)
	}

	// 1. session
	sess := session.New(session.StaticAuthenticator{Token: cfg.Session.Token})
	if err := sess.Login(ctx); err != nil {
		logger.Log.Fatal("login failed", zap.Error(err))
	}
	userID := sess.UserID()

	// 2. redis, only when a component needs it
	var rdb *redis.Client
	if cfg.Feed.StatusStore == "redis" || cfg.Realtime.Transport == "redis" {
		masterName, sentinel := config.GetRedisSetting()
		client, err := database.NewRedisClient(ctx, database.Connection{
			Addr:          cfg.Redis.Addr,
			MasterName:    masterName,
			SentinelAddrs: sentinel,
			DB:            cfg.Redis.RedisDB,
			RetryCount:    3,
			RetryInterval: time.Second,
		})
		if err != nil {
			logger.Log.Fatal("connect redis failed", zap.Error(err))
		}
		defer client.Close()
		rdb = client
	}

	// 3. backend clients
	chatHTTP := httpclient.New(cfg.Chat.BaseURL, sess, cfg.HTTPTimeout)
	groupHTTP := httpclient.New(cfg.Group.BaseURL, sess, cfg.HTTPTimeout)
	postHTTP := httpclient.New(cfg.Post.BaseURL, sess, cfg.HTTPTimeout)
	adminHTTP := httpclient.New(cfg.Admin.BaseURL, sess, cfg.HTTPTimeout)

	postRepo := postrepo.NewPostRepository(postHTTP)

	// 4. controllers, change hooks feed the view hub
	var hub *handlers.Hub
	notify := func(view string) { hub.Notify(view) }

	pool := workerpool.New(cfg.Feed.Workers, cfg.Feed.WorkerQueue)
	defer pool.Shutdown()

	var store postapp.StatusStore = postapp.NewMemoryStatusStore()
	if cfg.Feed.StatusStore == "redis" {
		store = postapp.NewRedisStatusStore(database.NewRedisRepository[postapp.StatusEntry](rdb, "status:"+userID+":"))
	}
	cache := postapp.NewStatusCache(pool, postRepo.IsLiked, postRepo.IsBookmarked,
		postapp.WithStatusTTL(cfg.Feed.StatusTTL),
		postapp.WithStore(store),
		postapp.OnStatusUpdate(func(int64) { notify(postapp.ViewPosts) }),
	)

	chats := chatapp.NewChatController(chatrepo.NewChatRepository(chatHTTP), sess,
		chatapp.WithMaxUploadBytes(cfg.Upload.MaxBytes),
		chatapp.WithChangeHook(notify),
	)
	inbox := chatapp.NewInboxController(chatrepo.NewInboxRepository(chatHTTP), notify)
	groups := groupapp.NewGroupController(grouprepo.NewGroupRepository(groupHTTP), sess,
		groupapp.WithPageSize(cfg.Feed.GroupPageSize),
		groupapp.WithMaxUploadBytes(cfg.Upload.MaxBytes),
		groupapp.WithChangeHook(notify),
	)
	board := postapp.NewBoard(postRepo, cache,
		postapp.WithPageSize(cfg.Feed.PageSize),
		postapp.WithMaxUploadBytes(cfg.Upload.MaxBytes),
		postapp.WithChangeHook(notify),
	)
	admin := adminapp.NewAdminController(adminrepo.NewAdminRepository(adminHTTP), sess, notify)

	hub = handlers.NewHub(map[string]handlers.Source{
		chatapp.ViewChats:   func(context.Context) any { return chats.Snapshot() },
		chatapp.ViewInbox:   func(context.Context) any { return inbox.State() },
		groupapp.ViewGroups: func(context.Context) any { return groups.Snapshot() },
		postapp.ViewPosts:   func(ctx context.Context) any { return board.Snapshot(ctx) },
		adminapp.ViewUsers:  func(context.Context) any { return admin.Users() },
	}, cfg.Realtime.Heartbeat)
	go hub.Run(ctx)

	initialLoad(ctx, chats, inbox, groups, board, admin, sess)

	// 5. realtime, chat and groups use independent connections
	dispatcher := realtime.NewDispatcher(cfg.Realtime.QueueSize)
	chatDest := realtime.ChatDestination(userID)
	dispatcher.Handle(chatDest, chats.HandleNotification)
	dispatcher.Handle(realtime.TopicGroupUpdates, groups.HandleGroupUpdate)
	dispatcher.Handle(realtime.TopicGroupPosts, groups.HandleGroupPost)

	var nc *nats.Conn
	if cfg.Realtime.Transport == "nats" {
		conn, err := realtime.NewNatsConn(cfg.Realtime.NatsURL, cfg.Realtime.ReconnectDelay)
		if err != nil {
			logger.Log.Fatal("connect nats failed", zap.Error(err))
		}
		defer conn.Close()
		nc = conn
	}
	chatTransport := newTransport(cfg, "chat", cfg.Realtime.ChatWSURL, sess, rdb, nc)
	groupTransport := newTransport(cfg, "group", cfg.Realtime.GroupWSURL, sess, rdb, nc)

	go func() {
		if err := dispatcher.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Log.Error("dispatcher stopped", zap.Error(err))
		}
	}()
	go supervise(ctx, "chat", chatTransport, []string{chatDest}, dispatcher, cfg.Realtime.ReconnectDelay)
	go supervise(ctx, "group", groupTransport,
		[]string{realtime.TopicGroupUpdates, realtime.TopicGroupPosts}, dispatcher, cfg.Realtime.ReconnectDelay)

	// 6. local view api
	app := fiber.New(fiber.Config{DisableStartupMessage: config.IsProduction()})
	file, err := os.OpenFile(fmt.Sprintf("%s/access.log", config.EnvConfig.SyncClientLogPath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer file.Close()
	app.Use(fiber_log.New(fiber_log.Config{
		Output: file,
	}))
	router.RegisterRoutes(app, hub, handlers.NewStateHandler(hub), cfg.APIToken)

	go func() {
		port := ":" + cfg.Port
		logger.Log.Info("sync client listening", zap.String("port", port), zap.String("user_id", userID))
		if err := app.Listen(port); err != nil {
			logger.Log.Error("fiber stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Log.Info("shutting down")
	shutdown(app, dispatcher, sess)
}

type loadStep struct {
	name string
	run  func(context.Context) error
}

func initialLoad(ctx context.Context, chats *chatapp.ChatController, inbox *chatapp.InboxController,
	groups *groupapp.GroupController, board *postapp.Board, admin *adminapp.AdminController, sess *session.Session) {
	steps := []loadStep{
		{"chats", chats.LoadChats},
		{"inbox", inbox.Load},
		{"groups", groups.LoadGroups},
		{"posts", func(ctx context.Context) error { return board.SetView(ctx, postdomain.ViewAll) }},
	}
	if sess.HasRole(token.RoleAdmin) {
		steps = append(steps, loadStep{"users", admin.LoadUsers})
	}
	for _, s := range steps {
		if err := s.run(ctx); err != nil {
			logger.Log.Warn("initial load failed", zap.String("view", s.name), zap.Error(err))
		}
	}
}

func newTransport(cfg config.Client, name, wsURL string, sess *session.Session, rdb *redis.Client, nc *nats.Conn) realtime.Transport {
	switch cfg.Realtime.Transport {
	case "redis":
		return realtime.NewRedisTransport(rdb)
	case "nats":
		return realtime.NewNatsTransport(nc, cfg.Realtime.QueueSize)
	default:
		return realtime.NewStompTransport(name, wsURL, sess, cfg.Realtime.ReconnectDelay, cfg.Realtime.Heartbeat)
	}
}

// supervise restart the transport after delay until ctx is done
func supervise(ctx context.Context, name string, t realtime.Transport, destinations []string, sink realtime.Sink, delay time.Duration) {
	for {
		err := t.Run(ctx, destinations, sink)
		if ctx.Err() != nil {
			return
		}
		logger.Log.Warn("transport stopped, retrying", zap.String("transport", name), zap.Duration("delay", delay), zap.Error(err))
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

func shutdown(app *fiber.App, dispatcher *realtime.Dispatcher, sess *session.Session) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Log.Warn("fiber shutdown failed", zap.Error(err))
	}
	if n := dispatcher.Drain(ctx); n > 0 {
		logger.Log.Info("drained push queue", zap.Int("envelopes", n))
	}
	if err := sess.Logout(ctx); err != nil {
		logger.Log.Warn("logout failed", zap.Error(err))
	}
}
