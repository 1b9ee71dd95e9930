package main

import (
	"context"
	"log"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/yi-nology/stl_backend/biz/dal/db"
	"github.com/yi-nology/stl_backend/biz/handler"
	"github.com/yi-nology/stl_backend/biz/handler/version"
	"github.com/yi-nology/stl_backend/biz/middleware"
	"github.com/yi-nology/stl_backend/biz/revision"
	"github.com/yi-nology/stl_backend/biz/service"
	"github.com/yi-nology/stl_backend/pkg/config"
	"github.com/yi-nology/stl_backend/pkg/database"
	"github.com/yi-nology/stl_backend/pkg/lock"
	"github.com/yi-nology/stl_backend/pkg/logger"
	pkgredis "github.com/yi-nology/stl_backend/pkg/redis"
	"github.com/yi-nology/stl_backend/pkg/storage"

	"go.uber.org/zap"
)

// Set at build time with -ldflags "-X main.Version=..."
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	version.AppVersion = Version
	version.AppGitCommit = GitCommit
	version.AppBuildTime = BuildTime

	cfg := config.MustLoad("config.yaml")

	zlog, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, cfg.Log.Service)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	gdb, err := database.Open(cfg.Database)
	if err != nil {
		zlog.Fatal("open database", zap.Error(err))
	}
	if err := database.Migrate(gdb); err != nil {
		zlog.Fatal("migrate database", zap.Error(err))
	}
	isolation, err := database.IsolationLevel(cfg.Database.Isolation)
	if err != nil {
		zlog.Fatal("database isolation", zap.Error(err))
	}

	initial, err := revision.ParseStatus(cfg.Revision.InitialStatus)
	if err != nil {
		zlog.Fatal("revision.initial_status", zap.Error(err))
	}
	opts := []revision.Option{
		revision.WithLogger(zlog),
		revision.WithInitialStatus(initial),
	}

	rdb, err := pkgredis.NewClient(cfg.Redis)
	if err != nil {
		zlog.Fatal("connect redis", zap.Error(err))
	}
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
		redisLock := lock.New(rdb, cfg.Redis.LockPrefix, cfg.Redis.LockTTL, cfg.Redis.LockTimeout)
		opts = append(opts, revision.WithLocker(revision.TimeoutAs(redisLock, lock.ErrTimeout)))
		zlog.Info("lineage locks backed by redis", zap.String("address", cfg.Redis.Address))
	} else {
		opts = append(opts, revision.WithLocker(revision.NewKeyedMutex(cfg.Redis.LockTimeout)))
	}

	manager, err := revision.NewManager(db.NewRevisionStore(gdb, isolation), opts...)
	if err != nil {
		zlog.Fatal("revision manager", zap.Error(err))
	}

	st, err := storage.New(cfg.Storage)
	if err != nil {
		zlog.Fatal("init storage", zap.Error(err))
	}
	svcOpts := []service.Option{service.WithLogger(zlog)}
	if st != nil {
		svcOpts = append(svcOpts, service.WithStorage(st))
		zlog.Info("revision exports enabled", zap.String("storage", st.Type()))
	}
	svc := service.NewService(gdb, manager, svcOpts...)

	h := server.New(
		server.WithHostPorts(cfg.Server.Address),
		server.WithExitWaitTime(5*time.Second),
	)
	h.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Auth(),
		middleware.Logging(),
		middleware.CORS(&cfg.CORS),
	)
	if cfg.Server.RequireUser {
		h.Use(middleware.RequireAuth())
	}
	register(h, cfg, gdb, handler.NewHandler(svc))

	h.OnShutdown = append(h.OnShutdown, func(ctx context.Context) {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	hlog.Infof("stl backend %s listening on %s", Version, cfg.Server.Address)
	h.Spin()
}
