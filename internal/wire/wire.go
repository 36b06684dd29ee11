//go:build wireinject
// +build wireinject

package wire

import (
	"net/http"

	"github.com/google/wire"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"crosspost/internal/account"
	"crosspost/internal/cache"
	"crosspost/internal/common"
	"crosspost/internal/config"
	"crosspost/internal/dbmysql"
	"crosspost/internal/platform"
	"crosspost/internal/post"
	"crosspost/internal/publish"
	"crosspost/internal/scheduler"
	"crosspost/internal/stats"
	"crosspost/internal/user"
)

type Application struct {
	Config *config.Config
	DB     *gorm.DB
	Cache  *cache.Cache
	Logger zerolog.Logger

	Registry     *platform.Registry
	Orchestrator *publish.Orchestrator
	Scheduler    *scheduler.Scheduler

	UserHandler    *user.Handler
	PostHandler    *post.Handler
	PublishHandler *publish.Handler
	AccountHandler *account.Handler
	StatsHandler   *stats.Handler
}

func InitializeApplication() (*Application, error) {
	wire.Build(
		config.Load,
		ProvideLogger,
		dbmysql.NewMySQL,
		ProvideCache,
		ProvideHTTPClient,
		platform.NewRegistry,
		post.NewPostRepository,
		user.NewUserRepository,
		account.NewAccountRepository,
		publish.NewResultRepository,
		wire.Bind(new(publish.AccountResolver), new(account.AccountRepository)),
		wire.Bind(new(publish.PostStatusStore), new(post.PostRepository)),
		wire.Bind(new(publish.PostStore), new(post.PostRepository)),
		ProvideOrchestrator,
		ProvideScheduler,
		user.NewUserService,
		user.NewHandler,
		post.NewPostService,
		post.NewHandler,
		publish.NewHandler,
		account.NewOAuthClient,
		account.NewAccountService,
		account.NewHandler,
		stats.NewStatsService,
		stats.NewHandler,
		wire.Struct(new(Application), "*"),
	)
	return &Application{}, nil
}

func ProvideLogger(cfg *config.Config) zerolog.Logger {
	return common.NewLogger(cfg.Logging.Level, cfg.Logging.Console)
}

func ProvideHTTPClient(cfg *config.Config) *http.Client {
	return &http.Client{Timeout: cfg.Publish.HTTPTimeout}
}

func ProvideCache(cfg *config.Config) *cache.Cache {
	if !cfg.Redis.Enabled {
		return cache.New(nil)
	}
	return cache.New(cache.MustRedis(cfg.Redis.URL))
}

func ProvideOrchestrator(
	cfg *config.Config,
	registry *platform.Registry,
	results publish.ResultRepository,
	accounts publish.AccountResolver,
	posts publish.PostStatusStore,
	c *cache.Cache,
	log zerolog.Logger,
) *publish.Orchestrator {
	return publish.NewOrchestrator(cfg, registry, results, accounts, posts, c, log)
}

func ProvideScheduler(cfg *config.Config, repo post.PostRepository, orch *publish.Orchestrator, log zerolog.Logger) *scheduler.Scheduler {
	return scheduler.New(cfg.Publish.SchedulerSpec, repo, orch, log)
}
