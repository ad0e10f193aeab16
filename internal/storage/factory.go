package storage

import (
	"go.uber.org/zap"

	"github.com/zaphub/zaphub/internal/config"
	"github.com/zaphub/zaphub/internal/pkg/queue"
	queue_memory "github.com/zaphub/zaphub/internal/pkg/queue/memory"
	queue_redis "github.com/zaphub/zaphub/internal/pkg/queue/redis"
	"github.com/zaphub/zaphub/internal/pkg/ratelimiter"
	limiter_memory "github.com/zaphub/zaphub/internal/pkg/ratelimiter/memory"
	limiter_redis "github.com/zaphub/zaphub/internal/pkg/ratelimiter/redis"
	"github.com/zaphub/zaphub/internal/storage/postgres"
	storage_redis "github.com/zaphub/zaphub/internal/storage/redis"
	"github.com/zaphub/zaphub/internal/storage/sqlite"
)

type Repositories struct {
	Instance      InstanceRepository
	SessionStatus SessionStatusRepository // Pode ser nil se EVOLUTION_DATABASE_URL não estiver configurado
	RedisClient   *storage_redis.Client   // Pode ser nil se Redis estiver desabilitado
	WebhookQueue  queue.Queue
	RateLimiter   ratelimiter.Limiter

	closers []func() error
}

func NewRepositories(cfg config.Config, log *zap.Logger) (*Repositories, error) {
	log.Info("inicializando repositórios",
		zap.String("driver", cfg.Storage.Driver),
	)

	var (
		webhookQueue queue.Queue
		rateLimiter  ratelimiter.Limiter
		storeRedis   *storage_redis.Client
		err          error
	)

	// Inicializa Redis apenas se explicitamente habilitado
	useRedis := cfg.Redis.Enabled

	if useRedis {
		log.Info("inicializando Redis...")
		storeRedis, err = storage_redis.New(cfg.Redis, log)
		if err != nil {
			log.Error("erro ao conectar com Redis", zap.Error(err))
			return nil, err
		}

		redisClient := storeRedis.RDB()
		webhookQueue = queue_redis.NewQueue(redisClient, "webhook:events")
		rateLimiter = limiter_redis.NewLimiter(redisClient)
		log.Info("Redis conectado, fila e limiter configurados")
	} else {
		log.Info("usando implementações em memória (Redis desabilitado)")
		webhookQueue = queue_memory.NewQueue(cfg.Webhook.QueueCapacity)
		rateLimiter = limiter_memory.NewLimiter()
		storeRedis = nil
	}

	repos := &Repositories{
		RedisClient:  storeRedis,
		WebhookQueue: webhookQueue,
		RateLimiter:  rateLimiter,
	}
	if storeRedis != nil {
		repos.closers = append(repos.closers, storeRedis.Close)
	}

	switch cfg.Storage.Driver {
	case "sqlite":
		log.Debug("criando conexão com SQLite")
		db, err := sqlite.New(cfg.Storage.DataDir, log)
		if err != nil {
			log.Error("erro ao conectar com SQLite", zap.Error(err))
			return nil, err
		}

		repos.Instance = sqlite.NewInstanceRepository(db)
		repos.closers = append(repos.closers, db.Close)
		log.Info("repositórios SQLite criados com sucesso", zap.String("data_dir", cfg.Storage.DataDir))

	case "postgres", "":
		log.Debug("criando conexão com PostgreSQL")
		db, err := postgres.New(cfg.DB, log)
		if err != nil {
			log.Error("erro ao conectar com PostgreSQL", zap.Error(err))
			return nil, err
		}

		repos.Instance = postgres.NewInstanceRepository(db)
		repos.closers = append(repos.closers, func() error { db.Close(); return nil })
		log.Info("repositórios PostgreSQL criados com sucesso")

	default:
		log.Error("driver de storage desconhecido",
			zap.String("driver", cfg.Storage.Driver),
		)
		return nil, &ErrUnknownDriver{Driver: cfg.Storage.Driver}
	}

	// Banco secundário do Evolution, usado apenas na consulta de status de sessão
	if cfg.EvolutionDB.URL != "" {
		log.Debug("criando conexão com banco do Evolution")
		evoDB, err := postgres.NewFromURL(cfg.EvolutionDB.URL, log)
		if err != nil {
			log.Error("erro ao conectar com banco do Evolution", zap.Error(err))
			return nil, err
		}

		repos.SessionStatus = postgres.NewSessionStatusRepository(evoDB)
		repos.closers = append(repos.closers, func() error { evoDB.Close(); return nil })
		log.Info("banco do Evolution conectado")
	}

	return repos, nil
}

// Close libera todas as conexões abertas pela fábrica, na ordem inversa.
func (r *Repositories) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		_ = r.closers[i]()
	}
}

type ErrUnknownDriver struct {
	Driver string
}

func (e *ErrUnknownDriver) Error() string {
	return "storage: driver desconhecido: " + e.Driver
}
