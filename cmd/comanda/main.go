package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/segmentio/kafka-go"
	"go.mongodb.org/mongo-driver/mongo"
	mongoOptions "go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	config "github.com/davicafu/comanda/internal/config"
	"github.com/davicafu/comanda/internal/ordering/application"
	"github.com/davicafu/comanda/internal/ordering/domain"
	inboundEvents "github.com/davicafu/comanda/internal/ordering/infra/inbound/events"
	inboundHttp "github.com/davicafu/comanda/internal/ordering/infra/inbound/http"
	chAnalytics "github.com/davicafu/comanda/internal/ordering/infra/outbound/analytics/clickhouse"
	"github.com/davicafu/comanda/internal/ordering/infra/outbound/auth"
	"github.com/davicafu/comanda/internal/ordering/infra/outbound/cache"
	"github.com/davicafu/comanda/internal/ordering/infra/outbound/db"
	outboundEvents "github.com/davicafu/comanda/internal/ordering/infra/outbound/events"
	"github.com/davicafu/comanda/internal/ordering/infra/outbound/notifications"
	mongoViews "github.com/davicafu/comanda/internal/ordering/infra/outbound/views/mongo"
	"github.com/davicafu/comanda/pkg/logger"
)

// ---------------- Main ----------------
func main() {
	logger.Init()          // inicializa zap
	log := logger.Logger() // obtiene logger estructurado
	defer log.Sync()       // flush buffers al salir

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()

	// ---------------- DB ----------------
	dialect := db.SQLite
	dsn := cfg.SQLitePath
	if cfg.DBDriver == "postgres" {
		dialect = db.Postgres
		dsn = cfg.PostgresDSN
	}

	pool, err := db.Open(dialect, dsn)
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.PingContext(ctx); err != nil {
		log.Fatal("failed to ping database", zap.Error(err))
	}
	if err := db.InitSchema(ctx, pool); err != nil {
		log.Fatal("failed to initialize schema", zap.Error(err))
	}

	factory := db.NewFactory(pool, dialect, cfg.HealthTimeout, log)

	// ---------------- Cache ----------------
	var catalogCache domain.CatalogCache
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	redisUp := rdb.Ping(ctx).Err() == nil
	if redisUp {
		catalogCache = cache.NewRedisCache(rdb)
		log.Info("✅ Redis conectado, cache habilitado")
	} else {
		log.Warn("⚠️ Redis no disponible, cache en memoria")
		catalogCache = cache.NewInMemoryCache(5 * time.Minute)
	}

	// ---------------- Transporte de eventos ----------------
	var transport domain.TransportPublisher
	consumerHandler := inboundEvents.NewOrderConsumer(log)

	if cfg.Transport == "kafka" {
		log.Info("🚀 Usando Kafka como transporte de eventos")
		// El writer es genérico: el topic viaja en cada mensaje.
		writer := kafka.NewWriter(kafka.WriterConfig{
			Brokers: cfg.KafkaBrokers,
		})
		defer writer.Close()
		transport = outboundEvents.NewKafkaPublisher(writer, log)

		reader := kafka.NewReader(kafka.ReaderConfig{
			Brokers:  cfg.KafkaBrokers,
			Topic:    domain.ChannelOrders,
			GroupID:  "comanda-order-service",
			MinBytes: 10e3, // 10KB
			MaxBytes: 10e6, // 10MB
		})
		defer reader.Close()
		inboundEvents.NewKafkaSubscriber(reader, consumerHandler, log).Start(ctx)
	} else if redisUp {
		log.Info("🚀 Usando Redis pub/sub como transporte de eventos")
		transport = outboundEvents.NewRedisPublisher(rdb, log)
		inboundEvents.NewRedisSubscriber(rdb, domain.ChannelOrders, consumerHandler, log).Start(ctx)
	} else {
		log.Warn("⚠️ Sin transporte de eventos: Redis caído y Kafka no configurado")
	}

	// ---------------- Sinks opcionales ----------------
	var analytics domain.OrderAnalytics
	if cfg.ClickHouseAddr != "" {
		repo, err := chAnalytics.NewOrderAnalyticsRepo(cfg.ClickHouseAddr, cfg.ClickHouseDB)
		if err != nil {
			log.Warn("⚠️ ClickHouse no disponible, analítica deshabilitada", zap.Error(err))
		} else {
			analytics = repo
			log.Info("✅ ClickHouse conectado, analítica habilitada")
		}
	}

	var views domain.OrderViews
	if cfg.MongoURI != "" {
		client, err := mongo.Connect(ctx, mongoOptions.Client().ApplyURI(cfg.MongoURI))
		if err == nil {
			defer client.Disconnect(context.Background())
			repo, errRepo := mongoViews.NewOrderViewRepo(ctx, client, cfg.MongoDB)
			if errRepo == nil {
				views = repo
				log.Info("✅ MongoDB conectado, read model habilitado")
			} else {
				err = errRepo
			}
		}
		if views == nil {
			log.Warn("⚠️ MongoDB no disponible, read model deshabilitado", zap.Error(err))
		}
	}

	var notifier domain.Notifier
	if cfg.SMTPAddr != "" {
		notifier = notifications.NewEmailNotifier(cfg.SMTPAddr, cfg.SMTPFrom, log)
		log.Info("✉️ Notificaciones por email habilitadas", zap.String("smtp", cfg.SMTPAddr))
	} else {
		notifier = notifications.NewLogNotifier(log)
		log.Info("🔔 Notificaciones por log (SMTP_ADDR vacío)")
	}

	// ---------------- Bus de mensajes ----------------
	bus := application.Bootstrap(application.Deps{
		Factory:   factory,
		Notifier:  notifier,
		Transport: transport,
		Analytics: analytics,
		Views:     views,
		Cache:     catalogCache,
		Hasher:    auth.NewBcryptHasher(),
		Logger:    log,
	})

	// ---------------- HTTP ----------------
	gin.SetMode(gin.ReleaseMode)
	issuer := inboundHttp.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL, log)
	router := inboundHttp.NewRouter(bus, views, issuer)

	log.Info("🚀 Server running",
		zap.String("url", "http://localhost:"+cfg.HTTPPort),
	)
	if err := router.Run(":" + cfg.HTTPPort); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}
