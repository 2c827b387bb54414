package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/simaogato/walletflow-backend/internal/adapter/audit"
	grpcadapter "github.com/simaogato/walletflow-backend/internal/adapter/grpc"
	"github.com/simaogato/walletflow-backend/internal/adapter/lock"
	"github.com/simaogato/walletflow-backend/internal/adapter/messaging"
	"github.com/simaogato/walletflow-backend/internal/adapter/repository/memory"
	"github.com/simaogato/walletflow-backend/internal/adapter/repository/postgres"
	"github.com/simaogato/walletflow-backend/internal/config"
	"github.com/simaogato/walletflow-backend/internal/domain"
	"github.com/simaogato/walletflow-backend/internal/platform/logger"
	"github.com/simaogato/walletflow-backend/internal/usecase/seeder"
	"github.com/simaogato/walletflow-backend/internal/usecase/transfer"
	"github.com/simaogato/walletflow-backend/internal/usecase/wallet"
)

const startupTimeout = 30 * time.Second

// stores groups the record store ports of the selected driver
type stores struct {
	wallets   domain.WalletRepository
	transfers domain.TransferRepository
	owners    domain.OwnerDirectory
	close     func() error
}

func main() {
	// 1. Configuration and logging
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, _, err := logger.New(logger.Config{
		Environment: logger.Environment(cfg.Environment),
		Level:       cfg.LogLevel,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	// 2. Record store
	st, err := openStores(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to open record store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer func() {
		if err := st.close(); err != nil {
			zlog.Warn("failed to close record store", zap.Error(err))
		}
	}()

	// 3. Wallet locks
	locker, closeLocker, err := openLocker(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to set up wallet locks", zap.String("driver", cfg.Lock.Driver), zap.Error(err))
	}
	defer closeLocker()

	// 4. Audit log and optional event publisher
	auditLog := audit.NewFileLog(cfg.AuditLogPath)

	var publisher domain.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		p, err := messaging.NewRabbitMQPublisher(cfg.RabbitMQ)
		if err != nil {
			zlog.Fatal("failed to connect event publisher", zap.Error(err))
		}
		defer func() { _ = p.Close() }()
		publisher = p
		zlog.Info("publishing transfer events", zap.String("exchange", cfg.RabbitMQ.Exchange))
	}

	// 5. Services (Use Cases)
	coordinator := transfer.NewCoordinator(st.wallets, st.transfers, auditLog, locker, publisher, zlog.Named("transfer"))
	walletService := wallet.NewWalletService(st.wallets, st.transfers, st.owners)

	if cfg.SeedDemo {
		demoSeeder := seeder.NewDemoSeeder(st.owners, st.wallets, walletService)
		ids, err := demoSeeder.Seed(ctx, seeder.DefaultDemoOwners())
		if err != nil {
			zlog.Fatal("failed to seed demo wallets", zap.Error(err))
		}
		for owner, id := range ids {
			zlog.Info("demo wallet ready", zap.String("owner", owner), zap.String("wallet_id", id.String()))
		}
	}

	// 6. gRPC server
	grpcServer := grpclib.NewServer(
		grpclib.ChainUnaryInterceptor(
			grpcadapter.LoggingInterceptor(zlog.Named("grpc")),
			grpcadapter.AuthInterceptor(cfg.APIToken),
		),
	)
	grpcadapter.RegisterTransferServiceServer(grpcServer, grpcadapter.NewServer(coordinator, walletService))

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(grpcadapter.ServiceName, healthpb.HealthCheckResponse_SERVING)

	addr := ":" + cfg.GRPCPort
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		zlog.Fatal("failed to listen", zap.String("addr", addr), zap.Error(err))
	}

	// Start server in a goroutine
	go func() {
		zlog.Info("gRPC server listening",
			zap.String("addr", addr),
			zap.String("store", cfg.StoreDriver),
			zap.String("locks", cfg.Lock.Driver),
			zap.String("audit_log", auditLog.Path()),
		)
		if err := grpcServer.Serve(lis); err != nil {
			zlog.Fatal("failed to serve gRPC server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	waitForShutdown(grpcServer, healthServer, zlog)
}

func openStores(ctx context.Context, cfg *config.Config, zlog *zap.Logger) (*stores, error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		db, err := postgres.Connect(ctx, cfg.Database.DSN(), 2*time.Second)
		if err != nil {
			return nil, err
		}
		if err := db.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		zlog.Info("connected to PostgreSQL")
		return &stores{
			wallets:   postgres.NewWalletRepository(db),
			transfers: postgres.NewTransferRepository(db),
			owners:    postgres.NewOwnerDirectory(db),
			close:     db.Close,
		}, nil
	case config.StoreMemory:
		zlog.Warn("using in-memory record store, data is lost on restart")
		return &stores{
			wallets:   memory.NewWalletRepository(),
			transfers: memory.NewTransferRepository(),
			owners:    memory.NewOwnerDirectory(),
			close:     func() error { return nil },
		}, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func openLocker(ctx context.Context, cfg *config.Config, zlog *zap.Logger) (transfer.Locker, func(), error) {
	switch cfg.Lock.Driver {
	case config.LockRedis:
		client := goredislib.NewClient(&goredislib.Options{Addr: cfg.Lock.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("failed to ping redis: %w", err)
		}

		opts := lock.DefaultOptions()
		opts.Expiry = cfg.Lock.Expiry
		opts.Tries = cfg.Lock.Tries
		opts.RetryDelay = cfg.Lock.RetryDelay
		opts.ExtendInterval = cfg.Lock.Expiry / 3

		locker, err := lock.NewRedisLocker(client, opts, zlog.Named("lock"))
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		return locker, func() { _ = client.Close() }, nil
	case config.LockMemory:
		return lock.NewKeyedMutex(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown lock driver %q", cfg.Lock.Driver)
	}
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the server
func waitForShutdown(grpcServer *grpclib.Server, healthServer *health.Server, zlog *zap.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	zlog.Info("shutting down gracefully", zap.String("signal", sig.String()))

	healthServer.Shutdown()
	grpcServer.GracefulStop()
	zlog.Info("gRPC server stopped")
}
