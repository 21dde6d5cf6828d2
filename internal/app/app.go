package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hitoshi/leaderboard/internal/claim"
	"github.com/hitoshi/leaderboard/internal/config"
	"github.com/hitoshi/leaderboard/internal/database"
	"github.com/hitoshi/leaderboard/internal/handler"
	"github.com/hitoshi/leaderboard/internal/logger"
	"github.com/hitoshi/leaderboard/internal/metrics"
	"github.com/hitoshi/leaderboard/internal/repository"
	"github.com/hitoshi/leaderboard/internal/security"
	"github.com/hitoshi/leaderboard/internal/user"
)

// Init はアプリケーションの初期化を行う。
// .envと環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, *slog.Logger, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, slog.LevelInfo)

	// 2. .envがあれば読み込む（既存の環境変数が優先）
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, nil, fmt.Errorf("failed to load .env: %w", err)
	}

	// 3. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 4. 設定されたログレベルで再構成する
	l := logger.SetupDefault(w, logger.ParseLevel(cfg.LogLevel))

	return cfg, l, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。SIGINTまたはSIGTERMでserveを停止する。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "5000"
		}
		return runHealthcheck(port)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return run(ctx, w, cmd)
}

func run(ctx context.Context, w io.Writer, cmd Command) error {
	cfg, l, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	l.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("store_driver", cfg.StoreDriver),
		slog.String("port", cfg.ServerPort),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	case CommandSeed:
		return runSeed(ctx, cfg)
	default:
		return runServe(ctx, cfg, l)
	}
}

// store は選択されたストア実装のリポジトリ群をまとめる。
type store struct {
	users  repository.UserRepository
	claims repository.ClaimRepository
	pinger repository.Pinger
	close  func() error
}

// openStore はSTORE_DRIVERに応じたストアを開く。
// postgresの場合は接続確認まで行う。
func openStore(ctx context.Context, cfg *config.Config) (*store, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		mem := repository.NewMemoryStore()
		slog.Warn("using in-memory store; data is lost on restart")
		return &store{
			users:  mem.Users(),
			claims: mem.Claims(),
			pinger: mem,
			close:  func() error { return nil },
		}, nil
	}

	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	slog.Info("database connection established")

	return &store{
		users:  repository.NewPostgresUserRepo(db),
		claims: repository.NewPostgresClaimRepo(db),
		pinger: db,
		close:  db.Close,
	}, nil
}

// newRegistry はアプリケーション用のPrometheusレジストリを生成する。
func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// buildHandler は全依存関係をワイヤリングしたHTTPハンドラーを返す。
// 返されるuser.Serviceはシード投入に使用する。
func buildHandler(cfg *config.Config, l *slog.Logger, st *store, reg *prometheus.Registry) (http.Handler, *user.Service) {
	// 1. メトリクス
	collector := metrics.NewCollector(reg)

	// 2. ドメインサービスの初期化
	userService := user.NewService(st.users, security.NewNameSanitizer(), collector)
	claimService := claim.NewService(st.users, st.claims, claim.NewTimeSeededRandomSource(), collector)

	// 3. ルーターの構築
	deps := &handler.RouterDeps{
		Logger:            l,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		HTTPMetrics:       collector,
		Gatherer:          reg,
		HealthChecker:     st.pinger,
		UserService:       handler.NewUserServiceAdapter(userService),
		ClaimService:      handler.NewClaimServiceAdapter(claimService),
	}

	return handler.NewRouter(deps), userService
}

// runServe はAPIサーバーモードで起動する。
// ストアを開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// ctxがキャンセルされるとグレースフルシャットダウンを行う。
func runServe(ctx context.Context, cfg *config.Config, l *slog.Logger) error {
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.close()

	router, userService := buildHandler(cfg, l, st, newRegistry())

	if cfg.SeedOnStart {
		if _, err := userService.SeedDemoUsers(ctx); err != nil {
			return fmt.Errorf("failed to seed demo users: %w", err)
		}
	}

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	listenErr := make(chan error, 1)
	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErr <- err
		}
		close(listenErr)
	}()

	select {
	case err := <-listenErr:
		if err != nil {
			return fmt.Errorf("server listen error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// ErrSeedRequiresPersistentStore はSTORE_DRIVER=memoryでseedコマンドが実行されたことを示す。
// メモリストアではserve起動時のSEED_ON_STARTでシードする。
var ErrSeedRequiresPersistentStore = errors.New("seed has no effect with STORE_DRIVER=memory; use SEED_ON_START with serve")

// runSeed はデモユーザーを投入する。
// ストアにユーザーが存在する場合は何もしない。
func runSeed(ctx context.Context, cfg *config.Config) error {
	// メモリストアはプロセス終了で消えるため、seedコマンド単体では意味がない
	if cfg.StoreDriver == config.StoreDriverMemory {
		return ErrSeedRequiresPersistentStore
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.close()

	userService := user.NewService(st.users, security.NewNameSanitizer(), nil)
	n, err := userService.SeedDemoUsers(ctx)
	if err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}

	slog.Info("seed completed", slog.Int("created", n))
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	if cfg.DatabaseURL == "" {
		return errors.New("migration failed: DATABASE_URL is not set")
	}

	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	version, err := database.RunMigrations(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully", slog.Uint64("version", uint64(version)))
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
