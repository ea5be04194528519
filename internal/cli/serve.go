package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"bookhive-backend/docs"
	"bookhive-backend/internal/circulation/loanquery"
	"bookhive-backend/internal/circulation/loans"
	"bookhive-backend/internal/platform/auth"
	"bookhive-backend/internal/platform/db"
	"bookhive-backend/internal/platform/httpx"
)

const shutdownTimeout = 10 * time.Second

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := db.LoadConfig(rootOpts.ConfigPath)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func newLogger(mode string) *slog.Logger {
	if mode == db.ModeRelease {
		return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func serve(ctx context.Context, cfg *db.Config) error {
	logger := newLogger(cfg.Mode)
	slog.SetDefault(logger)
	logger.Info("starting", slog.String("mode", cfg.Mode), slog.String("version", cfg.Version))

	// ストレージはここで1回だけ開き、各サービスに参照で渡す
	h, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer h.Close()
	logger.Info("connected to DB", slog.String("driver", string(h.Dialect)), slog.String("dbname", cfg.DB.DBName))

	if cfg.DB.AutoMigrate {
		if err := db.Migrate(ctx, h); err != nil {
			return err
		}
		logger.Info("schema applied")
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           NewRouter(cfg, h, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		var err error
		if cfg.TLSEnabled() {
			logger.Info("listening", slog.String("addr", srv.Addr), slog.Bool("tls", true))
			err = srv.ListenAndServeTLS(cfg.Certificate.Cert, cfg.Certificate.Key)
		} else {
			logger.Info("listening", slog.String("addr", srv.Addr), slog.Bool("tls", false))
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Graceful shutdown
	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-sigCtx.Done():
	}

	logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// NewRouter builds the gin engine with every circulation route mounted
// under /api/v1.
func NewRouter(cfg *db.Config, h *db.Handle, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(httpx.RequestID(), httpx.AccessLog(logger), gin.Recovery())
	_ = r.SetTrustedProxies(nil)

	if cfg.Mode == db.ModeDev {
		// CORS（開発中のみ必要）
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:3000"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", httpx.HeaderRequestID},
			ExposeHeaders:    []string{"Content-Length", "Location", httpx.HeaderRequestID},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowCredentials: true,
		}))

		docs.SwaggerInfo.Version = cfg.Version
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// ヘルス
	r.GET("/healthz", func(c *gin.Context) {
		if err := h.PingContext(c.Request.Context()); err != nil {
			c.String(http.StatusServiceUnavailable, "db unavailable")
			return
		}
		c.String(http.StatusOK, "ok")
	})

	loanSvc := loans.NewService(h,
		loans.WithLoanPeriod(cfg.LoanPeriod()),
		loans.WithLogger(logger.With(slog.String("component", "loans"))),
	)
	querySvc := loanquery.NewService(h,
		loanquery.WithLocation(cfg.Location()),
		loanquery.WithDueSoonDays(cfg.Loans.DueSoonDays),
		loanquery.WithLogger(logger.With(slog.String("component", "loanquery"))),
	)

	// /api/v1
	api := r.Group("/api/v1", auth.RequireAuth([]byte(cfg.Auth.JWTSecret)))
	loans.RegisterRoutes(api, loanSvc)
	loanquery.RegisterRoutes(api, querySvc)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "NOT_FOUND", "message": "no such route"}})
	})

	return r
}
