// Package httpapi is the thin HTTP surface over the dispatch gateway and
// the credential store.
package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"llm_dispatch/internal/config"
	"llm_dispatch/internal/dispatch"
	"llm_dispatch/internal/middleware"
	"llm_dispatch/internal/models"
	"llm_dispatch/internal/secrets"
	"llm_dispatch/internal/storage"
	"llm_dispatch/internal/telemetry"
)

// Gateway is the dispatch entry point the handlers call.
// *dispatch.Gateway satisfies it.
type Gateway interface {
	DispatchRequest(ctx context.Context, profile dispatch.Profile, ciphertext string, kind dispatch.EndpointKind, payload map[string]any) (*dispatch.Response, error)
}

// CredentialStore is the credential persistence surface the handlers use.
// *storage.CredentialRepository satisfies it.
type CredentialStore interface {
	SaveProviderToken(ctx context.Context, provider, name, token string) (*models.ProviderCredential, error)
	GetProviderToken(ctx context.Context, provider string) (string, error)
	SaveGitToken(ctx context.Context, remoteURL, token string) (*models.GitCredential, error)
}

// RecordQueue receives telemetry records; *telemetry.Worker satisfies it.
type RecordQueue interface {
	Enqueue(ctx context.Context, record *models.DispatchRecord) error
}

// Dependencies aggregates the services the HTTP layer needs.
type Dependencies struct {
	Gateway     Gateway
	Credentials CredentialStore
	Telemetry   RecordQueue

	// Worker and DB are retained for shutdown.
	Worker *telemetry.Worker
	DB     *storage.DB
}

// NewRouter wires the full dependency graph and returns the mux plus the
// dependencies the caller must shut down.
func NewRouter(cfg *config.Config) (*http.ServeMux, *Dependencies, error) {
	db, err := storage.NewDB(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	cipher, err := secrets.NewCipherFromBase64(cfg.EncryptionKey)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to initialize credential cipher: %w", err)
	}

	credentials := storage.NewCredentialRepository(db, cipher)
	usage := storage.NewUsageRepository(db)

	queueCfg := telemetry.DefaultQueueConfig(cfg.Telemetry.QueueName)
	queueCfg.BatchSize = cfg.Telemetry.BatchSize
	queueCfg.BatchTimeout = cfg.Telemetry.BatchTimeout
	queueCfg.MaxRetries = cfg.Telemetry.MaxRetries
	queueCfg.RetryBackoff = cfg.Telemetry.RetryBackoff
	queueCfg.RedisAddr = cfg.Redis.Address
	queueCfg.RedisPassword = cfg.Redis.Password
	queueCfg.RedisDB = cfg.Redis.DB

	var queue telemetry.Queue
	if cfg.Telemetry.UseRedis {
		queue, err = telemetry.NewRedisQueue(queueCfg)
		if err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to initialize telemetry queue: %w", err)
		}
	} else {
		queue = telemetry.NewMemoryQueue(queueCfg)
	}

	var archiver telemetry.Archiver
	if cfg.Telemetry.S3Enabled && cfg.Telemetry.S3Bucket != "" {
		s3Archiver, err := telemetry.NewS3Archiver(context.Background(),
			cfg.Telemetry.S3Bucket, cfg.Telemetry.S3Region,
			cfg.Telemetry.S3Prefix, cfg.Telemetry.ArchiveSource)
		if err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to initialize S3 archiver: %w", err)
		}
		archiver = s3Archiver
	}

	worker := telemetry.NewWorker(queue, usage, archiver, queueCfg)
	worker.Start(context.Background())

	resolver := dispatch.NewResolver(cfg.Dispatch.ChatTimeout, cfg.Dispatch.ResponsesTimeout)
	fallbacks := make([]dispatch.Step, 0, len(cfg.Dispatch.FallbackKinds))
	for _, kind := range cfg.Dispatch.FallbackKinds {
		fallbacks = append(fallbacks, dispatch.Step{Kind: dispatch.EndpointKind(kind)})
	}
	gateway := dispatch.NewGateway(cipher, resolver, dispatch.NewDispatcher(), fallbacks)

	deps := &Dependencies{
		Gateway:     gateway,
		Credentials: credentials,
		Telemetry:   worker,
		Worker:      worker,
		DB:          db,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/dispatch", deps.handleDispatch)

	adminJWT := middleware.AdminJWT(cfg.JWTSecret)
	mux.Handle("/admin/credentials/provider", adminJWT(http.HandlerFunc(deps.handleSaveProviderCredential)))
	mux.Handle("/admin/credentials/git", adminJWT(http.HandlerFunc(deps.handleSaveGitCredential)))

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			respondWithError(w, http.StatusServiceUnavailable, "database unreachable")
			return
		}
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return mux, deps, nil
}
