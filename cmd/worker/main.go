package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"logomotion/internal/domain"
	"logomotion/internal/infra"
	"logomotion/internal/infra/credentials"
	"logomotion/internal/providers/veo"
	"logomotion/internal/providers/video"
	"logomotion/internal/sqlinline"
	"logomotion/internal/storage"
	"logomotion/pkg/imagedata"
)

// queuePollInterval is how often the worker checks for newly queued jobs; it
// is unrelated to the provider's operation poll interval.
const queuePollInterval = 2 * time.Second

type job struct {
	ID       string
	Prompt   string
	Aspect   string
	LogoKey  string
	LogoMIME string
}

type jobWorker struct {
	ctx       context.Context
	runner    *infra.SQLRunner
	logger    infra.Logger
	generator video.Generator
	store     *storage.FileStore
}

var errNoJobAvailable = errors.New("no job available")

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer pool.Close()

	runner := infra.NewSQLRunner(pool, logger)

	fileStore, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure storage")
	}

	apiKey := strings.TrimSpace(cfg.VeoAPIKey)
	if apiKey == "" {
		credStore := credentials.NewStore(runner)
		keyFromStore, err := credStore.VeoAPIKey(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("worker: failed to load veo api key from store")
		} else {
			apiKey = keyFromStore
		}
	}
	if apiKey == "" {
		logger.Fatal().Msg("worker: veo api key missing; set VEO_API_KEY or run cmd/veokey")
	}

	veoClient, err := veo.NewClient(veo.Options{
		APIKey:       apiKey,
		BaseURL:      cfg.VeoBaseURL,
		Model:        cfg.VeoModel,
		PollInterval: cfg.VeoPollInterval,
		HTTPClient:   &http.Client{Timeout: 60 * time.Second},
		Logger:       &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure veo client")
	}

	worker := &jobWorker{
		ctx:       ctx,
		runner:    runner,
		logger:    logger,
		generator: video.NewVeoGenerator(veoClient),
		store:     fileStore,
	}

	if err := worker.Run(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("worker: stopped with error")
	}
	logger.Info().Msg("worker: stopped")
}

func (w *jobWorker) Run() error {
	w.logger.Info().Msg("worker: started")
	for {
		select {
		case <-w.ctx.Done():
			return w.ctx.Err()
		default:
		}

		j, err := w.claimJob()
		if err != nil {
			if errors.Is(err, errNoJobAvailable) {
				time.Sleep(queuePollInterval)
				continue
			}
			w.logger.Error().Err(err).Msg("worker: failed to claim job")
			time.Sleep(queuePollInterval)
			continue
		}

		w.handleJob(j)
	}
}

func (w *jobWorker) claimJob() (job, error) {
	row := w.runner.QueryRow(w.ctx, sqlinline.QClaimJob)
	var j job
	if err := row.Scan(&j.ID, &j.Prompt, &j.Aspect, &j.LogoKey, &j.LogoMIME); err != nil {
		if infra.IsNoRows(err) {
			return job{}, errNoJobAvailable
		}
		return job{}, err
	}
	return j, nil
}

func (w *jobWorker) handleJob(j job) {
	w.logger.Info().Str("job_id", j.ID).Msg("worker: picked job")
	if err := w.process(j); err != nil {
		w.logger.Error().Err(err).Str("job_id", j.ID).Msg("worker: job failed")
		if _, execErr := w.runner.Exec(w.ctx, sqlinline.QMarkJobFailed, j.ID, err.Error()); execErr != nil {
			w.logger.Error().Err(execErr).Str("job_id", j.ID).Msg("worker: mark failed errored")
		}
		return
	}
	if _, err := w.runner.Exec(w.ctx, sqlinline.QMarkJobSucceeded, j.ID); err != nil {
		w.logger.Error().Err(err).Str("job_id", j.ID).Msg("worker: mark succeeded errored")
	}
}

func (w *jobWorker) process(j job) error {
	aspect, err := domain.ParseAspectRatio(j.Aspect)
	if err != nil {
		return err
	}
	logoBytes, err := w.store.Read(w.ctx, j.LogoKey)
	if err != nil {
		return fmt.Errorf("load logo: %w", err)
	}
	logo := &imagedata.Image{Data: logoBytes, MIME: j.LogoMIME}

	asset, err := w.generator.Generate(w.ctx, video.GenerateRequest{
		Prompt:      j.Prompt,
		Image:       logo,
		AspectRatio: aspect,
		RequestID:   j.ID,
	})
	if err != nil {
		return err
	}

	key := fmt.Sprintf("videos/%s/video%s", j.ID, extensionForMIME(asset.MIME))
	storedKey, err := w.store.Write(w.ctx, key, asset.Data)
	if err != nil {
		return fmt.Errorf("persist video: %w", err)
	}

	if _, err := w.runner.Exec(
		w.ctx,
		sqlinline.QInsertAsset,
		j.ID,
		storedKey,
		asset.MIME,
		int64(len(asset.Data)),
		asset.SourceURI,
	); err != nil {
		return fmt.Errorf("record video asset: %w", err)
	}

	w.logger.Info().
		Str("job_id", j.ID).
		Str("storage_key", storedKey).
		Int("bytes", len(asset.Data)).
		Msg("worker: video stored")
	return nil
}

func extensionForMIME(mime string) string {
	switch strings.ToLower(strings.TrimSpace(mime)) {
	case "video/mp4", "":
		return ".mp4"
	case "video/webm":
		return ".webm"
	default:
		return ".bin"
	}
}
