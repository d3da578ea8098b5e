// Command golemd runs the transcription HTTP service the desktop client
// talks to.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/golemvoice/golem/cache"
	"github.com/golemvoice/golem/internal/server"
	"github.com/golemvoice/golem/stt"
)

func main() {
	var (
		addr     = flag.String("addr", ":8000", "listen address")
		provider = flag.String("provider", "local", "speech-to-text provider: local or openai")
		model    = flag.String("model", "", "model name (ggml size for local, API model for openai)")
		modelDir = flag.String("model-dir", "", "directory for downloaded local models")
		cacheDir = flag.String("cache-dir", "", "transcript cache directory (empty for default)")
		noCache  = flag.Bool("no-cache", false, "disable the transcript cache")
		lang     = flag.String("lang", "", "source language hint passed to the provider")
		logDebug = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *logDebug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := run(*addr, *provider, *model, *modelDir, *cacheDir, *lang, *noCache); err != nil {
		slog.Error("golemd exited", "error", err)
		os.Exit(1)
	}
}

func run(addr, providerName, model, modelDir, cacheDir, lang string, noCache bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, err := buildProvider(ctx, providerName, model, modelDir)
	if err != nil {
		return err
	}
	defer provider.Close()

	var transcripts *cache.Cache
	if !noCache {
		transcripts, err = openCache(cacheDir)
		if err != nil {
			slog.Warn("transcript cache unavailable", "error", err)
		} else {
			defer transcripts.Close()
		}
	}

	srv := server.New(server.Config{
		Provider: provider,
		Cache:    transcripts,
		Language: lang,
	})

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("golemd listening", "addr", addr, "provider", provider.Name())
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func buildProvider(ctx context.Context, name, model, modelDir string) (stt.Provider, error) {
	switch name {
	case "local":
		cfg := stt.WhisperLocalConfig{ModelDir: modelDir}
		if model != "" {
			cfg.ModelSize = model
		}
		local, err := stt.NewWhisperLocal(cfg)
		if err != nil {
			return nil, fmt.Errorf("init local whisper: %w", err)
		}
		if !local.HasBinary() {
			return nil, errors.New("whisper.cpp binary not found on PATH")
		}
		if !local.IsReady() {
			slog.Info("downloading whisper model")
			if err := local.EnsureModel(ctx); err != nil {
				return nil, fmt.Errorf("download model: %w", err)
			}
		}
		return local, nil

	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, errors.New("OPENAI_API_KEY not set")
		}
		return stt.NewOpenAIAPI(stt.OpenAIAPIConfig{APIKey: apiKey, Model: model}), nil

	default:
		return nil, fmt.Errorf("unknown provider: %s", name)
	}
}

func openCache(dir string) (*cache.Cache, error) {
	if dir == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("get config dir: %w", err)
		}
		dir = filepath.Join(configDir, "golem", "cache")
	}
	return cache.New(dir)
}
