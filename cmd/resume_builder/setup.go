package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jonathan/resume-builder/internal/config"
	"github.com/jonathan/resume-builder/internal/db"
	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/jonathan/resume-builder/internal/preview"
	"github.com/jonathan/resume-builder/internal/schemas"
	"github.com/jonathan/resume-builder/internal/store"
	"github.com/jonathan/resume-builder/internal/types"
	"github.com/redis/go-redis/v9"
)

// redisKeyPrefix namespaces every key the service writes to Redis.
const redisKeyPrefix = "resume-builder:"

// loadConfig resolves the config file, environment and defaults.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Resolve(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// openKV connects the configured store backend. The returned func releases it.
func openKV(ctx context.Context, cfg *config.Config) (store.KV, func(), error) {
	switch cfg.Store {
	case config.StoreMemory:
		return store.NewMemoryKV(), func() {}, nil

	case config.StorePostgres:
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.EnsureSchema(ctx); err != nil {
			database.Close()
			return nil, nil, err
		}
		return database, database.Close, nil

	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return store.NewRedisKV(client, redisKeyPrefix), func() { _ = client.Close() }, nil

	default:
		kv, err := store.NewFileKV(cfg.StorePath)
		if err != nil {
			return nil, nil, err
		}
		return kv, func() {}, nil
	}
}

// openController opens the configured store and returns the controller of a
// saved profile. The empty profile uses un-namespaced keys.
func openController(ctx context.Context, cfg *config.Config, profile string) (*preview.Controller, func(), error) {
	kv, closeKV, err := openKV(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	vault, err := store.NewVault(cfg.Secret)
	if err != nil {
		closeKV()
		return nil, nil, err
	}
	service := preview.NewService(kv, vault, llm.NewFactory(llmConfig(cfg)), preview.WithTier(llm.ModelTier(cfg.Tier)))
	return service.Controller(profile), closeKV, nil
}

// llmConfig builds the AI client configuration from cfg.
func llmConfig(cfg *config.Config) *llm.Config {
	c := llm.ConfigFor(llm.Provider(cfg.Provider))
	if cfg.Model != "" {
		c = c.WithModel(llm.ModelTier(cfg.Tier), cfg.Model)
	}
	if cfg.BaseURL != "" {
		c = c.WithBaseURL(cfg.BaseURL)
	}
	return c
}

// readFields loads a resume fields JSON document. "-" reads from in.
func readFields(path string, in io.Reader) (types.ResumeFields, error) {
	var fields types.ResumeFields

	content, err := readInput(path, in)
	if err != nil {
		return fields, fmt.Errorf("failed to read fields file: %w", err)
	}
	if err := schemas.ValidateResumeFields(string(content)); err != nil {
		return fields, fmt.Errorf("invalid fields file: %w", err)
	}
	if err := json.Unmarshal(content, &fields); err != nil {
		return fields, fmt.Errorf("failed to unmarshal fields JSON: %w", err)
	}
	return fields, nil
}

// readInput reads a file, or in when path is "-".
func readInput(path string, in io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(in)
	}
	return os.ReadFile(path)
}

// writeOutput writes content to path, or to w when path is empty.
func writeOutput(path string, w io.Writer, content string) error {
	if path == "" {
		_, err := io.WriteString(w, content+"\n")
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// parseTemplate validates a --template flag value.
func parseTemplate(n int) (types.TemplateChoice, error) {
	choice := types.TemplateChoice(n)
	if !choice.Valid() {
		return 0, fmt.Errorf("invalid template %d: must be 0, 1 or 2", n)
	}
	return choice, nil
}
