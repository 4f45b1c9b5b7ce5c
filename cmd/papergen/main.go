package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/anupamd/papergen/internal/generate"
	"github.com/anupamd/papergen/internal/handler"
	"github.com/anupamd/papergen/internal/provider"
	"github.com/anupamd/papergen/internal/store"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "papergen",
		Short: "AI-generated mock exam paper service",
	}

	serve := serveCmd()
	root.AddCommand(serve)

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the paper generation HTTP server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("db", "papergen.db", "SQLite database path")
	f.String("openai-api-key", "", "OpenAI API key (or PAPERGEN_OPENAI_API_KEY)")
	f.String("openai-base-url", "", "Override for OpenAI-compatible endpoints")
	f.StringSlice("openai-models", []string{"gpt-4o", "gpt-4o-mini"}, "OpenAI models in attempt order")
	f.String("gemini-api-key", "", "Gemini API key (or PAPERGEN_GEMINI_API_KEY)")
	f.StringSlice("gemini-models", []string{"gemini-2.0-flash", "gemini-2.0-flash-lite"}, "Gemini models in attempt order")
	f.Int("max-tokens", 4096, "Max completion tokens per provider request")
	f.Float64("temperature", 0.7, "Sampling temperature for provider requests")
	f.Int("batch-size", 3, "Subjects generated concurrently")
	f.Duration("heartbeat", 500*time.Millisecond, "Progress heartbeat interval")
	f.Duration("retry-backoff", 500*time.Millisecond, "Delay before retrying a subject on the fallback provider")
	f.Int("total-marks", 100, "Total marks recorded on generated papers")
	f.Int("duration-minutes", 90, "Exam duration recorded on generated papers")
	f.String("title-prefix", "RRB JE Mock", "Prefix of generated paper titles")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func setupLogging(v *viper.Viper) {
	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper
// instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("PAPERGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("papergen")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/papergen")
	v.AddConfigPath("/etc/papergen")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func runServe(cmd *cobra.Command, _ []string) error {
	v := viperForCmd(cmd)
	setupLogging(v)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	// Provider config is built once here and passed down; nothing reads the
	// environment after this point. A missing API key is not fatal at
	// startup: the affected provider fails per attempt and the other one
	// picks up its subjects.
	provCfg := provider.DefaultConfig()
	provCfg.OpenAI.APIKey = v.GetString("openai-api-key")
	provCfg.OpenAI.BaseURL = v.GetString("openai-base-url")
	provCfg.OpenAI.Models = v.GetStringSlice("openai-models")
	provCfg.Gemini.APIKey = v.GetString("gemini-api-key")
	provCfg.Gemini.Models = v.GetStringSlice("gemini-models")
	provCfg.MaxTokens = v.GetInt("max-tokens")
	provCfg.Temperature = v.GetFloat64("temperature")

	gemini, err := provider.NewGemini(cmd.Context(), provCfg.Gemini, provCfg.MaxTokens, provCfg.Temperature)
	if err != nil {
		return fmt.Errorf("create Gemini client: %w", err)
	}
	clients := map[string]provider.Client{
		provider.NameOpenAI: provider.NewOpenAI(provCfg.OpenAI, provCfg.MaxTokens, provCfg.Temperature),
		provider.NameGemini: gemini,
	}
	for name, hasKey := range map[string]bool{
		provider.NameOpenAI: provCfg.OpenAI.APIKey != "",
		provider.NameGemini: provCfg.Gemini.APIKey != "",
	} {
		if !hasKey {
			slog.Warn("provider has no API key, its subjects will fall back", "provider", name)
		}
	}

	subjects := generate.NewSubjectGenerator(clients, generate.SubjectConfig{
		Backoff: v.GetDuration("retry-backoff"),
	})
	orch := generate.NewOrchestrator(subjects, db, generate.OrchestratorConfig{
		BatchSize:       v.GetInt("batch-size"),
		Heartbeat:       v.GetDuration("heartbeat"),
		TotalMarks:      v.GetInt("total-marks"),
		DurationMinutes: v.GetInt("duration-minutes"),
		TitlePrefix:     v.GetString("title-prefix"),
	})

	h := handler.New(db, orch)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	h.Routes(r)

	addr := v.GetString("addr")
	slog.Info("starting server",
		"addr", addr,
		"db", v.GetString("db"),
		"batch_size", v.GetInt("batch-size"),
		"total_marks", v.GetInt("total-marks"),
		"duration_minutes", v.GetInt("duration-minutes"),
	)
	return http.ListenAndServe(addr, r)
}
