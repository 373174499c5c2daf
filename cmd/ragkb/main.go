package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"ragkb/internal/aiclient"
	"ragkb/internal/anonymizer"
	"ragkb/internal/category"
	"ragkb/internal/chunker"
	"ragkb/internal/config"
	"ragkb/internal/domain"
	"ragkb/internal/embedding"
	"ragkb/internal/rag"
	"ragkb/internal/search"
	"ragkb/internal/seed"
	"ragkb/internal/store/memory"
	"ragkb/internal/store/sqlite"
	"ragkb/internal/tui"
)

func main() {
	_ = godotenv.Load()

	var (
		cfgPath  string
		runSeed  bool
		provider string
	)
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/ragkb/config.yaml if not provided)")
	flag.BoolVar(&runSeed, "seed", false, "Load the default knowledge before starting")
	flag.StringVar(&provider, "provider", "", "AI provider for answers (openai, pluto, perplexity); defaults to the configured one")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Log.Mode)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := config.InitSettings(cfg.Knowledge); err != nil {
		log.Fatalf("failed to init settings: %v", err)
	}

	// Assemble components
	var st domain.Store
	switch cfg.Store.Type {
	case "memory", "":
		st = memory.NewStore()
	case "sqlite":
		s, err := sqlite.NewStore(cfg.Store.Path)
		if err != nil {
			log.Fatalf("sqlite store init failed: %v", err)
		}
		defer func() { _ = s.Close() }()
		st = s
	default:
		log.Fatalf("unknown store: %s", cfg.Store.Type)
	}

	clientCfg := providerConfig(cfg)
	newClient := func(name string) (aiclient.Client, error) {
		if name == "" {
			name = cfg.Providers.Default
		}
		p, err := aiclient.ParseProvider(name)
		if err != nil {
			return nil, err
		}
		return aiclient.New(p, clientCfg)
	}

	var emb domain.Embedder
	if cl, err := newClient(""); err != nil {
		logger.Warn("embedding client unavailable, chunks stay pending", zap.Error(err))
	} else {
		emb = embedding.NewGateway(cl, cfg.Embedding.MaxTextLength, logger)
	}

	svc := rag.New(rag.Deps{
		Store:      st,
		Anonymizer: anonymizer.New(logger),
		Chunker:    chunker.NewSentenceChunker(cfg.Chunker.MaxChars),
		Embedder:   emb,
		Detector:   category.NewDetector(st, lazyChat{factory: newClient}, logger),
		Lexical:    search.NewScorer(st),
		Engine:     search.NewEngine(st, emb, logger),
		Generators: func(name string) (rag.Generator, error) { return newClient(name) },
		Settings:   config.CurrentSettings(),
		Logger:     logger,
		TopK:       cfg.RAG.TopK,
		Threshold:  cfg.RAG.Threshold,
	})

	ctx := context.Background()
	if runSeed {
		n, err := seed.Run(ctx, st, svc, logger)
		if err != nil {
			log.Fatalf("seeding failed: %v", err)
		}
		fmt.Printf("Seeded %d documents.\n", n)
	}

	for _, path := range flag.Args() {
		if err := ingestFile(ctx, svc, path); err != nil {
			log.Fatalf("ingesting %s failed: %v", path, err)
		}
		fmt.Printf("Ingested %s.\n", path)
	}

	m := tui.New(svc, provider)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		log.Fatal(err)
	}
}

// ingestFile turns one .txt file into a document and runs it through the
// pipeline; the file name becomes the title.
func ingestFile(ctx context.Context, svc *rag.Service, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	doc := &domain.Document{Title: title, Content: string(data), Active: true}
	return svc.SaveDocument(ctx, doc)
}

func newLogger(mode string) (*zap.Logger, error) {
	if mode == "dev" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func providerConfig(cfg *config.AppConfig) aiclient.Config {
	return aiclient.Config{
		OpenAI: aiclient.OpenAIConfig{
			BaseURL:        cfg.Providers.OpenAI.BaseURL,
			APIKeyEnv:      cfg.Providers.OpenAI.APIKeyEnv,
			ChatModel:      cfg.Providers.OpenAI.ChatModel,
			EmbeddingModel: cfg.Providers.OpenAI.EmbeddingModel,
			Timeout:        time.Duration(cfg.Providers.OpenAI.TimeoutSecs) * time.Second,
		},
		Pluto: aiclient.PlutoConfig{
			BaseURL:   cfg.Providers.Pluto.BaseURL,
			APIKeyEnv: cfg.Providers.Pluto.APIKeyEnv,
			Model:     cfg.Providers.Pluto.ChatModel,
			Timeout:   time.Duration(cfg.Providers.Pluto.TimeoutSecs) * time.Second,
		},
		Perplexity: aiclient.PerplexityConfig{
			BaseURL:   cfg.Providers.Perplexity.BaseURL,
			APIKeyEnv: cfg.Providers.Perplexity.APIKeyEnv,
			Model:     cfg.Providers.Perplexity.ChatModel,
			Timeout:   time.Duration(cfg.Providers.Perplexity.TimeoutSecs) * time.Second,
		},
	}
}

// lazyChat resolves the default provider on first use so a missing API key
// degrades category detection instead of aborting startup.
type lazyChat struct {
	factory func(name string) (aiclient.Client, error)
}

func (l lazyChat) Chat(ctx context.Context, prompt string) (string, error) {
	cl, err := l.factory("")
	if err != nil {
		return "", err
	}
	return cl.Chat(ctx, prompt)
}
