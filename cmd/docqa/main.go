package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"docqa/internal/answer"
	"docqa/internal/chunker"
	"docqa/internal/config"
	"docqa/internal/domain"
	"docqa/internal/embedding"
	embopenai "docqa/internal/embedding/openai"
	"docqa/internal/extract"
	"docqa/internal/history"
	"docqa/internal/ingest"
	llmopenai "docqa/internal/llm/openai"
	"docqa/internal/policy"
	"docqa/internal/retrieval"
	"docqa/internal/service"
	"docqa/internal/structurer"
	"docqa/internal/tui"
	"docqa/internal/vectorstore/memory"
	"docqa/internal/vectorstore/qdrant"
)

func main() {
	_ = godotenv.Load()

	var cfgPath, owner string
	var verbose bool
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/docqa/config.yaml if not provided)")
	flag.StringVar(&owner, "owner", "", "Owner scope attached to ingested documents")
	flag.BoolVar(&verbose, "verbose", false, "Log component degradations to stderr")
	flag.Parse()
	inputs := flag.Args()
	if len(inputs) == 0 {
		fmt.Println("Usage: docqa [--config=config.yaml] [--owner=scope] file1.pdf [file2.txt ...]")
		os.Exit(1)
	}

	log := zap.NewNop()
	if verbose {
		dev, err := zap.NewDevelopment()
		if err == nil {
			log = dev
		}
	}
	defer log.Sync()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	// Embedding provider: the primary model is optional, the provider
	// degrades to pseudo-embeddings on its own.
	var primary domain.Embedder
	switch cfg.Embedder.Type {
	case "fallback", "":
	case "openai":
		if cfg.Embedder.OpenAI == nil {
			fatalf("openai embedder config missing")
		}
		client, err := embopenai.NewClient(embopenai.Config{
			BaseURL:   cfg.Embedder.OpenAI.BaseURL,
			APIKeyEnv: cfg.Embedder.OpenAI.APIKeyEnv,
			Model:     cfg.Embedder.OpenAI.Model,
			Timeout:   time.Duration(cfg.Embedder.OpenAI.TimeoutSecs) * time.Second,
		})
		if err != nil {
			log.Warn("openai embedder unavailable, using pseudo-embeddings", zap.Error(err))
		} else {
			primary = client
		}
	default:
		fatalf("unknown embedder: %s", cfg.Embedder.Type)
	}
	provider := embedding.NewProvider(primary, cfg.Embedder.Dimension, log)

	var index domain.VectorIndex
	switch cfg.VectorStore.Type {
	case "memory", "":
		index = memory.NewIndex(provider)
	case "qdrant":
		if cfg.VectorStore.Qdrant == nil {
			fatalf("qdrant config missing")
		}
		q := qdrant.NewIndex(qdrant.Config{
			URL:        cfg.VectorStore.Qdrant.URL,
			APIKey:     cfg.VectorStore.Qdrant.APIKey,
			Collection: cfg.VectorStore.Qdrant.Collection,
			Timeout:    time.Duration(cfg.VectorStore.Qdrant.TimeoutSecs) * time.Second,
		}, provider)
		if err := q.Init(ctx); err != nil {
			fatalf("qdrant init failed: %v", err)
		}
		index = q
	default:
		fatalf("unknown vector store: %s", cfg.VectorStore.Type)
	}

	// LLM collaborator: optional, everything downstream degrades without it.
	var llm domain.CompletionClient
	if client, err := llmopenai.NewClient(llmopenai.Config{
		BaseURL:   cfg.LLM.BaseURL,
		APIKeyEnv: cfg.LLM.APIKeyEnv,
		Model:     cfg.LLM.Model,
		Timeout:   time.Duration(cfg.LLM.TimeoutSecs) * time.Second,
	}); err != nil {
		log.Warn("llm unavailable, answers will be degraded", zap.Error(err))
	} else {
		llm = client
	}

	ch := chunker.NewWindowChunker(cfg.Chunker.WindowChars, cfg.Chunker.OverlapChars)
	ingestor := ingest.NewIngestor(extract.NewService(), ch, index, cfg.StorageDir, log)
	retriever := retrieval.NewRetriever(index, cfg.Retrieval.SearchK, cfg.Retrieval.TopK)
	retriever.UpdateSettings(&cfg.Retrieval.IncludeSystemDocuments, nil, false)

	svc := service.NewQAService(
		ingestor,
		retriever,
		structurer.New(llm, nil, cfg.LLM.Temperature, cfg.LLM.MaxTokens, log),
		policy.NewEvaluator(policy.Rules{
			Tier1Cities: cfg.Policy.Tier1Cities,
			Tier1Amount: cfg.Policy.Tier1Amount,
			BaseAmount:  cfg.Policy.BaseAmount,
		}),
		answer.NewSynthesizer(llm, cfg.LLM.Temperature, cfg.LLM.MaxTokens, log),
		history.NewLedger(cfg.History.MaxRecords),
		log,
	)

	ingested := 0
	for _, path := range inputs {
		data, err := os.ReadFile(path)
		if err != nil {
			fatalf("read %s: %v", path, err)
		}
		doc, err := svc.Ingest(ctx, data, filepath.Base(path), filepath.Ext(path), owner)
		if err != nil {
			fatalf("ingest %s: %v", path, err)
		}
		log.Info("ingested", zap.String("name", doc.Name), zap.String("document_id", doc.ID))
		ingested++
	}

	summary := fmt.Sprintf("%d document(s) indexed. Ask a question about them.", ingested)
	m := tui.New(svc, summary)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		fatalf("%v", err)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
