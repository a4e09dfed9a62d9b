package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/leejaedus/project-morgan/internal/brain"
	"github.com/leejaedus/project-morgan/internal/core/domain"
	"github.com/leejaedus/project-morgan/internal/core/ports"
	"github.com/leejaedus/project-morgan/internal/priority"
	"github.com/leejaedus/project-morgan/internal/slack"
	"github.com/leejaedus/project-morgan/internal/storage"
	"github.com/leejaedus/project-morgan/internal/todo"
	"github.com/leejaedus/project-morgan/internal/ui/telegram"
)

func main() {
	godotenv.Load()
	fmt.Println("🤖 Morgan starting...")

	ctx := context.Background()
	log, _ := zap.NewProduction()
	defer log.Sync()

	var store ports.Storage

	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		pg, err := storage.NewPostgresStorage(ctx, dbURL)
		if err != nil {
			fmt.Printf("⚠️  Postgres unavailable, falling back to file mode: %v\n", err)
		} else {
			store = pg
			fmt.Println("🐘 Storage: PostgreSQL connected")
		}
	}
	if store == nil {
		js, err := storage.NewJSONStorage("data/storage.json")
		if err != nil {
			fmt.Printf("❌ Storage init failed: %v\n", err)
			os.Exit(1)
		}
		store = js
		fmt.Println("📄 Storage: JSON file mode")
	}

	source, err := slack.NewClient(os.Getenv("SLACK_TOKEN"), log)
	if err != nil {
		fmt.Printf("❌ Slack: %v\n", err)
		os.Exit(1)
	}
	if err := source.Initialize(ctx); err != nil {
		fmt.Printf("❌ Slack: %v\n", err)
		os.Exit(1)
	}

	genaiClient, err := brain.NewGenaiClient(ctx, os.Getenv("GEMINI_API_KEY"))
	if err != nil {
		fmt.Printf("❌ Gemini: %v\n", err)
		os.Exit(1)
	}

	quick := brain.NewQuickAnalyzer(genaiClient, os.Getenv("QUICK_AI_MODEL"))
	deep := brain.NewDeepAnalyzer(genaiClient, os.Getenv("DEEP_AI_MODEL"), quick)
	engine := brain.NewEngine(brain.NewRouter(nil), quick, deep, log)

	cfg := priority.DefaultConfig()
	if path := os.Getenv("MORGAN_KEYWORDS_FILE"); path != "" {
		if cfg, err = priority.LoadConfig(path); err != nil {
			fmt.Printf("⚠️  Keyword config %s unreadable, using defaults: %v\n", path, err)
		}
	}
	calculator := priority.NewCalculator(cfg)
	generator := todo.NewGenerator()

	var notifier ports.Notifier
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		notifier, err = telegram.NewNotifier(token, os.Getenv("TELEGRAM_CHAT_ID"))
		if err != nil {
			fmt.Printf("⚠️  Telegram disabled: %v\n", err)
			notifier = nil
		}
	}

	if notifier != nil {
		go func() {
			for fb := range notifier.FeedbackEvents() {
				fb.CreatedAt = time.Now()
				if err := store.SaveFeedback(ctx, fb); err != nil {
					log.Warn("feedback save failed", zap.Error(err))
					continue
				}
				fmt.Printf("📝 Feedback saved: %d/5 for todo %s\n", fb.Satisfaction, fb.TodoID)
			}
		}()
	}

	hours := envInt("SCAN_HOURS", 24)
	maxMessages := envInt("MAX_MESSAGES", 100)
	maxConcurrent := envInt("MAX_CONCURRENT", 5)
	interval := time.Duration(envInt("SCAN_INTERVAL_MINUTES", 60)) * time.Minute

	trigger := make(chan bool, 1)
	go func() {
		reader := bufio.NewReader(os.Stdin)
		for {
			reader.ReadString('\n')
			trigger <- true
		}
	}()

	fmt.Println("🚀 Morgan operational. Press Enter for a manual scan.")

	for {
		fmt.Printf("\n--- 🔄 Scan cycle (%s) ---\n", time.Now().Format("15:04:05"))
		runPipeline(ctx, source, engine, calculator, generator, store, notifier, hours, maxMessages, maxConcurrent)

		fmt.Printf("\nNext scan in %s...\n", interval)
		select {
		case <-time.After(interval):
		case <-trigger:
			fmt.Println("⚡ Manual trigger!")
		}
	}
}

func runPipeline(ctx context.Context, source ports.Source, engine *brain.Engine,
	calculator *priority.Calculator, generator *todo.Generator,
	store ports.Storage, notifier ports.Notifier,
	hours, maxMessages, maxConcurrent int) {

	fmt.Printf("📱 Collecting Slack activity (last %dh)...\n", hours)
	messages, err := source.CollectActivities(ctx, hours)
	if err != nil {
		fmt.Printf("❌ Collection failed: %v\n", err)
		return
	}
	if len(messages) == 0 {
		fmt.Println("No new activity found.")
		return
	}
	if len(messages) > maxMessages {
		fmt.Printf("⚠️  Capping at the most recent %d messages.\n", maxMessages)
		messages = messages[:maxMessages]
	}

	patterns, err := store.LoadPatterns(ctx)
	if err != nil {
		fmt.Printf("⚠️  Pattern load failed, scoring without patterns: %v\n", err)
	}

	fmt.Printf("🤖 Analyzing %d messages...\n", len(messages))
	analyzed := engine.AnalyzeBatch(ctx, messages, maxConcurrent)

	fmt.Println("🎯 Calculating priorities...")
	now := time.Now()
	scored := make([]todo.ScoredMessage, 0, len(analyzed))
	for _, a := range analyzed {
		score := calculator.Calculate(a.Message, a.Analysis, patterns, now)
		scored = append(scored, todo.ScoredMessage{
			Message:  a.Message,
			Analysis: a.Analysis,
			Score:    score,
		})
	}

	list := generator.GenerateList(scored, "", hours)
	printSummary(list, engine.UsageStats())

	if err := store.SaveTodoList(ctx, list); err != nil {
		fmt.Printf("⚠️  Todo list save failed: %v\n", err)
	}
	stats := engine.UsageStats()
	if err := store.SaveUsageSnapshot(ctx, stats.QuickCalls, stats.DeepCalls, stats.EstimatedCostUSD); err != nil {
		fmt.Printf("⚠️  Usage snapshot save failed: %v\n", err)
	}

	if notifier != nil {
		if err := notifier.SendDigest(ctx, list); err != nil {
			fmt.Printf("⚠️  Digest delivery failed: %v\n", err)
		}
	}
}

func printSummary(list domain.TodoList, stats brain.UsageStats) {
	fmt.Println("\n✅ Done!")
	fmt.Printf("  - todos generated: %d\n", list.TotalItems)
	fmt.Printf("  - 🔥 urgent %d | ⚡ high %d | 📌 medium %d | 📝 low %d\n",
		len(list.ByPriority(domain.PriorityUrgent)),
		len(list.ByPriority(domain.PriorityHigh)),
		len(list.ByPriority(domain.PriorityMedium)),
		len(list.ByPriority(domain.PriorityLow)))
	for i, item := range list.Items {
		if i >= 5 {
			break
		}
		fmt.Printf("  %d. [%s] %s (%s)\n", i+1, item.Priority(), item.Title,
			item.Score.RecommendedActionTime)
	}
	fmt.Printf("  - AI calls: quick %d, deep %d (est. $%.3f)\n",
		stats.QuickCalls, stats.DeepCalls, stats.EstimatedCostUSD)
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
