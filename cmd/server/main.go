package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/suPer8Hu/taskflow/internal/agent"
	"github.com/suPer8Hu/taskflow/internal/ai"
	"github.com/suPer8Hu/taskflow/internal/chat"
	"github.com/suPer8Hu/taskflow/internal/config"
	"github.com/suPer8Hu/taskflow/internal/db"
	"github.com/suPer8Hu/taskflow/internal/file"
	"github.com/suPer8Hu/taskflow/internal/httpapi"
	"github.com/suPer8Hu/taskflow/internal/httpapi/handlers"
	"github.com/suPer8Hu/taskflow/internal/models"
	"github.com/suPer8Hu/taskflow/internal/reminder"
	"github.com/suPer8Hu/taskflow/internal/store/rabbitmq"
	"github.com/suPer8Hu/taskflow/internal/store/redisstore"
	"github.com/suPer8Hu/taskflow/internal/task"
)

func newProviderRegistry(cfg config.Config) *ai.Registry {
	reg := ai.NewRegistry()

	reg.Register("ollama", func(ctx context.Context, model string) (ai.Provider, error) {
		_ = ctx
		m := strings.TrimSpace(model)
		if m == "" {
			m = cfg.OllamaModel
		}
		return ai.NewOllamaProvider(cfg.OllamaBaseURL, m), nil
	})

	reg.Register("openai", func(ctx context.Context, model string) (ai.Provider, error) {
		_ = ctx
		m := strings.TrimSpace(model)
		if m == "" {
			m = cfg.OpenAIModel
		}
		return ai.NewOpenAIProvider(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, m), nil
	})

	return reg
}

func main() {
	cfg := config.Load()

	gdb := db.Connect(cfg.DBDSN)
	if err := gdb.AutoMigrate(
		&models.User{},
		&task.Task{},
		&chat.Conversation{},
		&chat.Message{},
		&file.File{},
	); err != nil {
		log.Fatalf("automigrate: %v", err)
	}

	rds := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer rds.Close()

	taskSvc := task.NewService(task.NewRepo(gdb))

	reg := newProviderRegistry(cfg)
	executor := agent.NewExecutor(taskSvc)
	chatSvc := chat.NewService(chat.NewRepo(gdb), reg, executor, chat.Config{
		DefaultProvider:   cfg.AIProvider,
		DefaultModel:      defaultModelFor(cfg),
		ContextWindowSize: cfg.ChatContextWindowSize,
		LLMTimeout:        cfg.ChatLLMTimeout,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// reminder scheduling is best-effort; the API runs without a broker
	if pub, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue); err != nil {
		log.Printf("rabbit unavailable, reminder scheduling disabled err=%v", err)
	} else {
		defer pub.Close()
		go reminder.NewScheduler(taskSvc, pub, cfg.ReminderInterval).Run(ctx)
	}

	h := handlers.NewHandler(gdb, cfg, rds, chatSvc, taskSvc)
	router := httpapi.NewRouter(h, cfg.JWTSecret)

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{Addr: addr, Handler: router}

	go func() {
		log.Printf("server listening addr=%s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

func defaultModelFor(cfg config.Config) string {
	if strings.EqualFold(cfg.AIProvider, "ollama") {
		return cfg.OllamaModel
	}
	return cfg.OpenAIModel
}
