package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	_ "github.com/joho/godotenv/autoload"
	gommon "github.com/labstack/gommon/log"

	"cabinet/pkg/inference"
	"cabinet/pkg/server"
)

func main() {
	ctx, done := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	cfg := server.Config{
		Production:      os.Getenv("APP_ENV") == "production",
		Timeout:         secondsEnv("ANALYZE_TIMEOUT"),
		MaxOutputTokens: intEnv("MAX_OUTPUT_TOKENS"),
		ReportsPath:     os.Getenv("REPORTS_PATH"),
	}

	inf := pickInferencer()
	if inf == nil {
		if cfg.Production {
			// Keep serving; the handler reports the misconfiguration
			// per request without ever reaching upstream.
			log.Error("no inference credential configured")
		} else {
			log.Warn("no inference credential configured, serving offline fallback narratives")
			cfg.Offline = true
		}
	}

	srv := server.NewServer(ctx, inf, cfg)
	srv.Echo.Logger.SetLevel(gommon.INFO)
	if !cfg.Production {
		srv.Echo.Logger.SetLevel(gommon.DEBUG)
		log.SetLevel(log.DebugLevel)
	}

	addr := ":8080"
	if envAddr := os.Getenv("PORT"); envAddr != "" {
		addr = ":" + envAddr
	}

	finishedShutDown := make(chan struct{})
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown", "err", err)
		}
		done()
		close(finishedShutDown)
	}()

	if err := srv.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server", "err", err)
	}
	<-finishedShutDown
}

// pickInferencer selects the upstream by whichever credential is set,
// preferring the Anthropic messages API the product was built against.
func pickInferencer() inference.Inferencer {
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		return inference.NewAnthropicInferencer(key, os.Getenv("ANTHROPIC_MODEL"))
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return inference.NewOpenAIInferencer(key, os.Getenv("OPENAI_MODEL"))
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		gemini, err := inference.NewGeminiInferencer(key, os.Getenv("GEMINI_MODEL"))
		if err != nil {
			log.Error("gemini client", "err", err)
			return nil
		}
		return gemini
	}
	return nil
}

func secondsEnv(name string) time.Duration {
	n, err := strconv.Atoi(os.Getenv(name))
	if err != nil || n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second
}

func intEnv(name string) int64 {
	n, err := strconv.ParseInt(os.Getenv(name), 10, 64)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}
