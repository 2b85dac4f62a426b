package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

type ctxKey struct{}

var (
	mu        sync.RWMutex
	base      = slog.New(slog.NewTextHandler(os.Stdout, nil))
	botClient BotClient
	channelID int64
)

// BotClient delivers log lines to a chat channel.
type BotClient interface {
	SendMessage(chatID int64, text string) error
}

// Options configures the process-wide logger.
type Options struct {
	Level  string
	Format string
	Output io.Writer
}

// Init replaces the base logger. Unknown levels fall back to info.
func Init(opts Options) {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	handlerOpts := &slog.HandlerOptions{Level: parseLevel(opts.Level)}

	var handler slog.Handler
	if strings.EqualFold(opts.Format, "json") {
		handler = slog.NewJSONHandler(out, handlerOpts)
	} else {
		handler = slog.NewTextHandler(out, handlerOpts)
	}

	mu.Lock()
	base = slog.New(handler)
	mu.Unlock()
}

// AttachChannel mirrors info and above to a Telegram channel.
func AttachChannel(client BotClient, chatID int64) {
	mu.Lock()
	defer mu.Unlock()
	botClient = client
	channelID = chatID
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithRequestID stores a request id for the *Context helpers.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// RequestID returns the id stored by WithRequestID.
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

func Debug(msg string, args ...any) {
	Logger().Debug(msg, args...)
}

func Info(msg string, args ...any) {
	Logger().Info(msg, args...)
	sendLog("ℹ️ INFO", msg, args)
}

func Warn(msg string, args ...any) {
	Logger().Warn(msg, args...)
	sendLog("⚠️ WARN", msg, args)
}

func Error(msg string, args ...any) {
	Logger().Error(msg, args...)
	sendLog("❌ ERROR", msg, args)
}

func Success(msg string, args ...any) {
	Logger().Info(msg, append(args, "success", true)...)
	sendLog("✅ SUCCESS", msg, args)
}

func InfoContext(ctx context.Context, msg string, args ...any) {
	Info(msg, withRequestID(ctx, args)...)
}

func ErrorContext(ctx context.Context, msg string, args ...any) {
	Error(msg, withRequestID(ctx, args)...)
}

func withRequestID(ctx context.Context, args []any) []any {
	if id := RequestID(ctx); id != "" {
		return append([]any{"request_id", id}, args...)
	}
	return args
}

// LogWithErr logs msg as info when err is nil and as an error otherwise.
func LogWithErr(msg string, err error, args ...any) {
	if err == nil {
		Info(msg, args...)
		return
	}
	Error(msg, append(args, "error", err.Error())...)
}

func sendLog(prefix, msg string, args []any) {
	mu.RLock()
	client, chatID := botClient, channelID
	mu.RUnlock()
	if client == nil {
		return
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	logMessage := fmt.Sprintf("[%s] %s\n%s%s", timestamp, prefix, msg, formatArgs(args))

	go func() {
		if err := client.SendMessage(chatID, logMessage); err != nil {
			fmt.Fprintf(os.Stderr, "failed to send log to channel: %v\nlog was: %s\n", err, logMessage)
		}
	}()
}

func formatArgs(args []any) string {
	var b strings.Builder
	for i := 0; i+1 < len(args); i += 2 {
		fmt.Fprintf(&b, "\n%v: %v", args[i], args[i+1])
	}
	return b.String()
}
