package wasm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/tetratelabs/wazero/api"
)

var (
	logMessageParams  = []api.ValueType{api.ValueTypeI64}
	logMessageResults = []api.ValueType{}
)

// logWireMessage is the JSON payload guests pass to the log_message host
// function.
type logWireMessage struct {
	Level   string        `json:"level"`
	Message string        `json:"message"`
	Attrs   []logWireAttr `json:"attrs,omitempty"`
}

type logWireAttr struct {
	Key   string `json:"key"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

// logMessageFunc implements the `log_message` host function. It receives a
// packed uint64 (ptr+len) pointing to a JSON-encoded log message and forwards
// it to the host logger.
func logMessageFunc(logger *slog.Logger) api.GoModuleFunction {
	return api.GoModuleFunc(func(ctx context.Context, mod api.Module, stack []uint64) {
		msg, ok := readLogMessage(ctx, logger, mod, stack[0])
		if !ok {
			return
		}

		level := parseLogLevel(logger, msg.Level)
		attrs := convertLogAttrs(msg.Attrs)

		logger.LogAttrs(ctx, level, msg.Message, attrs...)
	})
}

// readLogMessage reads and unmarshals the log message from guest memory.
func readLogMessage(ctx context.Context, logger *slog.Logger, mod api.Module, packed uint64) (*logWireMessage, bool) {
	ptr, length := unpackPtrLen(packed)

	messageBytes, ok := mod.Memory().Read(ptr, length)
	if !ok {
		logger.ErrorContext(ctx, "wasm: failed to read log message from guest memory")
		return nil, false
	}

	var msg logWireMessage
	if err := json.Unmarshal(messageBytes, &msg); err != nil {
		logger.ErrorContext(ctx, "wasm: failed to unmarshal log message", "error", err)
		return nil, false
	}

	return &msg, true
}

// parseLogLevel converts a string level to slog.Level.
func parseLogLevel(logger *slog.Logger, levelStr string) slog.Level {
	level := slog.LevelInfo
	if err := level.UnmarshalText([]byte(levelStr)); err != nil {
		logger.Warn("wasm: unknown log level from guest", "level", levelStr)
	}
	return level
}

// convertLogAttrs converts wire attributes to slog.Attr slice.
func convertLogAttrs(wireAttrs []logWireAttr) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(wireAttrs))
	for _, attr := range wireAttrs {
		attrs = append(attrs, convertSingleAttr(attr))
	}
	return attrs
}

// convertSingleAttr converts a single wire attribute to slog.Attr.
func convertSingleAttr(attr logWireAttr) slog.Attr {
	switch attr.Type {
	case "string":
		return slog.String(attr.Key, attr.Value)
	case "int64":
		if v, err := strconv.ParseInt(attr.Value, 10, 64); err == nil {
			return slog.Int64(attr.Key, v)
		}
	case "bool":
		if v, err := strconv.ParseBool(attr.Value); err == nil {
			return slog.Bool(attr.Key, v)
		}
	case "float64":
		if v, err := strconv.ParseFloat(attr.Value, 64); err == nil {
			return slog.Float64(attr.Key, v)
		}
	case "time":
		if v, err := time.Parse(time.RFC3339Nano, attr.Value); err == nil {
			return slog.Time(attr.Key, v)
		}
	case "error":
		return slog.Any(attr.Key, fmt.Errorf("%s", attr.Value))
	}
	// Fallback for unknown types or parse failures.
	return slog.Any(attr.Key, attr.Value)
}
