package logger

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

const (
	colorReset = "\x1b[0m"
	colorBold  = "\x1b[1m"

	colorTime   = "\x1b[38;5;109m" // soft blue timestamps
	colorName   = "\x1b[38;5;208m" // warm orange component names
	colorFg     = "\x1b[38;5;223m" // soft cream message text
	colorField  = "\x1b[38;5;108m" // muted green field values
	colorWarn   = "\x1b[38;5;214m"
	colorWarnBg = "\x1b[48;5;58m"
	colorErr    = "\x1b[38;5;167m"
	colorErrBg  = "\x1b[48;5;88m"
)

// compactEncoder implements a calm, compact console encoder.
// Format: "13:04:35  loader  Registered files  120 pending"
type compactEncoder struct {
	zapcore.Encoder // embedded base encoder for field serialization
}

func newCompactEncoder() *compactEncoder {
	return &compactEncoder{
		Encoder: zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
	}
}

func (enc *compactEncoder) Clone() zapcore.Encoder {
	return &compactEncoder{Encoder: enc.Encoder.Clone()}
}

func (enc *compactEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	final := buffer.NewPool().Get()

	final.AppendString(colorTime)
	final.AppendString(ent.Time.Format("15:04:05"))
	final.AppendString(colorReset)

	// Level shown only for WARN and above
	if ent.Level != zapcore.InfoLevel && ent.Level != zapcore.DebugLevel {
		final.AppendString("  ")
		final.AppendString(levelColorString(ent.Level))
	}

	if ent.LoggerName != "" {
		final.AppendString("  ")
		final.AppendString(colorName)
		final.AppendString(ent.LoggerName)
		final.AppendString(colorReset)
	}

	final.AppendString("  ")
	final.AppendString(colorFg)
	final.AppendString(ent.Message)
	final.AppendString(colorReset)

	if len(fields) > 0 {
		final.AppendString("  ")
		final.AppendString(formatFields(fields))
	}

	final.AppendString("\n")
	return final, nil
}

func levelColorString(level zapcore.Level) string {
	switch level {
	case zapcore.WarnLevel:
		return colorBold + colorWarnBg + colorWarn + "WARN" + colorReset
	case zapcore.ErrorLevel:
		return colorBold + colorErrBg + colorErr + "ERROR" + colorReset
	case zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		return colorBold + colorErrBg + colorErr + level.CapitalString() + colorReset
	default:
		return ""
	}
}

// formatFields renders fields as "key=value" pairs with colored values
func formatFields(fields []zapcore.Field) string {
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		val := fieldValue(field)
		if val == "" {
			continue
		}
		parts = append(parts, field.Key+"="+colorField+val+colorReset)
	}
	return strings.Join(parts, " ")
}

// fieldValue extracts a printable value from a zap field
func fieldValue(field zapcore.Field) string {
	switch {
	case field.Type == zapcore.StringType:
		return field.String
	case field.Type == zapcore.Int64Type || field.Type == zapcore.Int32Type ||
		field.Type == zapcore.Int16Type || field.Type == zapcore.Int8Type:
		return fmt.Sprintf("%d", field.Integer)
	case field.Type == zapcore.Uint64Type || field.Type == zapcore.Uint32Type ||
		field.Type == zapcore.Uint16Type || field.Type == zapcore.Uint8Type:
		return fmt.Sprintf("%d", field.Integer)
	case field.Type == zapcore.BoolType:
		return fmt.Sprintf("%t", field.Integer == 1)
	case field.Type == zapcore.DurationType:
		return time.Duration(field.Integer).String()
	case field.Interface != nil:
		return fmt.Sprintf("%v", field.Interface)
	default:
		return ""
	}
}
