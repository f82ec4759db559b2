package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldProvider is the structured log field key for the model provider name.
	FieldProvider = "ai_provider"
	// FieldModel is the structured log field key for the model identifier.
	FieldModel = "ai_model"
	// FieldRow is the 1-based data row of the input CSV.
	FieldRow = "row"
	// FieldProfileURL is the LinkedIn profile URL of the row being processed.
	FieldProfileURL = "profile_url"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields attaches fields to the logger, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// ModelFields describes the scoring provider and model. Empty values are dropped.
func ModelFields(provider, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)
}

// RowFields describes one input row.
func RowFields(row int, profileURL string) []zap.Field {
	return append(
		[]zap.Field{zap.Int(FieldRow, row)},
		StringFields(StringField{Key: FieldProfileURL, Value: profileURL})...,
	)
}

// WithRow attaches the row fields to the logger.
func WithRow(logger *zap.Logger, row int, profileURL string) *zap.Logger {
	return WithFields(logger, RowFields(row, profileURL)...)
}
