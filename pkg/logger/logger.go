// Package logger inicializa el logger global del servicio.
package logger

import (
	"os"

	"go.uber.org/zap"
)

var log *zap.Logger

// Init inicializa el logger global: JSON estructurado, con el nombre del
// servicio en cada línea y nivel regulable vía LOG_LEVEL (debug, info...).
func Init() {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"            // Logs estructurados en JSON
	cfg.EncoderConfig.TimeKey = "ts" // timestamp
	cfg.EncoderConfig.MessageKey = "msg"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.CallerKey = "caller"
	cfg.InitialFields = map[string]interface{}{"service": "comanda"}

	if lvl, err := zap.ParseAtomicLevel(os.Getenv("LOG_LEVEL")); err == nil {
		cfg.Level = lvl
	}

	var err error
	log, err = cfg.Build()
	if err != nil {
		panic(err)
	}
}

// Sugar retorna un logger más “friendly” para usar con printf-like
func Sugar() *zap.SugaredLogger {
	return log.Sugar()
}

// Logger retorna el logger estructurado
func Logger() *zap.Logger {
	return log
}
