package logger

import (
	"log"
	"os"
)

type Logger struct {
	level string
}

func New(level string) *Logger {
	return &Logger{
		level: level,
	}
}

func (l *Logger) Info(msg string, args ...interface{}) {
	if l.level == "debug" || l.level == "info" {
		log.Printf("[INFO] "+msg, args...)
	}
}

func (l *Logger) Debug(msg string, args ...interface{}) {
	if l.level == "debug" {
		log.Printf("[DEBUG] "+msg, args...)
	}
}

func (l *Logger) Error(msg string, args ...interface{}) {
	log.Printf("[ERROR] "+msg, args...)
}

func (l *Logger) Fatal(msg string, args ...interface{}) {
	log.Printf("[FATAL] "+msg, args...)
	os.Exit(1)
}

// Redact returns a copy of a payload map safe for logging. The api_key is
// attached to every outbound request and must never appear in log output.
func Redact(payload map[string]interface{}) map[string]interface{} {
	if payload == nil {
		return nil
	}
	clean := make(map[string]interface{}, len(payload))
	for k, v := range payload {
		clean[k] = v
	}
	if _, ok := clean["api_key"]; ok {
		clean["api_key"] = "***REDACTED***"
	}
	return clean
}
