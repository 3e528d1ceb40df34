/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"fmt"
	"strings"
	"sync"

	"github.com/tomoncle/ideahub/utils"
)

// Logger is the logging surface of this package. Fields are alternating
// key/value pairs appended to the message.
type Logger interface {
	SetLevel(LogLevel)
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
}

type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

func (l LogLevel) String() string {
	switch l {
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "DEBUG"
	}
}

var (
	globalLoggerMu sync.RWMutex
	globalLogger   Logger
)

// InitLogger installs a custom logger for the package. The first installed
// logger wins, later calls and nil loggers are ignored.
func InitLogger(log Logger) {
	if log == nil {
		return
	}
	globalLoggerMu.Lock()
	defer globalLoggerMu.Unlock()
	if globalLogger == nil {
		globalLogger = log
	}
}

// GetLogger returns the package logger, building the logrus-backed default
// on first use.
func GetLogger() Logger {
	globalLoggerMu.RLock()
	l := globalLogger
	globalLoggerMu.RUnlock()
	if l != nil {
		return l
	}

	globalLoggerMu.Lock()
	defer globalLoggerMu.Unlock()
	if globalLogger == nil {
		globalLogger = newLogrusLogger("DATABASE", LogLevelDebug)
	}
	return globalLogger
}

// logrusLogger adapts a named logrus logger from the utils registry. The
// local level drops entries before they reach logrus, so SetLevel works
// even when logrus itself stays verbose.
type logrusLogger struct {
	name  string
	mu    sync.RWMutex
	level LogLevel
	log   *utils.Logger
}

func newLogrusLogger(name string, level LogLevel) *logrusLogger {
	return &logrusLogger{name: name, level: level, log: utils.NewLogger(name)}
}

func (l *logrusLogger) SetLevel(level LogLevel) {
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()
	utils.SetLoggerLevel(l.name, strings.ToLower(level.String()))
}

func (l *logrusLogger) enabled(level LogLevel) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return level >= l.level
}

func (l *logrusLogger) Debug(msg string, fields ...interface{}) {
	if l.enabled(LogLevelDebug) {
		l.log.Debug(msg + formatFields(fields))
	}
}

func (l *logrusLogger) Info(msg string, fields ...interface{}) {
	if l.enabled(LogLevelInfo) {
		l.log.Info(msg + formatFields(fields))
	}
}

func (l *logrusLogger) Warn(msg string, fields ...interface{}) {
	if l.enabled(LogLevelWarn) {
		l.log.Warn(msg + formatFields(fields))
	}
}

func (l *logrusLogger) Error(msg string, fields ...interface{}) {
	if l.enabled(LogLevelError) {
		l.log.Error(msg + formatFields(fields))
	}
}

// formatFields renders alternating key/value pairs, an odd trailing key
// keeps a placeholder value.
func formatFields(fields []interface{}) string {
	if len(fields) == 0 {
		return ""
	}
	var b strings.Builder
	for i := 0; i < len(fields); i += 2 {
		if i+1 < len(fields) {
			_, _ = fmt.Fprintf(&b, " %v=%v", fields[i], fields[i+1])
		} else {
			_, _ = fmt.Fprintf(&b, " %v=?", fields[i])
		}
	}
	return b.String()
}
