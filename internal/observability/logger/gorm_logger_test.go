package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func withObservedGlobal(t *testing.T) *observer.ObservedLogs {
	core, logs := observer.New(zapcore.DebugLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	t.Cleanup(restore)
	return logs
}

func TestGormLoggerTraceLevels(t *testing.T) {
	logs := withObservedGlobal(t)
	l := NewGormLogger(DefaultGormLoggerConfig())
	stmt := func() (string, int64) { return "INSERT INTO fees (id) VALUES (?)", 1 }

	l.Trace(context.Background(), time.Now(), stmt, nil)
	assert.Equal(t, 0, logs.Len())

	l.Trace(context.Background(), time.Now().Add(-time.Second), stmt, nil)
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.WarnLevel).Len())

	l.Trace(context.Background(), time.Now(), stmt, errors.New("boom"))
	entries := logs.FilterLevelExact(zapcore.ErrorLevel).All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "INSERT", entries[0].ContextMap()["operation"])
	}

	l.Trace(context.Background(), time.Now(), stmt, gormlogger.ErrRecordNotFound)
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}

func TestGormLoggerSilent(t *testing.T) {
	logs := withObservedGlobal(t)
	l := NewGormLogger(DefaultGormLoggerConfig()).LogMode(gormlogger.Silent)
	l.Trace(context.Background(), time.Now().Add(-time.Hour), func() (string, int64) { return "SELECT 1", 1 }, errors.New("x"))
	l.Error(context.Background(), "ignored")
	assert.Equal(t, 0, logs.Len())
}

func TestOperation(t *testing.T) {
	assert.Equal(t, "SELECT", Operation("with x as (select 1) select * from x"))
	assert.Equal(t, "UPDATE", Operation("UPDATE journals SET status = ?"))
	assert.Equal(t, "UNKNOWN", Operation(""))
}
