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

func TestDescribeSQL(t *testing.T) {
	cases := []struct {
		sql, op, table string
	}{
		{`SELECT * FROM "ratings" WHERE product_id = $1`, "SELECT", "ratings"},
		{"INSERT INTO `orders` (`id`) VALUES (?)", "INSERT", "orders"},
		{`UPDATE "products" SET name = $1`, "UPDATE", "products"},
		{`DELETE FROM order_items WHERE order_id = 1`, "DELETE", "order_items"},
		{`WITH t AS (SELECT 1) SELECT * FROM t`, "SELECT", "t"},
		{``, "UNKNOWN", ""},
	}
	for _, tc := range cases {
		op, table := describeSQL(tc.sql)
		assert.Equal(t, tc.op, op, tc.sql)
		assert.Equal(t, tc.table, table, tc.sql)
	}
}

func withObservedGlobal(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	t.Cleanup(restore)
	return logs
}

func TestGormLoggerSkipsRecordNotFound(t *testing.T) {
	logs := withObservedGlobal(t)
	l := NewGormLogger(time.Second, false)

	l.Trace(context.Background(), time.Now(), func() (string, int64) {
		return `SELECT * FROM "users" WHERE email = $1`, 0
	}, gormlogger.ErrRecordNotFound)
	assert.Zero(t, logs.Len())

	l.Trace(context.Background(), time.Now(), func() (string, int64) {
		return `SELECT * FROM "users"`, 0
	}, errors.New("connection reset"))
	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
		assert.Equal(t, "users", entries[0].ContextMap()["table"])
	}
}

func TestGormLoggerSlowQueryWarns(t *testing.T) {
	logs := withObservedGlobal(t)
	l := NewGormLogger(time.Millisecond, false)

	l.Trace(context.Background(), time.Now().Add(-time.Second), func() (string, int64) {
		return `SELECT * FROM "ratings"`, 3
	}, nil)
	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
		assert.Equal(t, int64(3), entries[0].ContextMap()["rows"])
	}
}

func TestGormLoggerSilent(t *testing.T) {
	logs := withObservedGlobal(t)
	l := NewGormLogger(time.Millisecond, true).LogMode(gormlogger.Silent)
	l.Trace(context.Background(), time.Now().Add(-time.Second), func() (string, int64) {
		return `SELECT 1`, 1
	}, errors.New("boom"))
	assert.Zero(t, logs.Len())
}
