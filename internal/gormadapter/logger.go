package gormadapter

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/anchore/riskboard/internal/log"
)

type logAdapter struct {
	debug         bool
	slowThreshold time.Duration
}

func (l *logAdapter) LogMode(logger.LogLevel) logger.Interface {
	return l
}

func (l *logAdapter) Info(_ context.Context, fmt string, v ...interface{}) {
	if l.debug {
		log.Infof("gorm: "+fmt, v...)
	}
}

func (l *logAdapter) Warn(_ context.Context, fmt string, v ...interface{}) {
	log.Warnf("gorm: "+fmt, v...)
}

func (l *logAdapter) Error(_ context.Context, fmt string, v ...interface{}) {
	log.Errorf("gorm: "+fmt, v...)
}

func (l *logAdapter) Trace(_ context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		log.WithFields("sql", sql, "rows", rows, "elapsed", elapsed).Debugf("gorm query failed: %v", err)
	case l.slowThreshold != 0 && elapsed > l.slowThreshold:
		sql, rows := fc()
		log.WithFields("sql", sql, "rows", rows, "elapsed", elapsed).Debug("slow gorm query")
	case l.debug:
		sql, rows := fc()
		log.WithFields("sql", sql, "rows", rows, "elapsed", elapsed).Trace("gorm query")
	}
}
