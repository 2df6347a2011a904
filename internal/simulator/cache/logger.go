package cache

import (
	"fmt"

	"github.com/dgraph-io/badger/v3"
	"github.com/reformlab/reformer/pkg/log"
)

type storeLogger struct {
	badger.Logger
}

func (l *storeLogger) Debugf(msg string, args ...interface{}) {
	log.Debug(log.Clean(fmt.Sprintf(msg, args...)))
}

func (l *storeLogger) Infof(msg string, args ...interface{}) {
	log.Info(log.Clean(fmt.Sprintf(msg, args...)))
}

func (l *storeLogger) Warningf(msg string, args ...interface{}) {
	log.Warn(log.Clean(fmt.Sprintf(msg, args...)))
}

func (l *storeLogger) Errorf(msg string, args ...interface{}) {
	log.Error(log.Clean(fmt.Sprintf(msg, args...)))
}
