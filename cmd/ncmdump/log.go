package main

import (
	"os"

	ncmdump "github.com/ncmdump/go-ncmdump"
	"github.com/sirupsen/logrus"
)

type LogrusAdapter struct {
	Log *logrus.Entry
}

// newLogger builds the process logger from the configuration. Verbose output
// switches to full timestamps so per-file progress can be followed.
func newLogger(cfg *Config) (LogrusAdapter, error) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return LogrusAdapter{}, err
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: cfg.Verbose})

	return LogrusAdapter{logrus.NewEntry(logger)}, nil
}

func (l LogrusAdapter) Tracef(format string, args ...interface{}) { l.Log.Tracef(format, args...) }
func (l LogrusAdapter) Debugf(format string, args ...interface{}) { l.Log.Debugf(format, args...) }
func (l LogrusAdapter) Infof(format string, args ...interface{})  { l.Log.Infof(format, args...) }
func (l LogrusAdapter) Warnf(format string, args ...interface{})  { l.Log.Warnf(format, args...) }
func (l LogrusAdapter) Errorf(format string, args ...interface{}) { l.Log.Errorf(format, args...) }

func (l LogrusAdapter) Trace(args ...interface{}) { l.Log.Trace(args...) }
func (l LogrusAdapter) Debug(args ...interface{}) { l.Log.Debug(args...) }
func (l LogrusAdapter) Info(args ...interface{})  { l.Log.Info(args...) }
func (l LogrusAdapter) Warn(args ...interface{})  { l.Log.Warn(args...) }
func (l LogrusAdapter) Error(args ...interface{}) { l.Log.Error(args...) }

func (l LogrusAdapter) WithField(key string, value interface{}) ncmdump.Logger {
	return LogrusAdapter{l.Log.WithField(key, value)}
}

func (l LogrusAdapter) WithFields(fields ncmdump.Fields) ncmdump.Logger {
	return LogrusAdapter{l.Log.WithFields(logrus.Fields(fields))}
}

func (l LogrusAdapter) WithError(err error) ncmdump.Logger {
	return LogrusAdapter{l.Log.WithError(err)}
}
