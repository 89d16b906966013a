package go_ncmdump

// Fields is a set of structured log fields attached with Logger.WithFields.
type Fields map[string]interface{}

// Logger is the logging surface used by library packages. The command line
// tool backs it with logrus, tests and embedders can pass NullLogger.
type Logger interface {
	Tracef(format string, args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})

	Trace(args ...interface{})
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})

	WithField(key string, value interface{}) Logger
	WithFields(fields Fields) Logger
	WithError(err error) Logger
}

// OrNull returns log, or a NullLogger if log is nil.
func OrNull(log Logger) Logger {
	if log == nil {
		return NullLogger{}
	}

	return log
}

type NullLogger struct{}

func (NullLogger) Tracef(string, ...interface{}) {}
func (NullLogger) Debugf(string, ...interface{}) {}
func (NullLogger) Infof(string, ...interface{})  {}
func (NullLogger) Warnf(string, ...interface{})  {}
func (NullLogger) Errorf(string, ...interface{}) {}

func (NullLogger) Trace(...interface{}) {}
func (NullLogger) Debug(...interface{}) {}
func (NullLogger) Info(...interface{})  {}
func (NullLogger) Warn(...interface{})  {}
func (NullLogger) Error(...interface{}) {}

func (l NullLogger) WithField(string, interface{}) Logger { return l }
func (l NullLogger) WithFields(Fields) Logger             { return l }
func (l NullLogger) WithError(error) Logger               { return l }
