package logger

var defLogger = NewSlog(InfoLevel)

func Debug(msg string, keysAndValues ...any) {
	defLogger.Debug(msg, keysAndValues...)
}

func Info(msg string, keysAndValues ...any) {
	defLogger.Info(msg, keysAndValues...)
}

func Warn(msg string, keysAndValues ...any) {
	defLogger.Warn(msg, keysAndValues...)
}

func Error(msg string, keysAndValues ...any) {
	defLogger.Error(msg, keysAndValues...)
}

func Fatal(msg string, keysAndValues ...any) {
	defLogger.Fatal(msg, keysAndValues...)
}

func SetLevel(level Level) {
	defLogger.SetLevel(level)
}

// SetLogger replaces the package default logger. A nil l is ignored.
//
// It is not safe to call concurrently with logging through the default logger.
func SetLogger(l Logger) {
	if l != nil {
		defLogger = l
	}
}

// GetLogger returns the package default logger.
func GetLogger() Logger {
	return defLogger
}

// With returns a child of the default logger carrying the given key-values.
func With(keyValues ...any) Logger {
	return defLogger.With(keyValues...)
}
