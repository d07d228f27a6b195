package logsvc

import "github.com/MarcosBaez42/automatizacion-sofia/core"

type nopLogger struct{}

var _ core.Logger = nopLogger{}

// NewNopLogger discards everything; Fatal does not exit.
func NewNopLogger() core.Logger { return nopLogger{} }

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}
