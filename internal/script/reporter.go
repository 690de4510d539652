package script

import "log/slog"

// Reporter receives behavior call errors before the call site applies its
// recovery policy. It is the installed error handler of the scripting
// host; reporting must never fail or block.
type Reporter interface {
	Report(err error, object, hook string)
}

// SlogReporter reports behavior errors through slog.
type SlogReporter struct{}

// Report logs the error with object and hook context.
func (SlogReporter) Report(err error, object, hook string) {
	slog.Error("script error", "object", object, "hook", hook, "err", err)
}

// NopReporter discards all reports. Used in tests.
type NopReporter struct{}

// Report does nothing.
func (NopReporter) Report(error, string, string) {}
