package finder

import "github.com/reelfinder/reelfinder/internal/catalog"

// Sink receives search output while a search is running.
type Sink interface {
	Match(detail catalog.Detail)
	Diagnostic(line string)
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) Match(catalog.Detail) {}
func (NopSink) Diagnostic(string)    {}

// SinkFuncs adapts plain functions to a Sink. Nil fields are ignored.
type SinkFuncs struct {
	OnMatch      func(catalog.Detail)
	OnDiagnostic func(string)
}

func (f SinkFuncs) Match(d catalog.Detail) {
	if f.OnMatch != nil {
		f.OnMatch(d)
	}
}

func (f SinkFuncs) Diagnostic(line string) {
	if f.OnDiagnostic != nil {
		f.OnDiagnostic(line)
	}
}
