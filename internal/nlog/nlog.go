// Package nlog is a minimal, allocation-light logger in the spirit of the
// teacher's cmn/nlog: thin wrapper over the standard log package, no
// third-party logging backend. Tagged loggers prefix each line with a
// caller-chosen tag (e.g. the emitting policy domain's location) so
// interleaved PD output stays attributable.
package nlog

import (
	"log"
	"os"
	"sync/atomic"
)

var std = log.New(os.Stderr, "", log.Ldate|log.Ltime|log.Lmicroseconds)

// verbosity is a process-wide setting read back through Verbosity. The
// log functions below do not consult it, and internal/cos.FastV keeps its
// own separate level.
var verbosity int32

func SetVerbosity(v int) { atomic.StoreInt32(&verbosity, int32(v)) }
func Verbosity() int     { return int(atomic.LoadInt32(&verbosity)) }

func Infoln(v ...any)                 { std.Println(append([]any{"I:"}, v...)...) }
func Infof(format string, v ...any)   { std.Printf("I: "+format, v...) }
func Errorln(v ...any)                { std.Println(append([]any{"E:"}, v...)...) }
func Errorf(format string, v ...any)  { std.Printf("E: "+format, v...) }
func Warningln(v ...any)              { std.Println(append([]any{"W:"}, v...)...) }
func Warningf(format string, v ...any) { std.Printf("W: "+format, v...) }

// Tagged returns a logger that prefixes every line with a location tag,
// e.g. the owning policy domain, matching "p.String()" prefixes the
// teacher prepends ad hoc in ais/prxs3.go.
type Tagged struct{ tag string }

func NewTagged(tag string) *Tagged { return &Tagged{tag: tag} }

func (t *Tagged) Infoln(v ...any)  { std.Println(append([]any{"I:", t.tag}, v...)...) }
func (t *Tagged) Errorln(v ...any) { std.Println(append([]any{"E:", t.tag}, v...)...) }
func (t *Tagged) Infof(format string, v ...any) {
	std.Printf("I: %s "+format, append([]any{t.tag}, v...)...)
}
func (t *Tagged) Errorf(format string, v ...any) {
	std.Printf("E: %s "+format, append([]any{t.tag}, v...)...)
}
