package componentize

import (
	"sync"

	"go.uber.org/zap"

	"github.com/bytecodealliance/componentize-go/bindings"
	"github.com/bytecodealliance/componentize-go/embed"
	"github.com/bytecodealliance/componentize-go/encode"
	"github.com/bytecodealliance/componentize-go/gobuild"
	"github.com/bytecodealliance/componentize-go/resolve"
	"github.com/bytecodealliance/componentize-go/toolchain"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the pipeline's logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger configures the pipeline's logger and propagates a named child
// to every stage package.
func SetLogger(l *zap.Logger) {
	logger = l
	toolchain.SetLogger(l.Named("toolchain"))
	resolve.SetLogger(l.Named("resolve"))
	gobuild.SetLogger(l.Named("gobuild"))
	embed.SetLogger(l.Named("embed"))
	encode.SetLogger(l.Named("encode"))
	bindings.SetLogger(l.Named("bindings"))
}
