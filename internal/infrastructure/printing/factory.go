package printing

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// RendererOptions selects and configures a rendering engine
type RendererOptions struct {
	Engine     string
	Timeout    time.Duration
	ChromePath string
	ChromeURL  string
	NoSandbox  bool
	Logger     *zap.Logger
}

// NewRenderer builds the engine named in opts.Engine.
// An empty name selects the gofpdf engine.
func NewRenderer(opts RendererOptions) (PDFRenderer, error) {
	switch opts.Engine {
	case "", EngineFPDF:
		return NewFPDFRenderer(&FPDFConfig{
			DefaultTimeout: opts.Timeout,
			Logger:         opts.Logger,
		}), nil
	case EngineChromedp:
		return NewChromedpRenderer(&ChromedpConfig{
			DefaultTimeout: opts.Timeout,
			ExecPath:       opts.ChromePath,
			RemoteURL:      opts.ChromeURL,
			NoSandbox:      opts.NoSandbox,
			Logger:         opts.Logger,
		})
	default:
		return nil, fmt.Errorf("unknown rendering engine %q", opts.Engine)
	}
}
