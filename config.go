package unarchive

import (
	"time"

	"github.com/Defacto2/unarchive/command"
	"go.uber.org/zap"
)

// Config is the configuration of an extraction run.
type Config struct {
	Dirname   string            `yaml:"dirname"`   // Dirname is the output directory name, Dirname when empty.
	Overwrite bool              `yaml:"overwrite"` // Overwrite replaces existing files instead of renaming new ones.
	Flat      bool              `yaml:"flat"`      // Flat writes every file directly into the output directory.
	NoLibrary bool              `yaml:"nolibrary"` // NoLibrary disables the in-process 7z and rar fallbacks.
	TempDir   string            `yaml:"tempdir"`   // TempDir is the parent of the scratch directories, the system default when empty.
	Timeout   time.Duration     `yaml:"timeout"`   // Timeout limits each program invocation, zero means no limit.
	Tools     command.Overrides `yaml:"tools"`     // Tools are the explicit program paths.
}

// Option configures an [Extractor].
type Option func(*Extractor)

// WithLogger sets the structured logger for internal diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(x *Extractor) {
		if l != nil {
			x.log = l
		}
	}
}

// WithTools uses the already resolved programs and skips discovery.
func WithTools(t command.Tools) Option {
	return func(x *Extractor) {
		x.tools = &t
	}
}

// WithLocator replaces the program locator used for discovery.
func WithLocator(l command.Locator) Option {
	return func(x *Extractor) {
		x.locator = l
	}
}

// Extractor extracts archives into a destination directory.
//
//	func Extract() {
//	    x := unarchive.New(unarchive.Config{})
//	    sum, err := x.Run(context.Background(), "downloads",
//	        func(i, n int) {},
//	        func(line string) { fmt.Println(line) })
//	    if err != nil {
//	        fmt.Fprintf(os.Stderr, "error: %v\n", err)
//	        return
//	    }
//	    fmt.Println(sum.Destination)
//	}
type Extractor struct {
	cfg     Config
	namer   Namer
	log     *zap.Logger
	locator command.Locator
	tools   *command.Tools
}

// New returns an extractor for the configuration.
func New(cfg Config, opts ...Option) *Extractor {
	if cfg.Dirname == "" {
		cfg.Dirname = Dirname
	}
	x := &Extractor{
		cfg:     cfg,
		namer:   Namer{Overwrite: cfg.Overwrite, Flat: cfg.Flat},
		log:     zap.NewNop(),
		locator: command.NewLocator(cfg.Tools),
	}
	for _, opt := range opts {
		opt(x)
	}
	x.locator.Logger = x.log
	return x
}

// Tools returns the external programs used by the extractor,
// locating them on the first call.
func (x *Extractor) Tools() command.Tools {
	if x.tools == nil {
		t := x.locator.Detect()
		x.tools = &t
	}
	return *x.tools
}

// Config returns the configuration with the defaults applied.
func (x *Extractor) Config() Config {
	return x.cfg
}
