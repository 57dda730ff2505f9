package profile

// Stopper ends a profiling session and flushes its output.
type Stopper interface{ Stop() }

// Profiler describes one profiling session.
type Profiler struct {
	Mode  string
	Path  string
	Quiet bool
}

// Option configures a [Profiler].
type Option func(*Profiler)

// WithMode sets the profiling mode, one of [Modes].
func WithMode(mode string) Option { return func(p *Profiler) { p.Mode = mode } }

// WithPath sets the directory profiles are written to.
func WithPath(path string) Option { return func(p *Profiler) { p.Path = path } }

// WithQuiet suppresses the profiler's own log output.
func WithQuiet(quiet bool) Option { return func(p *Profiler) { p.Quiet = quiet } }

// New returns a Profiler with opts applied.
func New(opts ...Option) *Profiler {
	var p Profiler

	for _, opt := range opts {
		opt(&p)
	}

	return &p
}

// Start begins profiling. It returns a no-op [Stopper] when the binary was
// built without the pprof tag, when Mode is empty, or when Mode is unknown.
func (p *Profiler) Start() Stopper {
	if p == nil || p.Mode == "" {
		return ignore{}
	}

	return start(p)
}

type ignore struct{}

func (ignore) Stop() {}
