package config

const (
	defaultStateDir        = "~/.local/share/soundstage"
	defaultLogDir          = "~/.local/share/soundstage/logs"
	defaultPollMaxAttempts = 100
	defaultPollIntervalMS  = 50
	defaultSmootherDivisor = 10
	defaultSmootherEpsilon = 0.01
	defaultSmootherCadence = 16
	defaultSmootherMode    = "ease"
	defaultWidgetBackend   = BackendSim
	defaultEmbedURL        = "https://w.soundcloud.com/player/"
	defaultRequestTimeout  = 10
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	defaultDeployEnvFile   = ".env"
	trackURLEnv            = "SOUNDSTAGE_TRACK_URL"
	debuggerURLEnv         = "SOUNDSTAGE_DEBUGGER_URL"
)

// Widget backends.
const (
	BackendSim     = "sim"
	BackendBrowser = "browser"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Poll: Poll{
			MaxAttempts:      defaultPollMaxAttempts,
			IntervalMS:       defaultPollIntervalMS,
			ReceiveTimeoutMS: defaultPollIntervalMS,
		},
		Smoother: Smoother{
			Divisor:   defaultSmootherDivisor,
			Epsilon:   defaultSmootherEpsilon,
			CadenceMS: defaultSmootherCadence,
			Mode:      defaultSmootherMode,
		},
		Widget: Widget{
			Backend:        defaultWidgetBackend,
			EmbedURL:       defaultEmbedURL,
			Headless:       true,
			RequestTimeout: defaultRequestTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Deploy: Deploy{
			EnvFile: defaultDeployEnvFile,
		},
	}
}
