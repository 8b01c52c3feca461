package config

const (
	defaultLogDir       = "~/.local/share/confpilot/logs"
	defaultLockFile     = "~/.local/share/confpilot/confpilotd.lock"
	defaultAPIBind      = "127.0.0.1:8484"
	defaultRedisURL     = "redis://localhost:6379"
	defaultLogFormat    = "console"
	defaultLogLevel     = "info"
	defaultConferenceID = "ai-engineer-worlds-fair-2025"

	defaultSerperBaseURL     = "https://google.serper.dev"
	defaultApifyBaseURL      = "https://api.apify.com"
	defaultBrightDataBaseURL = "https://api.brightdata.com"
	defaultBrightDataDataset = "gd_l1viktl72bvl7bjuj0"
	defaultBrightDataPoll    = 3
	defaultBrightDataPolls   = 15
	defaultAiriaBaseURL      = "https://api.airia.ai"
	defaultOpenAIBaseURL     = "https://api.openai.com/v1"
	defaultOpenAIModel       = "gpt-5"
	defaultGladiaBaseURL     = "https://api.gladia.io/v2"
	defaultGladiaSampleRate  = 16000
	defaultGladiaChannels    = 1
	defaultGladiaBitDepth    = 16
	defaultGladiaModel       = "solaria-1"
	defaultReconnectAttempts = 5
	defaultReconnectDelayMS  = 1000
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:   defaultLogDir,
			LockFile: defaultLockFile,
			APIBind:  defaultAPIBind,
		},
		Redis: Redis{
			URL: defaultRedisURL,
		},
		Serper: Serper{
			BaseURL: defaultSerperBaseURL,
		},
		Apify: Apify{
			BaseURL: defaultApifyBaseURL,
		},
		BrightData: BrightData{
			BaseURL:             defaultBrightDataBaseURL,
			DatasetID:           defaultBrightDataDataset,
			PollIntervalSeconds: defaultBrightDataPoll,
			MaxPolls:            defaultBrightDataPolls,
		},
		Airia: Airia{
			BaseURL: defaultAiriaBaseURL,
		},
		OpenAI: OpenAI{
			BaseURL: defaultOpenAIBaseURL,
			Model:   defaultOpenAIModel,
		},
		Gladia: Gladia{
			BaseURL:              defaultGladiaBaseURL,
			SampleRate:           defaultGladiaSampleRate,
			Channels:             defaultGladiaChannels,
			BitDepth:             defaultGladiaBitDepth,
			Model:                defaultGladiaModel,
			ReconnectMaxAttempts: defaultReconnectAttempts,
			ReconnectDelayMillis: defaultReconnectDelayMS,
		},
		Conference: Conference{
			DefaultID: defaultConferenceID,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
