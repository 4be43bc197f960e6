package config

const (
	defaultDataDir            = "~/.local/share/byebye"
	defaultLogDir             = "~/.local/share/byebye/logs"
	defaultAPIBind            = "127.0.0.1:7600"
	defaultDiscogsAPIBaseURL  = "https://api.discogs.com"
	defaultDiscogsWebBaseURL  = "https://www.discogs.com"
	defaultDiscogsUserAgent   = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	defaultDiscogsLanguage    = "ja,en;q=0.8"
	defaultRequestsPerMinute  = 55
	defaultSKUPrefix          = "BB"
	defaultBatchDelayMillis   = 300
	defaultUSDToJPY           = 150
	defaultNotifyTimeout      = 10
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultLogRetentionDays   = 14
	defaultConfigRelativePath = "~/.config/byebye/config.toml"
	projectConfigName         = "byebye.toml"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Discogs: Discogs{
			APIBaseURL:        defaultDiscogsAPIBaseURL,
			WebBaseURL:        defaultDiscogsWebBaseURL,
			UserAgent:         defaultDiscogsUserAgent,
			AcceptLanguage:    defaultDiscogsLanguage,
			RequestsPerMinute: defaultRequestsPerMinute,
		},
		SKU: SKU{
			Prefix: defaultSKUPrefix,
		},
		Batch: Batch{
			DelayMillis: defaultBatchDelayMillis,
			AutoApply:   true,
		},
		Pricing: Pricing{
			USDToJPY: defaultUSDToJPY,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Batch:          true,
			Errors:         true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
