package config

const (
	defaultStagingDir        = "~/.local/share/postmark/staging"
	defaultExportDir         = "~/.local/share/postmark/exports"
	defaultLogDir            = "~/.local/share/postmark/logs"
	defaultAPIBind           = "127.0.0.1:7519"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultStaleSessionHours = 48
	defaultMaxArchiveMiB     = 2048
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			ExportDir:  defaultExportDir,
			LogDir:     defaultLogDir,
			APIBind:    defaultAPIBind,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Review: Review{
			StaleSessionHours: defaultStaleSessionHours,
			MaxArchiveMiB:     defaultMaxArchiveMiB,
		},
	}
}
