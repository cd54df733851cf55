package config

const (
	defaultAPIBaseURL        = "https://api.closeuplovetunes.in"
	defaultAPITimeoutSeconds = 30
	defaultUserAgent         = "jobdesk/dev"
	defaultTokenPath         = "~/.local/share/jobdesk/admin_token"
	defaultPageSize          = 20
	defaultReportStartDate   = "2026-01-01"
	defaultTrendMode         = "day"
	defaultExportDir         = "."
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultLogFile           = "~/.local/share/jobdesk/jobdesk.log"
)

// AllowedPageSizes lists the page sizes the listing endpoint accepts.
var AllowedPageSizes = []int{10, 20, 50, 100}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		API: API{
			BaseURL:        defaultAPIBaseURL,
			TimeoutSeconds: defaultAPITimeoutSeconds,
			UserAgent:      defaultUserAgent,
		},
		Session: Session{
			TokenPath: defaultTokenPath,
		},
		Jobs: Jobs{
			PageSize: defaultPageSize,
		},
		Reports: Reports{
			StartDate: defaultReportStartDate,
			TrendMode: defaultTrendMode,
			ExportDir: defaultExportDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
			File:   defaultLogFile,
		},
	}
}
