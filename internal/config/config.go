package config

const (
	ThemeDark  = "dark"
	ThemeLight = "light"

	DefaultDecimals = 2
	MaxDecimals     = 6
)

type Config struct {
	Theme         string            `json:"theme"`
	Decimals      int               `json:"decimals"`
	StoragePath   string            `json:"storagePath,omitempty"`
	LogLevel      string            `json:"logLevel"`
	LogFile       string            `json:"logFile,omitempty"`
	LogFormat     string            `json:"logFormat"`
	MetricsAddr   string            `json:"metricsAddr,omitempty"`
	KeyBindings   map[string]string `json:"keyBindings"`
	LastDirectory string            `json:"lastDirectory,omitempty"`
	Demo          bool              `json:"-"`
}

type fileConfig struct {
	Theme         *string           `json:"theme"`
	Decimals      *int              `json:"decimals"`
	StoragePath   *string           `json:"storagePath"`
	LogLevel      *string           `json:"logLevel"`
	LogFile       *string           `json:"logFile"`
	LogFormat     *string           `json:"logFormat"`
	MetricsAddr   *string           `json:"metricsAddr"`
	KeyBindings   map[string]string `json:"keyBindings"`
	LastDirectory *string           `json:"lastDirectory"`
}
