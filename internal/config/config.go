// Package config handles exporter configuration loading.
package config

// Config holds all exporter settings.
type Config struct {
	Export  ExportConfig  `yaml:"export"`
	Logging LoggingConfig `yaml:"logging"`
}

// ExportConfig holds model export defaults.
type ExportConfig struct {
	// DefaultModelType is used when neither the object nor the scene
	// names one.
	DefaultModelType string  `yaml:"default_model_type"`
	CastShadows      bool    `yaml:"cast_shadows"`
	ReceiveShadows   bool    `yaml:"receive_shadows"`
	FPS              float64 `yaml:"fps"`
	OutputDir        string  `yaml:"output_dir"`
}

type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

func Default() *Config {
	return &Config{
		Export: ExportConfig{
			DefaultModelType: "PART",
			CastShadows:      true,
			ReceiveShadows:   true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
