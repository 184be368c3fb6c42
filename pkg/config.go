package rmdupes

import (
	"fmt"
	"os"

	"github.com/go-ini/ini"
)

// Config represents the rmdupes configuration
type Config struct {
	configPath string
	ini        *ini.File
}

// HashConfig represents hash algorithm configuration
type HashConfig struct {
	Default string // Default hash algorithm
}

// PerformanceConfig represents performance-related configuration
type PerformanceConfig struct {
	HashWorkers int    // Number of concurrent hash workers (default: 4)
	HashBuffer  string // Hash buffer size for interruptible hashing (default: "2M")
}

// OutputConfig represents output configuration
type OutputConfig struct {
	Format string // Output format: report (the only format currently)
	Color  string // Progress color mode: auto, always, never
}

// VerboseConfig represents verbosity configuration
type VerboseConfig struct {
	Level int    // Default verbose level (0=quiet, 1=basic, 2=detailed, 3=trace)
	Debug string // Default debug flags (comma-separated)
}

// ScanConfig represents scan behavior configuration
type ScanConfig struct {
	SkipHardlinks bool // Treat files sharing an inode as one file (default: false)
}

// LoadConfig loads configuration from an ini file. An empty path or a missing
// file yields an in-memory config holding the defaults.
func LoadConfig(configPath string) (*Config, error) {
	cfg := &Config{configPath: configPath}

	if configPath == "" {
		cfg.ini = ini.Empty()
		if err := cfg.setDefaults(); err != nil {
			return nil, fmt.Errorf("failed to set default config: %w", err)
		}
		return cfg, nil
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg.ini = ini.Empty()
		if err := cfg.setDefaults(); err != nil {
			return nil, fmt.Errorf("failed to set default config: %w", err)
		}
		return cfg, nil
	}

	iniFile, err := ini.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}
	cfg.ini = iniFile

	return cfg, nil
}

// setDefaults sets default configuration values
func (c *Config) setDefaults() error {
	fileHashSection, err := c.ini.NewSection("filehash")
	if err != nil {
		return fmt.Errorf("failed to create filehash section: %w", err)
	}
	if _, err := fileHashSection.NewKey("default", DefaultHashAlgorithm); err != nil {
		return fmt.Errorf("failed to set default hash algorithm: %w", err)
	}

	performanceSection, err := c.ini.NewSection("performance")
	if err != nil {
		return fmt.Errorf("failed to create performance section: %w", err)
	}
	if _, err := performanceSection.NewKey("hash_workers", fmt.Sprintf("%d", DefaultHashWorkers)); err != nil {
		return fmt.Errorf("failed to set default hash workers: %w", err)
	}
	if _, err := performanceSection.NewKey("hash_buffer", DefaultHashBuffer); err != nil {
		return fmt.Errorf("failed to set default hash buffer: %w", err)
	}

	outputSection, err := c.ini.NewSection("output")
	if err != nil {
		return fmt.Errorf("failed to create output section: %w", err)
	}
	if _, err := outputSection.NewKey("format", "report"); err != nil {
		return fmt.Errorf("failed to set default output format: %w", err)
	}
	if _, err := outputSection.NewKey("color", "auto"); err != nil {
		return fmt.Errorf("failed to set default color mode: %w", err)
	}

	verboseSection, err := c.ini.NewSection("verbose")
	if err != nil {
		return fmt.Errorf("failed to create verbose section: %w", err)
	}
	if _, err := verboseSection.NewKey("level", "0"); err != nil {
		return fmt.Errorf("failed to set default verbose level: %w", err)
	}
	if _, err := verboseSection.NewKey("debug", ""); err != nil {
		return fmt.Errorf("failed to set default debug flags: %w", err)
	}

	scanSection, err := c.ini.NewSection("scan")
	if err != nil {
		return fmt.Errorf("failed to create scan section: %w", err)
	}
	if _, err := scanSection.NewKey("skip_hardlinks", "false"); err != nil {
		return fmt.Errorf("failed to set default hardlink mode: %w", err)
	}

	return nil
}

// Save writes the configuration back to its file
func (c *Config) Save() error {
	if c.configPath == "" {
		return fmt.Errorf("config has no backing file")
	}
	if err := c.ini.SaveTo(c.configPath); err != nil {
		return fmt.Errorf("failed to save config file: %w", err)
	}
	return nil
}

// Set overrides a single key, e.g. from a command line option. Overrides win
// over file contents because they are applied after loading.
func (c *Config) Set(section, key, value string) {
	c.ini.Section(section).Key(key).SetValue(value)
}

// GetHashConfig returns hash algorithm configuration
func (c *Config) GetHashConfig() *HashConfig {
	return &HashConfig{
		Default: c.ini.Section("filehash").Key("default").MustString(DefaultHashAlgorithm),
	}
}

// GetPerformanceConfig returns performance configuration
func (c *Config) GetPerformanceConfig() *PerformanceConfig {
	return &PerformanceConfig{
		HashWorkers: c.ini.Section("performance").Key("hash_workers").MustInt(DefaultHashWorkers),
		HashBuffer:  c.ini.Section("performance").Key("hash_buffer").MustString(DefaultHashBuffer),
	}
}

// GetOutputConfig returns output configuration
func (c *Config) GetOutputConfig() *OutputConfig {
	return &OutputConfig{
		Format: c.ini.Section("output").Key("format").MustString("report"),
		Color:  c.ini.Section("output").Key("color").MustString("auto"),
	}
}

// GetVerboseConfig returns verbosity configuration
func (c *Config) GetVerboseConfig() *VerboseConfig {
	return &VerboseConfig{
		Level: c.ini.Section("verbose").Key("level").MustInt(0),
		Debug: c.ini.Section("verbose").Key("debug").MustString(""),
	}
}

// GetScanConfig returns scan behavior configuration
func (c *Config) GetScanConfig() *ScanConfig {
	return &ScanConfig{
		SkipHardlinks: c.ini.Section("scan").Key("skip_hardlinks").MustBool(false),
	}
}

// GetHashAlgorithm resolves the configured hash algorithm
func (c *Config) GetHashAlgorithm() (*HashAlgorithm, error) {
	return GetHashAlgorithm(c.GetHashConfig().Default)
}

// GetHashBufferSize resolves the configured hash buffer size in bytes
func (c *Config) GetHashBufferSize() (int, error) {
	return ParseHumanSize(c.GetPerformanceConfig().HashBuffer)
}
