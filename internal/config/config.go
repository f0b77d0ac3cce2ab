package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// BenchConfig tunes the cache geometry and scan parameters used by
// the benchmark binary.
type BenchConfig struct {
	Cache struct {
		PageSize int  `mapstructure:"page_size"`
		Pages    int  `mapstructure:"pages"`
		MaxOpen  int  `mapstructure:"max_open"`
		DirectIO bool `mapstructure:"direct_io"`
	} `mapstructure:"cache"`
	Bench struct {
		ChunkSize int  `mapstructure:"chunk_size"`
		Debug     bool `mapstructure:"debug"`
	} `mapstructure:"bench"`
}

// Load reads a yaml config from path.
func Load(path string) (*BenchConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg BenchConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}
