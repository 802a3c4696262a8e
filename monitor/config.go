package monitor

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ThresholdsConfig carries the good/warning boundaries (seconds) for the
// three measured stages.
type ThresholdsConfig struct {
	Creation   Thresholds `yaml:"creation"`
	Submission Thresholds `yaml:"submission"`
	CPU        Thresholds `yaml:"cpu"`
}

// DefaultThresholds matches the stage latencies a healthy node shows.
func DefaultThresholds() ThresholdsConfig {
	return ThresholdsConfig{
		Creation:   Thresholds{Good: 17, Warning: 50},
		Submission: Thresholds{Good: 28, Warning: 70},
		CPU:        Thresholds{Good: 20, Warning: 30},
	}
}

type TelegramConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
	NodeName string `yaml:"node_name"`
}

type PriceConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
}

// FileConfig is the YAML config file shape. Zero values fall back to the
// defaults applied in NewRunner; pointer fields distinguish "absent" from an
// explicit zero.
type FileConfig struct {
	DB            string            `yaml:"db"`
	NodeDir       string            `yaml:"node_dir"`
	JournalUnit   string            `yaml:"journal_unit"`
	Debug         bool              `yaml:"debug"`
	RetentionDays *int              `yaml:"retention_days"`
	RewardCutoff  *float64          `yaml:"reward_cutoff"`
	FetchTimeout  time.Duration     `yaml:"fetch_timeout"`
	Thresholds    *ThresholdsConfig `yaml:"thresholds"`
	Telegram      TelegramConfig    `yaml:"telegram"`
	Price         PriceConfig       `yaml:"price"`
	CSVPath       string            `yaml:"csv_path"`
}

func LoadConfig(path string) (*FileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg FileConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
