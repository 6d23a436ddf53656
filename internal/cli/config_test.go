package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/polarity/internal/model"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func TestLoadConfig_Defaults(t *testing.T) {
	v := viper.New()
	setupViper(v, filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := loadConfig(v)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}

	def := model.DefaultConfig()
	if cfg.Dataset.SampleFraction != def.Dataset.SampleFraction || cfg.Dataset.SampleSeed != def.Dataset.SampleSeed {
		t.Errorf("Expected default sampling, got %+v", cfg.Dataset)
	}
	if len(cfg.Experiments) != 3 || cfg.Experiments[2].NGramMax != 2 {
		t.Errorf("Expected default experiments, got %+v", cfg.Experiments)
	}
	if cfg.HTTP.Timeout != def.HTTP.Timeout || cfg.Cache.DiskTTL != def.Cache.DiskTTL {
		t.Errorf("Expected default durations, got %v and %v", cfg.HTTP.Timeout, cfg.Cache.DiskTTL)
	}
	if len(cfg.Report.Probes) != 2 {
		t.Errorf("Expected default probes, got %v", cfg.Report.Probes)
	}
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `dataset:
  sample_fraction: 0.5
  text_column: Body
split:
  test_size: 0.3
experiments:
  - name: only-tfidf
    vectorizer: tfidf
    min_df: 2
    ngram_min: 1
    ngram_max: 3
report:
  probes:
    - "works great"
cache:
  disk_ttl: 1h
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("POLARITY_SPLIT_TEST_SIZE", "0.2")
	t.Setenv("POLARITY_HTTP_NO_PROXY", "localhost")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	v := viper.New()
	setupViper(v, path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig: %v", err)
	}

	cfg, err := loadConfig(v)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}

	if cfg.Dataset.SampleFraction != 0.5 || cfg.Dataset.TextColumn != "Body" {
		t.Errorf("Expected file values for dataset, got %+v", cfg.Dataset)
	}
	if cfg.Dataset.RatingColumn != "Rating" {
		t.Errorf("Expected default rating column to survive, got %q", cfg.Dataset.RatingColumn)
	}
	if cfg.Split.TestSize != 0.2 {
		t.Errorf("Expected env to override file test size, got %v", cfg.Split.TestSize)
	}
	if cfg.HTTP.NoProxy != "localhost" {
		t.Errorf("Expected no_proxy from env, got %q", cfg.HTTP.NoProxy)
	}
	if len(cfg.Experiments) != 1 || cfg.Experiments[0].Name != "only-tfidf" || cfg.Experiments[0].Vectorizer != model.VectorizerTfidf {
		t.Errorf("Expected the single configured experiment, got %+v", cfg.Experiments)
	}
	if len(cfg.Report.Probes) != 1 || cfg.Report.Probes[0] != "works great" {
		t.Errorf("Expected one configured probe, got %v", cfg.Report.Probes)
	}
	if cfg.Cache.DiskTTL != time.Hour {
		t.Errorf("Expected disk TTL 1h, got %v", cfg.Cache.DiskTTL)
	}
	if cfg.LLM.APIKey != "sk-test" {
		t.Errorf("Expected API key from OPENAI_API_KEY, got %q", cfg.LLM.APIKey)
	}
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	if err := writeDefaultConfig(path, false); err != nil {
		t.Fatalf("writeDefaultConfig: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# Polarity configuration") {
		t.Error("Expected header comment")
	}

	var cfg model.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("Written config is not valid YAML: %v", err)
	}
	if cfg.Dataset.TextColumn != "Reviews" || len(cfg.Experiments) != 3 {
		t.Errorf("Unexpected round-tripped config: %+v", cfg.Dataset)
	}

	if err := writeDefaultConfig(path, false); err == nil {
		t.Error("Expected error when the file exists")
	}
	if err := writeDefaultConfig(path, true); err != nil {
		t.Errorf("Expected --force to overwrite, got %v", err)
	}
}

func TestLoadEnvFile(t *testing.T) {
	if err := loadEnvFile(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Errorf("Expected missing .env to be ignored, got %v", err)
	}

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("POLARITY_TEST_ENV_VALUE=from-dotenv\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Unsetenv("POLARITY_TEST_ENV_VALUE") })

	if err := loadEnvFile(path); err != nil {
		t.Fatalf("loadEnvFile: %v", err)
	}
	if got := os.Getenv("POLARITY_TEST_ENV_VALUE"); got != "from-dotenv" {
		t.Errorf("Expected from-dotenv, got %q", got)
	}
}
