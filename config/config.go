package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	ModeConcatenated = "concatenated"
	ModePerChunk     = "per_chunk"
)

var (
	ErrInvalidWindowSize = errors.New("window size must be positive")
	ErrInvalidSampleRate = errors.New("output sample rate must be positive")
	ErrInvalidBitDepth   = errors.New("output bit depth must be 16, 24 or 32")
	ErrInvalidMode       = errors.New("output mode must be concatenated or per_chunk")
	ErrEmptyOutputDir    = errors.New("output dir name must not be empty")
)

type Model struct {
	URL       string `yaml:"url"`
	ModelPath string `yaml:"model_path"`
	Timeout   int    `yaml:"timeout"` // seconds, 0 waits forever
}
type Service struct {
	URL string `yaml:"url"`
}
type Services struct {
	Model         Model   `yaml:"model"`
	Visualization Service `yaml:"visualization"`
}
type Audio struct {
	SampleRate int `yaml:"sample_rate"`
	BitDepth   int `yaml:"bit_depth"`
}
type Windowing struct {
	Size int `yaml:"size"`
}
type Output struct {
	Mode     string `yaml:"mode"`
	DirName  string `yaml:"dir_name"`
	Manifest bool   `yaml:"manifest"`
}
type Root struct {
	Pipeline struct {
		Name     string `yaml:"name"`
		Version  string `yaml:"version"`
		LogLvl   string `yaml:"log_level"`
		LogFile  string `yaml:"log_file"`
		Progress bool   `yaml:"progress"`
	} `yaml:"pipeline"`
	Audio     Audio     `yaml:"audio"`
	Windowing Windowing `yaml:"windowing"`
	Output    Output    `yaml:"output"`
	Services  Services  `yaml:"services"`
	Paths     struct {
		Data   string `yaml:"data"`
		Models string `yaml:"models"`
	} `yaml:"paths"`
}

// Default returns the reference parameters: 800-sample windows written back
// at a fixed 22050 Hz regardless of the source rate.
func Default() *Root {
	var c Root
	c.Pipeline.Name = "heartclean"
	c.Pipeline.Version = "0.1.0"
	c.Pipeline.LogLvl = "info"
	c.Audio = Audio{SampleRate: 22050, BitDepth: 16}
	c.Windowing = Windowing{Size: 800}
	c.Output = Output{Mode: ModeConcatenated, DirName: "clean"}
	c.Paths.Data = filepath.Join("Data", "predict")
	c.Paths.Models = filepath.Join("Models", "LU-Net.h5")
	c.Services.Model.ModelPath = c.Paths.Models
	return &c
}

// Load reads the YAML file at path, or the first of the CONFIG_ENV guess
// paths when path is empty, on top of Default. A missing guess file is not an
// error; a missing explicit file is.
func Load(path string) (*Root, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		if err := decodeFile(path, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	var guess []string = []string{
		filepath.Join("config", env, "config.yaml"),
		filepath.Join("src", "shared", "config.yaml"),
	}
	for _, p := range guess {
		err := decodeFile(p, cfg)
		if err == nil {
			return cfg, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Root) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	// an explicit empty dir_name means the default
	if cfg.Output.DirName == "" {
		cfg.Output.DirName = Default().Output.DirName
	}
	return nil
}

// Override applies values set through the environment (HEARTCLEAN_*) or
// through flags bound to v. Keys left unset keep the file value.
func (c *Root) Override(v *viper.Viper) {
	v.SetEnvPrefix("heartclean")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if v.IsSet("pipeline.log_level") {
		c.Pipeline.LogLvl = v.GetString("pipeline.log_level")
	}
	if v.IsSet("pipeline.log_file") {
		c.Pipeline.LogFile = v.GetString("pipeline.log_file")
	}
	if v.IsSet("pipeline.progress") {
		c.Pipeline.Progress = v.GetBool("pipeline.progress")
	}
	if v.IsSet("audio.sample_rate") {
		c.Audio.SampleRate = v.GetInt("audio.sample_rate")
	}
	if v.IsSet("windowing.size") {
		c.Windowing.Size = v.GetInt("windowing.size")
	}
	if v.IsSet("output.mode") {
		c.Output.Mode = v.GetString("output.mode")
	}
	if v.IsSet("output.dir_name") {
		c.Output.DirName = v.GetString("output.dir_name")
	}
	if v.IsSet("output.manifest") {
		c.Output.Manifest = v.GetBool("output.manifest")
	}
	if v.IsSet("services.model.url") {
		c.Services.Model.URL = v.GetString("services.model.url")
	}
	if v.IsSet("services.model.model_path") {
		c.Services.Model.ModelPath = v.GetString("services.model.model_path")
	}
	if v.IsSet("services.model.timeout") {
		c.Services.Model.Timeout = v.GetInt("services.model.timeout")
	}
	if v.IsSet("services.visualization.url") {
		c.Services.Visualization.URL = v.GetString("services.visualization.url")
	}
}

func (c *Root) Validate() error {
	if c.Windowing.Size <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidWindowSize, c.Windowing.Size)
	}
	if c.Audio.SampleRate <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidSampleRate, c.Audio.SampleRate)
	}
	switch c.Audio.BitDepth {
	case 16, 24, 32:
	default:
		return fmt.Errorf("%w: got %d", ErrInvalidBitDepth, c.Audio.BitDepth)
	}
	switch c.Output.Mode {
	case ModeConcatenated, ModePerChunk:
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidMode, c.Output.Mode)
	}
	if c.Output.DirName == "" {
		return ErrEmptyOutputDir
	}
	return nil
}

func DurSeconds(n int) time.Duration { return time.Duration(n) * time.Second }
