package main

import (
	"os"

	"github.com/osuushi/delaunay"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

// Settings that can come from a YAML file. Flags given on the command line
// win over the file.
type Config struct {
	Kernel    string  `yaml:"kernel"`
	Tolerance float64 `yaml:"tolerance"`
	Locator   string  `yaml:"locator"`
	Seed      int64   `yaml:"seed"`
	ImageSize int     `yaml:"imageSize"`
	LogLevel  string  `yaml:"logLevel"`
	Compress  bool    `yaml:"compress"`
}

func LoadConfig(path string) (Config, error) {
	var config Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return config, errors.Wrap(err, "reading config")
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return config, errors.Wrapf(err, "parsing %s", path)
		}
	}

	if config.Kernel == "" {
		config.Kernel = "float"
	}
	if config.Locator == "" {
		config.Locator = "walk"
	}
	if config.Seed == 0 {
		config.Seed = 1
	}
	if config.ImageSize == 0 {
		config.ImageSize = 800
	}
	if config.LogLevel == "" {
		config.LogLevel = "warning"
	}
	return config, nil
}

func (c Config) Logger() (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, errors.Wrap(err, "log level")
	}
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return logger, nil
}

func (c Config) Options(logger logrus.FieldLogger) ([]delaunay.Option, error) {
	opts := []delaunay.Option{delaunay.WithSeed(c.Seed), delaunay.WithLogger(logger)}
	switch c.Kernel {
	case "float":
		opts = append(opts, delaunay.WithKernel(delaunay.FloatKernel{Tolerance: c.Tolerance}))
	case "adaptive":
		opts = append(opts, delaunay.WithKernel(delaunay.AdaptiveKernel{}))
	default:
		return nil, errors.Errorf("unknown kernel %q", c.Kernel)
	}
	switch c.Locator {
	case "walk":
		opts = append(opts, delaunay.WithLocator(delaunay.LocateWalk))
	case "tree":
		opts = append(opts, delaunay.WithLocator(delaunay.LocateTree))
	default:
		return nil, errors.Errorf("unknown locator %q", c.Locator)
	}
	return opts, nil
}
