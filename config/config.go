// Package config holds the settings of paperview.
//
// Settings are read from the environment (variables prefixed PAPERVIEW_, a
// .env file in the working directory is loaded first), and can be overridden
// by a YAML file and finally by command line flags.
package config

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hesusruiz/vcutils/yaml"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/hesusruiz/paperview/source"
)

// Prefix of the environment variables
const Prefix = "PAPERVIEW"

// Kinds of source
const (
	SourceDir  = "dir"
	SourceHTTP = "http"
	SourceS3   = "s3"
)

// Config contains the settings of a render or of the server.
type Config struct {
	Paper        string `envconfig:"PAPER" default:"core.tex"`
	Bibliography string `envconfig:"BIBLIOGRAPHY" default:"refs.bib"`
	Renderer     string `envconfig:"RENDERER" default:"auto"`

	// Template is the page template file. Empty means the built in one.
	Template string `envconfig:"TEMPLATE"`
	Title    string `envconfig:"TITLE" default:"Paper"`

	CodeStyle      string `envconfig:"CODE_STYLE"`
	LaTeXAssetBase string `envconfig:"LATEX_ASSET_BASE"`

	FetchTimeout time.Duration `envconfig:"FETCH_TIMEOUT" default:"30s"`
	Addr         string        `envconfig:"ADDR" default:":4242"`

	SourceKind string `envconfig:"SOURCE_KIND" default:"dir"`
	SourceBase string `envconfig:"SOURCE_BASE" default:"."`

	S3Bucket    string `envconfig:"S3_BUCKET"`
	S3Prefix    string `envconfig:"S3_PREFIX"`
	S3Region    string `envconfig:"S3_REGION"`
	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey string `envconfig:"S3_SECRET_KEY"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	if err := envconfig.Process(Prefix, &c); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	return &c, nil
}

// ApplyFile overrides the configuration with the keys present in a YAML file.
func (c *Config) ApplyFile(fileName string) error {
	y, err := yaml.ParseYamlFile(fileName)
	if err != nil {
		return fmt.Errorf("reading %s: %w", fileName, err)
	}
	if err := c.Apply(y); err != nil {
		return fmt.Errorf("%s: %w", fileName, err)
	}
	return nil
}

// Apply overrides the configuration with the keys present in y.
func (c *Config) Apply(y *yaml.YAML) error {
	c.Paper = y.String("paper", c.Paper)
	c.Bibliography = y.String("bibliography", c.Bibliography)
	c.Renderer = y.String("renderer", c.Renderer)
	c.Template = y.String("template", c.Template)
	c.Title = y.String("title", c.Title)
	c.CodeStyle = y.String("codeStyle", c.CodeStyle)
	c.LaTeXAssetBase = y.String("latexAssetBase", c.LaTeXAssetBase)
	c.Addr = y.String("addr", c.Addr)

	c.SourceKind = y.String("source.kind", c.SourceKind)
	c.SourceBase = y.String("source.base", c.SourceBase)

	c.S3Bucket = y.String("s3.bucket", c.S3Bucket)
	c.S3Prefix = y.String("s3.prefix", c.S3Prefix)
	c.S3Region = y.String("s3.region", c.S3Region)
	c.S3Endpoint = y.String("s3.endpoint", c.S3Endpoint)
	c.S3AccessKey = y.String("s3.accessKey", c.S3AccessKey)
	c.S3SecretKey = y.String("s3.secretKey", c.S3SecretKey)

	if timeout := y.String("fetchTimeout", ""); len(timeout) > 0 {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("fetchTimeout: %w", err)
		}
		c.FetchTimeout = d
	}

	return nil
}

// Fetcher builds the source the paper and the bibliography are read from.
func (c *Config) Fetcher(ctx context.Context) (source.Fetcher, error) {
	switch strings.ToLower(c.SourceKind) {
	case "", SourceDir:
		return source.Dir{Root: c.SourceBase}, nil

	case SourceHTTP:
		if len(c.SourceBase) == 0 {
			return nil, fmt.Errorf("source kind %s needs a base URL", SourceHTTP)
		}
		return source.HTTP{Base: c.SourceBase, Client: &http.Client{Timeout: c.FetchTimeout}}, nil

	case SourceS3:
		if len(c.S3Bucket) == 0 {
			return nil, fmt.Errorf("source kind %s needs a bucket", SourceS3)
		}
		client, err := source.NewS3Client(ctx, source.S3Config{
			Region:    c.S3Region,
			Endpoint:  c.S3Endpoint,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
		})
		if err != nil {
			return nil, err
		}
		return source.S3{Client: client, Bucket: c.S3Bucket, Prefix: c.S3Prefix}, nil
	}

	return nil, fmt.Errorf("unknown source kind %q", c.SourceKind)
}
