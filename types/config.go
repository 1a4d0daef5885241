package types

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fioncat/txtcrawl/osutils"
	"gopkg.in/yaml.v3"
)

const (
	configMinimalDuration = time.Millisecond * 100
	configMaximalDuration = time.Minute * 10

	configDefaultOpenBoltTimeout = time.Second * 3
	configDefaultDialTimeout     = time.Second * 30

	configDefaultServer   = "ftp.mirrorservice.org"
	configDefaultPort     = 21
	configDefaultUser     = "anonymous"
	configDefaultPassword = "anonymous@"

	configDefaultBasePath       = "/sites/ftp.ibiblio.org/pub/docs/books/gutenberg/"
	configDefaultPartitionCount = 10
	configDefaultFilterSuffix   = ".txt"
	configDefaultOutput         = "all_txt_combined.txt"
)

type Config struct {
	BaseDir string `yaml:"-"`
	Path    string `yaml:"-"`

	OpenBoltTimeout time.Duration `yaml:"openBoltTimeout"`

	Remote *RemoteConfig `yaml:"remote"`

	Crawl *CrawlConfig `yaml:"crawl"`
}

type RemoteConfig struct {
	Server string `yaml:"server"`
	Port   int    `yaml:"port"`

	User     string `yaml:"user"`
	Password string `yaml:"password"`

	DialTimeout time.Duration `yaml:"dialTimeout"`
}

func (c *RemoteConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server, c.Port)
}

type CrawlConfig struct {
	BasePath string `yaml:"basePath"`

	Partitions []string `yaml:"partitions"`

	FilterSuffix string `yaml:"filterSuffix"`

	Output string `yaml:"output"`
}

func DigitPartitions(n int) []string {
	segments := make([]string, n)
	for i := range segments {
		segments[i] = strconv.Itoa(i)
	}
	return segments
}

func LoadConfig() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	path := getConfigPath(homeDir)

	baseDir := os.Getenv("TXTCRAWL_BASE_PATH")
	if baseDir == "" {
		baseDir = filepath.Join(homeDir, ".local", "share", "txtcrawl")
	}
	err = osutils.EnsureDir(baseDir)
	if err != nil {
		return nil, fmt.Errorf("ensure basedir: %w", err)
	}

	if path == "" {
		return newDefaultConfig(path, baseDir), nil
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return newDefaultConfig(path, baseDir), nil
		}

		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	var cfg Config
	err = decoder.Decode(&cfg)
	if err != nil {
		return nil, fmt.Errorf("decode config yaml file: %w", err)
	}

	err = cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	cfg.BaseDir = baseDir
	cfg.Path = path

	return &cfg, nil
}

func getConfigPath(homeDir string) string {
	path := os.Getenv("TXTCRAWL_CONFIG_PATH")
	if path != "" {
		return path
	}
	dir := filepath.Join(homeDir, ".config", "txtcrawl")
	ents, err := os.ReadDir(dir)
	if err == nil {
		for _, ent := range ents {
			switch ent.Name() {
			case "config.yaml", "config.yml":
				return filepath.Join(dir, ent.Name())
			}
		}
	}
	return ""
}

func newDefaultConfig(path, baseDir string) *Config {
	c := &Config{
		BaseDir: baseDir,
		Path:    path,

		OpenBoltTimeout: configDefaultOpenBoltTimeout,
	}
	c.Remote = c.newDefaultRemote()
	c.Crawl = c.newDefaultCrawl()

	return c
}

func (c *Config) Validate() error {
	if c.OpenBoltTimeout > 0 {
		err := c.validateDuration(c.OpenBoltTimeout)
		if err != nil {
			return fmt.Errorf("invalid openBoltTimeout: %w", err)
		}
	} else {
		c.OpenBoltTimeout = configDefaultOpenBoltTimeout
	}

	if c.Remote == nil {
		c.Remote = c.newDefaultRemote()
	}
	err := c.validateRemote()
	if err != nil {
		return err
	}

	if c.Crawl == nil {
		c.Crawl = c.newDefaultCrawl()
	}
	return c.validateCrawl()
}

func (c *Config) validateRemote() error {
	r := c.Remote
	r.Server = strings.TrimSpace(r.Server)
	if r.Server == "" {
		r.Server = configDefaultServer
	}
	if strings.Contains(r.Server, "/") {
		return fmt.Errorf("invalid remote.server %q, it should be a hostname", r.Server)
	}

	switch {
	case r.Port == 0:
		r.Port = configDefaultPort
	case r.Port < 0 || r.Port > 65535:
		return fmt.Errorf("invalid remote.port %d", r.Port)
	}

	if r.User == "" {
		r.User = configDefaultUser
		if r.Password == "" {
			r.Password = configDefaultPassword
		}
	}
	r.Password = os.ExpandEnv(r.Password)

	if r.DialTimeout > 0 {
		err := c.validateDuration(r.DialTimeout)
		if err != nil {
			return fmt.Errorf("invalid remote.dialTimeout: %w", err)
		}
	} else {
		r.DialTimeout = configDefaultDialTimeout
	}

	return nil
}

func (c *Config) validateCrawl() error {
	cr := c.Crawl
	if cr.BasePath == "" {
		cr.BasePath = configDefaultBasePath
	}
	if !ParseRemotePath(cr.BasePath).IsAbs() {
		return fmt.Errorf("invalid crawl.basePath %q, it should be an absolute path", cr.BasePath)
	}
	if len(cr.Partitions) == 0 {
		cr.Partitions = DigitPartitions(configDefaultPartitionCount)
	}
	seen := make(map[string]struct{}, len(cr.Partitions))
	for _, segment := range cr.Partitions {
		if ParseRemotePath(segment).Depth() == 0 {
			return errors.New("invalid crawl.partitions, segment could not be empty")
		}
		if _, ok := seen[segment]; ok {
			return fmt.Errorf("invalid crawl.partitions, duplicate segment %q", segment)
		}
		seen[segment] = struct{}{}
	}

	if cr.FilterSuffix == "" {
		cr.FilterSuffix = configDefaultFilterSuffix
	}
	if cr.Output == "" {
		cr.Output = configDefaultOutput
	}

	return nil
}

func (c *Config) newDefaultRemote() *RemoteConfig {
	return &RemoteConfig{
		Server:   configDefaultServer,
		Port:     configDefaultPort,
		User:     configDefaultUser,
		Password: configDefaultPassword,

		DialTimeout: configDefaultDialTimeout,
	}
}

func (c *Config) newDefaultCrawl() *CrawlConfig {
	return &CrawlConfig{
		BasePath:     configDefaultBasePath,
		Partitions:   DigitPartitions(configDefaultPartitionCount),
		FilterSuffix: configDefaultFilterSuffix,
		Output:       configDefaultOutput,
	}
}

func (c *Config) validateDuration(d time.Duration) error {
	if d < configMinimalDuration {
		return fmt.Errorf("duration %v is too small, it should >= %v", d, configMinimalDuration)
	}
	if d > configMaximalDuration {
		return fmt.Errorf("duration %v is too big, it should <= %v", d, configMaximalDuration)
	}

	return nil
}
