// Package config reads the optional TOML configuration of the CLI.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Engines lists the accepted engine names.
var Engines = []string{"canvas", "gg"}

// Font is one font registered before painting starts.
type Font struct {
	// Path is a font file or a built-in "embed:" name.
	Path   string `toml:"path"`
	Family string `toml:"family"`
	Style  string `toml:"style"`
	Weight string `toml:"weight"`
}

// Config holds canvas defaults and resources shared by every script run.
type Config struct {
	// Width and Height set the canvas size before the script runs; zero keeps
	// the builder default. A size command in the script wins.
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Engine string `toml:"engine"`
	Debug  bool   `toml:"debug"`
	// ImageDir resolves relative image paths; empty means the script directory.
	ImageDir string `toml:"image_dir"`
	// OutDir resolves relative export paths.
	OutDir string `toml:"out_dir"`
	Fonts  []Font `toml:"font"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{Engine: "canvas"}
}

// NewConfigWithFile reads and validates the TOML file at name. Relative font
// paths are resolved against the file's directory.
func NewConfigWithFile(name string) (*Config, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("读取配置 %s 失败: %w", name, err)
	}
	c, err := NewConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	c.resolveFonts(filepath.Dir(name))
	return c, nil
}

// resolveFonts joins relative font paths onto dir. Built-in "embed:" names
// are left alone.
func (c *Config) resolveFonts(dir string) {
	for i, f := range c.Fonts {
		if strings.HasPrefix(f.Path, "embed:") || filepath.IsAbs(f.Path) {
			continue
		}
		c.Fonts[i].Path = filepath.Join(dir, f.Path)
	}
}

// NewConfig decodes TOML data on top of Default. Unknown keys are rejected.
func NewConfig(data []byte) (*Config, error) {
	c := Default()
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks field ranges and required font fields.
func (c *Config) Validate() error {
	if c.Width < 0 || c.Height < 0 {
		return fmt.Errorf("画布尺寸不能为负: %dx%d", c.Width, c.Height)
	}
	if (c.Width == 0) != (c.Height == 0) {
		return fmt.Errorf("width 与 height 需要同时设置")
	}
	c.Engine = strings.ToLower(strings.TrimSpace(c.Engine))
	if c.Engine == "" {
		c.Engine = "canvas"
	}
	known := false
	for _, e := range Engines {
		if e == c.Engine {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("未知引擎 %q，可选: %s", c.Engine, strings.Join(Engines, ", "))
	}
	for i, f := range c.Fonts {
		if f.Path == "" || f.Family == "" {
			return fmt.Errorf("第 %d 个 font 需要 path 与 family", i+1)
		}
	}
	return nil
}
