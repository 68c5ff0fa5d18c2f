// ncmeta prints the metadata of a netCDF-4 file as a CDL header.
//
// Usage:
//
//	ncmeta [--config file.yaml] [--log-level n] [--attrs] file
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/batchatco/go-nc4meta/netcdf"
	"github.com/batchatco/go-nc4meta/netcdf/nc4"
)

type cacheConfig struct {
	Size       uint64  `yaml:"size"`
	NElems     uint64  `yaml:"nelems"`
	Preemption float64 `yaml:"preemption"`
}

type config struct {
	LogLevel   *int         `yaml:"log_level"`
	ChunkCache *cacheConfig `yaml:"chunk_cache"`
}

func loadConfig(path string) (*config, error) {
	c := &config{}
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return c, nil
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "ncmeta: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	var configPath string
	var logLevel int
	var attrs bool

	flagSet := pflag.NewFlagSet("ncmeta", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "YAML configuration file")
	flagSet.IntVar(&logLevel, "log-level", 1, "log level, 0 (fatal only) to 3 (info)")
	flagSet.BoolVar(&attrs, "attrs", false, "print attributes")
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if flagSet.NArg() != 1 {
		return errors.New("usage: ncmeta [--config file.yaml] [--log-level n] [--attrs] file")
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if cfg.LogLevel != nil && !flagSet.Changed("log-level") {
		logLevel = *cfg.LogLevel
	}
	nc4.SetLogLevel(logLevel)

	ctx := nc4.NewContext()
	if cc := cfg.ChunkCache; cc != nil {
		if err := ctx.SetChunkCache(cc.Size, cc.NElems, cc.Preemption); err != nil {
			return fmt.Errorf("chunk_cache: %w", err)
		}
	}

	path := flagSet.Arg(0)
	g, err := netcdf.OpenWith(path, &nc4.Options{Context: ctx})
	if err != nil {
		return err
	}
	defer g.Close()
	return printHeader(out, datasetName(path), g, attrs)
}
