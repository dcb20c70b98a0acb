package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/KDE/kwin-sub007/internal/config"
)

// loadConfig loads path, or the default config file when path is empty.
func loadConfig(path string) (*config.Config, error) {
	res, err := loadConfigWithSources(path)
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

func loadConfigWithSources(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  kwin config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  kwin config print [--path PATH] [--defaults]")
		fmt.Fprintln(os.Stderr, "  kwin config explain [--path PATH] <yaml.path>")
		return 2
	}

	switch args[0] {
	case "validate":
		fs := newFlagSet("validate", "config validate [--path PATH]", "Load and validate the configuration.")
		path := fs.String("path", "", "Config file path (default: ~/.config/kwin-sub007/config.yaml)")
		if code, ok := parseFlags(fs, args[1:]); !ok {
			return code
		}
		if _, err := loadConfigWithSources(*path); err != nil {
			return fail(err)
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		fs := newFlagSet("print", "config print [--path PATH] [--defaults]", "Print the effective configuration.")
		path := fs.String("path", "", "Config file path (default: ~/.config/kwin-sub007/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		if code, ok := parseFlags(fs, args[1:]); !ok {
			return code
		}

		cfg := config.DefaultConfig()
		if !*printDefaults {
			var err error
			if cfg, err = loadConfig(*path); err != nil {
				return fail(err)
			}
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fail(err)
		}
		fmt.Print(string(data))
		return 0

	case "explain":
		fs := newFlagSet("explain", "config explain [--path PATH] <yaml.path>",
			"Show a configuration value and the file and line it came from.")
		path := fs.String("path", "", "Config file path (default: ~/.config/kwin-sub007/config.yaml)")
		if code, ok := parseFlags(fs, args[1:]); !ok {
			return code
		}
		if fs.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "explain requires <yaml.path>")
			return 2
		}
		queryPath := fs.Arg(0)

		res, err := loadConfigWithSources(*path)
		if err != nil {
			return fail(err)
		}
		value, src, err := config.Explain(res, queryPath)
		if err != nil {
			return fail(err)
		}
		out, err := yaml.Marshal(value)
		if err != nil {
			return fail(err)
		}

		fmt.Printf("path: %s\n", queryPath)
		fmt.Printf("source: %s\n", formatSource(src))
		fmt.Printf("value:\n%s", string(out))
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}

func formatSource(src config.Source) string {
	switch src.Kind {
	case config.SourceFile:
		if src.File == "" {
			return "file"
		}
		if src.Line > 0 {
			return fmt.Sprintf("file:%s:%d:%d", src.File, src.Line, src.Column)
		}
		return "file:" + src.File
	case config.SourceDefault:
		if src.Name != "" {
			return "default:" + src.Name
		}
		return "default"
	default:
		return string(src.Kind)
	}
}
