// Package initcmder provides the init command for initializing a local
// .streampipe directory in the current working directory.
package initcmder

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/streampipeco/streampipe/pkg/config"
)

const (
	dirName = ".streampipe"
)

const initLongDesc string = `Initialize a new .streampipe/ directory in the current working directory.

Creates a local .streampipe/ directory with a config.toml. The local
directory takes precedence over the default ~/.streampipe/ directory
for configuration.

The --preset flag seeds config.toml from a named provider preset
(openai, anthropic, ollama) or fetches a config.toml from an
http(s) URL.

Examples:
  streampipe init
  streampipe init --preset anthropic
  streampipe init --preset https://example.com/streampipe-config.toml`

const initShortDesc string = "Initialize a local .streampipe/ directory"

func NewInitCmd() *cobra.Command {
	var preset string

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runInit(preset)
		},
	}

	cmd.Flags().StringVar(&preset, "preset", "", "Provider preset name or config.toml URL")

	return cmd
}

func runInit(preset string) error {
	cfg, err := resolvePreset(preset)
	if err != nil {
		return err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	dir := filepath.Join(cwd, dirName)

	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return fmt.Errorf("creating %s directory: %w", dirName, err)
	}

	if err := cfger.SaveConfig(cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Printf("Initialized %s directory: %s\n", dirName, dir)
	return nil
}

// resolvePreset maps the --preset value to a config: empty means defaults,
// an http(s) URL fetches a remote config.toml, anything else is a named
// provider preset.
func resolvePreset(preset string) (*config.Config, error) {
	switch {
	case preset == "":
		return config.NewDefaultConfig(), nil
	case strings.HasPrefix(preset, "http://"), strings.HasPrefix(preset, "https://"):
		return fetchRemoteConfig(preset)
	default:
		return config.PresetConfig(preset)
	}
}

func fetchRemoteConfig(url string) (*config.Config, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching remote config: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading remote config: %w", err)
	}

	cfg, err := config.ParseConfigTOML(data)
	if err != nil {
		return nil, fmt.Errorf("parsing remote config: %w", err)
	}

	return cfg, nil
}
