package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the upstream sources and output settings for a bundle run.
// Every field has a default, so the tool runs with no configuration file at all.
type Config struct {
	// WineRepo is the GitHub repository publishing macOS Wine builds.
	WineRepo string `yaml:"wine_repo"`
	// WineAsset is the selector template for the Wine release asset.
	// The <tag> placeholder is replaced with the release tag.
	WineAsset string `yaml:"wine_asset"`
	// MoltenVKRepo is the GitHub repository publishing MoltenVK releases.
	MoltenVKRepo string `yaml:"moltenvk_repo"`
	// MoltenVKAsset is the exact name of the MoltenVK release asset.
	MoltenVKAsset string `yaml:"moltenvk_asset"`
	// DXVKRepo is the GitHub repository publishing DXVK builds for macOS.
	DXVKRepo string `yaml:"dxvk_repo"`
	// DXVKAsset is the selector template for the DXVK release asset.
	DXVKAsset string `yaml:"dxvk_asset"`
	// WinetricksURL is the raw URL of the winetricks script.
	WinetricksURL string `yaml:"winetricks_url"`
	// WinetricksVerbsURL is the raw URL of the winetricks verbs catalog.
	WinetricksVerbsURL string `yaml:"winetricks_verbs_url"`
	// PatchesDir is the local directory merged onto the assembled Wine
	// library path after extraction.
	PatchesDir string `yaml:"patches_dir"`
	// Output is the path of the produced bundle archive,
	// relative to the invocation directory unless absolute.
	Output string `yaml:"output"`
	// APIBaseURL is the GitHub API endpoint used for release metadata.
	APIBaseURL string `yaml:"api_base_url"`
	// Timeout bounds each HTTP call. Zero means no timeout, so a hung
	// download blocks the run until interrupted.
	Timeout time.Duration `yaml:"timeout"`
}

const (
	// DefaultWineRepo hosts unofficial macOS Wine builds.
	DefaultWineRepo = "Gcenx/macOS_Wine_builds"

	// DefaultWineAsset selects the wine-devel osx64 tarball of a release.
	DefaultWineAsset = "wine-devel-<tag>-osx64.tar.xz"

	// DefaultMoltenVKRepo hosts MoltenVK releases.
	DefaultMoltenVKRepo = "KhronosGroup/MoltenVK"

	// DefaultMoltenVKAsset is the macOS MoltenVK bundle.
	DefaultMoltenVKAsset = "MoltenVK-macos.tar"

	// DefaultDXVKRepo hosts DXVK builds patched for macOS.
	DefaultDXVKRepo = "Gcenx/DXVK-macOS"

	// DefaultDXVKAsset selects the async DXVK tarball of a release.
	DefaultDXVKAsset = "dxvk-macOS-async-<tag>.tar.gz"

	// DefaultWinetricksURL is the raw location of the winetricks script.
	DefaultWinetricksURL = "https://raw.githubusercontent.com/Winetricks/winetricks/master/src/winetricks"

	// DefaultWinetricksVerbsURL is the raw location of the winetricks verbs catalog.
	DefaultWinetricksVerbsURL = "https://raw.githubusercontent.com/Winetricks/winetricks/master/files/verbs/all.txt"

	// DefaultPatchesDir is the patch overlay directory shipped next to the tool.
	DefaultPatchesDir = "patches"

	// DefaultOutput is the bundle archive written next to the invocation point.
	DefaultOutput = "wine-bundle.tar.gz"

	// DefaultAPIBaseURL is the public GitHub API endpoint.
	DefaultAPIBaseURL = "https://api.github.com"

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errBadRepository is returned when a repository identifier is not owner/name.
	errBadRepository = errors.New("repository must be in owner/name form")
	// errAssetSelectorRequired is returned when an asset selector is empty.
	errAssetSelectorRequired = errors.New("asset selector must be provided")
	// errOutputRequired is returned when the output path is empty.
	errOutputRequired = errors.New("output path must be provided")
)

// Default returns a configuration populated with all default values.
func Default() *Config {
	return &Config{
		WineRepo:           DefaultWineRepo,
		WineAsset:          DefaultWineAsset,
		MoltenVKRepo:       DefaultMoltenVKRepo,
		MoltenVKAsset:      DefaultMoltenVKAsset,
		DXVKRepo:           DefaultDXVKRepo,
		DXVKAsset:          DefaultDXVKAsset,
		WinetricksURL:      DefaultWinetricksURL,
		WinetricksVerbsURL: DefaultWinetricksVerbsURL,
		PatchesDir:         DefaultPatchesDir,
		Output:             DefaultOutput,
		APIBaseURL:         DefaultAPIBaseURL,
	}
}

// Load reads configuration from the provided path, fills unset fields with
// defaults and validates the result. An empty path yields pure defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	cfg.applyDefaults()

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and formatting.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	for _, repo := range []string{cfg.WineRepo, cfg.MoltenVKRepo, cfg.DXVKRepo} {
		if err := validateRepository(repo); err != nil {
			return err
		}
	}

	for _, selector := range []string{cfg.WineAsset, cfg.MoltenVKAsset, cfg.DXVKAsset} {
		if strings.TrimSpace(selector) == "" {
			return errAssetSelectorRequired
		}
	}

	for _, rawURL := range []string{cfg.WinetricksURL, cfg.WinetricksVerbsURL, cfg.APIBaseURL} {
		if _, err := url.ParseRequestURI(rawURL); err != nil {
			return fmt.Errorf("invalid URL %q: %w", rawURL, err)
		}
	}

	if strings.TrimSpace(cfg.Output) == "" {
		return errOutputRequired
	}

	return nil
}

// applyDefaults fills unset fields so a partial YAML file still yields a full configuration.
func (cfg *Config) applyDefaults() {
	defaults := Default()

	if cfg.WineRepo == "" {
		cfg.WineRepo = defaults.WineRepo
	}

	if cfg.WineAsset == "" {
		cfg.WineAsset = defaults.WineAsset
	}

	if cfg.MoltenVKRepo == "" {
		cfg.MoltenVKRepo = defaults.MoltenVKRepo
	}

	if cfg.MoltenVKAsset == "" {
		cfg.MoltenVKAsset = defaults.MoltenVKAsset
	}

	if cfg.DXVKRepo == "" {
		cfg.DXVKRepo = defaults.DXVKRepo
	}

	if cfg.DXVKAsset == "" {
		cfg.DXVKAsset = defaults.DXVKAsset
	}

	if cfg.WinetricksURL == "" {
		cfg.WinetricksURL = defaults.WinetricksURL
	}

	if cfg.WinetricksVerbsURL == "" {
		cfg.WinetricksVerbsURL = defaults.WinetricksVerbsURL
	}

	if cfg.PatchesDir == "" {
		cfg.PatchesDir = defaults.PatchesDir
	}

	if cfg.Output == "" {
		cfg.Output = defaults.Output
	}

	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = defaults.APIBaseURL
	}
}

// validateRepository checks an owner/name GitHub repository identifier.
func validateRepository(repo string) error {
	owner, name, found := strings.Cut(repo, "/")
	if !found || owner == "" || name == "" || strings.Contains(name, "/") {
		return fmt.Errorf("%q: %w", repo, errBadRepository)
	}

	return nil
}
