// Package projectconfig provides the ProjectConfig struct and loader for
// .toolcheck.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/microsoft/toolcheck/internal/utils"
	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file looked up by Load.
const FileName = ".toolcheck.yaml"

// maxWalkUp bounds how many directories Load inspects.
const maxWalkUp = 10

// Default values for project configuration. New() references them and no
// other code should duplicate them.
const (
	DefaultProvider = "openai"
	DefaultTimeout  = 300

	DefaultAggregateReport = "validation-report.html"
	DefaultPerRequestName  = "validation-report.txt"
)

// InputsConfig locates the evaluation inputs. The tool request itself is
// always given on the command line.
type InputsConfig struct {
	Schema         string `yaml:"schema,omitempty"`
	SystemPrompt   string `yaml:"system_prompt,omitempty"`
	UserPrompt     string `yaml:"user_prompt,omitempty"`
	PromptTemplate string `yaml:"prompt_template,omitempty"`
}

// LLMConfig selects and parameterizes the chat engine. An empty Model lets
// the engine pick the provider's default.
type LLMConfig struct {
	Provider string `yaml:"provider,omitempty"`
	Model    string `yaml:"model,omitempty"`
	KeyFile  string `yaml:"key_file,omitempty"`
	Timeout  int    `yaml:"timeout,omitempty"`

	// Options are keyed by provider name so switching providers with
	// --provider never feeds one provider's options to another.
	Options map[string]map[string]any `yaml:"options,omitempty"`
}

// OptionsFor returns the options configured for provider, or nil.
func (c LLMConfig) OptionsFor(provider string) map[string]any {
	return c.Options[provider]
}

// ReportsConfig holds report locations.
type ReportsConfig struct {
	Aggregate      string `yaml:"aggregate,omitempty"`
	PerRequestName string `yaml:"per_request_name,omitempty"`
	SessionLogDir  string `yaml:"session_log_dir,omitempty"`
}

// PublishConfig holds the blob container reports are uploaded to.
type PublishConfig struct {
	AccountURL string `yaml:"account_url,omitempty"`
	Container  string `yaml:"container,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .toolcheck.yaml.
type ProjectConfig struct {
	Inputs  InputsConfig  `yaml:"inputs,omitempty"`
	LLM     LLMConfig     `yaml:"llm,omitempty"`
	Reports ReportsConfig `yaml:"reports,omitempty"`
	Publish PublishConfig `yaml:"publish,omitempty"`

	// Path is the file the configuration was read from, empty when only
	// defaults apply.
	Path string `yaml:"-"`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		LLM: LLMConfig{
			Provider: DefaultProvider,
			Timeout:  DefaultTimeout,
		},
		Reports: ReportsConfig{
			Aggregate:      DefaultAggregateReport,
			PerRequestName: DefaultPerRequestName,
		},
	}
}

// Load finds .toolcheck.yaml by walking up from startDir (max 10 levels),
// checks it against the embedded JSON schema, unmarshals it, and fills in
// missing fields with defaults. Relative input and key paths are resolved
// against the directory holding the file. A schema violation is a
// *SchemaError. If no config file is found, returns defaults with a nil
// error.
func Load(startDir string) (*ProjectConfig, error) {
	cfg := New()

	path, data, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := validate(path, doc); err != nil {
		return nil, err
	}

	var fileCfg ProjectConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if err := fileCfg.resolvePaths(filepath.Dir(path)); err != nil {
		return nil, fmt.Errorf("resolving paths in %s: %w", path, err)
	}

	mergeConfig(cfg, &fileCfg)
	cfg.Path = path
	return cfg, nil
}

// findConfigFile walks up from dir looking for .toolcheck.yaml. Returns
// os.ErrNotExist if none is found; other I/O errors are returned as is.
func findConfigFile(dir string) (string, []byte, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < maxWalkUp; i++ {
		p := filepath.Join(dir, FileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return p, data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", nil, os.ErrNotExist
}

func (c *ProjectConfig) resolvePaths(baseDir string) error {
	for _, p := range []*string{
		&c.Inputs.Schema,
		&c.Inputs.SystemPrompt,
		&c.Inputs.UserPrompt,
		&c.Inputs.PromptTemplate,
		&c.LLM.KeyFile,
		&c.Reports.SessionLogDir,
	} {
		resolved, err := utils.ResolvePath(*p, baseDir)
		if err != nil {
			return err
		}
		*p = resolved
	}
	return nil
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	// Inputs
	mergeString(&dst.Inputs.Schema, src.Inputs.Schema)
	mergeString(&dst.Inputs.SystemPrompt, src.Inputs.SystemPrompt)
	mergeString(&dst.Inputs.UserPrompt, src.Inputs.UserPrompt)
	mergeString(&dst.Inputs.PromptTemplate, src.Inputs.PromptTemplate)

	// LLM
	mergeString(&dst.LLM.Provider, src.LLM.Provider)
	mergeString(&dst.LLM.Model, src.LLM.Model)
	mergeString(&dst.LLM.KeyFile, src.LLM.KeyFile)
	if src.LLM.Timeout != 0 {
		dst.LLM.Timeout = src.LLM.Timeout
	}
	if len(src.LLM.Options) > 0 {
		dst.LLM.Options = src.LLM.Options
	}

	// Reports
	mergeString(&dst.Reports.Aggregate, src.Reports.Aggregate)
	mergeString(&dst.Reports.PerRequestName, src.Reports.PerRequestName)
	mergeString(&dst.Reports.SessionLogDir, src.Reports.SessionLogDir)

	// Publish
	mergeString(&dst.Publish.AccountURL, src.Publish.AccountURL)
	mergeString(&dst.Publish.Container, src.Publish.Container)
}

func mergeString(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}
