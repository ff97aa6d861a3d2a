package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the datagrid configuration.
type Config struct {
	Endpoint EndpointConfig `yaml:"endpoint"`
	Grid     GridConfig     `yaml:"grid"`
	Columns  []ColumnConfig `yaml:"columns" validate:"dive"`
	Log      LogConfig      `yaml:"log"`
}

// EndpointConfig describes the remote list endpoint.
type EndpointConfig struct {
	BaseURL           string `yaml:"base_url" validate:"required,url"`      // Server root, e.g. http://localhost:3000
	Collection        string `yaml:"collection" validate:"required"`        // Collection path segment
	TotalHeader       string `yaml:"total_header" validate:"required"`      // Response header carrying the total count
	TimeoutMs         int    `yaml:"timeout_ms" validate:"gte=0"`           // Request timeout, 0 = 10s default
	CacheSize         int    `yaml:"cache_size" validate:"gte=1"`           // Cached pages
	RevalidateAfterMs int    `yaml:"revalidate_after_ms" validate:"gte=0"` // Age after which a cached page is refetched, 0 = 30s default
}

// GridConfig holds the presentation settings.
type GridConfig struct {
	PageSize        int    `yaml:"page_size" validate:"gte=1"`                    // Initial page size
	PageSizeOptions []int  `yaml:"page_size_options" validate:"min=1,dive,gte=1"` // Sizes cycled by +/-
	RowHeight       int    `yaml:"row_height" validate:"gte=1"`                   // Lines per row
	DebounceMs      int    `yaml:"debounce_ms" validate:"gte=0"`                  // Delay before the filter reaches the server
	RegexSearch     bool   `yaml:"regex_search"`                                  // Treat /pattern/flags as a regular expression
	IDField         string `yaml:"id_field" validate:"required"`                  // Record field used as row identity
}

// ColumnConfig declares one grid column. Exactly one of Accessor (a gjson
// path) and Template (a text/template with sprig functions) must be set.
type ColumnConfig struct {
	ID       string `yaml:"id" validate:"required"`
	Header   string `yaml:"header,omitempty"`
	Accessor string `yaml:"accessor,omitempty" validate:"required_without=Template,excluded_with=Template"`
	Template string `yaml:"template,omitempty" validate:"required_without=Accessor"`
	Sortable bool   `yaml:"sortable,omitempty"`
	Size     int    `yaml:"size,omitempty" validate:"gte=0"`
	MinSize  int    `yaml:"min_size,omitempty" validate:"gte=0"`
	MaxSize  int    `yaml:"max_size,omitempty" validate:"gte=0"`
	Hidden   bool   `yaml:"hidden,omitempty"`
}

// LogConfig controls the JSON log output.
type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
	File  string `yaml:"file"` // Defaults to <cache dir>/datagrid.log
}

// DefaultConfig returns the default configuration: the demo user grid
// against a local json-server.
func DefaultConfig() *Config {
	return &Config{
		Endpoint: EndpointConfig{
			BaseURL:           "http://localhost:3000",
			Collection:        "users",
			TotalHeader:       "X-Total-Count",
			TimeoutMs:         10000,
			CacheSize:         64,
			RevalidateAfterMs: 30000,
		},
		Grid: GridConfig{
			PageSize:        20,
			PageSizeOptions: []int{5, 10, 20},
			RowHeight:       1,
			DebounceMs:      100,
			RegexSearch:     true,
			IDField:         "id",
		},
		Columns: DefaultColumns(),
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultColumns returns the demo user columns.
func DefaultColumns() []ColumnConfig {
	const stamp = `{{ with .%s }}{{ dateInZone "2006-01-02 15:04:05" (toDate "2006-01-02T15:04:05Z07:00" .) "UTC" }}{{ end }}`
	return []ColumnConfig{
		{ID: "id", Header: "Id", Accessor: "id", Sortable: true, Size: 6, MaxSize: 10},
		{ID: "firstName", Header: "First Name", Accessor: "firstName", Sortable: true},
		{ID: "lastName", Header: "Last Name", Accessor: "lastName", Sortable: true},
		{ID: "fullName", Header: "Full Name", Template: "{{ .firstName }} {{ .lastName }}", Sortable: true, Size: 20},
		{ID: "email", Header: "Email", Accessor: "email", Sortable: true, Size: 28},
		{ID: "sex", Header: "Sex", Accessor: "sex", Sortable: true, Size: 8},
		{ID: "music", Header: "Music Genre", Accessor: "music", Sortable: true},
		{ID: "createdAt", Header: "Creation Time", Template: fmt.Sprintf(stamp, "createdAt"), Sortable: true, Size: 19},
		{ID: "updatedAt", Header: "Last Updated", Template: fmt.Sprintf(stamp, "updatedAt"), Sortable: true, Size: 19},
	}
}

// Timeout returns the request timeout.
func (e EndpointConfig) Timeout() time.Duration {
	return time.Duration(e.TimeoutMs) * time.Millisecond
}

// RevalidateAfter returns the cache freshness window.
func (e EndpointConfig) RevalidateAfter() time.Duration {
	return time.Duration(e.RevalidateAfterMs) * time.Millisecond
}

// Debounce returns the server filter delay.
func (g GridConfig) Debounce() time.Duration {
	return time.Duration(g.DebounceMs) * time.Millisecond
}

// Load loads configuration from the default path.
func Load() (*Config, error) {
	paths := DefaultPaths()
	return LoadFromFile(paths.ConfigFile())
}

// LoadFromFile loads configuration from the specified file.
// If the file doesn't exist, returns default configuration.
// Environment variable overrides are applied after file loading.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.ApplyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// A columns list in the file replaces the default set entirely.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Save saves the configuration to the default path.
func (c *Config) Save() error {
	paths := DefaultPaths()
	return c.SaveToFile(paths.ConfigFile())
}

// SaveToFile saves the configuration to the specified file.
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Get retrieves a configuration value by dot-separated key.
// For example: "endpoint.base_url" or "grid.page_size"
func (c *Config) Get(key string) (string, error) {
	section, field, err := splitKey(key)
	if err != nil {
		return "", err
	}

	switch section {
	case "endpoint":
		return c.getEndpointField(field)
	case "grid":
		return c.getGridField(field)
	case "log":
		return c.getLogField(field)
	case "columns":
		return "", errors.New("columns can only be edited in the config file")
	default:
		return "", fmt.Errorf("unknown section: %s", section)
	}
}

// Set sets a configuration value by dot-separated key.
func (c *Config) Set(key, value string) error {
	section, field, err := splitKey(key)
	if err != nil {
		return err
	}

	switch section {
	case "endpoint":
		return c.setEndpointField(field, value)
	case "grid":
		return c.setGridField(field, value)
	case "log":
		return c.setLogField(field, value)
	case "columns":
		return errors.New("columns can only be edited in the config file")
	default:
		return fmt.Errorf("unknown section: %s", section)
	}
}

func splitKey(key string) (string, string, error) {
	parts := strings.Split(key, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", errors.New("key must be in format 'section.key'")
	}
	return parts[0], parts[1], nil
}

func (c *Config) getEndpointField(field string) (string, error) {
	switch field {
	case "base_url":
		return c.Endpoint.BaseURL, nil
	case "collection":
		return c.Endpoint.Collection, nil
	case "total_header":
		return c.Endpoint.TotalHeader, nil
	case "timeout_ms":
		return strconv.Itoa(c.Endpoint.TimeoutMs), nil
	case "cache_size":
		return strconv.Itoa(c.Endpoint.CacheSize), nil
	case "revalidate_after_ms":
		return strconv.Itoa(c.Endpoint.RevalidateAfterMs), nil
	default:
		return "", fmt.Errorf("unknown field: endpoint.%s", field)
	}
}

func (c *Config) setEndpointField(field, value string) error {
	switch field {
	case "base_url":
		c.Endpoint.BaseURL = value
	case "collection":
		c.Endpoint.Collection = value
	case "total_header":
		c.Endpoint.TotalHeader = value
	case "timeout_ms":
		return setNonNegative(&c.Endpoint.TimeoutMs, field, value)
	case "cache_size":
		return setPositive(&c.Endpoint.CacheSize, field, value)
	case "revalidate_after_ms":
		return setNonNegative(&c.Endpoint.RevalidateAfterMs, field, value)
	default:
		return fmt.Errorf("unknown field: endpoint.%s", field)
	}
	return nil
}

func (c *Config) getGridField(field string) (string, error) {
	switch field {
	case "page_size":
		return strconv.Itoa(c.Grid.PageSize), nil
	case "page_size_options":
		return formatInts(c.Grid.PageSizeOptions), nil
	case "row_height":
		return strconv.Itoa(c.Grid.RowHeight), nil
	case "debounce_ms":
		return strconv.Itoa(c.Grid.DebounceMs), nil
	case "regex_search":
		return strconv.FormatBool(c.Grid.RegexSearch), nil
	case "id_field":
		return c.Grid.IDField, nil
	default:
		return "", fmt.Errorf("unknown field: grid.%s", field)
	}
}

func (c *Config) setGridField(field, value string) error {
	switch field {
	case "page_size":
		return setPositive(&c.Grid.PageSize, field, value)
	case "page_size_options":
		v, err := parseInts(value)
		if err != nil {
			return fmt.Errorf("invalid value for page_size_options: %w", err)
		}
		c.Grid.PageSizeOptions = v
	case "row_height":
		return setPositive(&c.Grid.RowHeight, field, value)
	case "debounce_ms":
		return setNonNegative(&c.Grid.DebounceMs, field, value)
	case "regex_search":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for regex_search: %w", err)
		}
		c.Grid.RegexSearch = v
	case "id_field":
		if value == "" {
			return errors.New("id_field must not be empty")
		}
		c.Grid.IDField = value
	default:
		return fmt.Errorf("unknown field: grid.%s", field)
	}
	return nil
}

func (c *Config) getLogField(field string) (string, error) {
	switch field {
	case "level":
		return c.Log.Level, nil
	case "file":
		return c.Log.File, nil
	default:
		return "", fmt.Errorf("unknown field: log.%s", field)
	}
}

func (c *Config) setLogField(field, value string) error {
	switch field {
	case "level":
		if !isValidLogLevel(value) {
			return fmt.Errorf("log.level must be debug, info, warn, or error (got: %s)", value)
		}
		c.Log.Level = value
	case "file":
		c.Log.File = value
	default:
		return fmt.Errorf("unknown field: log.%s", field)
	}
	return nil
}

func setPositive(dst *int, field, value string) error {
	v, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", field, err)
	}
	if v < 1 {
		return fmt.Errorf("%s must be >= 1 (got: %d)", field, v)
	}
	*dst = v
	return nil
}

func setNonNegative(dst *int, field, value string) error {
	v, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", field, err)
	}
	if v < 0 {
		return fmt.Errorf("%s must be >= 0 (got: %d)", field, v)
	}
	*dst = v
	return nil
}

func formatInts(vs []int) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

func parseInts(s string) ([]int, error) {
	var out []int
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, err
		}
		if v < 1 {
			return nil, fmt.Errorf("page size %d must be >= 1", v)
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, errors.New("at least one page size is required")
	}
	return out, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fieldError(verrs[0])
		}
		return err
	}

	switch {
	case !strings.HasPrefix(c.Endpoint.BaseURL, "http://") && !strings.HasPrefix(c.Endpoint.BaseURL, "https://"):
		return fmt.Errorf("endpoint.base_url must be an http or https URL (got: %s)", c.Endpoint.BaseURL)
	case !slices.Contains(c.Grid.PageSizeOptions, c.Grid.PageSize):
		return fmt.Errorf("grid.page_size %d must be one of grid.page_size_options (%s)",
			c.Grid.PageSize, formatInts(c.Grid.PageSizeOptions))
	case len(c.Columns) == 0:
		return errors.New("at least one column is required")
	}

	seen := make(map[string]bool, len(c.Columns))
	for i, col := range c.Columns {
		if seen[col.ID] {
			return fmt.Errorf("columns[%d]: duplicate id %q", i, col.ID)
		}
		seen[col.ID] = true
		if col.MaxSize > 0 && col.MinSize > col.MaxSize {
			return fmt.Errorf("columns[%d]: min_size %d exceeds max_size %d", i, col.MinSize, col.MaxSize)
		}
	}

	return nil
}

// fieldError turns a validator failure into a dotted-key message.
func fieldError(fe validator.FieldError) error {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		ns = ns[i+1:]
	}
	key := toSnake(ns)
	if fe.Param() != "" {
		return fmt.Errorf("%s failed %s=%s (got: %v)", key, fe.Tag(), fe.Param(), fe.Value())
	}
	return fmt.Errorf("%s failed %s (got: %v)", key, fe.Tag(), fe.Value())
}

// toSnake converts a validator namespace such as Endpoint.BaseURL to
// endpoint.base_url.
func toSnake(ns string) string {
	var b strings.Builder
	runes := []rune(ns)
	for i, r := range runes {
		upper := r >= 'A' && r <= 'Z'
		if upper && i > 0 && runes[i-1] != '.' && runes[i-1] != '[' {
			prevLower := runes[i-1] >= 'a' && runes[i-1] <= 'z'
			nextLower := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'
			if prevLower || nextLower {
				b.WriteByte('_')
			}
		}
		if upper {
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// ApplyEnvOverrides applies environment variable overrides to the config.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("DATAGRID_ENDPOINT"); v != "" {
		c.Endpoint.BaseURL = v
	}
	if v := os.Getenv("DATAGRID_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil && b {
			c.Log.Level = "debug"
		}
	}
	if v := os.Getenv("DATAGRID_LOG_LEVEL"); v != "" {
		if isValidLogLevel(v) {
			c.Log.Level = v
		}
	}
}

// ListKeys returns the scalar configuration keys settable with Set.
// Columns are only configurable in the file.
func ListKeys() []string {
	return []string{
		"endpoint.base_url",
		"endpoint.collection",
		"endpoint.total_header",
		"endpoint.timeout_ms",
		"endpoint.cache_size",
		"endpoint.revalidate_after_ms",
		"grid.page_size",
		"grid.page_size_options",
		"grid.row_height",
		"grid.debounce_ms",
		"grid.regex_search",
		"grid.id_field",
		"log.level",
		"log.file",
	}
}
