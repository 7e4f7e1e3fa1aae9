package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

var (
	//go:embed default/config.yaml
	defaultConfigData []byte
)

const (
	ConfigurationName = "config.yaml"
	DirName           = "shellington"
)

type Configuration struct {
	configFs afero.Fs

	ShellName string `json:"shell_name" validate:"required,excludesall=/"`
	BinDir    string `json:"bin_dir" validate:"required"`
	Hostname  string `json:"hostname" validate:"omitempty,hostname_rfc1123"`

	BookmarksPath string `json:"bookmarks_path" validate:"required"`
	RemindersPath string `json:"reminders_path" validate:"required"`
	EventLogPath  string `json:"event_log_path"`

	CommandTimeout   Duration `json:"command_timeout" validate:"gte=0"`
	RPSCountdown     Duration `json:"rps_countdown" validate:"gte=0"`
	MaxBookmarkDepth int      `json:"max_bookmark_depth" validate:"gte=0,lte=32"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}

// Fs returns the filesystem the configuration's relative paths live in.
func (c *Configuration) Fs() afero.Fs {
	if c.configFs == nil {
		return afero.NewOsFs()
	}
	return c.configFs
}

// RealPath converts a path in Fs() to a path usable by other processes.
func (c *Configuration) RealPath(name string) (string, error) {
	if bp, ok := c.Fs().(*afero.BasePathFs); ok {
		return bp.RealPath(name)
	}
	return filepath.Abs(name)
}

// OpenEventLog opens the event log in an append only state.
func (c *Configuration) OpenEventLog() (afero.File, error) {
	return c.Fs().OpenFile(c.EventLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

// ReadEventLog opens the event log for reading.
func (c *Configuration) ReadEventLog() (afero.File, error) {
	return c.Fs().OpenFile(c.EventLogPath, os.O_RDONLY, 0600)
}

// Default returns the built-in configuration with relative paths resolved
// in fs.
func Default(fs afero.Fs) *Configuration {
	out := defaultConfig()
	out.configFs = fs
	return out
}

func defaultConfig() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}

// Duration is a time.Duration that reads from strings like "1.5s".
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON implements json.Unmarshaler, accepting either a duration
// string or a number of nanoseconds.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var raw interface{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	switch value := raw.(type) {
	case float64:
		*d = Duration(value)
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(parsed)
	default:
		return fmt.Errorf("invalid duration: %s", string(b))
	}
	return nil
}
