package configuration

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/iota-uz/utils/fs"
	"github.com/joho/godotenv"
	"golang.org/x/text/encoding/htmlindex"
)

const DefaultSourcePath = "data/csu/struktura_uzemi_cr_2025.csv"

// LoadEnv loads the env files that exist, looked up in the working directory
// first and then in the nearest parent holding a go.mod. It returns how many
// files were loaded. Variables already set in the environment win.
func LoadEnv(envFiles []string) (int, error) {
	existingFiles := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if path, ok := locate(file); ok {
			existingFiles = append(existingFiles, path)
		}
	}

	if len(existingFiles) == 0 {
		return 0, nil
	}

	return len(existingFiles), godotenv.Load(existingFiles...)
}

func locate(file string) (string, bool) {
	if fs.FileExists(file) || filepath.IsAbs(file) {
		return file, fs.FileExists(file)
	}
	root, ok := moduleRoot()
	if !ok {
		return "", false
	}
	path := filepath.Join(root, file)
	return path, fs.FileExists(path)
}

func moduleRoot() (string, bool) {
	dir, err := os.Getwd()
	if err != nil {
		return "", false
	}
	for {
		if fs.FileExists(filepath.Join(dir, "go.mod")) {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

type Configuration struct {
	// DatabaseURL selects the backend: postgres://, postgresql://,
	// sqlite://<path> or file:<path>.
	DatabaseURL    string        `env:"DATABASE_URL"`
	ConnectTimeout time.Duration `env:"DB_CONNECT_TIMEOUT" envDefault:"10s" validate:"gte=0"`

	SourcePath      string `env:"CR_IMPORT_SOURCE" envDefault:"data/csu/struktura_uzemi_cr_2025.csv"`
	SourceEncoding  string `env:"CR_IMPORT_ENCODING" envDefault:"utf-8"`
	CSVDelimiter    string `env:"CR_IMPORT_DELIMITER" envDefault:","`
	MigrateOnImport bool   `env:"CR_IMPORT_MIGRATE" envDefault:"false"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=silent error warn info debug"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text" validate:"oneof=text json"`
}

// Load reads envFiles (see LoadEnv) and the process environment.
func Load(envFiles []string) (*Configuration, error) {
	if _, err := LoadEnv(envFiles); err != nil {
		return nil, fmt.Errorf("load env files: %w", err)
	}
	c := &Configuration{}
	if err := env.Parse(c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("env"), ",")
		return name
	})
	return v
}

// Validate normalizes the enumerated settings and reports the first invalid
// variable by its environment name.
func (c *Configuration) Validate() error {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	c.SourceEncoding = strings.TrimSpace(c.SourceEncoding)

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fieldError(verrs[0])
		}
		return err
	}

	if _, err := c.Delimiter(); err != nil {
		return err
	}

	enc := c.SourceEncoding
	if !strings.EqualFold(enc, "utf-8") && !strings.EqualFold(enc, "utf8") {
		if _, err := htmlindex.Get(enc); err != nil {
			return fmt.Errorf("invalid CR_IMPORT_ENCODING=%q (expected utf-8, windows-1250, iso-8859-2, ...)", enc)
		}
	}
	return nil
}

func fieldError(fe validator.FieldError) error {
	value := fmt.Sprintf("%v", fe.Value())
	if s, ok := fe.Value().(string); ok {
		value = strconv.Quote(s)
	}
	switch fe.Tag() {
	case "oneof":
		return fmt.Errorf("invalid %s=%s (expected %s)", fe.Field(), value, strings.ReplaceAll(fe.Param(), " ", "|"))
	case "gte":
		return fmt.Errorf("invalid %s=%s (must not be negative)", fe.Field(), value)
	default:
		return fmt.Errorf("invalid %s=%s (%s)", fe.Field(), value, fe.Tag())
	}
}

// Delimiter returns CSVDelimiter as a rune. "tab" and `\t` select a tab.
func (c *Configuration) Delimiter() (rune, error) {
	d := c.CSVDelimiter
	if d == "tab" || d == `\t` {
		return '\t', nil
	}
	if utf8.RuneCountInString(d) != 1 {
		return 0, fmt.Errorf("invalid CR_IMPORT_DELIMITER=%q (expected a single character)", c.CSVDelimiter)
	}
	r, _ := utf8.DecodeRuneInString(d)
	switch r {
	case '"', '\r', '\n', utf8.RuneError:
		return 0, fmt.Errorf("invalid CR_IMPORT_DELIMITER=%q", c.CSVDelimiter)
	}
	return r, nil
}
