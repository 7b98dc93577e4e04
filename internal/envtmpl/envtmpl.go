// Package envtmpl substitutes $NAME placeholders in built files with values
// from a dotenv file.
//
// Placeholders name a variable by letters, digits and underscores. Names
// match case-insensitively, since dotenv keys are read through viper, and
// the longest defined name wins, so $HOST_PORT is not clobbered by $HOST.
// Placeholders that name no variable are left alone.
package envtmpl

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/spf13/viper"

	"soundstage/internal/fileutil"
	"soundstage/internal/logging"
)

// ErrNoEnv is returned when the env file is missing.
var ErrNoEnv = errors.New("env file not found")

var placeholderPattern = regexp.MustCompile(`\$[A-Za-z_][A-Za-z0-9_]*`)

// Env holds variables loaded from a dotenv file.
type Env struct {
	v    *viper.Viper
	keys []string
}

// LoadEnv reads a dotenv file.
func LoadEnv(path string) (*Env, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoEnv, path)
		}
		return nil, fmt.Errorf("stat env file: %w", err)
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read env file: %w", err)
	}
	keys := v.AllKeys()
	// longest first so prefixes never shadow longer names
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return &Env{v: v, keys: keys}, nil
}

// Len returns the number of variables.
func (e *Env) Len() int { return len(e.keys) }

// Lookup returns the value for name, ignoring case.
func (e *Env) Lookup(name string) (string, bool) {
	key := strings.ToLower(name)
	if !e.v.IsSet(key) {
		return "", false
	}
	return e.v.GetString(key), true
}

// Expand replaces every placeholder in s that names a variable and reports
// how many were replaced.
func (e *Env) Expand(s string) (string, int) {
	count := 0
	out := placeholderPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := strings.ToLower(match[1:])
		for _, key := range e.keys {
			if !strings.HasPrefix(name, key) {
				continue
			}
			count++
			return e.v.GetString(key) + match[1+len(key):]
		}
		return match
	})
	return out, count
}

// Result describes one rewritten file.
type Result struct {
	Path         string
	Replacements int
}

// Apply expands placeholders in each file in place. Files without
// placeholders are left untouched. The first failure stops the run.
func Apply(env *Env, files []string, logger *slog.Logger) ([]Result, error) {
	logger = logging.NewComponentLogger(logger, "envtmpl")
	results := make([]Result, 0, len(files))
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return results, fmt.Errorf("read %s: %w", path, err)
		}
		expanded, n := env.Expand(string(data))
		if n > 0 {
			if err := fileutil.WriteAtomic(path, []byte(expanded), 0o644); err != nil {
				return results, fmt.Errorf("write %s: %w", path, err)
			}
		}
		logger.Info("template applied", logging.Args(
			logging.String("path", path),
			logging.Int("replacements", n),
		)...)
		results = append(results, Result{Path: path, Replacements: n})
	}
	return results, nil
}
