// Package config loads store client configuration from struct tag
// defaults, an optional YAML or JSON file and environment variables, in
// that order of increasing priority:
//
//	envDefault struct tags  (lowest)
//	YAML/JSON config file
//	environment variables   (highest)
//
// # Struct Tags
//
//   - `env:"NAME"` names the environment variable. On a nested struct
//     field it becomes a prefix for the child fields.
//   - `envDefault:"value"` is applied when the field is zero.
//   - `required:"true"` fails loading if the field is still zero.
//
// File loading uses the `yaml` and `json` tags.
//
// # Errors
//
// Every failure is a [*sserr.Error]. An integer field whose text does not
// parse yields the IntParse kind wrapping the [*strconv.NumError] as-is,
// so its message is the native strconv message. Everything else is
// generic with a "config:" message.
//
//	type StoreConfig struct {
//	    Backend string       `env:"BACKEND" envDefault:"redis" yaml:"backend"`
//	    Redis   redis.Config `env:"REDIS" yaml:"redis"`
//	}
//
//	cfg := config.MustLoad[StoreConfig](
//	    config.New().WithEnvPrefix("STORE").WithFile("store.yaml"),
//	)
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	sserr "github.com/StricklySoft/stricklysoft-store/pkg/errors"
)

// durationType distinguishes time.Duration from plain int64 fields.
var durationType = reflect.TypeOf(time.Duration(0))

// Loader resolves configuration into a struct. It is not safe for
// concurrent use.
type Loader struct {
	envPrefix string
	filePath  string
}

// New returns a Loader that reads environment variables only.
func New() *Loader {
	return &Loader{}
}

// WithEnvPrefix prepends prefix and an underscore to every environment
// variable name. The prefix is uppercased; empty disables prefixing.
func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = strings.ToUpper(prefix)
	return l
}

// WithFile sets a .yaml, .yml or .json file to load. A missing file is
// skipped. Paths containing ".." are rejected by [Loader.Load].
func (l *Loader) WithFile(path string) *Loader {
	l.filePath = path
	return l
}

// Load fills cfg, which must be a non-nil pointer to a struct, then
// checks required fields and calls [Validator] if cfg implements it.
func (l *Loader) Load(cfg any) error {
	rv := reflect.ValueOf(cfg)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return sserr.Generic("config: Load requires a non-nil pointer to a struct")
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return sserr.Generic("config: Load requires a pointer to a struct")
	}

	if err := applyDefaults(rv); err != nil {
		return err
	}
	if l.filePath != "" {
		if err := l.loadFile(cfg); err != nil {
			return err
		}
	}
	if err := applyEnv(rv, l.envPrefix); err != nil {
		return err
	}
	return validate(cfg, rv)
}

// MustLoad loads a T with loader and panics on failure. Use it in main.
func MustLoad[T any](loader *Loader) T {
	var cfg T
	if err := loader.Load(&cfg); err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}

func (l *Loader) loadFile(cfg any) error {
	if strings.Contains(l.filePath, "..") {
		return sserr.Generic("config: file path must not contain directory traversal (..) sequences")
	}

	data, err := os.ReadFile(l.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return sserr.Genericf("config: failed to read file %q: %v", l.filePath, err)
	}

	switch ext := strings.ToLower(filepath.Ext(l.filePath)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return sserr.Genericf("config: failed to parse YAML file %q: %v", l.filePath, err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return sserr.Genericf("config: failed to parse JSON file %q: %v", l.filePath, err)
		}
	default:
		return sserr.Genericf("config: unsupported file extension %q (use .yaml, .yml, or .json)", ext)
	}
	return nil
}

// applyDefaults sets zero fields to their envDefault tag, recursing into
// nested structs.
func applyDefaults(rv reflect.Value) error {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rv.Field(i)
		sf := rt.Field(i)
		if !field.CanSet() {
			continue
		}

		if field.Kind() == reflect.Struct && sf.Type != durationType {
			if err := applyDefaults(field); err != nil {
				return err
			}
			continue
		}

		tag := sf.Tag.Get("envDefault")
		if tag == "" || !field.IsZero() {
			continue
		}
		if err := setField(field, tag); err != nil {
			return fieldError(err, fmt.Sprintf("config: failed to apply default for field %q", sf.Name))
		}
	}
	return nil
}

// applyEnv sets fields from their env tag under prefix. A nested
// struct's env tag extends the prefix for its children.
func applyEnv(rv reflect.Value, prefix string) error {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rv.Field(i)
		sf := rt.Field(i)
		if !field.CanSet() {
			continue
		}

		envTag := sf.Tag.Get("env")
		if field.Kind() == reflect.Struct && sf.Type != durationType {
			if err := applyEnv(field, joinEnv(prefix, envTag)); err != nil {
				return err
			}
			continue
		}
		if envTag == "" {
			continue
		}

		envKey := joinEnv(prefix, envTag)
		val, ok := os.LookupEnv(envKey)
		if !ok {
			continue
		}
		if err := setField(field, val); err != nil {
			return fieldError(err, fmt.Sprintf("config: failed to set field %q from env var %q", sf.Name, envKey))
		}
	}
	return nil
}

func joinEnv(prefix, name string) string {
	switch {
	case name == "":
		return prefix
	case prefix == "":
		return name
	}
	return prefix + "_" + name
}

// fieldError converts a setField failure. Integer parse failures keep
// their *strconv.NumError as the IntParse cause; the field context is
// dropped so the message stays the native one.
func fieldError(err error, msg string) error {
	var ne *strconv.NumError
	if errors.As(err, &ne) {
		return sserr.FromIntParse(ne)
	}
	return sserr.Genericf("%s: %v", msg, err)
}

// setField parses value into field. Supported: string kinds, bool, signed
// and unsigned integers, time.Duration and []string (comma separated).
// Integer failures are returned as the bare *strconv.NumError.
func setField(field reflect.Value, value string) error {
	if field.Type() == durationType {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("cannot parse duration %q: %s", value, durationMessage(err))
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("cannot parse bool %q", value)
		}
		field.SetBool(b)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(value, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetUint(n)

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice element type %s", field.Type().Elem().Kind())
		}
		parts := strings.Split(value, ",")
		slice := reflect.MakeSlice(field.Type(), len(parts), len(parts))
		for i, p := range parts {
			slice.Index(i).SetString(strings.TrimSpace(p))
		}
		field.Set(slice)

	default:
		return fmt.Errorf("unsupported field type %s", field.Kind())
	}
	return nil
}

// durationMessage strips the "time: " prefix from ParseDuration errors.
func durationMessage(err error) string {
	return strings.TrimPrefix(err.Error(), "time: ")
}
