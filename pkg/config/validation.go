package config

import (
	"reflect"

	sserr "github.com/StricklySoft/stricklysoft-store/pkg/errors"
)

// Validator may be implemented by configuration structs. Validate runs
// after required-field checks pass. A returned [*sserr.Error] is passed
// through unchanged; any other error becomes a generic store error.
//
//	func (c *StoreConfig) Validate() error {
//	    if c.Backend != "redis" && c.Backend != "postgres" {
//	        return sserr.Genericf("config: unknown backend %q", c.Backend)
//	    }
//	    return nil
//	}
type Validator interface {
	Validate() error
}

func validate(cfg any, rv reflect.Value) error {
	if err := validateRequired(rv, ""); err != nil {
		return err
	}
	if v, ok := cfg.(Validator); ok {
		if err := v.Validate(); err != nil {
			if e, isStoreErr := sserr.AsError(err); isStoreErr {
				return e
			}
			return sserr.Genericf("config: validation failed: %v", err)
		}
	}
	return nil
}

// validateRequired checks `required:"true"` fields, reporting the dotted
// path of the first empty one.
func validateRequired(rv reflect.Value, path string) error {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rv.Field(i)
		sf := rt.Field(i)
		if !field.CanSet() {
			continue
		}

		fieldPath := sf.Name
		if path != "" {
			fieldPath = path + "." + sf.Name
		}

		if field.Kind() == reflect.Struct {
			if err := validateRequired(field, fieldPath); err != nil {
				return err
			}
			continue
		}

		if sf.Tag.Get("required") == "true" && field.IsZero() {
			return sserr.Genericf("config: required field %q is empty", fieldPath)
		}
	}
	return nil
}
