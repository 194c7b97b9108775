// Copyright 2026 The Yixe Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package envflag fills a struct from a comma-separated list of flags held
// in an environment variable, such as
//
//	YIXE_DEBUG=dumpir,loglevel=debug
//
// Each exported field of the struct is a flag named after the lower-cased
// field name. Bool, int and string fields are supported. A field tag
// `envflag:"default:VALUE"` sets the value used when the flag is absent.
package envflag

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
)

// ErrInvalid is matched by errors reporting a malformed flag value.
var ErrInvalid = errors.New("invalid value")

// Init parses the contents of envVar into flags.
func Init[T any](flags *T, envVar string) error {
	if err := Parse(flags, os.Getenv(envVar)); err != nil {
		return fmt.Errorf("cannot parse %s: %w", envVar, err)
	}
	return nil
}

// Parse sets the defaults of flags and then applies env to it.
func Parse[T any](flags *T, env string) error {
	fv := reflect.ValueOf(flags).Elem()
	fields, err := collect(fv)
	if err != nil {
		return err
	}

	var errs []error
	for _, elem := range strings.Split(env, ",") {
		if elem = strings.TrimSpace(elem); elem == "" {
			continue
		}
		name, str, hasValue := strings.Cut(elem, "=")
		field, ok := fields[name]
		if !ok {
			errs = append(errs, fmt.Errorf("unknown flag %q", elem))
			continue
		}
		switch {
		case hasValue:
			val, err := parseValue(name, field.Kind(), str)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			field.Set(reflect.ValueOf(val).Convert(field.Type()))
		case field.Kind() == reflect.Bool:
			field.SetBool(true)
		default:
			errs = append(errs, fmt.Errorf("value needed for %s flag %q", field.Kind(), name))
		}
	}
	return errors.Join(errs...)
}

// collect indexes the settable fields of fv by flag name and applies their
// default values.
func collect(fv reflect.Value) (map[string]reflect.Value, error) {
	ft := fv.Type()
	fields := make(map[string]reflect.Value, ft.NumField())
	for i := 0; i < ft.NumField(); i++ {
		sf := ft.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := strings.ToLower(sf.Name)
		field := fv.Field(i)
		if tag, ok := sf.Tag.Lookup("envflag"); ok {
			def, found := strings.CutPrefix(tag, "default:")
			if !found {
				return nil, fmt.Errorf("unknown envflag tag %q", tag)
			}
			val, err := parseValue(name, field.Kind(), def)
			if err != nil {
				return nil, err
			}
			field.Set(reflect.ValueOf(val).Convert(field.Type()))
		}
		fields[name] = field
	}
	return fields, nil
}

func parseValue(name string, kind reflect.Kind, str string) (val any, err error) {
	switch kind {
	case reflect.Bool:
		val, err = strconv.ParseBool(str)
	case reflect.Int:
		val, err = strconv.Atoi(str)
	case reflect.String:
		val = str
	default:
		return nil, fmt.Errorf("%w: unsupported kind %s for %s", ErrInvalid, kind, name)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: invalid %s value for %s: %v", ErrInvalid, kind, name, err)
	}
	return val, nil
}
