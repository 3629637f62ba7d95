package notify

import (
	"context"
	"reflect"
	"slices"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-viper/mapstructure/v2"
)

// Typed adapts a constructor taking a typed settings struct T into a Factory.
//
// Each exported field of T is bound from the setting whose name matches its
// mapstructure tag (or field name), ignoring case. Values are weakly typed,
// so "587" binds to an int field and "30s" to a time.Duration. A field with
// no matching setting fails the binding with a *BindingError listing it,
// unless the field is tagged `notify:"optional"`. When T implements
// validation.Validatable its Validate method runs after binding.
func Typed[T any](ctor func(Options, T) (Backend, error)) Factory {
	optional := optionalFields(reflect.TypeFor[T]())

	return func(_ context.Context, opts Options, settings map[string]string) (Backend, error) {
		var cfg T
		if err := bindSettings(settings, &cfg, optional); err != nil {
			return nil, err
		}
		if v, ok := any(&cfg).(validation.Validatable); ok {
			if err := v.Validate(); err != nil {
				return nil, &BindingError{Err: err}
			}
		}
		return ctor(opts, cfg)
	}
}

func bindSettings(settings map[string]string, out any, optional []string) error {
	var md mapstructure.Metadata
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Metadata:         &md,
		Result:           out,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			stringToTrimmedSlice(","),
		),
	})
	if err != nil {
		return &BindingError{Err: err}
	}

	input := make(map[string]any, len(settings))
	for k, v := range settings {
		input[k] = v
	}
	if err := dec.Decode(input); err != nil {
		return &BindingError{Err: err}
	}

	var missing []string
	for _, name := range md.Unset {
		if !slices.ContainsFunc(optional, func(o string) bool { return strings.EqualFold(o, name) }) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return &BindingError{Missing: missing}
	}
	return nil
}

// stringToTrimmedSlice splits a string on sep for slice fields. Elements are
// trimmed of surrounding space and empty ones dropped, so "a, b," binds as
// [a b].
func stringToTrimmedSlice(sep string) mapstructure.DecodeHookFuncType {
	return func(from, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String || to.Kind() != reflect.Slice {
			return data, nil
		}
		out := []string{}
		for _, part := range strings.Split(data.(string), sep) {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out, nil
	}
}

// optionalFields returns the setting names of fields tagged notify:"optional".
func optionalFields(t reflect.Type) []string {
	if t.Kind() != reflect.Struct {
		return nil
	}
	var names []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Tag.Get("notify") != "optional" {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if name == "" {
			name = f.Name
		}
		names = append(names, name)
	}
	return names
}
