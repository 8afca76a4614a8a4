package schema

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/jessebenson/numl/internal/domain/model"
	"github.com/jessebenson/numl/internal/domain/property"
	"github.com/jessebenson/numl/internal/domain/role"
)

// TagName is the struct tag read by FromStruct.
const TagName = "numl"

var timeType = reflect.TypeOf(time.Time{})

// FromStruct derives field declarations from the exported fields of a struct
// (or pointer to struct) in declaration order. The role comes from the numl
// tag:
//
//	Age     int       `numl:"feature"`
//	City    string    `numl:"string,split=word,sep= ,exclude=cities.txt"`
//	Joined  time.Time `numl:"date,portion=date"`
//	Tags    []float64 `numl:"enumerable,length=5"`
//	Outcome string    `numl:"stringlabel"`
//
// Untagged fields and fields tagged "-" carry no role. Type compatibility is
// not checked here; that is Builder.Build's job.
func FromStruct(v any) ([]Field, error) {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %T is not a struct", ErrInvalidTag, v)
	}

	fields := make([]Field, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		f := Field{Name: sf.Name, Type: declaredType(sf.Type)}
		tag, ok := sf.Tag.Lookup(TagName)
		if ok && tag != "-" {
			r, err := parseTag(tag)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", t.Name(), sf.Name, err)
			}
			f.Role = r
		}
		fields = append(fields, f)
	}
	return fields, nil
}

func declaredType(t reflect.Type) model.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		elem := scalarKind(t.Elem())
		if elem == model.KindInvalid {
			return model.Type{}
		}
		return model.SequenceOf(elem)
	default:
		return model.Type{Kind: scalarKind(t)}
	}
}

func scalarKind(t reflect.Type) model.Kind {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == timeType {
		return model.KindDateTime
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return model.KindNumber
	case reflect.Bool:
		return model.KindBool
	case reflect.String:
		return model.KindString
	default:
		return model.KindInvalid
	}
}

// parseTag reads "<role>[,key=value|flag]...". A bare flag such as "enum"
// means true.
func parseTag(tag string) (role.Role, error) {
	parts := strings.Split(tag, ",")
	head := strings.TrimSpace(parts[0])
	opts := parseOptions(parts[1:])

	var kind role.Kind
	switch head {
	case "string":
		kind = role.KindStringFeature
	case "date":
		kind = role.KindDateFeature
	case "enumerable":
		kind = role.KindEnumerableFeature
	default:
		k, err := role.ParseKind(head)
		if err != nil || k == role.KindNone {
			return role.Role{}, fmt.Errorf("%w: unknown role %q", ErrInvalidTag, head)
		}
		kind = k
	}

	switch kind {
	case role.KindFeature:
		return role.Feature(), nil
	case role.KindLabel:
		return role.Label(), nil

	case role.KindStringFeature, role.KindStringLabel:
		var sopts []role.StringOption
		if v, ok := opts["split"]; ok {
			split, err := property.ParseSplitType(v)
			if err != nil {
				return role.Role{}, fmt.Errorf("%w: %w", ErrInvalidTag, err)
			}
			sopts = append(sopts, role.WithSplit(split, property.DefaultSeparator))
		}
		if v, ok := opts["sep"]; ok {
			sopts = append(sopts, role.WithSeparator(v))
		}
		if v, ok := opts["exclude"]; ok {
			sopts = append(sopts, role.WithExclusions(v))
		}
		if v, ok := opts["enum"]; ok {
			enum := true
			if v = strings.TrimSpace(v); v != "" {
				var err error
				if enum, err = strconv.ParseBool(v); err != nil {
					return role.Role{}, fmt.Errorf("%w: enum %q", ErrInvalidTag, v)
				}
			}
			sopts = append(sopts, role.AsEnum(enum))
		}
		if kind == role.KindStringLabel {
			return role.StringLabel(sopts...), nil
		}
		return role.StringFeature(sopts...), nil

	case role.KindDateFeature:
		if v, ok := opts["portion"]; ok {
			p, err := property.ParseDatePortion(v)
			if err != nil {
				return role.Role{}, fmt.Errorf("%w: %w", ErrInvalidTag, err)
			}
			return role.DatePortionFeature(p), nil
		}
		if v, ok := opts["features"]; ok {
			fs, err := property.ParseDateTimeFeature(v)
			if err != nil {
				return role.Role{}, fmt.Errorf("%w: %w", ErrInvalidTag, err)
			}
			return role.DateFeature(fs), nil
		}
		return role.DateFeature(property.AllFeatures), nil

	case role.KindEnumerableFeature:
		// a missing length is left at zero so the build reports it
		var n int
		if v, ok := opts["length"]; ok {
			var err error
			if n, err = strconv.Atoi(v); err != nil {
				return role.Role{}, fmt.Errorf("%w: length %q", ErrInvalidTag, v)
			}
		}
		return role.EnumerableFeature(n), nil
	}

	return role.Role{}, fmt.Errorf("%w: unknown role %q", ErrInvalidTag, head)
}

func parseOptions(parts []string) map[string]string {
	opts := make(map[string]string, len(parts))
	for _, p := range parts {
		k, v, _ := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		opts[k] = v
	}
	return opts
}
