// Package schemafile reads record declarations from YAML files so schemas
// can be registered without Go struct tags.
//
//	records:
//	  - name: Member
//	    fields:
//	      - {name: Age, type: number, role: feature}
//	      - {name: City, type: string, role: string-feature, split: word, separator: " "}
//	      - {name: Joined, type: date, role: date-feature, portion: date}
//	      - {name: Tags, type: "sequence<number>", role: enumerable-feature, length: 5}
//	      - {name: Outcome, type: string, role: string-label}
package schemafile

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/jessebenson/numl/internal/domain/model"
	"github.com/jessebenson/numl/internal/domain/property"
	"github.com/jessebenson/numl/internal/domain/role"
	"github.com/jessebenson/numl/internal/domain/schema"
)

// Document is the top level of a definition file.
type Document struct {
	Records []Record `koanf:"records"`
}

// Record declares one record type.
type Record struct {
	Name   string     `koanf:"name"`
	Fields []FieldDef `koanf:"fields"`
}

// FieldDef declares one field and its optional role. Only the settings of
// the named role are read.
type FieldDef struct {
	Name       string  `koanf:"name"`
	Type       string  `koanf:"type"`
	Role       string  `koanf:"role"`
	Split      string  `koanf:"split"`
	Separator  *string `koanf:"separator"`
	Exclusions string  `koanf:"exclusions"`
	Enum       bool    `koanf:"enum"`
	Features   string  `koanf:"features"`
	Portion    string  `koanf:"portion"`
	Length     int     `koanf:"length"`
}

// Load reads and decodes the definition file at path.
func Load(path string) (*Document, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoad, path, err)
	}
	return decode(k, path)
}

// Parse decodes a definition document held in memory.
func Parse(data []byte) (*Document, error) {
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	return decode(k, "<bytes>")
}

func decode(k *koanf.Koanf, origin string) (*Document, error) {
	var doc Document
	if err := k.UnmarshalWithConf("", &doc, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoad, origin, err)
	}
	seen := make(map[string]struct{}, len(doc.Records))
	for _, r := range doc.Records {
		if strings.TrimSpace(r.Name) == "" {
			return nil, fmt.Errorf("%w: %s: record without a name", ErrInvalidDefinition, origin)
		}
		if _, dup := seen[r.Name]; dup {
			return nil, fmt.Errorf("%w: %s: record %q declared twice", ErrInvalidDefinition, origin, r.Name)
		}
		seen[r.Name] = struct{}{}
	}
	return &doc, nil
}

// Declarations converts the record into field declarations in file order. It
// resolves names only; role and type compatibility is checked when the
// schema is built.
func (r Record) Declarations() ([]schema.Field, error) {
	fields := make([]schema.Field, 0, len(r.Fields))
	for _, d := range r.Fields {
		f, err := d.Field()
		if err != nil {
			return nil, fmt.Errorf("record %q: %w", r.Name, err)
		}
		fields = append(fields, f)
	}
	return fields, nil
}

// Field converts one definition.
func (d FieldDef) Field() (schema.Field, error) {
	t, err := model.ParseType(d.Type)
	if err != nil {
		return schema.Field{}, fmt.Errorf("%w: field %q: %w", ErrInvalidDefinition, d.Name, err)
	}
	r, err := d.role()
	if err != nil {
		return schema.Field{}, fmt.Errorf("%w: field %q: %w", ErrInvalidDefinition, d.Name, err)
	}
	return schema.Field{Name: d.Name, Type: t, Role: r}, nil
}

func (d FieldDef) role() (role.Role, error) {
	if strings.TrimSpace(d.Role) == "" {
		return role.Role{}, nil
	}
	kind, err := role.ParseKind(d.Role)
	if err != nil {
		return role.Role{}, err
	}

	switch kind {
	case role.KindNone:
		return role.Role{}, nil
	case role.KindFeature:
		return role.Feature(), nil
	case role.KindLabel:
		return role.Label(), nil

	case role.KindStringFeature, role.KindStringLabel:
		var opts []role.StringOption
		if d.Split != "" {
			split, err := property.ParseSplitType(d.Split)
			if err != nil {
				return role.Role{}, err
			}
			opts = append(opts, role.WithSplit(split, property.DefaultSeparator))
		}
		if d.Separator != nil {
			opts = append(opts, role.WithSeparator(*d.Separator))
		}
		if d.Exclusions != "" {
			opts = append(opts, role.WithExclusions(d.Exclusions))
		}
		if d.Enum {
			opts = append(opts, role.AsEnum(true))
		}
		if kind == role.KindStringLabel {
			return role.StringLabel(opts...), nil
		}
		return role.StringFeature(opts...), nil

	case role.KindDateFeature:
		switch {
		case d.Portion != "":
			p, err := property.ParseDatePortion(d.Portion)
			if err != nil {
				return role.Role{}, err
			}
			return role.DatePortionFeature(p), nil
		case d.Features != "":
			fs, err := property.ParseDateTimeFeature(d.Features)
			if err != nil {
				return role.Role{}, err
			}
			return role.DateFeature(fs), nil
		default:
			return role.DateFeature(property.AllFeatures), nil
		}

	case role.KindEnumerableFeature:
		return role.EnumerableFeature(d.Length), nil
	}
	return role.Role{}, fmt.Errorf("unsupported role %s", kind)
}
