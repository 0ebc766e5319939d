// schema.go
//
// Content service and admin tooling of a church website
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of chapel-cms.
// chapel-cms is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// chapel-cms is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with chapel-cms.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

// Package resource describes content tables so one generic manager can serve all of them.
package resource

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// Category groups resources on the dashboard
type Category string

const (
	CategoryContent Category = "content"
	CategoryMedia   Category = "media"
)

// FieldType is the scalar type of a field as seen by clients
type FieldType string

const (
	TypeString FieldType = "string"
	TypeInt    FieldType = "int"
	TypeBool   FieldType = "bool"
)

// Field is one mutable column of a resource
type Field struct {
	Name     string    `json:"name"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`
}

// OrderKey is one sort column
type OrderKey struct {
	Column string `json:"column"`
	Desc   bool   `json:"desc,omitempty"`
}

// Schema is the descriptor a generic manager is parameterized with
type Schema struct {
	Name      string       `json:"name"`
	Label     string       `json:"label"`
	Table     string       `json:"table"`
	Category  Category     `json:"category"`
	Order     []OrderKey   `json:"order,omitempty"`
	Singleton bool         `json:"singleton"`
	Fields    []Field      `json:"fields"`
	Media     []MediaField `json:"media,omitempty"`
	Defaults  Row          `json:"defaults,omitempty"`
}

// columns never accepted from a client
var readOnly = []string{"id", "created_at", "updated_at"}

// Describe fills the field list of s from the json and validate tags of model.
// Embedded structs are flattened the way GORM flattens them.
func Describe(model any, s Schema) Schema {
	t := reflect.TypeOf(model)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	s.Fields = collectFields(t, nil)
	return s
}

func collectFields(t reflect.Type, fields []Field) []Field {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Anonymous && sf.Type.Kind() == reflect.Struct {
			fields = collectFields(sf.Type, fields)
			continue
		}
		if !sf.IsExported() {
			continue
		}
		name := jsonName(sf)
		if name == "" || slices.Contains(readOnly, name) {
			continue
		}
		fields = append(fields, Field{
			Name:     name,
			Type:     fieldType(sf.Type.Kind()),
			Required: hasRule(sf.Tag.Get("validate"), "required"),
		})
	}
	return fields
}

func jsonName(sf reflect.StructField) string {
	tag := sf.Tag.Get("json")
	if tag == "-" {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		return sf.Name
	}
	return name
}

func fieldType(k reflect.Kind) FieldType {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return TypeInt
	case reflect.Bool:
		return TypeBool
	}
	return TypeString
}

func hasRule(tag, rule string) bool {
	for _, r := range strings.Split(tag, ",") {
		if r == rule {
			return true
		}
	}
	return false
}

// Draft returns a new draft holding the default field values
func (s Schema) Draft() Row {
	if s.Defaults == nil {
		return Row{}
	}
	return s.Defaults.Clone()
}

// Required lists the names of the required fields
func (s Schema) Required() []string {
	var names []string
	for _, f := range s.Fields {
		if f.Required {
			names = append(names, f.Name)
		}
	}
	return names
}

// Field finds a field by name
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// MediaFor returns the media rule bound to a field
func (s Schema) MediaFor(field string) (MediaField, bool) {
	for _, m := range s.Media {
		if m.Field == field {
			return m, true
		}
	}
	return MediaField{}, false
}

// Missing returns the required fields that are empty in row.
// Fields named in provided count as present (a file is being uploaded for them).
func (s Schema) Missing(row Row, provided ...string) []string {
	var missing []string
	for _, name := range s.Required() {
		if slices.Contains(provided, name) {
			continue
		}
		if isEmpty(row[name]) {
			missing = append(missing, name)
		}
	}
	return missing
}

func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	}
	return false
}

// Coerce keeps only the mutable fields of row and converts text values of
// numeric and boolean fields, as sent by forms and the command line.
func (s Schema) Coerce(row Row) (Row, error) {
	out := make(Row, len(row))
	for key, value := range row {
		f, ok := s.Field(key)
		if !ok {
			continue
		}
		text, isText := value.(string)
		if !isText || f.Type == TypeString {
			out[key] = value
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		switch f.Type {
		case TypeInt:
			n, err := strconv.Atoi(text)
			if err != nil {
				return nil, &ValidationError{Fields: []string{key}, Err: fmt.Errorf("%s must be an integer", key)}
			}
			out[key] = n
		case TypeBool:
			b, err := strconv.ParseBool(text)
			if err != nil {
				return nil, &ValidationError{Fields: []string{key}, Err: fmt.Errorf("%s must be a boolean", key)}
			}
			out[key] = b
		}
	}
	return out, nil
}
