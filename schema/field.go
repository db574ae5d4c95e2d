package schema

import (
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DataType scalar column type
type DataType string

const (
	Bool   DataType = "bool"
	Int    DataType = "int"
	Uint   DataType = "uint"
	Float  DataType = "float"
	String DataType = "string"
	Time   DataType = "time"
	Bytes  DataType = "bytes"
	UUID   DataType = "uuid"
)

// Column describes one scalar column of an entity.
type Column struct {
	Name       string // struct field name
	DBName     string
	DataType   DataType
	PrimaryKey bool
	Nullable   bool
	FieldType  reflect.Type
	Entity     *Entity
}

var (
	timeType = reflect.TypeOf(time.Time{})
	uuidType = reflect.TypeOf(uuid.UUID{})
)

// parseColumn builds a column descriptor from a struct field, or returns
// nil when the field's type cannot map to a scalar column.
func (e *Entity) parseColumn(fieldStruct reflect.StructField, settings map[string]string, namer Namer) *Column {
	column := &Column{
		Name:      fieldStruct.Name,
		FieldType: fieldStruct.Type,
		Entity:    e,
	}

	if value, ok := settings["COLUMN"]; ok {
		column.DBName = value
	} else {
		column.DBName = namer.ColumnName(fieldStruct.Name)
	}

	if _, ok := settings["PRIMARYKEY"]; ok {
		column.PrimaryKey = true
	}

	fieldType := fieldStruct.Type
	if fieldType.Kind() == reflect.Ptr {
		column.Nullable = true
		fieldType = fieldType.Elem()
	}

	switch {
	case fieldType == timeType:
		column.DataType = Time
	case fieldType == uuidType:
		column.DataType = UUID
	case fieldType.Kind() == reflect.Bool:
		column.DataType = Bool
	case fieldType.Kind() >= reflect.Int && fieldType.Kind() <= reflect.Int64:
		column.DataType = Int
	case fieldType.Kind() >= reflect.Uint && fieldType.Kind() <= reflect.Uint64:
		column.DataType = Uint
	case fieldType.Kind() == reflect.Float32 || fieldType.Kind() == reflect.Float64:
		column.DataType = Float
	case fieldType.Kind() == reflect.String:
		column.DataType = String
	case fieldType.Kind() == reflect.Slice && fieldType.Elem().Kind() == reflect.Uint8:
		column.DataType = Bytes
	default:
		return nil
	}

	if value, ok := settings["TYPE"]; ok {
		column.DataType = DataType(strings.ToLower(value))
	}

	return column
}

func parseTagSetting(str string) map[string]string {
	tags := strings.Split(str, ";")
	setting := map[string]string{}
	for _, value := range tags {
		v := strings.Split(value, ":")
		k := strings.TrimSpace(strings.ToUpper(v[0]))
		if len(v) == 2 {
			setting[k] = strings.TrimSpace(v[1])
		} else if k != "" {
			setting[k] = k
		}
	}
	return setting
}
