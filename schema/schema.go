package schema

import (
	"fmt"
	"go/ast"
	"reflect"
)

// Tabler overrides the table name derived by the Namer
type Tabler interface {
	TableName() string
}

// Entity is the static description of one mapped table: its columns and
// the relationships that leave it. Immutable once the registry is built.
type Entity struct {
	Name          string
	Table         string
	ModelType     reflect.Type
	PrimaryColumn *Column
	Columns       []*Column
	ColumnsByName map[string]*Column
	Relations     map[string]*Relationship
	relationNames []string

	pending []pendingRelation
}

type pendingRelation struct {
	fieldStruct reflect.StructField
	settings    map[string]string
}

// Column looks a column up by database name, then by struct field name.
func (e *Entity) Column(name string) *Column {
	if column, ok := e.ColumnsByName[name]; ok {
		return column
	}
	for _, column := range e.Columns {
		if column.Name == name {
			return column
		}
	}
	return nil
}

// Relationship looks a relationship up by name.
func (e *Entity) Relationship(name string) *Relationship {
	return e.Relations[name]
}

// RelationshipNames returns relationship names in declaration order.
func (e *Entity) RelationshipNames() []string {
	names := make([]string, len(e.relationNames))
	copy(names, e.relationNames)
	return names
}

func (e Entity) String() string {
	return fmt.Sprintf("%v(%v)", e.Name, e.Table)
}

// Registry holds every entity descriptor, built once at startup and
// read-only afterwards.
type Registry struct {
	namer    Namer
	entities map[string]*Entity
	byType   map[reflect.Type]*Entity
	ordered  []*Entity
}

// NewRegistry builds entity descriptors for the given model values. All
// models reachable through relationships must be passed in one call;
// relationship fields pointing at unregistered types are an error.
func NewRegistry(models ...interface{}) (*Registry, error) {
	return NewRegistryWithNamer(NamingStrategy{}, models...)
}

// NewRegistryWithNamer builds a registry using a custom naming strategy.
func NewRegistryWithNamer(namer Namer, models ...interface{}) (*Registry, error) {
	registry := &Registry{
		namer:    namer,
		entities: map[string]*Entity{},
		byType:   map[reflect.Type]*Entity{},
	}

	for _, model := range models {
		if _, err := registry.parse(model); err != nil {
			return nil, err
		}
	}

	for _, entity := range registry.ordered {
		if err := registry.linkRelations(entity); err != nil {
			return nil, err
		}
	}

	return registry, nil
}

// Entity looks an entity up by struct name.
func (r *Registry) Entity(name string) (*Entity, error) {
	if entity, ok := r.entities[name]; ok {
		return entity, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrEntityNotRegistered, name)
}

// Entities returns every registered entity in registration order.
func (r *Registry) Entities() []*Entity {
	entities := make([]*Entity, len(r.ordered))
	copy(entities, r.ordered)
	return entities
}

func (r *Registry) parse(model interface{}) (*Entity, error) {
	modelType := reflect.ValueOf(model).Type()
	for modelType.Kind() == reflect.Slice || modelType.Kind() == reflect.Ptr {
		modelType = modelType.Elem()
	}

	if modelType.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %+v", ErrUnsupportedModel, model)
	}

	if entity, ok := r.byType[modelType]; ok {
		return entity, nil
	}

	entity := &Entity{
		Name:          modelType.Name(),
		Table:         r.namer.TableName(modelType.Name()),
		ModelType:     modelType,
		ColumnsByName: map[string]*Column{},
		Relations:     map[string]*Relationship{},
	}

	if tabler, ok := reflect.New(modelType).Interface().(Tabler); ok {
		entity.Table = tabler.TableName()
	}

	r.parseFields(entity, modelType)

	for _, column := range entity.Columns {
		if column.PrimaryKey || (entity.PrimaryColumn == nil && column.DBName == "id") {
			entity.PrimaryColumn = column
		}
	}

	r.entities[entity.Name] = entity
	r.byType[modelType] = entity
	r.ordered = append(r.ordered, entity)
	return entity, nil
}

func (r *Registry) parseFields(entity *Entity, modelType reflect.Type) {
	for i := 0; i < modelType.NumField(); i++ {
		fieldStruct := modelType.Field(i)
		if !ast.IsExported(fieldStruct.Name) {
			continue
		}

		if fieldStruct.Anonymous {
			fieldType := fieldStruct.Type
			if fieldType.Kind() == reflect.Ptr {
				fieldType = fieldType.Elem()
			}
			if fieldType.Kind() == reflect.Struct {
				r.parseFields(entity, fieldType)
				continue
			}
		}

		settings := parseTagSetting(fieldStruct.Tag.Get("db"))
		if _, skip := settings["-"]; skip {
			continue
		}

		if relSettings, ok := lookupRelTag(fieldStruct); ok {
			entity.pending = append(entity.pending, pendingRelation{fieldStruct: fieldStruct, settings: relSettings})
			continue
		}

		if column := entity.parseColumn(fieldStruct, settings, r.namer); column != nil {
			entity.Columns = append(entity.Columns, column)
			entity.ColumnsByName[column.DBName] = column
		}
	}
}

func lookupRelTag(fieldStruct reflect.StructField) (map[string]string, bool) {
	tag, ok := fieldStruct.Tag.Lookup("rel")
	if !ok {
		return nil, false
	}
	return parseTagSetting(tag), true
}

func (r *Registry) linkRelations(entity *Entity) error {
	for _, pending := range entity.pending {
		relation, err := r.buildRelation(entity, pending)
		if err != nil {
			return err
		}
		entity.Relations[relation.Name] = relation
		entity.relationNames = append(entity.relationNames, relation.Name)
	}
	entity.pending = nil
	return nil
}

func (r *Registry) buildRelation(entity *Entity, pending pendingRelation) (*Relationship, error) {
	fieldType := pending.fieldStruct.Type
	cardinality := One
	if fieldType.Kind() == reflect.Slice {
		cardinality = Many
		fieldType = fieldType.Elem()
	}
	for fieldType.Kind() == reflect.Ptr {
		fieldType = fieldType.Elem()
	}

	target, ok := r.byType[fieldType]
	if !ok {
		return nil, fmt.Errorf("%w: relationship %v.%v targets unregistered type %v",
			ErrUnsupportedModel, entity.Name, pending.fieldStruct.Name, fieldType)
	}

	relation := &Relationship{
		Name:        r.namer.ColumnName(pending.fieldStruct.Name),
		Cardinality: cardinality,
		Entity:      entity,
		Target:      target,
	}

	// The foreign key lives on the source for to-one and on the target
	// for to-many; the referenced column defaults to the other side's
	// primary key.
	owner, referenced := entity, target
	if cardinality == Many {
		owner, referenced = target, entity
	}

	fkName := relation.Name + "_id"
	if cardinality == Many {
		fkName = referenced.Table + "_id"
	}
	if value, ok := pending.settings["FOREIGNKEY"]; ok {
		fkName = value
	}
	relation.ForeignKey = owner.Column(fkName)
	if relation.ForeignKey == nil {
		return nil, fmt.Errorf("%w: relationship %v.%v has no foreign key column %q on %v",
			ErrUnsupportedModel, entity.Name, relation.Name, fkName, owner.Name)
	}

	if value, ok := pending.settings["REFERENCES"]; ok {
		relation.References = referenced.Column(value)
	} else {
		relation.References = referenced.PrimaryColumn
	}
	if relation.References == nil {
		return nil, fmt.Errorf("%w: relationship %v.%v has no referenced column on %v",
			ErrUnsupportedModel, entity.Name, relation.Name, referenced.Name)
	}

	return relation, nil
}
