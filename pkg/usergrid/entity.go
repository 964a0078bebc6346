package usergrid

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"
)

// Reserved property names.
const (
	PropertyUUID         = "uuid"
	PropertyType         = "type"
	PropertyName         = "name"
	PropertyCreated      = "created"
	PropertyModified     = "modified"
	PropertyLocation     = "location"
	PropertyFileMetaData = "file-metadata"
)

type fieldCapability int

const (
	fieldReadOnly fieldCapability = iota
	fieldMutable
	fieldMutableForUsers
)

// reservedFields lists properties with fixed meaning and who may change them.
var reservedFields = map[string]fieldCapability{
	PropertyUUID:     fieldReadOnly,
	PropertyType:     fieldReadOnly,
	PropertyCreated:  fieldReadOnly,
	PropertyModified: fieldReadOnly,
	PropertyName:     fieldMutableForUsers,
	PropertyLocation: fieldMutable,
}

// IsReservedProperty reports whether name is one of the reserved properties.
func IsReservedProperty(name string) bool {
	_, ok := reservedFields[name]

	return ok
}

// Entity is implemented by every value returned in a Response.
type Entity interface {
	Type() string
	UUID() string
	Name() string
	UUIDOrName() string
	Get(name string) (interface{}, bool)
	Put(name string, value interface{}) error
	Properties() map[string]interface{}
	Base() *BaseEntity
}

// Location is a geographic point.
type Location struct {
	Latitude  float64 `json:"latitude"  yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

// FileMetaData describes an asset attached to an entity.
type FileMetaData struct {
	ContentType   string    `json:"content-type"   yaml:"content-type"`
	ContentLength int64     `json:"content-length" yaml:"content-length"`
	ETag          string    `json:"etag"           yaml:"etag"`
	Checksum      string    `json:"checksum"       yaml:"checksum"`
	LastModified  time.Time `json:"last-modified"  yaml:"last-modified"`
}

func fileMetaDataFromMap(m map[string]interface{}) *FileMetaData {
	meta := &FileMetaData{}
	meta.ContentType, _ = m["content-type"].(string)
	meta.ETag, _ = m["etag"].(string)
	meta.Checksum, _ = m["checksum"].(string)

	if n, ok := toInt64(m["content-length"]); ok {
		meta.ContentLength = n
	}

	if ms, ok := toInt64(m["last-modified"]); ok {
		meta.LastModified = time.UnixMilli(ms)
	}

	return meta
}

// BaseEntity is the generic property bag every entity is built on.
type BaseEntity struct {
	mu           sync.RWMutex
	properties   map[string]interface{}
	fileMetaData *FileMetaData
	asset        *Asset
}

// NewEntity returns an entity of the given type, optionally named.
func NewEntity(entityType string, name ...string) *BaseEntity {
	e := &BaseEntity{properties: map[string]interface{}{PropertyType: entityType}}
	if len(name) > 0 && name[0] != "" {
		e.properties[PropertyName] = name[0]
	}

	return e
}

// NewEntityFromProperties builds a generic entity from a decoded JSON object.
func NewEntityFromProperties(props map[string]interface{}) *BaseEntity {
	e := &BaseEntity{properties: make(map[string]interface{}, len(props))}
	e.setProperties(props)

	return e
}

func (e *BaseEntity) setProperties(props map[string]interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.properties = make(map[string]interface{}, len(props))
	e.fileMetaData = nil

	for k, v := range props {
		if k == PropertyFileMetaData {
			if m, ok := v.(map[string]interface{}); ok {
				e.fileMetaData = fileMetaDataFromMap(m)
			}

			continue
		}

		e.properties[k] = v
	}
}

// Base returns the entity itself.
func (e *BaseEntity) Base() *BaseEntity {
	return e
}

// Type returns the entity type.
func (e *BaseEntity) Type() string {
	return e.stringProperty(PropertyType)
}

// UUID returns the server-assigned identifier.
func (e *BaseEntity) UUID() string {
	return e.stringProperty(PropertyUUID)
}

// Name returns the entity name.
func (e *BaseEntity) Name() string {
	return e.stringProperty(PropertyName)
}

// UUIDOrName returns the uuid if set, else the name.
func (e *BaseEntity) UUIDOrName() string {
	if id := e.UUID(); id != "" {
		return id
	}

	return e.Name()
}

// IsUser reports whether the entity is a user.
func (e *BaseEntity) IsUser() bool {
	return strings.EqualFold(e.Type(), UserEntityType)
}

// Created returns the creation time.
func (e *BaseEntity) Created() time.Time {
	return e.timeProperty(PropertyCreated)
}

// Modified returns the last modification time.
func (e *BaseEntity) Modified() time.Time {
	return e.timeProperty(PropertyModified)
}

// Location returns the entity location, if set.
func (e *BaseEntity) Location() (Location, bool) {
	v, ok := e.Get(PropertyLocation)
	if !ok {
		return Location{}, false
	}

	m, ok := v.(map[string]interface{})
	if !ok {
		return Location{}, false
	}

	lat, latOK := toFloat64(m["latitude"])
	long, longOK := toFloat64(m["longitude"])

	return Location{Latitude: lat, Longitude: long}, latOK && longOK
}

// SetLocation sets the entity location.
func (e *BaseEntity) SetLocation(latitude, longitude float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.properties[PropertyLocation] = map[string]interface{}{
		"latitude":  latitude,
		"longitude": longitude,
	}
}

// FileMetaData returns the metadata of an attached asset, if any.
func (e *BaseEntity) FileMetaData() *FileMetaData {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.fileMetaData
}

// Asset returns the asset last uploaded or downloaded through this entity.
func (e *BaseEntity) Asset() *Asset {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.asset
}

// SetAsset attaches an asset to the entity.
func (e *BaseEntity) SetAsset(asset *Asset) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.asset = asset
}

// HasAsset reports whether the entity has an asset attached locally or on the server.
func (e *BaseEntity) HasAsset() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.asset != nil || (e.fileMetaData != nil && e.fileMetaData.ContentLength > 0)
}

// Get returns a property value.
func (e *BaseEntity) Get(name string) (interface{}, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	v, ok := e.properties[name]

	return v, ok
}

// Put sets a property. A nil value marks the property as null so the
// server removes it on the next update. Reserved properties follow their
// capability: uuid, type, created and modified are read-only, name is
// writable only on user entities.
func (e *BaseEntity) Put(name string, value interface{}) error {
	if err := e.checkMutable(name); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.properties[name] = value

	return nil
}

// PutProperties sets many properties. Nothing is applied when any of them
// is rejected.
func (e *BaseEntity) PutProperties(props map[string]interface{}) error {
	for _, name := range slices.Sorted(maps.Keys(props)) {
		if err := e.checkMutable(name); err != nil {
			return err
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	maps.Copy(e.properties, props)

	return nil
}

func (e *BaseEntity) checkMutable(name string) error {
	capability, reserved := reservedFields[name]
	if !reserved {
		return nil
	}

	switch capability {
	case fieldReadOnly:
		return fmt.Errorf("%w: %s", ErrNotMutable, name)
	case fieldMutableForUsers:
		if !e.IsUser() {
			return fmt.Errorf("%w: %s", ErrNotMutable, name)
		}
	case fieldMutable:
	}

	return nil
}

// Remove marks a property as null.
func (e *BaseEntity) Remove(name string) error {
	return e.Put(name, nil)
}

// RemoveProperties marks many properties as null.
func (e *BaseEntity) RemoveProperties(names ...string) error {
	for _, name := range names {
		if err := e.Remove(name); err != nil {
			return err
		}
	}

	return nil
}

// Append adds values to the end of an array property. A scalar property
// becomes the first element of the new array.
func (e *BaseEntity) Append(name string, values ...interface{}) error {
	return e.modifyArray(name, func(arr []interface{}) []interface{} {
		return append(arr, values...)
	})
}

// Insert adds values to an array property at index, clamped to its bounds.
func (e *BaseEntity) Insert(name string, index int, values ...interface{}) error {
	return e.modifyArray(name, func(arr []interface{}) []interface{} {
		index = max(0, min(index, len(arr)))

		out := make([]interface{}, 0, len(arr)+len(values))
		out = append(out, arr[:index]...)
		out = append(out, values...)

		return append(out, arr[index:]...)
	})
}

// Pop removes the last element of an array property.
func (e *BaseEntity) Pop(name string) error {
	return e.modifyArray(name, func(arr []interface{}) []interface{} {
		if len(arr) == 0 {
			return arr
		}

		return arr[:len(arr)-1]
	})
}

// Shift removes the first element of an array property.
func (e *BaseEntity) Shift(name string) error {
	return e.modifyArray(name, func(arr []interface{}) []interface{} {
		if len(arr) == 0 {
			return arr
		}

		return arr[1:]
	})
}

func (e *BaseEntity) modifyArray(name string, fn func([]interface{}) []interface{}) error {
	current, _ := e.Get(name)

	arr := []interface{}{}

	switch v := current.(type) {
	case nil:
	case []interface{}:
		arr = append(arr, v...)
	default:
		arr = []interface{}{v}
	}

	return e.Put(name, fn(arr))
}

// Properties returns a copy of all properties.
func (e *BaseEntity) Properties() map[string]interface{} {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return maps.Clone(e.properties)
}

// MarshalJSON encodes the entity properties.
func (e *BaseEntity) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(e.Properties())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}

	return data, nil
}

// UnmarshalJSON decodes entity properties.
func (e *BaseEntity) UnmarshalJSON(data []byte) error {
	var props map[string]interface{}

	err := json.Unmarshal(data, &props)
	if err != nil {
		return fmt.Errorf("failed to unmarshal entity: %w", err)
	}

	e.setProperties(props)

	return nil
}

// Merge replaces the properties of e with those of other, keeping e's
// local asset.
func (e *BaseEntity) Merge(other Entity) {
	if other == nil {
		return
	}

	props := other.Properties()

	if meta := other.Base().FileMetaData(); meta != nil {
		e.mu.Lock()
		e.properties = props
		e.fileMetaData = meta
		e.mu.Unlock()

		return
	}

	e.setProperties(props)
}

func (e *BaseEntity) stringProperty(name string) string {
	v, _ := e.Get(name)
	s, _ := v.(string)

	return s
}

func (e *BaseEntity) timeProperty(name string) time.Time {
	v, _ := e.Get(name)
	if ms, ok := toInt64(v); ok {
		return time.UnixMilli(ms)
	}

	return time.Time{}
}

func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	case json.Number:
		i, err := n.Int64()

		return i, err == nil
	default:
		return 0, false
	}
}

func toFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()

		return f, err == nil
	default:
		return 0, false
	}
}

// EntityFactory wraps a generic entity in a type-specific value.
type EntityFactory func(base *BaseEntity) Entity

// Registry maps entity types to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]EntityFactory
}

// NewRegistry returns a registry that knows users and devices.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]EntityFactory)}
	r.Register(UserEntityType, func(base *BaseEntity) Entity { return &User{BaseEntity: base} })
	r.Register(DeviceEntityType, func(base *BaseEntity) Entity { return &Device{BaseEntity: base} })

	return r
}

// DefaultRegistry is used when no registry is configured.
var DefaultRegistry = NewRegistry()

// Register installs a factory for an entity type.
func (r *Registry) Register(entityType string, factory EntityFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories[strings.ToLower(entityType)] = factory
}

// FromProperties builds an entity, using the registered factory for its type.
// Unknown types come back as *BaseEntity.
func (r *Registry) FromProperties(props map[string]interface{}) Entity {
	base := NewEntityFromProperties(props)

	r.mu.RLock()
	factory, ok := r.factories[strings.ToLower(base.Type())]
	r.mu.RUnlock()

	if !ok {
		return base
	}

	return factory(base)
}
