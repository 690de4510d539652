// Package class implements the shared prototype registry. A Class holds
// the default behaviors and values for every object instancing it, plus
// the resource names its instances demand-load. Classes are reference
// counted: objects acquire on construction and release on destroy, so a
// class removed from the registry stays usable while instances remain.
package class

import "log/slog"

// Class is a shared prototype. Field values are behaviors (typed funcs)
// or plain data; objects resolve fields instance-first, then here.
type Class struct {
	name      string
	fields    map[string]any
	resources []string
	refs      int
}

// New creates a class with the given field table and demand-loaded
// resource names. The field map is used as-is, not copied.
func New(name string, fields map[string]any, resources ...string) *Class {
	if fields == nil {
		fields = make(map[string]any)
	}
	return &Class{name: name, fields: fields, resources: resources}
}

// Name returns the class display name used in diagnostics.
func (c *Class) Name() string { return c.name }

// Resources returns the resource names instances of this class demand.
func (c *Class) Resources() []string { return c.resources }

// Get returns the shared field value, reporting absence explicitly.
func (c *Class) Get(field string) (any, bool) {
	v, ok := c.fields[field]
	return v, ok
}

// Set replaces a shared field value. Setting nil removes the field.
func (c *Class) Set(field string, value any) {
	if value == nil {
		delete(c.fields, field)
		return
	}
	c.fields[field] = value
}

// Acquire takes a reference on behalf of a new instance.
func (c *Class) Acquire() {
	c.refs++
}

// Release drops an instance reference.
func (c *Class) Release() {
	c.refs--
	if c.refs < 0 {
		slog.Warn("class released below zero references", "class", c.name)
		c.refs = 0
	}
}

// Refs returns the current instance reference count.
func (c *Class) Refs() int { return c.refs }
