package container

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// TagKey marks an exported struct field as an injection point:
//
//	type SampleController struct {
//	    Service Greeter `inject:""`
//	    Mailer  *Mailer `inject:"optional"`
//	}
//
// The field's declared type is the capability looked up. "optional" keeps
// the field unset without error even in strict mode.
const TagKey = "inject"

// Inject populates the injection points of every registered singleton. It
// runs once, after all components exist, so forward and circular references
// between singletons resolve without any ordering concerns.
//
// Unresolved points are left at their zero value unless the container was
// built WithStrictInjection, in which case all of them are reported
// together.
func (c *Container) Inject() error {
	c.mu.Lock()
	if c.injected {
		c.mu.Unlock()
		return ErrAlreadyInjected
	}
	c.injected = true
	comps := append([]*component(nil), c.components...)
	c.mu.Unlock()

	var errs []error
	for _, comp := range comps {
		if err := c.InjectInto(comp.instance); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", comp.name, err))
		}
	}
	return errors.Join(errs...)
}

// InjectInto populates the injection points of a single value. Values that
// are not pointers to structs have no injection points.
func (c *Container) InjectInto(target any) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return nil
	}
	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return nil
	}

	t := v.Type()
	var errs []error
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag, ok := field.Tag.Lookup(TagKey)
		if !ok {
			continue
		}
		if !field.IsExported() {
			errs = append(errs, fmt.Errorf("%w: field %s (unexported)", ErrUnsettable, field.Name))
			continue
		}

		if c.assign(v.Field(i), field.Type) {
			continue
		}

		if c.strict && strings.TrimSpace(tag) != "optional" {
			errs = append(errs, fmt.Errorf("%w: field %s %s", ErrUnresolved, field.Name, field.Type))
			continue
		}
		c.logger.Debug("Injection point left unset",
			"component", t.String(), "field", field.Name, "type", field.Type.String())
	}
	return errors.Join(errs...)
}

// assign sets dst to the singleton registered under exactly typ. A singleton
// that is not assignable to the field is never assigned.
func (c *Container) assign(dst reflect.Value, typ reflect.Type) bool {
	dep, ok := c.Lookup(typ)
	if !ok {
		return false
	}
	dv := reflect.ValueOf(dep)
	if !dv.Type().AssignableTo(typ) {
		return false
	}
	dst.Set(dv)
	return true
}
