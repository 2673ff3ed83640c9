package sim

import (
	"strings"
	"sync"
)

// A Named object is an object that has a name.
type Named interface {
	Name() string
}

// A Component is a element that is being simulated.
type Component interface {
	Named
	Handler
	Hookable
}

// ComponentBase provides some functions that other component can use.
type ComponentBase struct {
	HookableBase
	sync.Mutex
	name string
}

// NewComponentBase creates a new ComponentBase
func NewComponentBase(name string) *ComponentBase {
	NameMustBeValid(name)

	c := new(ComponentBase)
	c.name = name

	return c
}

// Name returns the name of the component.
func (c *ComponentBase) Name() string {
	return c.name
}

// NameMustBeValid panics if the name does not follow the naming convention.
// A name is a dot-separated list of elements. Each element must be
// capitalized CamelCase, optionally followed by an index in square brackets,
// e.g. "SSD.Ctrl[0]".
func NameMustBeValid(name string) {
	if name == "" {
		panic("name must not be empty")
	}

	for _, elem := range strings.Split(name, ".") {
		elemName := elem
		if i := strings.Index(elem, "["); i >= 0 {
			if !strings.HasSuffix(elem, "]") {
				panic("name " + name + " is not valid: unmatched bracket")
			}

			elemName = elem[:i]
		}

		if elemName == "" {
			panic("name " + name + " is not valid: empty element")
		}

		if strings.ContainsAny(elemName, "_\"'-") {
			panic("name " + name + " is not valid: invalid character")
		}

		if elemName[0] < 'A' || elemName[0] > 'Z' {
			panic("name " + name +
				" is not valid: element must start with a capital letter")
		}
	}
}
