package dataset

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

var ErrUnknownClass = errors.New("Unknown class")

// DefaultClassNames returns the SoccerNet game-state classes.
// Each call returns a new map.
func DefaultClassNames() map[int]string {
	return map[int]string{
		0: "ball",
		1: "player",
		2: "goalkeeper",
		3: "referee",
		4: "staff",
		5: "other",
		6: "pitch",
	}
}

// ClassMap is the set of category ids that we recognize, and their names.
// It is immutable once created.
type ClassMap struct {
	ids   []int
	names map[int]string
}

// NewClassMap validates the id -> name mapping and freezes it
func NewClassMap(names map[int]string) (*ClassMap, error) {
	if len(names) == 0 {
		return nil, errors.New("Class map is empty")
	}
	c := &ClassMap{
		names: make(map[int]string, len(names)),
	}
	for id, name := range names {
		if id < 0 {
			return nil, fmt.Errorf("Invalid class id %v", id)
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("Class %v has no name", id)
		}
		c.ids = append(c.ids, id)
		c.names[id] = name
	}
	sort.Ints(c.ids)
	return c, nil
}

// DefaultClasses returns the SoccerNet class map
func DefaultClasses() *ClassMap {
	c, err := NewClassMap(DefaultClassNames())
	if err != nil {
		panic(err)
	}
	return c
}

// ParseClassNames reads a text file with a class name on each line.
// The class id is the index of the (non-empty) line.
func ParseClassNames(r io.Reader) (*ClassMap, error) {
	names := map[int]string{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			names[len(names)] = line
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return NewClassMap(names)
}

// IDs returns the class ids in ascending order
func (c *ClassMap) IDs() []int {
	return append([]int(nil), c.ids...)
}

func (c *ClassMap) Len() int {
	return len(c.ids)
}

func (c *ClassMap) Has(id int) bool {
	_, ok := c.names[id]
	return ok
}

// Name returns the class name, or the decimal id if the class is unknown
func (c *ClassMap) Name(id int) string {
	if name, ok := c.names[id]; ok {
		return name
	}
	return fmt.Sprintf("%v", id)
}

// Lookup returns ErrUnknownClass if id is not part of the map
func (c *ClassMap) Lookup(id int) (string, error) {
	name, ok := c.names[id]
	if !ok {
		return "", fmt.Errorf("%w %v", ErrUnknownClass, id)
	}
	return name, nil
}

// Names returns a copy of the id -> name mapping
func (c *ClassMap) Names() map[int]string {
	m := make(map[int]string, len(c.names))
	for k, v := range c.names {
		m[k] = v
	}
	return m
}
