package state

import "kpiteam/internal/domain/kpi"

// collection is an insertion-ordered set of entities keyed by id. It is not
// safe for concurrent use; the Store serializes access.
type collection[T kpi.Entity[T]] struct {
	items []T
	clone func(T) T
}

func (c *collection[T]) copyOf(item T) T {
	if c.clone != nil {
		return c.clone(item)
	}
	return item
}

func (c *collection[T]) list() []T {
	out := make([]T, len(c.items))
	for i, item := range c.items {
		out[i] = c.copyOf(item)
	}
	return out
}

func (c *collection[T]) indexOf(id string) int {
	for i, item := range c.items {
		if item.EntityID() == id {
			return i
		}
	}
	return -1
}

func (c *collection[T]) get(id string) (T, bool) {
	if i := c.indexOf(id); i >= 0 {
		return c.copyOf(c.items[i]), true
	}
	var zero T
	return zero, false
}

// upsert replaces the entity with the same id in place or appends it.
func (c *collection[T]) upsert(item T) (prev T, existed bool) {
	item = c.copyOf(item)
	if i := c.indexOf(item.EntityID()); i >= 0 {
		prev = c.items[i]
		c.items[i] = item
		return prev, true
	}
	c.items = append(c.items, item)
	return prev, false
}

// remove drops the entity with id and reports where it was.
func (c *collection[T]) remove(id string) (prev T, index int, ok bool) {
	i := c.indexOf(id)
	if i < 0 {
		return prev, -1, false
	}
	prev = c.items[i]
	c.items = append(c.items[:i:i], c.items[i+1:]...)
	return prev, i, true
}

// insertAt puts item back at index, clamped to the current length.
func (c *collection[T]) insertAt(index int, item T) {
	if index < 0 || index > len(c.items) {
		index = len(c.items)
	}
	c.items = append(c.items, item)
	copy(c.items[index+1:], c.items[index:])
	c.items[index] = item
}

func (c *collection[T]) replaceAll(items []T) {
	c.items = make([]T, 0, len(items))
	for _, item := range items {
		c.items = append(c.items, c.copyOf(item))
	}
}

func (c *collection[T]) size() int {
	return len(c.items)
}
