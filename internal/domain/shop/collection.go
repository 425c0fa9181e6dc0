package shop

// Collection is an ordered list of shops
type Collection struct {
	items []*Shop
}

// NewCollection creates a collection keeping the given order
func NewCollection(items []*Shop) *Collection {
	return &Collection{items: items}
}

// All returns the shops in order
func (c *Collection) All() []*Shop {
	return c.items
}

// Len returns the number of shops
func (c *Collection) Len() int {
	return len(c.items)
}

// IDs returns the shop ids in order
func (c *Collection) IDs() []int {
	ids := make([]int, len(c.items))
	for i, s := range c.items {
		ids[i] = s.ID
	}
	return ids
}

// Get returns the shop with id, or nil
func (c *Collection) Get(id int) *Shop {
	for _, s := range c.items {
		if s.ID == id {
			return s
		}
	}
	return nil
}
