package catalog

// memory.go is an in-memory Store with the same natural-key semantics as
// the Postgres implementation, including unique-key enforcement and
// transaction rollback (via snapshot/restore). It backs the importer tests
// and is not wired into the server.

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MemStore is an in-memory catalog store. Transactions are serialized by a
// mutex; a failed InTx restores the pre-transaction state.
type MemStore struct {
	mu   sync.Mutex
	data *memData
}

type memData struct {
	categories map[string]*Category
	sizes      map[string]*Size
	groups     map[string]*ModifierGroup
	modifiers  map[string]*Modifier
	items      map[string]*Item
	itemGroups map[string][]ItemModifierGroup // item id -> assignments
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{data: newMemData()}
}

func newMemData() *memData {
	return &memData{
		categories: make(map[string]*Category),
		sizes:      make(map[string]*Size),
		groups:     make(map[string]*ModifierGroup),
		modifiers:  make(map[string]*Modifier),
		items:      make(map[string]*Item),
		itemGroups: make(map[string][]ItemModifierGroup),
	}
}

// InTx runs fn against the live data set. On error the snapshot taken
// before fn is restored, so no partial writes remain visible.
func (s *MemStore) InTx(ctx context.Context, fn func(Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	repos := Repos{
		Categories: &memCategories{d: s.data},
		Sizes:      &memSizes{d: s.data},
		Groups:     &memGroups{d: s.data},
		Modifiers:  &memModifiers{d: s.data},
		Items:      &memItems{d: s.data},
		ItemGroups: &memItemGroups{d: s.data},
	}

	if err := fn(repos); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

// Counts reports how many entities of each kind are stored. Useful for
// idempotence assertions in tests.
func (s *MemStore) Counts() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	assignments := 0
	for _, list := range s.data.itemGroups {
		assignments += len(list)
	}
	return map[string]int{
		"categories":  len(s.data.categories),
		"sizes":       len(s.data.sizes),
		"groups":      len(s.data.groups),
		"modifiers":   len(s.data.modifiers),
		"items":       len(s.data.items),
		"assignments": assignments,
	}
}

// Snapshot returns repositories reading the current state outside a
// transaction. Intended for test assertions only.
func (s *MemStore) Snapshot() Repos {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.data
	return Repos{
		Categories: &memCategories{d: d},
		Sizes:      &memSizes{d: d},
		Groups:     &memGroups{d: d},
		Modifiers:  &memModifiers{d: d},
		Items:      &memItems{d: d},
		ItemGroups: &memItemGroups{d: d},
	}
}

func (d *memData) clone() *memData {
	c := newMemData()
	for k, v := range d.categories {
		cp := *v
		c.categories[k] = &cp
	}
	for k, v := range d.sizes {
		cp := *v
		c.sizes[k] = &cp
	}
	for k, v := range d.groups {
		cp := *v
		cp.QuantityLevels = append([]QuantityTier(nil), v.QuantityLevels...)
		cp.SizePrices = append([]SizePrice(nil), v.SizePrices...)
		c.groups[k] = &cp
	}
	for k, v := range d.modifiers {
		cp := *v
		c.modifiers[k] = &cp
	}
	for k, v := range d.items {
		cp := *v
		if v.DefaultSizeID != nil {
			id := *v.DefaultSizeID
			cp.DefaultSizeID = &id
		}
		c.items[k] = &cp
	}
	for k, list := range d.itemGroups {
		cloned := make([]ItemModifierGroup, len(list))
		for i, a := range list {
			cloned[i] = a
			cloned[i].Overrides = append([]ModifierOverride(nil), a.Overrides...)
		}
		c.itemGroups[k] = cloned
	}
	return c
}

func fold(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

type memCategories struct{ d *memData }

func (r *memCategories) FindByName(_ context.Context, businessID, name string) (*Category, error) {
	for _, c := range r.d.categories {
		if c.BusinessID == businessID && fold(c.Name) == fold(name) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memCategories) Create(ctx context.Context, c *Category) error {
	if existing, _ := r.FindByName(ctx, c.BusinessID, c.Name); existing != nil {
		return fmt.Errorf("duplicate key: category %q", c.Name)
	}
	cp := *c
	r.d.categories[c.ID] = &cp
	return nil
}

func (r *memCategories) Update(_ context.Context, c *Category) error {
	if _, ok := r.d.categories[c.ID]; !ok {
		return fmt.Errorf("category %s not found", c.ID)
	}
	cp := *c
	r.d.categories[c.ID] = &cp
	return nil
}

type memSizes struct{ d *memData }

func (r *memSizes) FindByCode(_ context.Context, businessID, code string) (*Size, error) {
	for _, s := range r.d.sizes {
		if s.BusinessID == businessID && fold(s.Code) == fold(code) {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memSizes) Create(ctx context.Context, s *Size) error {
	if existing, _ := r.FindByCode(ctx, s.BusinessID, s.Code); existing != nil {
		return fmt.Errorf("duplicate key: size %q", s.Code)
	}
	cp := *s
	r.d.sizes[s.ID] = &cp
	return nil
}

func (r *memSizes) Update(_ context.Context, s *Size) error {
	if _, ok := r.d.sizes[s.ID]; !ok {
		return fmt.Errorf("size %s not found", s.ID)
	}
	cp := *s
	r.d.sizes[s.ID] = &cp
	return nil
}

type memGroups struct{ d *memData }

func (r *memGroups) FindByName(_ context.Context, businessID, name string) (*ModifierGroup, error) {
	for _, g := range r.d.groups {
		if g.BusinessID == businessID && fold(g.Name) == fold(name) {
			cp := *g
			cp.QuantityLevels = append([]QuantityTier(nil), g.QuantityLevels...)
			cp.SizePrices = append([]SizePrice(nil), g.SizePrices...)
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memGroups) Create(ctx context.Context, g *ModifierGroup) error {
	if existing, _ := r.FindByName(ctx, g.BusinessID, g.Name); existing != nil {
		return fmt.Errorf("duplicate key: modifier group %q", g.Name)
	}
	cp := *g
	r.d.groups[g.ID] = &cp
	return nil
}

func (r *memGroups) Update(_ context.Context, g *ModifierGroup) error {
	if _, ok := r.d.groups[g.ID]; !ok {
		return fmt.Errorf("modifier group %s not found", g.ID)
	}
	cp := *g
	r.d.groups[g.ID] = &cp
	return nil
}

type memModifiers struct{ d *memData }

func (r *memModifiers) FindByName(_ context.Context, groupID, name string) (*Modifier, error) {
	for _, m := range r.d.modifiers {
		if m.GroupID == groupID && fold(m.Name) == fold(name) {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memModifiers) Create(ctx context.Context, m *Modifier) error {
	if existing, _ := r.FindByName(ctx, m.GroupID, m.Name); existing != nil {
		return fmt.Errorf("duplicate key: modifier %q", m.Name)
	}
	cp := *m
	r.d.modifiers[m.ID] = &cp
	return nil
}

func (r *memModifiers) Update(_ context.Context, m *Modifier) error {
	if _, ok := r.d.modifiers[m.ID]; !ok {
		return fmt.Errorf("modifier %s not found", m.ID)
	}
	cp := *m
	r.d.modifiers[m.ID] = &cp
	return nil
}

type memItems struct{ d *memData }

func (r *memItems) FindByName(_ context.Context, businessID, categoryID, name string) (*Item, error) {
	for _, i := range r.d.items {
		if i.BusinessID == businessID && i.CategoryID == categoryID && fold(i.Name) == fold(name) {
			cp := *i
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memItems) Create(ctx context.Context, i *Item) error {
	if existing, _ := r.FindByName(ctx, i.BusinessID, i.CategoryID, i.Name); existing != nil {
		return fmt.Errorf("duplicate key: item %q", i.Name)
	}
	cp := *i
	r.d.items[i.ID] = &cp
	return nil
}

func (r *memItems) Update(_ context.Context, i *Item) error {
	existing, ok := r.d.items[i.ID]
	if !ok {
		return fmt.Errorf("item %s not found", i.ID)
	}
	cp := *i
	cp.DefaultSizeID = existing.DefaultSizeID
	r.d.items[i.ID] = &cp
	return nil
}

func (r *memItems) SetDefaultSize(_ context.Context, itemID, sizeID string) error {
	i, ok := r.d.items[itemID]
	if !ok {
		return fmt.Errorf("item %s not found", itemID)
	}
	i.DefaultSizeID = &sizeID
	return nil
}

type memItemGroups struct{ d *memData }

func (r *memItemGroups) ListForItem(_ context.Context, itemID string) ([]ItemModifierGroup, error) {
	list := r.d.itemGroups[itemID]
	out := make([]ItemModifierGroup, len(list))
	copy(out, list)
	return out, nil
}

func (r *memItemGroups) ReplaceForItem(_ context.Context, itemID string, assignments []ItemModifierGroup) error {
	cloned := make([]ItemModifierGroup, len(assignments))
	for i, a := range assignments {
		cloned[i] = a
		cloned[i].Overrides = append([]ModifierOverride(nil), a.Overrides...)
	}
	r.d.itemGroups[itemID] = cloned
	return nil
}
