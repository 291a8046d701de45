package importer

// commit.go resolves natural keys to durable ids and persists the graph
// as one atomic, dependency-ordered upsert. Ordering matters: each step's
// id map feeds the next, so running out of order would surface as
// unresolved-reference aborts. The id maps are transaction-scoped locals,
// never package state, which keeps concurrent imports isolated.

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/menuforge/backend/internal/catalog"
)

// CreatedUpdated counts upsert outcomes for one entity kind.
type CreatedUpdated struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// Result summarizes a successful commit.
type Result struct {
	Categories  CreatedUpdated `json:"categories"`
	Sizes       CreatedUpdated `json:"sizes"`
	Groups      CreatedUpdated `json:"modifier_groups"`
	Modifiers   CreatedUpdated `json:"modifiers"`
	Items       CreatedUpdated `json:"items"`
	Assignments int            `json:"item_assignments"`
}

// Committer persists validated import graphs.
type Committer struct {
	store catalog.Store
	newID func() string
	now   func() time.Time
}

// NewCommitter creates a committer writing through the given store.
func NewCommitter(store catalog.Store) *Committer {
	return &Committer{
		store: store,
		newID: uuid.NewString,
		now:   time.Now,
	}
}

// idMaps carries the natural-key → id resolutions accumulated across the
// commit steps of one transaction.
type idMaps struct {
	categories map[string]string    // folded category name -> id
	sizes      map[string]string    // folded size code -> id
	groups     map[string]string    // folded group key -> id
	modifiers  map[[2]string]string // folded (group key, modifier key) -> id
	items      map[string]string    // folded item key -> id

	defaultSizes []defaultSizeMark
}

type defaultSizeMark struct {
	ItemKey  string
	SizeCode string
}

// Commit upserts the graph inside one store transaction, in dependency
// order. Callers must validate the graph first: the committer re-checks
// only the reference resolutions it needs, treating a miss as an invariant
// violation that aborts the transaction. On failure the store is left in
// its prior state and no partial result is reported.
func (c *Committer) Commit(ctx context.Context, g *Graph, scope string) (*Result, error) {
	res := &Result{}
	ids := &idMaps{
		categories: make(map[string]string),
		sizes:      make(map[string]string),
		groups:     make(map[string]string),
		modifiers:  make(map[[2]string]string),
		items:      make(map[string]string),
	}

	err := c.store.InTx(ctx, func(r catalog.Repos) error {
		if err := c.commitCategories(ctx, r, g, scope, ids, res); err != nil {
			return err
		}
		if err := c.commitSizes(ctx, r, g, scope, ids, res); err != nil {
			return err
		}
		if err := c.commitGroups(ctx, r, g, scope, ids, res); err != nil {
			return err
		}
		if err := c.commitModifiers(ctx, r, g, ids, res); err != nil {
			return err
		}
		if err := c.commitItems(ctx, r, g, scope, ids, res); err != nil {
			return err
		}
		if err := c.linkDefaultSizes(ctx, r, ids); err != nil {
			return err
		}
		return c.commitAssignments(ctx, r, g, ids, res)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Step 1: categories have no dependencies.
func (c *Committer) commitCategories(ctx context.Context, r catalog.Repos, g *Graph, scope string, ids *idMaps, res *Result) error {
	for _, rec := range g.Categories {
		existing, err := r.Categories.FindByName(ctx, scope, rec.Name)
		if err != nil {
			return &CommitError{Step: "categories", Key: rec.Name, Err: err}
		}

		now := c.now()
		if existing != nil {
			existing.Description = rec.Description
			existing.SortOrder = rec.SortOrder
			existing.IsActive = rec.IsActive
			existing.UpdatedAt = now
			if err := r.Categories.Update(ctx, existing); err != nil {
				return &CommitError{Step: "categories", Key: rec.Name, Err: err}
			}
			ids.categories[foldKey(rec.Name)] = existing.ID
			res.Categories.Updated++
			continue
		}

		cat := &catalog.Category{
			ID:          c.newID(),
			BusinessID:  scope,
			Name:        rec.Name,
			Description: rec.Description,
			SortOrder:   rec.SortOrder,
			IsActive:    rec.IsActive,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := r.Categories.Create(ctx, cat); err != nil {
			return &CommitError{Step: "categories", Key: rec.Name, Err: err}
		}
		ids.categories[foldKey(rec.Name)] = cat.ID
		res.Categories.Created++
	}
	return nil
}

// Step 2: sizes have no dependencies. Default markers are remembered for
// step 6, once items exist.
func (c *Committer) commitSizes(ctx context.Context, r catalog.Repos, g *Graph, scope string, ids *idMaps, res *Result) error {
	for _, rec := range g.Sizes {
		if rec.IsDefault {
			ids.defaultSizes = append(ids.defaultSizes, defaultSizeMark{ItemKey: rec.ItemKey, SizeCode: rec.Code})
		}

		// Rows repeating a code only carry per-item markers for an
		// already-upserted size.
		if _, done := ids.sizes[foldKey(rec.Code)]; done {
			continue
		}

		existing, err := r.Sizes.FindByCode(ctx, scope, rec.Code)
		if err != nil {
			return &CommitError{Step: "sizes", Key: rec.Code, Err: err}
		}

		now := c.now()
		if existing != nil {
			existing.Name = rec.Name
			existing.Price = rec.Price
			existing.DisplayOrder = rec.DisplayOrder
			existing.IsActive = rec.IsActive
			existing.UpdatedAt = now
			if err := r.Sizes.Update(ctx, existing); err != nil {
				return &CommitError{Step: "sizes", Key: rec.Code, Err: err}
			}
			ids.sizes[foldKey(rec.Code)] = existing.ID
			res.Sizes.Updated++
			continue
		}

		size := &catalog.Size{
			ID:           c.newID(),
			BusinessID:   scope,
			Code:         rec.Code,
			Name:         rec.Name,
			Price:        rec.Price,
			DisplayOrder: rec.DisplayOrder,
			IsActive:     rec.IsActive,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := r.Sizes.Create(ctx, size); err != nil {
			return &CommitError{Step: "sizes", Key: rec.Code, Err: err}
		}
		ids.sizes[foldKey(rec.Code)] = size.ID
		res.Sizes.Created++
	}
	return nil
}

// Step 3: modifier groups depend on sizes for their per-size price deltas.
// Nested pricing is replaced wholesale; the import is authoritative.
func (c *Committer) commitGroups(ctx context.Context, r catalog.Repos, g *Graph, scope string, ids *idMaps, res *Result) error {
	for _, rec := range g.Groups {
		prices, err := c.resolveSizePrices(rec.SizePrices, ids)
		if err != nil {
			return &CommitError{Step: "modifier_groups", Key: rec.Key, Err: err}
		}

		existing, err := r.Groups.FindByName(ctx, scope, rec.Name)
		if err != nil {
			return &CommitError{Step: "modifier_groups", Key: rec.Key, Err: err}
		}

		now := c.now()
		if existing != nil {
			existing.Name = rec.Name
			existing.DisplayType = rec.DisplayType
			existing.MinSelect = rec.MinSelect
			existing.MaxSelect = rec.MaxSelect
			existing.AppliesPerQuantity = rec.AppliesPerQuantity
			existing.QuantityLevels = rec.QuantityLevels
			existing.SizePrices = prices
			existing.UpdatedAt = now
			if err := r.Groups.Update(ctx, existing); err != nil {
				return &CommitError{Step: "modifier_groups", Key: rec.Key, Err: err}
			}
			ids.groups[foldKey(rec.Key)] = existing.ID
			res.Groups.Updated++
			continue
		}

		group := &catalog.ModifierGroup{
			ID:                 c.newID(),
			BusinessID:         scope,
			Name:               rec.Name,
			DisplayType:        rec.DisplayType,
			MinSelect:          rec.MinSelect,
			MaxSelect:          rec.MaxSelect,
			AppliesPerQuantity: rec.AppliesPerQuantity,
			QuantityLevels:     rec.QuantityLevels,
			SizePrices:         prices,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if err := r.Groups.Create(ctx, group); err != nil {
			return &CommitError{Step: "modifier_groups", Key: rec.Key, Err: err}
		}
		ids.groups[foldKey(rec.Key)] = group.ID
		res.Groups.Created++
	}
	return nil
}

// Step 4: modifiers resolve their owning group through the step-3 map.
func (c *Committer) commitModifiers(ctx context.Context, r catalog.Repos, g *Graph, ids *idMaps, res *Result) error {
	for _, rec := range g.Modifiers {
		groupID, ok := ids.groups[foldKey(rec.GroupKey)]
		if !ok {
			return &CommitError{Step: "modifiers", Key: rec.Key,
				Err: fmt.Errorf("unresolved modifier group %q (was the graph validated?)", rec.GroupKey)}
		}

		existing, err := r.Modifiers.FindByName(ctx, groupID, rec.Name)
		if err != nil {
			return &CommitError{Step: "modifiers", Key: rec.Key, Err: err}
		}

		now := c.now()
		if existing != nil {
			existing.DisplayOrder = rec.DisplayOrder
			existing.IsActive = rec.IsActive
			existing.IsDefault = rec.IsDefault
			existing.MaxQuantity = rec.MaxQuantity
			existing.UpdatedAt = now
			if err := r.Modifiers.Update(ctx, existing); err != nil {
				return &CommitError{Step: "modifiers", Key: rec.Key, Err: err}
			}
			ids.modifiers[[2]string{foldKey(rec.GroupKey), foldKey(rec.Key)}] = existing.ID
			res.Modifiers.Updated++
			continue
		}

		mod := &catalog.Modifier{
			ID:           c.newID(),
			GroupID:      groupID,
			Name:         rec.Name,
			DisplayOrder: rec.DisplayOrder,
			IsActive:     rec.IsActive,
			IsDefault:    rec.IsDefault,
			MaxQuantity:  rec.MaxQuantity,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := r.Modifiers.Create(ctx, mod); err != nil {
			return &CommitError{Step: "modifiers", Key: rec.Key, Err: err}
		}
		ids.modifiers[[2]string{foldKey(rec.GroupKey), foldKey(rec.Key)}] = mod.ID
		res.Modifiers.Created++
	}
	return nil
}

// Step 5: items resolve their named category through the step-1 map.
func (c *Committer) commitItems(ctx context.Context, r catalog.Repos, g *Graph, scope string, ids *idMaps, res *Result) error {
	for _, rec := range g.Items {
		// Uncategorized items commit with an empty category id.
		var categoryID string
		if rec.Category != "" {
			id, ok := ids.categories[foldKey(rec.Category)]
			if !ok {
				return &CommitError{Step: "items", Key: rec.Key,
					Err: fmt.Errorf("unresolved category %q (was the graph validated?)", rec.Category)}
			}
			categoryID = id
		}

		existing, err := r.Items.FindByName(ctx, scope, categoryID, rec.Name)
		if err != nil {
			return &CommitError{Step: "items", Key: rec.Key, Err: err}
		}

		now := c.now()
		if existing != nil {
			existing.Description = rec.Description
			existing.BasePrice = rec.BasePrice
			existing.IsSizeable = rec.IsSizeable
			existing.IsCustomizable = rec.IsCustomizable
			existing.IsActive = rec.IsActive
			existing.IsAvailable = rec.IsAvailable
			existing.IsSignature = rec.IsSignature
			existing.SortOrder = rec.SortOrder
			existing.UpdatedAt = now
			if err := r.Items.Update(ctx, existing); err != nil {
				return &CommitError{Step: "items", Key: rec.Key, Err: err}
			}
			ids.items[foldKey(rec.Key)] = existing.ID
			res.Items.Updated++
		} else {
			item := &catalog.Item{
				ID:             c.newID(),
				BusinessID:     scope,
				CategoryID:     categoryID,
				Name:           rec.Name,
				Description:    rec.Description,
				BasePrice:      rec.BasePrice,
				IsSizeable:     rec.IsSizeable,
				IsCustomizable: rec.IsCustomizable,
				IsActive:       rec.IsActive,
				IsAvailable:    rec.IsAvailable,
				IsSignature:    rec.IsSignature,
				SortOrder:      rec.SortOrder,
				CreatedAt:      now,
				UpdatedAt:      now,
			}
			if err := r.Items.Create(ctx, item); err != nil {
				return &CommitError{Step: "items", Key: rec.Key, Err: err}
			}
			ids.items[foldKey(rec.Key)] = item.ID
			res.Items.Created++
		}

		// An explicit default_size_code behaves like a default marker row.
		if rec.DefaultSizeCode != "" {
			ids.defaultSizes = append(ids.defaultSizes, defaultSizeMark{ItemKey: rec.Key, SizeCode: rec.DefaultSizeCode})
		}
	}
	return nil
}

// Step 6: link default sizes now that both sides have ids.
func (c *Committer) linkDefaultSizes(ctx context.Context, r catalog.Repos, ids *idMaps) error {
	for _, mark := range ids.defaultSizes {
		itemID, ok := ids.items[foldKey(mark.ItemKey)]
		if !ok {
			return &CommitError{Step: "default_sizes", Key: mark.ItemKey,
				Err: fmt.Errorf("unresolved item %q (was the graph validated?)", mark.ItemKey)}
		}
		sizeID, ok := ids.sizes[foldKey(mark.SizeCode)]
		if !ok {
			return &CommitError{Step: "default_sizes", Key: mark.SizeCode,
				Err: fmt.Errorf("unresolved size %q (was the graph validated?)", mark.SizeCode)}
		}
		if err := r.Items.SetDefaultSize(ctx, itemID, sizeID); err != nil {
			return &CommitError{Step: "default_sizes", Key: mark.ItemKey, Err: err}
		}
	}
	return nil
}

// Step 7: rebuild modifier-group assignments, scoped to items explicitly
// present in the override set. Items without overrides in this import are
// left untouched.
func (c *Committer) commitAssignments(ctx context.Context, r catalog.Repos, g *Graph, ids *idMaps, res *Result) error {
	type assignKey struct{ item, group string }

	// Group overrides by (item, group), preserving first-seen order.
	perItem := make(map[string][]assignKey)
	overrides := make(map[assignKey][]OverrideRecord)
	var itemOrder []string

	for _, o := range g.Overrides {
		itemKey := foldKey(o.ItemKey)
		k := assignKey{item: itemKey, group: foldKey(o.GroupKey)}
		if _, seen := overrides[k]; !seen {
			if len(perItem[itemKey]) == 0 {
				itemOrder = append(itemOrder, itemKey)
			}
			perItem[itemKey] = append(perItem[itemKey], k)
		}
		overrides[k] = append(overrides[k], o)
	}

	for _, itemKey := range itemOrder {
		itemID, ok := ids.items[itemKey]
		if !ok {
			return &CommitError{Step: "item_assignments", Key: itemKey,
				Err: fmt.Errorf("unresolved item %q (was the graph validated?)", itemKey)}
		}

		var assignments []catalog.ItemModifierGroup
		for order, k := range perItem[itemKey] {
			groupID, ok := ids.groups[k.group]
			if !ok {
				return &CommitError{Step: "item_assignments", Key: k.group,
					Err: fmt.Errorf("unresolved modifier group %q (was the graph validated?)", k.group)}
			}

			var mods []catalog.ModifierOverride
			for _, o := range overrides[k] {
				modID, ok := ids.modifiers[[2]string{k.group, foldKey(o.ModifierKey)}]
				if !ok {
					return &CommitError{Step: "item_assignments", Key: o.ModifierKey,
						Err: fmt.Errorf("unresolved modifier %q in group %q (was the graph validated?)", o.ModifierKey, o.GroupKey)}
				}
				prices, err := c.resolveSizePrices(o.SizePrices, ids)
				if err != nil {
					return &CommitError{Step: "item_assignments", Key: o.ModifierKey, Err: err}
				}
				mods = append(mods, catalog.ModifierOverride{
					ModifierID:     modID,
					MaxQuantity:    o.MaxQuantity,
					IsDefault:      o.IsDefault,
					SizePrices:     prices,
					QuantityLevels: o.QuantityLevels,
				})
			}

			now := c.now()
			assignments = append(assignments, catalog.ItemModifierGroup{
				ID:           c.newID(),
				ItemID:       itemID,
				GroupID:      groupID,
				DisplayOrder: order,
				Overrides:    mods,
				CreatedAt:    now,
				UpdatedAt:    now,
			})
		}

		if err := r.ItemGroups.ReplaceForItem(ctx, itemID, assignments); err != nil {
			return &CommitError{Step: "item_assignments", Key: itemKey, Err: err}
		}
		res.Assignments += len(assignments)
	}
	return nil
}

// resolveSizePrices rewrites size codes to the ids resolved in step 2.
func (c *Committer) resolveSizePrices(refs []SizePriceRef, ids *idMaps) ([]catalog.SizePrice, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	out := make([]catalog.SizePrice, 0, len(refs))
	for _, ref := range refs {
		id, ok := ids.sizes[foldKey(ref.SizeCode)]
		if !ok {
			return nil, fmt.Errorf("unresolved size code %q (was the graph validated?)", ref.SizeCode)
		}
		out = append(out, catalog.SizePrice{SizeID: id, Price: ref.Price})
	}
	return out, nil
}
