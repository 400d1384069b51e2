// Package master is an in-memory stand-in for the relational store behind the
// cache: master lists, menus and per-role permissions. It counts queries so
// callers can see what the cache saved them.
package master

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

var (
	ErrUnknownSubject = errors.New("unknown master list")
	ErrDuplicate      = errors.New("already exists")
	ErrEmptyName      = errors.New("name is required")
)

// Item is one row of a master list (job title, skill, care facility, country code).
type Item struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Menu is one sidebar entry.
type Menu struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	ParentID int    `json:"parent_id,omitempty"`
}

// Permission grants a role rights on a menu.
type Permission struct {
	MenuID int  `json:"menu_id"`
	Read   bool `json:"readp"`
	Write  bool `json:"writep"`
	Update bool `json:"updatep"`
	Delete bool `json:"deletep"`
}

// Repository is safe for concurrent use.
type Repository struct {
	mu      sync.RWMutex
	lists   map[string][]Item
	menus   []Menu
	perms   map[string]map[int]Permission
	queries atomic.Int64
}

// NewRepository returns a repository seeded with the given master subjects,
// each starting empty.
func NewRepository(subjects ...string) *Repository {
	r := &Repository{
		lists: make(map[string][]Item, len(subjects)),
		perms: make(map[string]map[int]Permission),
	}
	for _, s := range subjects {
		r.lists[s] = []Item{}
	}
	return r
}

// Queries is how many reads have hit the repository.
func (r *Repository) Queries() int64 { return r.queries.Load() }

// List returns a copy of a master list.
func (r *Repository) List(ctx context.Context, subject string) ([]Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.queries.Add(1)

	r.mu.RLock()
	defer r.mu.RUnlock()
	items, ok := r.lists[subject]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSubject, subject)
	}
	return append([]Item(nil), items...), nil
}

// Add appends a named item. Names are unique per list, case-insensitively.
func (r *Repository) Add(ctx context.Context, subject, name string) (Item, error) {
	if err := ctx.Err(); err != nil {
		return Item{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Item{}, ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	items, ok := r.lists[subject]
	if !ok {
		return Item{}, fmt.Errorf("%w: %s", ErrUnknownSubject, subject)
	}
	for _, it := range items {
		if strings.EqualFold(it.Name, name) {
			return Item{}, fmt.Errorf("%s %q: %w", subject, name, ErrDuplicate)
		}
	}
	it := Item{ID: len(items) + 1, Name: name}
	r.lists[subject] = append(items, it)
	return it, nil
}

// Menus returns every menu ordered by ID.
func (r *Repository) Menus(ctx context.Context) ([]Menu, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.queries.Add(1)

	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Menu(nil), r.menus...), nil
}

// AddMenu creates a menu.
func (r *Repository) AddMenu(ctx context.Context, name string, parentID int) (Menu, error) {
	if err := ctx.Err(); err != nil {
		return Menu{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Menu{}, ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	m := Menu{ID: len(r.menus) + 1, Name: name, ParentID: parentID}
	r.menus = append(r.menus, m)
	return m, nil
}

// Permissions returns a role's permissions ordered by menu. A role with no
// permissions gets an empty, non-nil slice.
func (r *Repository) Permissions(ctx context.Context, roleID string) ([]Permission, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.queries.Add(1)

	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.permissionsLocked(roleID), nil
}

// SetPermission creates or replaces the permission of roleID on p.MenuID.
func (r *Repository) SetPermission(ctx context.Context, roleID string, p Permission) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	byMenu, ok := r.perms[roleID]
	if !ok {
		byMenu = make(map[int]Permission)
		r.perms[roleID] = byMenu
	}
	byMenu[p.MenuID] = p
	return nil
}

// Sidebar returns the menus a role may read.
func (r *Repository) Sidebar(ctx context.Context, roleID string) ([]Menu, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.queries.Add(1)

	r.mu.RLock()
	defer r.mu.RUnlock()
	readable := make(map[int]bool)
	for _, p := range r.permissionsLocked(roleID) {
		if p.Read {
			readable[p.MenuID] = true
		}
	}
	out := []Menu{}
	for _, m := range r.menus {
		if readable[m.ID] {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *Repository) permissionsLocked(roleID string) []Permission {
	out := make([]Permission, 0, len(r.perms[roleID]))
	for _, p := range r.perms[roleID] {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MenuID < out[j].MenuID })
	return out
}
