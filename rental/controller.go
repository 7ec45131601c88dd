package rental

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrForbiddenAction marks a mutation attempted with its permission
	// flag off. The flags only mirror what the UI should offer; the server
	// enforces authorization for real.
	ErrForbiddenAction = errors.New("action not permitted for this screen")

	// ErrBusy marks a second submission while a request is in flight.
	ErrBusy = errors.New("a request is already in flight")

	// ErrUnsupported marks an operation the entity's endpoint does not
	// offer (e.g. updating a return).
	ErrUnsupported = errors.New("operation not supported for this resource")
)

// State is the list screen lifecycle. A failed load behaves like Loaded with
// an empty list; the screen stays usable either way.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateLoaded
)

// Permissions are advisory UI toggles, not a security boundary.
type Permissions struct {
	CanCreate bool
	CanEdit   bool
	CanDelete bool
}

// DefaultPermissions matches the observed screens: everything on, server
// authoritative.
func DefaultPermissions() Permissions {
	return Permissions{CanCreate: true, CanEdit: true, CanDelete: true}
}

// ResourceOps binds a controller to one entity's endpoint operations. A nil
// operation means the endpoint does not offer it.
type ResourceOps[T any, D Draft] struct {
	List   func(context.Context) ([]T, error)
	Create func(context.Context, D) (T, error)
	Update func(context.Context, int64, D) (T, error)
	Delete func(context.Context, int64) error
}

// ListController owns one screen's list, filter, page and mutation state.
// It is instantiated per entity with the entity's id and searchable-field
// accessors; the state machine itself is shared by every screen.
type ListController[T any, D Draft] struct {
	ops      ResourceOps[T, D]
	idOf     func(T) int64
	fieldsOf func(T) []string
	perms    Permissions
	pageSize int

	items   []T
	search  string
	page    int
	state   State
	lastErr error
}

const defaultPageSize = 10

// NewListController wires a controller. idOf extracts the record id;
// fieldsOf lists the strings the client-side filter searches.
func NewListController[T any, D Draft](ops ResourceOps[T, D], idOf func(T) int64, fieldsOf func(T) []string, perms Permissions) *ListController[T, D] {
	return &ListController[T, D]{
		ops:      ops,
		idOf:     idOf,
		fieldsOf: fieldsOf,
		perms:    perms,
		pageSize: defaultPageSize,
		page:     1,
	}
}

// Permissions returns the screen's advisory flags.
func (c *ListController[T, D]) Permissions() Permissions { return c.perms }

// State returns the lifecycle state.
func (c *ListController[T, D]) State() State { return c.state }

// Loading reports whether a request is in flight.
func (c *ListController[T, D]) Loading() bool { return c.state == StateLoading }

// Err returns the last reported error, cleared by the next successful
// operation.
func (c *ListController[T, D]) Err() error { return c.lastErr }

// Items returns the unfiltered backing list.
func (c *ListController[T, D]) Items() []T { return c.items }

// Load fetches the collection. On failure the list degrades to empty and the
// error is kept for display; the screen is never stuck.
func (c *ListController[T, D]) Load(ctx context.Context) error {
	c.state = StateLoading
	rows, err := c.ops.List(ctx)
	c.page = 1
	c.state = StateLoaded
	if err != nil {
		c.items = nil
		c.lastErr = err
		return err
	}
	c.items = rows
	c.lastErr = nil
	return nil
}

// SetSearch updates the filter text. The underlying list is untouched; the
// page is re-clamped against the new filtered count.
func (c *ListController[T, D]) SetSearch(q string) {
	c.search = q
	c.page = clamp(c.page, 1, c.TotalPages())
}

// Search returns the current filter text.
func (c *ListController[T, D]) Search() string { return c.search }

// Filtered returns the records matching the search text: empty text matches
// everything, otherwise a record matches when any searchable field contains
// the text case-insensitively.
func (c *ListController[T, D]) Filtered() []T {
	q := strings.ToLower(strings.TrimSpace(c.search))
	if q == "" {
		return c.items
	}
	var out []T
	for _, it := range c.items {
		for _, f := range c.fieldsOf(it) {
			if strings.Contains(strings.ToLower(f), q) {
				out = append(out, it)
				break
			}
		}
	}
	return out
}

func (c *ListController[T, D]) filteredCount() int { return len(c.Filtered()) }

// TotalPages is at least 1, even for an empty filtered list.
func (c *ListController[T, D]) TotalPages() int {
	return totalPages(c.filteredCount(), c.pageSize)
}

// CurrentPage returns the 1-based page index.
func (c *ListController[T, D]) CurrentPage() int { return c.page }

// SetPage clamps p into [1, TotalPages].
func (c *ListController[T, D]) SetPage(p int) {
	c.page = clamp(p, 1, c.TotalPages())
}

// PageItems returns the filtered records on the current page.
func (c *ListController[T, D]) PageItems() []T {
	rows := c.Filtered()
	start := (c.page - 1) * c.pageSize
	if start >= len(rows) {
		return nil
	}
	end := start + c.pageSize
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}

// Create validates the draft locally (no request on failure), sends it, and
// prepends the canonical record, resetting to page 1.
func (c *ListController[T, D]) Create(ctx context.Context, draft D) (T, error) {
	var zero T
	if c.ops.Create == nil {
		return zero, ErrUnsupported
	}
	if !c.perms.CanCreate {
		return zero, ErrForbiddenAction
	}
	if c.state == StateLoading {
		return zero, ErrBusy
	}
	if err := draft.Validate(); err != nil {
		return zero, err
	}

	c.state = StateLoading
	created, err := c.ops.Create(ctx, draft)
	c.state = StateLoaded
	if err != nil {
		c.lastErr = err
		return zero, err
	}
	c.items = append([]T{created}, c.items...)
	c.page = 1
	c.lastErr = nil
	return created, nil
}

// Update validates, sends the full replacement, and swaps the record in
// place by id. If the record vanished from the list meanwhile the request is
// still sent and the local splice is a no-op.
func (c *ListController[T, D]) Update(ctx context.Context, id int64, draft D) (T, error) {
	var zero T
	if c.ops.Update == nil {
		return zero, ErrUnsupported
	}
	if !c.perms.CanEdit {
		return zero, ErrForbiddenAction
	}
	if c.state == StateLoading {
		return zero, ErrBusy
	}
	if err := draft.Validate(); err != nil {
		return zero, err
	}

	c.state = StateLoading
	updated, err := c.ops.Update(ctx, id, draft)
	c.state = StateLoaded
	if err != nil {
		c.lastErr = err
		return zero, err
	}
	for i := range c.items {
		if c.idOf(c.items[i]) == id {
			c.items[i] = updated
			break
		}
	}
	c.lastErr = nil
	return updated, nil
}

// Delete sends the delete and removes the record locally only after the
// server confirms. The caller must have obtained explicit confirmation
// first. If the current page became empty and is not the first, the page
// index steps back by one.
func (c *ListController[T, D]) Delete(ctx context.Context, id int64) error {
	if c.ops.Delete == nil {
		return ErrUnsupported
	}
	if !c.perms.CanDelete {
		return ErrForbiddenAction
	}
	if c.state == StateLoading {
		return ErrBusy
	}

	c.state = StateLoading
	err := c.ops.Delete(ctx, id)
	c.state = StateLoaded
	if err != nil {
		c.lastErr = err
		return err
	}
	kept := c.items[:0]
	for _, it := range c.items {
		if c.idOf(it) != id {
			kept = append(kept, it)
		}
	}
	c.items = kept

	start := (c.page - 1) * c.pageSize
	if start >= c.filteredCount() && c.page > 1 {
		c.page--
	}
	c.lastErr = nil
	return nil
}

func totalPages(count, pageSize int) int {
	n := (count + pageSize - 1) / pageSize
	if n < 1 {
		return 1
	}
	return n
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
