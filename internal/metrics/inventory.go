package metrics

import (
	"context"
	"time"

	"github.com/mesh-intelligence/binlid/pkg/types"
)

// Inventory decorates a types.Inventory, counting every data operation by
// its result kind. Attach and Detach pass through unobserved.
type Inventory struct {
	types.Inventory
	m *Metrics
}

// Instrument wraps inv so its operations are recorded in m.
func Instrument(inv types.Inventory, m *Metrics) *Inventory {
	return &Inventory{Inventory: inv, m: m}
}

func (i *Inventory) observe(op string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = types.KindOf(err)
	}
	i.m.ObserveOperation(op, result, time.Since(start))
}

func (i *Inventory) Ping(ctx context.Context) (err error) {
	defer func(start time.Time) { i.observe("ping", start, err) }(time.Now())
	return i.Inventory.Ping(ctx)
}

func (i *Inventory) CreateSpace(ctx context.Context, name, description string) (res types.SpaceResult, err error) {
	defer func(start time.Time) { i.observe("create_space", start, err) }(time.Now())
	return i.Inventory.CreateSpace(ctx, name, description)
}

func (i *Inventory) GetSpace(ctx context.Context, ref types.SpaceRef) (s types.Space, err error) {
	defer func(start time.Time) { i.observe("get_space", start, err) }(time.Now())
	return i.Inventory.GetSpace(ctx, ref)
}

func (i *Inventory) ListSpaces(ctx context.Context) (s []types.Space, err error) {
	defer func(start time.Time) { i.observe("list_spaces", start, err) }(time.Now())
	return i.Inventory.ListSpaces(ctx)
}

func (i *Inventory) CreateItem(ctx context.Context, item types.NewItem) (v types.ItemView, err error) {
	defer func(start time.Time) { i.observe("create_item", start, err) }(time.Now())
	return i.Inventory.CreateItem(ctx, item)
}

func (i *Inventory) GetItem(ctx context.Context, id int64) (v types.ItemView, err error) {
	defer func(start time.Time) { i.observe("get_item", start, err) }(time.Now())
	return i.Inventory.GetItem(ctx, id)
}

func (i *Inventory) MoveItem(ctx context.Context, req types.MoveRequest) (mv types.Move, err error) {
	defer func(start time.Time) { i.observe("move_item", start, err) }(time.Now())
	return i.Inventory.MoveItem(ctx, req)
}

func (i *Inventory) ListItems(ctx context.Context, filter types.ItemFilter) (v []types.ItemView, err error) {
	defer func(start time.Time) { i.observe("list_items", start, err) }(time.Now())
	return i.Inventory.ListItems(ctx, filter)
}

func (i *Inventory) SearchItems(ctx context.Context, opts types.SearchOptions) (v []types.ItemView, err error) {
	defer func(start time.Time) { i.observe("search_items", start, err) }(time.Now())
	return i.Inventory.SearchItems(ctx, opts)
}

func (i *Inventory) ListMoves(ctx context.Context, itemID int64) (mv []types.Move, err error) {
	defer func(start time.Time) { i.observe("list_moves", start, err) }(time.Now())
	return i.Inventory.ListMoves(ctx, itemID)
}

func (i *Inventory) Export(ctx context.Context, dir string) (err error) {
	defer func(start time.Time) { i.observe("export", start, err) }(time.Now())
	return i.Inventory.Export(ctx, dir)
}

func (i *Inventory) Import(ctx context.Context, dir string) (res types.ImportResult, err error) {
	defer func(start time.Time) { i.observe("import", start, err) }(time.Now())
	return i.Inventory.Import(ctx, dir)
}
