package rental

import (
	"context"
	"fmt"
	"net/http"
)

// Typed clients over the generic resource, one per collection. Endpoint
// paths are fixed by the backend.

// CategoriesClient covers /categorias.
type CategoriesClient struct {
	res resource[Category]
}

func (c *Client) Categories() *CategoriesClient {
	return &CategoriesClient{res: resource[Category]{c: c, path: "/categorias"}}
}

func (cc *CategoriesClient) List(ctx context.Context) ([]Category, error) { return cc.res.List(ctx) }
func (cc *CategoriesClient) Get(ctx context.Context, id int64) (Category, error) {
	return cc.res.Get(ctx, id)
}
func (cc *CategoriesClient) Create(ctx context.Context, d CategoryDraft) (Category, error) {
	return cc.res.Create(ctx, d)
}
func (cc *CategoriesClient) Update(ctx context.Context, id int64, d CategoryDraft) (Category, error) {
	return cc.res.Update(ctx, id, d)
}
func (cc *CategoriesClient) Delete(ctx context.Context, id int64) error {
	return cc.res.Delete(ctx, id)
}

// EquipmentClient covers /equipos plus its two extra collections.
type EquipmentClient struct {
	res resource[Equipment]
}

func (c *Client) Equipment() *EquipmentClient {
	return &EquipmentClient{res: resource[Equipment]{c: c, path: "/equipos"}}
}

func (ec *EquipmentClient) List(ctx context.Context) ([]Equipment, error) { return ec.res.List(ctx) }
func (ec *EquipmentClient) Get(ctx context.Context, id int64) (Equipment, error) {
	return ec.res.Get(ctx, id)
}
func (ec *EquipmentClient) Create(ctx context.Context, d EquipmentDraft) (Equipment, error) {
	return ec.res.Create(ctx, d)
}
func (ec *EquipmentClient) Update(ctx context.Context, id int64, d EquipmentDraft) (Equipment, error) {
	return ec.res.Update(ctx, id, d)
}
func (ec *EquipmentClient) Delete(ctx context.Context, id int64) error {
	return ec.res.Delete(ctx, id)
}

// Mine lists the equipment owned by the authenticated user (PROPIETARIO).
func (ec *EquipmentClient) Mine(ctx context.Context) ([]Equipment, error) {
	return ec.res.listAt(ctx, "/mis-equipos")
}

// Catalog lists the public rental catalog (any role).
func (ec *EquipmentClient) Catalog(ctx context.Context) ([]Equipment, error) {
	return ec.res.listAt(ctx, "/catalogo")
}

// UsersClient covers /usuarios.
type UsersClient struct {
	res resource[User]
}

func (c *Client) Users() *UsersClient {
	return &UsersClient{res: resource[User]{c: c, path: "/usuarios"}}
}

func (uc *UsersClient) List(ctx context.Context) ([]User, error)        { return uc.res.List(ctx) }
func (uc *UsersClient) Get(ctx context.Context, id int64) (User, error) { return uc.res.Get(ctx, id) }
func (uc *UsersClient) Create(ctx context.Context, d UserDraft) (User, error) {
	return uc.res.Create(ctx, d)
}
func (uc *UsersClient) Update(ctx context.Context, id int64, d UserDraft) (User, error) {
	return uc.res.Update(ctx, id, d)
}
func (uc *UsersClient) Delete(ctx context.Context, id int64) error {
	return uc.res.Delete(ctx, id)
}

// ToggleState flips the account's active flag server-side and returns the
// updated user.
func (uc *UsersClient) ToggleState(ctx context.Context, id int64) (User, error) {
	var out User
	err := uc.res.c.do(ctx, http.MethodPut, fmt.Sprintf("/usuarios/%d/estado", id), map[string]any{}, &out)
	return out, err
}

// RentalDetailsClient covers /detalles-alquiler.
type RentalDetailsClient struct {
	res resource[RentalDetail]
}

func (c *Client) RentalDetails() *RentalDetailsClient {
	return &RentalDetailsClient{res: resource[RentalDetail]{c: c, path: "/detalles-alquiler"}}
}

func (rc *RentalDetailsClient) List(ctx context.Context) ([]RentalDetail, error) {
	return rc.res.List(ctx)
}
func (rc *RentalDetailsClient) Get(ctx context.Context, id int64) (RentalDetail, error) {
	return rc.res.Get(ctx, id)
}
func (rc *RentalDetailsClient) Create(ctx context.Context, d RentalDetailDraft) (RentalDetail, error) {
	return rc.res.Create(ctx, d)
}
func (rc *RentalDetailsClient) Update(ctx context.Context, id int64, d RentalDetailDraft) (RentalDetail, error) {
	return rc.res.Update(ctx, id, d)
}
func (rc *RentalDetailsClient) Delete(ctx context.Context, id int64) error {
	return rc.res.Delete(ctx, id)
}

// ReturnsClient covers /devoluciones. The backend exposes no update for
// returns, so neither does this client.
type ReturnsClient struct {
	res resource[Return]
}

func (c *Client) Returns() *ReturnsClient {
	return &ReturnsClient{res: resource[Return]{c: c, path: "/devoluciones"}}
}

func (rc *ReturnsClient) List(ctx context.Context) ([]Return, error) { return rc.res.List(ctx) }
func (rc *ReturnsClient) Get(ctx context.Context, id int64) (Return, error) {
	return rc.res.Get(ctx, id)
}
func (rc *ReturnsClient) Create(ctx context.Context, d ReturnDraft) (Return, error) {
	return rc.res.Create(ctx, d)
}
func (rc *ReturnsClient) Delete(ctx context.Context, id int64) error {
	return rc.res.Delete(ctx, id)
}
