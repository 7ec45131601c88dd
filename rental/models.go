package rental

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Role values as the backend reports them. Anything else is passed through
// untouched; the server is the authority on what a role may do.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleSeller   Role = "VENDEDOR"
	RoleOwner    Role = "PROPIETARIO"
	RoleCustomer Role = "CLIENTE"
)

// Session is the authenticated identity returned by /auth/login and kept in
// durable storage between runs. A session missing token, name or role is
// treated as absent.
type Session struct {
	Token string `json:"token"`
	Name  string `json:"nombre"`
	Role  Role   `json:"rol"`
	Email string `json:"email,omitempty"`
}

// Ref is a server-side association carried by id, optionally with a resolved
// display name when the backend embeds one.
type Ref struct {
	ID   int64  `json:"id"`
	Name string `json:"nombre,omitempty"`
}

// OwnerRef is the embedded equipment owner.
type OwnerRef struct {
	ID    int64  `json:"id"`
	Name  string `json:"nombre,omitempty"`
	Email string `json:"email,omitempty"`
}

// Category is an equipment category record.
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"nombre"`
	Description string `json:"descripcion,omitempty"`
}

// Equipment is an inventory record. Category and owner are resolved by the
// server; the client never enforces the references, it only displays them.
type Equipment struct {
	ID          int64     `json:"id"`
	Name        string    `json:"nombre"`
	Description string    `json:"descripcion,omitempty"`
	Price       float64   `json:"precio"`
	Stock       int       `json:"stock"`
	Category    *Ref      `json:"categoria,omitempty"`
	ImageURL    string    `json:"imagenUrl,omitempty"`
	Owner       *OwnerRef `json:"propietario,omitempty"`
}

// CategoryLabel is the display name of the equipment's category, or a dash.
func (e Equipment) CategoryLabel() string {
	if e.Category == nil || e.Category.Name == "" {
		return "-"
	}
	return e.Category.Name
}

// User is a staff or customer account.
type User struct {
	ID     int64  `json:"id"`
	Name   string `json:"nombre"`
	Email  string `json:"email"`
	Role   Role   `json:"rol"`
	Active bool   `json:"activo"`
}

// RentalDetail is one line item of a rental.
type RentalDetail struct {
	ID        int64   `json:"id"`
	Rental    Ref     `json:"alquiler"`
	Equipment Ref     `json:"equipo"`
	Quantity  int     `json:"cantidad"`
	Price     float64 `json:"precio"`
}

// Return records equipment coming back from a rental. Date is the backend's
// LocalDate, i.e. "YYYY-MM-DD".
type Return struct {
	ID     int64  `json:"id"`
	Rental *Ref   `json:"alquiler"`
	Date   string `json:"fecha"`
	Note   string `json:"observacion,omitempty"`
}

// RentalLabel is the rental reference shown in tables.
func (r Return) RentalLabel() string {
	if r.Rental == nil {
		return "-"
	}
	return fmt.Sprintf("#%d", r.Rental.ID)
}

// ---------------------------------------------------------------------------
// Drafts (create/update payloads)
// ---------------------------------------------------------------------------

// ValidationError lists per-field problems found before any request is sent.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, f := range names {
		parts = append(parts, f+": "+e.Fields[f])
	}
	return "invalid draft: " + strings.Join(parts, "; ")
}

func validationError(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// Draft is any payload that can be validated locally before submission.
type Draft interface {
	Validate() error
}

// CategoryDraft creates or fully replaces a category.
type CategoryDraft struct {
	Name        string `json:"nombre"`
	Description string `json:"descripcion"`
}

func (d CategoryDraft) Validate() error {
	problems := map[string]string{}
	if strings.TrimSpace(d.Name) == "" {
		problems["nombre"] = "required"
	} else if len(d.Name) > 120 {
		problems["nombre"] = "at most 120 characters"
	}
	if len(d.Description) > 500 {
		problems["descripcion"] = "at most 500 characters"
	}
	return validationError(problems)
}

// EquipmentDraft creates or fully replaces an equipment record. The category
// travels as a bare numeric id; the server resolves it.
type EquipmentDraft struct {
	Name        string  `json:"nombre"`
	Description string  `json:"descripcion,omitempty"`
	Price       float64 `json:"precio"`
	Stock       int     `json:"stock"`
	CategoryID  *int64  `json:"categoriaId,omitempty"`
	ImageURL    string  `json:"imagenUrl,omitempty"`
}

func (d EquipmentDraft) Validate() error {
	problems := map[string]string{}
	if strings.TrimSpace(d.Name) == "" {
		problems["nombre"] = "required"
	} else if len(d.Name) > 150 {
		problems["nombre"] = "at most 150 characters"
	}
	if len(d.Description) > 1000 {
		problems["descripcion"] = "at most 1000 characters"
	}
	if d.Price < 0 {
		problems["precio"] = "must be >= 0"
	}
	if d.Stock < 0 {
		problems["stock"] = "must be >= 0"
	}
	return validationError(problems)
}

// UserDraft creates or fully replaces a user account.
type UserDraft struct {
	Name   string `json:"nombre"`
	Email  string `json:"email"`
	Role   Role   `json:"rol"`
	Active bool   `json:"activo"`
}

func (d UserDraft) Validate() error {
	problems := map[string]string{}
	if strings.TrimSpace(d.Name) == "" {
		problems["nombre"] = "required"
	} else if len(d.Name) > 120 {
		problems["nombre"] = "at most 120 characters"
	}
	if strings.TrimSpace(d.Email) == "" {
		problems["email"] = "required"
	} else if !strings.Contains(d.Email, "@") {
		problems["email"] = "must be an email address"
	}
	if strings.TrimSpace(string(d.Role)) == "" {
		problems["rol"] = "required"
	}
	return validationError(problems)
}

// RentalDetailDraft creates or fully replaces a rental line item. The backend
// expects nested id objects for both references.
type RentalDetailDraft struct {
	Rental    IDRef   `json:"alquiler"`
	Equipment IDRef   `json:"equipo"`
	Quantity  int     `json:"cantidad"`
	Price     float64 `json:"precio"`
}

// IDRef is the request-side shape of an association: just the id.
type IDRef struct {
	ID int64 `json:"id"`
}

func (d RentalDetailDraft) Validate() error {
	problems := map[string]string{}
	if d.Rental.ID < 1 {
		problems["alquiler"] = "rental id must be >= 1"
	}
	if d.Equipment.ID < 1 {
		problems["equipo"] = "equipment id must be >= 1"
	}
	if d.Quantity < 1 {
		problems["cantidad"] = "must be >= 1"
	}
	if d.Price < 0 {
		problems["precio"] = "must be >= 0"
	}
	return validationError(problems)
}

// ReturnDraft creates a return. Returns cannot be updated.
type ReturnDraft struct {
	Rental IDRef  `json:"alquiler"`
	Date   string `json:"fecha"`
	Note   string `json:"observacion,omitempty"`
}

func (d ReturnDraft) Validate() error {
	problems := map[string]string{}
	if d.Rental.ID < 1 {
		problems["alquiler"] = "rental id must be >= 1"
	}
	if strings.TrimSpace(d.Date) == "" {
		problems["fecha"] = "required"
	} else if _, err := time.Parse("2006-01-02", d.Date); err != nil {
		problems["fecha"] = "must be YYYY-MM-DD"
	}
	if len(d.Note) > 1000 {
		problems["observacion"] = "at most 1000 characters"
	}
	return validationError(problems)
}

// Customer is the read-only directory entry shown on the clientes screen.
// There is no backing endpoint for it yet.
type Customer struct {
	ID       int64  `json:"id"`
	Name     string `json:"nombre"`
	Position string `json:"cargo"`
	Email    string `json:"email"`
	Role     Role   `json:"rol"`
	Company  string `json:"empresa,omitempty"`
}
