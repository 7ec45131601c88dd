package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"rental-admin/rental"
)

// ---------------------------------------------------------------------------
// Prompt helpers. Pressing Enter keeps the shown default.
// ---------------------------------------------------------------------------

func (c *console) promptLine(label, current string) (string, bool) {
	if current != "" {
		fmt.Printf("%s [%s]: ", label, current)
	} else {
		fmt.Printf("%s: ", label)
	}
	if !c.sc.Scan() {
		return "", false
	}
	v := strings.TrimSpace(c.sc.Text())
	if v == "" {
		return current, true
	}
	return v, true
}

func (c *console) promptFloat(label string, current float64) (float64, bool) {
	raw, ok := c.promptLine(label, strconv.FormatFloat(current, 'f', -1, 64))
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		fmt.Printf("Invalid number: %s\n", raw)
		return 0, false
	}
	return v, true
}

func (c *console) promptInt(label string, current int) (int, bool) {
	raw, ok := c.promptLine(label, strconv.Itoa(current))
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		fmt.Printf("Invalid number: %s\n", raw)
		return 0, false
	}
	return v, true
}

func (c *console) promptInt64(label string, current int64) (int64, bool) {
	raw, ok := c.promptLine(label, strconv.FormatInt(current, 10))
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		fmt.Printf("Invalid number: %s\n", raw)
		return 0, false
	}
	return v, true
}

func (c *console) promptBool(label string, current bool) (bool, bool) {
	cur := "n"
	if current {
		cur = "y"
	}
	raw, ok := c.promptLine(label+" (y/n)", cur)
	if !ok {
		return false, false
	}
	switch strings.ToLower(raw) {
	case "y", "yes", "true":
		return true, true
	case "n", "no", "false":
		return false, true
	default:
		fmt.Printf("Answer y or n, got: %s\n", raw)
		return false, false
	}
}

// promptOptionalID accepts an id, Enter to keep the default, or "-" for none.
func (c *console) promptOptionalID(label string, current *int64) (*int64, bool) {
	cur := "-"
	if current != nil {
		cur = strconv.FormatInt(*current, 10)
	}
	raw, ok := c.promptLine(label, cur)
	if !ok {
		return nil, false
	}
	if raw == "-" || raw == "" {
		return nil, true
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		fmt.Printf("Invalid id: %s\n", raw)
		return nil, false
	}
	return &v, true
}

// ---------------------------------------------------------------------------
// Categorias
// ---------------------------------------------------------------------------

func (c *console) categoriesScreen() {
	api := c.api.Categories()
	ctrl := rental.NewListController(
		rental.ResourceOps[rental.Category, rental.CategoryDraft]{
			List:   api.List,
			Create: api.Create,
			Update: api.Update,
			Delete: api.Delete,
		},
		func(cat rental.Category) int64 { return cat.ID },
		func(cat rental.Category) []string { return []string{cat.Name, cat.Description} },
		rental.DefaultPermissions(),
	)

	prompt := func(d rental.CategoryDraft) (rental.CategoryDraft, bool) {
		var ok bool
		if d.Name, ok = c.promptLine("Nombre", d.Name); !ok {
			return d, false
		}
		if d.Description, ok = c.promptLine("Descripcion", d.Description); !ok {
			return d, false
		}
		return d, true
	}

	runScreen(c, screen[rental.Category, rental.CategoryDraft]{
		name: "categorias",
		ctrl: ctrl,
		cols: []column[rental.Category]{
			{"ID", 5, func(x rental.Category) string { return strconv.FormatInt(x.ID, 10) }},
			{"Nombre", 30, func(x rental.Category) string { return x.Name }},
			{"Descripcion", 45, func(x rental.Category) string { return x.Description }},
		},
		idOf:  func(x rental.Category) int64 { return x.ID },
		label: func(x rental.Category) string { return fmt.Sprintf("category %q (ID %d)", x.Name, x.ID) },
		promptCreate: func() (rental.CategoryDraft, bool) {
			return prompt(rental.CategoryDraft{})
		},
		promptEdit: func(existing rental.Category) (rental.CategoryDraft, bool) {
			return prompt(rental.CategoryDraft{Name: existing.Name, Description: existing.Description})
		},
	})
}

// ---------------------------------------------------------------------------
// Equipos
// ---------------------------------------------------------------------------

func (c *console) equipmentScreen() {
	api := c.api.Equipment()
	ctrl := rental.NewListController(
		rental.ResourceOps[rental.Equipment, rental.EquipmentDraft]{
			List:   api.List,
			Create: api.Create,
			Update: api.Update,
			Delete: api.Delete,
		},
		func(e rental.Equipment) int64 { return e.ID },
		func(e rental.Equipment) []string {
			return []string{e.Name, e.CategoryLabel(), strconv.FormatInt(e.ID, 10)}
		},
		rental.DefaultPermissions(),
	)

	// Category choices shown during the form prompt. A failure here only
	// degrades the hints.
	categories, err := c.api.Categories().List(context.Background())
	if err != nil {
		fmt.Printf("Warning: could not load categories for the form: %v\n", err)
	}

	prompt := func(d rental.EquipmentDraft) (rental.EquipmentDraft, bool) {
		var ok bool
		if d.Name, ok = c.promptLine("Nombre", d.Name); !ok {
			return d, false
		}
		if d.Description, ok = c.promptLine("Descripcion", d.Description); !ok {
			return d, false
		}
		if d.Price, ok = c.promptFloat("Precio", d.Price); !ok {
			return d, false
		}
		if d.Stock, ok = c.promptInt("Stock", d.Stock); !ok {
			return d, false
		}
		if len(categories) > 0 {
			var opts []string
			for _, cat := range categories {
				opts = append(opts, fmt.Sprintf("%d=%s", cat.ID, cat.Name))
			}
			fmt.Printf("Categorias: %s\n", strings.Join(opts, ", "))
		}
		if d.CategoryID, ok = c.promptOptionalID("Categoria id ('-' for none)", d.CategoryID); !ok {
			return d, false
		}
		if d.ImageURL, ok = c.promptLine("Imagen URL", d.ImageURL); !ok {
			return d, false
		}
		return d, true
	}

	equipmentCols := []column[rental.Equipment]{
		{"ID", 5, func(x rental.Equipment) string { return strconv.FormatInt(x.ID, 10) }},
		{"Nombre", 28, func(x rental.Equipment) string { return x.Name }},
		{"Categoria", 18, func(x rental.Equipment) string { return x.CategoryLabel() }},
		{"Precio", 10, func(x rental.Equipment) string { return strconv.FormatFloat(x.Price, 'f', 2, 64) }},
		{"Stock", 6, func(x rental.Equipment) string { return strconv.Itoa(x.Stock) }},
	}

	renderExtra := func(what string, fetch func(context.Context) ([]rental.Equipment, error)) {
		rows, err := fetch(context.Background())
		if err != nil {
			fmt.Printf("Could not load %s: %v\n", what, err)
			return
		}
		printTable(equipmentCols, rows)
		fmt.Printf("%d record(s)\n", len(rows))
	}

	runScreen(c, screen[rental.Equipment, rental.EquipmentDraft]{
		name: "equipos",
		ctrl: ctrl,
		cols: equipmentCols,
		idOf: func(x rental.Equipment) int64 { return x.ID },
		label: func(x rental.Equipment) string {
			return fmt.Sprintf("equipment %q (ID %d)", x.Name, x.ID)
		},
		promptCreate: func() (rental.EquipmentDraft, bool) {
			return prompt(rental.EquipmentDraft{})
		},
		promptEdit: func(existing rental.Equipment) (rental.EquipmentDraft, bool) {
			d := rental.EquipmentDraft{
				Name:        existing.Name,
				Description: existing.Description,
				Price:       existing.Price,
				Stock:       existing.Stock,
				ImageURL:    existing.ImageURL,
			}
			if existing.Category != nil {
				id := existing.Category.ID
				d.CategoryID = &id
			}
			return prompt(d)
		},
		extras: map[string]func(args []string){
			"mios":     func([]string) { renderExtra("mis equipos", api.Mine) },
			"catalogo": func([]string) { renderExtra("catalogo", api.Catalog) },
		},
		extrasHelp: "mios, catalogo",
	})
}

// ---------------------------------------------------------------------------
// Usuarios
// ---------------------------------------------------------------------------

func (c *console) usersScreen() {
	api := c.api.Users()
	ctrl := rental.NewListController(
		rental.ResourceOps[rental.User, rental.UserDraft]{
			List:   api.List,
			Create: api.Create,
			Update: api.Update,
			Delete: api.Delete,
		},
		func(u rental.User) int64 { return u.ID },
		func(u rental.User) []string { return []string{u.Name, u.Email, string(u.Role)} },
		rental.DefaultPermissions(),
	)

	prompt := func(d rental.UserDraft) (rental.UserDraft, bool) {
		var ok bool
		if d.Name, ok = c.promptLine("Nombre", d.Name); !ok {
			return d, false
		}
		if d.Email, ok = c.promptLine("Email", d.Email); !ok {
			return d, false
		}
		role, ok := c.promptLine("Rol (ADMIN/VENDEDOR/PROPIETARIO/CLIENTE)", string(d.Role))
		if !ok {
			return d, false
		}
		d.Role = rental.Role(strings.ToUpper(role))
		if d.Active, ok = c.promptBool("Activo", d.Active); !ok {
			return d, false
		}
		return d, true
	}

	toggleState := func(args []string) {
		id, ok := parseID(args, "estado")
		if !ok {
			return
		}
		updated, err := api.ToggleState(context.Background(), id)
		if err != nil {
			fmt.Printf("Could not change the user's state: %v\n", err)
			return
		}
		// Patch the backing list in place; no reload needed.
		items := ctrl.Items()
		for i := range items {
			if items[i].ID == updated.ID {
				items[i] = updated
			}
		}
		state := "inactive"
		if updated.Active {
			state = "active"
		}
		fmt.Printf("User %q (ID %d) is now %s.\n", updated.Name, updated.ID, state)
	}

	runScreen(c, screen[rental.User, rental.UserDraft]{
		name: "usuarios",
		ctrl: ctrl,
		cols: []column[rental.User]{
			{"ID", 5, func(x rental.User) string { return strconv.FormatInt(x.ID, 10) }},
			{"Nombre", 25, func(x rental.User) string { return x.Name }},
			{"Email", 30, func(x rental.User) string { return x.Email }},
			{"Rol", 12, func(x rental.User) string { return string(x.Role) }},
			{"Activo", 6, func(x rental.User) string {
				if x.Active {
					return "Si"
				}
				return "No"
			}},
		},
		idOf:  func(x rental.User) int64 { return x.ID },
		label: func(x rental.User) string { return fmt.Sprintf("user %q (ID %d)", x.Name, x.ID) },
		promptCreate: func() (rental.UserDraft, bool) {
			return prompt(rental.UserDraft{Active: true})
		},
		promptEdit: func(existing rental.User) (rental.UserDraft, bool) {
			return prompt(rental.UserDraft{
				Name:   existing.Name,
				Email:  existing.Email,
				Role:   existing.Role,
				Active: existing.Active,
			})
		},
		extras:     map[string]func(args []string){"estado": toggleState},
		extrasHelp: "estado <id>",
	})
}

// ---------------------------------------------------------------------------
// Detalles de alquiler
// ---------------------------------------------------------------------------

func (c *console) rentalDetailsScreen() {
	api := c.api.RentalDetails()
	ctrl := rental.NewListController(
		rental.ResourceOps[rental.RentalDetail, rental.RentalDetailDraft]{
			List:   api.List,
			Create: api.Create,
			Update: api.Update,
			Delete: api.Delete,
		},
		func(d rental.RentalDetail) int64 { return d.ID },
		func(d rental.RentalDetail) []string {
			return []string{
				strconv.FormatInt(d.ID, 10),
				strconv.FormatInt(d.Rental.ID, 10),
				d.Equipment.Name,
			}
		},
		rental.DefaultPermissions(),
	)

	prompt := func(d rental.RentalDetailDraft) (rental.RentalDetailDraft, bool) {
		var ok bool
		if d.Rental.ID, ok = c.promptInt64("Alquiler id", d.Rental.ID); !ok {
			return d, false
		}
		if d.Equipment.ID, ok = c.promptInt64("Equipo id", d.Equipment.ID); !ok {
			return d, false
		}
		if d.Quantity, ok = c.promptInt("Cantidad", d.Quantity); !ok {
			return d, false
		}
		if d.Price, ok = c.promptFloat("Precio", d.Price); !ok {
			return d, false
		}
		return d, true
	}

	runScreen(c, screen[rental.RentalDetail, rental.RentalDetailDraft]{
		name: "alquileres",
		ctrl: ctrl,
		cols: []column[rental.RentalDetail]{
			{"ID", 5, func(x rental.RentalDetail) string { return strconv.FormatInt(x.ID, 10) }},
			{"Alquiler", 9, func(x rental.RentalDetail) string { return fmt.Sprintf("#%d", x.Rental.ID) }},
			{"Equipo", 28, func(x rental.RentalDetail) string {
				if x.Equipment.Name != "" {
					return x.Equipment.Name
				}
				return fmt.Sprintf("#%d", x.Equipment.ID)
			}},
			{"Cantidad", 8, func(x rental.RentalDetail) string { return strconv.Itoa(x.Quantity) }},
			{"Precio", 10, func(x rental.RentalDetail) string { return strconv.FormatFloat(x.Price, 'f', 2, 64) }},
		},
		idOf:  func(x rental.RentalDetail) int64 { return x.ID },
		label: func(x rental.RentalDetail) string { return fmt.Sprintf("rental line #%d", x.ID) },
		promptCreate: func() (rental.RentalDetailDraft, bool) {
			return prompt(rental.RentalDetailDraft{Quantity: 1})
		},
		promptEdit: func(existing rental.RentalDetail) (rental.RentalDetailDraft, bool) {
			return prompt(rental.RentalDetailDraft{
				Rental:    rental.IDRef{ID: existing.Rental.ID},
				Equipment: rental.IDRef{ID: existing.Equipment.ID},
				Quantity:  existing.Quantity,
				Price:     existing.Price,
			})
		},
	})
}

// ---------------------------------------------------------------------------
// Devoluciones
// ---------------------------------------------------------------------------

func (c *console) returnsScreen() {
	api := c.api.Returns()
	ctrl := rental.NewListController(
		rental.ResourceOps[rental.Return, rental.ReturnDraft]{
			List:   api.List,
			Create: api.Create,
			// Returns have no update endpoint.
			Delete: api.Delete,
		},
		func(r rental.Return) int64 { return r.ID },
		func(r rental.Return) []string {
			fields := []string{strconv.FormatInt(r.ID, 10), r.Note, r.Date}
			if r.Rental != nil {
				fields = append(fields, strconv.FormatInt(r.Rental.ID, 10))
			}
			return fields
		},
		rental.DefaultPermissions(),
	)

	prompt := func(d rental.ReturnDraft) (rental.ReturnDraft, bool) {
		var ok bool
		if d.Rental.ID, ok = c.promptInt64("Alquiler id", d.Rental.ID); !ok {
			return d, false
		}
		if d.Date, ok = c.promptLine("Fecha (YYYY-MM-DD)", d.Date); !ok {
			return d, false
		}
		if d.Note, ok = c.promptLine("Observacion", d.Note); !ok {
			return d, false
		}
		return d, true
	}

	runScreen(c, screen[rental.Return, rental.ReturnDraft]{
		name: "devoluciones",
		ctrl: ctrl,
		cols: []column[rental.Return]{
			{"ID", 5, func(x rental.Return) string { return strconv.FormatInt(x.ID, 10) }},
			{"Alquiler", 9, func(x rental.Return) string { return x.RentalLabel() }},
			{"Fecha", 12, func(x rental.Return) string { return x.Date }},
			{"Observacion", 40, func(x rental.Return) string { return x.Note }},
		},
		idOf:  func(x rental.Return) int64 { return x.ID },
		label: func(x rental.Return) string { return fmt.Sprintf("return #%d", x.ID) },
		promptCreate: func() (rental.ReturnDraft, bool) {
			return prompt(rental.ReturnDraft{})
		},
		// No promptEdit: the endpoint offers no update.
	})
}

// ---------------------------------------------------------------------------
// Clientes (static directory; no backing endpoint yet)
// ---------------------------------------------------------------------------

var sampleCustomers = []rental.Customer{
	{ID: 1, Name: "Lindsay Walton", Position: "Front-end Developer", Email: "lindsay.walton@example.com", Role: rental.RoleCustomer, Company: "Tech Solutions"},
	{ID: 2, Name: "Courtney Henry", Position: "Designer", Email: "courtney.henry@example.com", Role: rental.RoleAdmin, Company: "Creative Studio"},
	{ID: 3, Name: "Tom Cook", Position: "Director of Product", Email: "tom.cook@example.com", Role: rental.RoleCustomer, Company: "Global Corp"},
}

func (c *console) customersScreen() {
	printTable([]column[rental.Customer]{
		{"ID", 5, func(x rental.Customer) string { return strconv.FormatInt(x.ID, 10) }},
		{"Nombre", 22, func(x rental.Customer) string { return x.Name }},
		{"Cargo", 22, func(x rental.Customer) string { return x.Position }},
		{"Email", 30, func(x rental.Customer) string { return x.Email }},
		{"Rol", 10, func(x rental.Customer) string { return string(x.Role) }},
		{"Empresa", 18, func(x rental.Customer) string { return x.Company }},
	}, sampleCustomers)
	fmt.Println("(directory preview; customer management is not wired to the API yet)")
}
