package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"rental-admin/rental"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	serverFlag  string
	dataDirFlag string
)

func main() {
	root := &cobra.Command{
		Use:           "rental-admin",
		Short:         "Terminal console for the equipment-rental back office",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsole()
		},
	}
	root.Flags().StringVar(&serverFlag, "server", "", "override API base URL")
	root.Flags().StringVar(&dataDirFlag, "data-dir", "", "override local data directory")

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// console bundles what every screen needs.
type console struct {
	store *rental.SessionStore
	api   *rental.Client
	sc    *bufio.Scanner

	// identity line kept current through the session subscription
	signedInAs string
}

func runConsole() error {
	cfg, err := rental.LoadConfig()
	if err != nil {
		return err
	}
	if serverFlag != "" {
		cfg.BaseURL = strings.TrimRight(serverFlag, "/")
	}
	if dataDirFlag != "" {
		cfg.DataDir = dataDirFlag
	}

	store, err := rental.OpenSessionStore(cfg.DataDir, cfg.BaseURL, cfg.HTTPTimeout)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer store.Close()
	store.Restore()

	c := &console{
		store: store,
		api:   rental.NewClient(cfg.BaseURL, store, cfg.HTTPTimeout),
		sc:    bufio.NewScanner(os.Stdin),
	}
	unsubscribe := store.Subscribe(func(s *rental.Session) {
		if s == nil {
			c.signedInAs = ""
		} else {
			c.signedInAs = fmt.Sprintf("%s (%s)", s.Name, s.Role)
		}
	})
	defer unsubscribe()

	fmt.Println("Welcome to the rental administration console!")
	fmt.Printf("Server: %s\n", cfg.BaseURL)
	fmt.Println("Available commands:")
	fmt.Println("  Session: login, logout, whoami")
	fmt.Println("  Screens: categorias, equipos, usuarios, alquileres, devoluciones, clientes")
	fmt.Println("  System: help, exit")

	for {
		if c.signedInAs != "" {
			fmt.Printf("\n[%s] > ", c.signedInAs)
		} else {
			fmt.Print("\n> ")
		}
		if !c.sc.Scan() {
			break
		}
		cmd := strings.TrimSpace(c.sc.Text())

		switch cmd {
		case "login":
			c.handleLogin()
		case "logout":
			c.handleLogout()
		case "whoami":
			c.handleWhoami()
		case "categorias":
			c.protected(c.categoriesScreen)
		case "equipos":
			c.protected(c.equipmentScreen)
		case "usuarios":
			c.protected(c.usersScreen)
		case "alquileres":
			c.protected(c.rentalDetailsScreen)
		case "devoluciones":
			c.protected(c.returnsScreen)
		case "clientes":
			c.protected(c.customersScreen)
		case "help":
			fmt.Println("Commands: login, logout, whoami, categorias, equipos, usuarios, alquileres, devoluciones, clientes, exit")
		case "exit":
			fmt.Println("Goodbye!")
			return nil
		case "":
			// empty line, just reprompt
		default:
			fmt.Println("Unknown command. Type 'help' for the list.")
		}
	}
	return nil
}

// protected is the route guard: screens open only with a live session or a
// persisted credential; otherwise the user lands back at the login prompt.
func (c *console) protected(screen func()) {
	if !rental.CanEnterProtected(c.store) {
		fmt.Println("You are not logged in. Use 'login' first.")
		return
	}
	screen()
}

// ---------------------------------------------------------------------------
// Session commands
// ---------------------------------------------------------------------------

func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Println()
	return strings.TrimSpace(string(bytePassword)), nil
}

func (c *console) handleLogin() {
	fmt.Print("Email: ")
	if !c.sc.Scan() {
		return
	}
	email := strings.TrimSpace(c.sc.Text())

	password, err := readPassword("Password: ")
	if err != nil {
		fmt.Printf("Error reading password: %v\n", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	sess, err := c.store.Login(ctx, email, password)
	if err != nil {
		// Bad credentials and an unreachable server read the same here.
		fmt.Println("Login failed: invalid credentials or the server is not responding.")
		return
	}
	fmt.Printf("Welcome, %s! Role: %s\n", sess.Name, sess.Role)
}

func (c *console) handleLogout() {
	if err := c.store.Clear(); err != nil {
		fmt.Printf("Error logging out: %v\n", err)
		return
	}
	fmt.Println("Logged out.")
}

func (c *console) handleWhoami() {
	sess := c.store.Current()
	if sess == nil {
		fmt.Println("Not logged in.")
		return
	}
	fmt.Printf("Name:  %s\n", sess.Name)
	fmt.Printf("Role:  %s\n", sess.Role)
	if sess.Email != "" {
		fmt.Printf("Email: %s\n", sess.Email)
	}
	if claims, ok := c.store.TokenClaims(); ok {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			fmt.Printf("Token expires: %s\n", exp.Time.Format(time.RFC1123))
		}
	}
}

// ---------------------------------------------------------------------------
// Generic list screen
// ---------------------------------------------------------------------------

type column[T any] struct {
	header string
	width  int
	value  func(T) string
}

// screen drives one entity's list through its controller: table, search,
// pagination, create/edit prompts, and confirm-before-delete.
type screen[T any, D rental.Draft] struct {
	name  string
	ctrl  *rental.ListController[T, D]
	cols  []column[T]
	idOf  func(T) int64
	label func(T) string

	promptCreate func() (D, bool)
	promptEdit   func(existing T) (D, bool)

	extras     map[string]func(args []string)
	extrasHelp string
}

func runScreen[T any, D rental.Draft](c *console, s screen[T, D]) {
	ctx := context.Background()

	if err := s.ctrl.Load(ctx); err != nil {
		fmt.Printf("Could not load %s: %v\n", s.name, err)
		fmt.Println("The screen stays open; try 'reload'.")
	}
	s.render()

	for {
		fmt.Printf("\n%s> ", s.name)
		if !c.sc.Scan() {
			return
		}
		line := strings.TrimSpace(c.sc.Text())
		if line == "" {
			s.render()
			continue
		}
		fields := strings.Fields(line)
		cmd, args := fields[0], fields[1:]

		if fn, ok := s.extras[cmd]; ok {
			fn(args)
			continue
		}

		switch cmd {
		case "list":
			s.render()
		case "reload":
			if err := s.ctrl.Load(ctx); err != nil {
				fmt.Printf("Could not load %s: %v\n", s.name, err)
			}
			s.render()
		case "search":
			s.ctrl.SetSearch(strings.TrimSpace(strings.TrimPrefix(line, "search")))
			s.render()
		case "clear":
			s.ctrl.SetSearch("")
			s.render()
		case "page":
			if len(args) != 1 {
				fmt.Println("Usage: page <n>")
				continue
			}
			n, err := strconv.Atoi(args[0])
			if err != nil {
				fmt.Printf("Invalid page number: %s\n", args[0])
				continue
			}
			s.ctrl.SetPage(n)
			s.render()
		case "next":
			s.ctrl.SetPage(s.ctrl.CurrentPage() + 1)
			s.render()
		case "prev":
			s.ctrl.SetPage(s.ctrl.CurrentPage() - 1)
			s.render()
		case "add":
			s.handleAdd(ctx)
		case "edit":
			s.handleEdit(ctx, args)
		case "delete":
			s.handleDelete(ctx, c.sc, args)
		case "help":
			help := "Commands: list, reload, search <q>, clear, page <n>, next, prev, add, edit <id>, delete <id>, back"
			if s.extrasHelp != "" {
				help += ", " + s.extrasHelp
			}
			fmt.Println(help)
		case "back":
			return
		default:
			fmt.Println("Unknown command. Type 'help' for the list.")
		}
	}
}

func (s *screen[T, D]) render() {
	rows := s.ctrl.PageItems()
	filtered := len(s.ctrl.Filtered())
	printTable(s.cols, rows)

	fmt.Printf("Page %d of %d | %d record(s)", s.ctrl.CurrentPage(), s.ctrl.TotalPages(), filtered)
	if q := s.ctrl.Search(); q != "" {
		fmt.Printf(" matching %q", q)
	}
	fmt.Println()
	if err := s.ctrl.Err(); err != nil {
		fmt.Printf("Last error: %v\n", err)
	}
}

func printTable[T any](cols []column[T], rows []T) {
	var header strings.Builder
	for _, col := range cols {
		fmt.Fprintf(&header, "%-*s ", col.width, col.header)
	}
	fmt.Println(header.String())
	fmt.Println(strings.Repeat("-", len(header.String())))

	if len(rows) == 0 {
		fmt.Println("(no records)")
		return
	}
	for _, row := range rows {
		for _, col := range cols {
			fmt.Printf("%-*s ", col.width, truncateString(col.value(row), col.width))
		}
		fmt.Println()
	}
}

func (s *screen[T, D]) handleAdd(ctx context.Context) {
	if !s.ctrl.Permissions().CanCreate {
		fmt.Println("You cannot create records on this screen.")
		return
	}
	if s.promptCreate == nil {
		fmt.Println("This screen does not support creating records.")
		return
	}
	draft, ok := s.promptCreate()
	if !ok {
		return
	}
	created, err := s.ctrl.Create(ctx, draft)
	if err != nil {
		reportMutationError("create", err)
		return
	}
	fmt.Printf("Created %s.\n", s.label(created))
	s.render()
}

func (s *screen[T, D]) handleEdit(ctx context.Context, args []string) {
	if !s.ctrl.Permissions().CanEdit {
		fmt.Println("You cannot edit records on this screen.")
		return
	}
	if s.promptEdit == nil {
		fmt.Println("This screen does not support editing records.")
		return
	}
	id, ok := parseID(args, "edit")
	if !ok {
		return
	}
	existing, found := s.find(id)
	if !found {
		fmt.Printf("No record with ID %d on this screen.\n", id)
		return
	}
	draft, ok := s.promptEdit(existing)
	if !ok {
		return
	}
	updated, err := s.ctrl.Update(ctx, id, draft)
	if err != nil {
		reportMutationError("update", err)
		return
	}
	fmt.Printf("Updated %s.\n", s.label(updated))
	s.render()
}

func (s *screen[T, D]) handleDelete(ctx context.Context, sc *bufio.Scanner, args []string) {
	if !s.ctrl.Permissions().CanDelete {
		fmt.Println("You cannot delete records on this screen.")
		return
	}
	id, ok := parseID(args, "delete")
	if !ok {
		return
	}
	existing, found := s.find(id)
	label := fmt.Sprintf("#%d", id)
	if found {
		label = s.label(existing)
	}

	fmt.Printf("Delete %s? [y/N]: ", label)
	if !sc.Scan() {
		return
	}
	if answer := strings.ToLower(strings.TrimSpace(sc.Text())); answer != "y" && answer != "yes" {
		fmt.Println("Cancelled.")
		return
	}

	if err := s.ctrl.Delete(ctx, id); err != nil {
		reportMutationError("delete", err)
		return
	}
	fmt.Printf("Deleted %s.\n", label)
	s.render()
}

func (s *screen[T, D]) find(id int64) (T, bool) {
	for _, it := range s.ctrl.Items() {
		if s.idOf(it) == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

func parseID(args []string, verb string) (int64, bool) {
	if len(args) != 1 {
		fmt.Printf("Usage: %s <id>\n", verb)
		return 0, false
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Printf("Invalid ID: %s\n", args[0])
		return 0, false
	}
	return id, true
}

func reportMutationError(verb string, err error) {
	var v *rental.ValidationError
	if errors.As(err, &v) {
		fmt.Println("The form has errors; nothing was sent:")
		names := make([]string, 0, len(v.Fields))
		for f := range v.Fields {
			names = append(names, f)
		}
		sort.Strings(names)
		for _, f := range names {
			fmt.Printf("  %s: %s\n", f, v.Fields[f])
		}
		return
	}
	fmt.Printf("Could not %s the record: %v\n", verb, err)
}

func truncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	if maxLength <= 3 {
		return s[:maxLength]
	}
	return s[:maxLength-3] + "..."
}
