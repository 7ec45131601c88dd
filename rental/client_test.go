package rental

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func testClient(t *testing.T, r *mux.Router) *Client {
	t.Helper()
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, staticToken("test-token"), 5*time.Second)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestListBareArray(t *testing.T) {
	r := mux.NewRouter()
	r.HandleFunc("/categorias", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, []Category{
			{ID: 1, Name: "Andamios"},
			{ID: 2, Name: "Jardineria"},
		})
	}).Methods(http.MethodGet)
	c := testClient(t, r)

	got, err := c.Categories().List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].Name != "Andamios" {
		t.Fatalf("unexpected result %+v", got)
	}
}

func TestListEnvelope(t *testing.T) {
	r := mux.NewRouter()
	r.HandleFunc("/usuarios", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"content":       []User{{ID: 7, Name: "Ana", Email: "ana@rental.test", Role: RoleAdmin, Active: true}},
			"totalElements": 1,
		})
	}).Methods(http.MethodGet)
	c := testClient(t, r)

	got, err := c.Users().List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].ID != 7 {
		t.Fatalf("unexpected result %+v", got)
	}
}

func TestListNullBody(t *testing.T) {
	r := mux.NewRouter()
	r.HandleFunc("/categorias", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("null"))
	}).Methods(http.MethodGet)
	c := testClient(t, r)

	got, err := c.Categories().List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("null body should decode to an empty non-nil slice, got %#v", got)
	}
}

func TestListUnexpectedShape(t *testing.T) {
	r := mux.NewRouter()
	r.HandleFunc("/categorias", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"rows": 3})
	}).Methods(http.MethodGet)
	c := testClient(t, r)

	got, err := c.Categories().List(context.Background())
	if err != nil {
		t.Fatalf("a bad list shape must not be fatal: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("want empty list, got %+v", got)
	}
}

func TestNotFoundSurfacesAsAPIError(t *testing.T) {
	r := mux.NewRouter()
	r.HandleFunc("/categorias/{id}", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no existe"})
	}).Methods(http.MethodGet)
	c := testClient(t, r)

	_, err := c.Categories().Get(context.Background(), 99)
	if !IsNotFound(err) {
		t.Fatalf("want a 404 APIError, got %v", err)
	}
}

func TestCreateSendsSpanishFieldNames(t *testing.T) {
	var body map[string]any
	r := mux.NewRouter()
	r.HandleFunc("/equipos", func(w http.ResponseWriter, req *http.Request) {
		if ct := req.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		if auth := req.Header.Get("Authorization"); auth != "Bearer test-token" {
			t.Errorf("Authorization = %q", auth)
		}
		json.NewDecoder(req.Body).Decode(&body)
		writeJSON(w, http.StatusCreated, Equipment{ID: 10, Name: "Taladro", Price: 12.5, Stock: 3})
	}).Methods(http.MethodPost)
	c := testClient(t, r)

	catID := int64(2)
	created, err := c.Equipment().Create(context.Background(), EquipmentDraft{
		Name: "Taladro", Price: 12.5, Stock: 3, CategoryID: &catID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID != 10 {
		t.Fatalf("created = %+v", created)
	}
	if body["nombre"] != "Taladro" {
		t.Fatalf("payload should use 'nombre', got %v", body)
	}
	if body["categoriaId"] != float64(2) {
		t.Fatalf("payload should carry 'categoriaId', got %v", body)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	r := mux.NewRouter()
	r.HandleFunc("/categorias/{id}", func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case http.MethodPut:
			writeJSON(w, http.StatusOK, Category{ID: 4, Name: "Renombrada"})
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		}
	}).Methods(http.MethodPut, http.MethodDelete)
	c := testClient(t, r)

	updated, err := c.Categories().Update(context.Background(), 4, CategoryDraft{Name: "Renombrada"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Renombrada" {
		t.Fatalf("updated = %+v", updated)
	}
	if err := c.Categories().Delete(context.Background(), 4); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func TestToggleUserState(t *testing.T) {
	var sawBody map[string]any
	r := mux.NewRouter()
	r.HandleFunc("/usuarios/{id}/estado", func(w http.ResponseWriter, req *http.Request) {
		json.NewDecoder(req.Body).Decode(&sawBody)
		writeJSON(w, http.StatusOK, User{ID: 5, Name: "Ana", Email: "ana@rental.test", Role: RoleSeller, Active: false})
	}).Methods(http.MethodPut)
	c := testClient(t, r)

	got, err := c.Users().ToggleState(context.Background(), 5)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if got.Active {
		t.Fatal("expected the toggled state from the server")
	}
	if sawBody == nil || len(sawBody) != 0 {
		t.Fatalf("estado expects an empty JSON object body, got %v", sawBody)
	}
}

func TestEquipmentScopedLists(t *testing.T) {
	r := mux.NewRouter()
	r.HandleFunc("/equipos/mis-equipos", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, []Equipment{{ID: 1, Name: "Mio"}})
	}).Methods(http.MethodGet)
	r.HandleFunc("/equipos/catalogo", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, []Equipment{{ID: 2, Name: "Publico"}, {ID: 3, Name: "Otro"}})
	}).Methods(http.MethodGet)
	c := testClient(t, r)

	mine, err := c.Equipment().Mine(context.Background())
	if err != nil {
		t.Fatalf("mine: %v", err)
	}
	if len(mine) != 1 || mine[0].Name != "Mio" {
		t.Fatalf("mine = %+v", mine)
	}

	catalog, err := c.Equipment().Catalog(context.Background())
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if len(catalog) != 2 {
		t.Fatalf("catalog = %+v", catalog)
	}
}
