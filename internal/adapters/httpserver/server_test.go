package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/phenrril/catalogo/internal/adapters/repo/postgres"
	"github.com/phenrril/catalogo/internal/domain"
	"github.com/phenrril/catalogo/internal/usecase"
	"github.com/phenrril/catalogo/internal/variant"
)

func testHandler(t *testing.T) http.Handler {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "api.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.Product{}, &domain.Variant{}, &domain.Image{}, &domain.StockItem{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	products := postgres.NewProductRepo(db)
	stock := &usecase.StockUC{Stock: postgres.NewStockRepo(db), Warehouse: "main"}
	return New(
		&usecase.ProductUC{Products: products},
		&usecase.VariantUC{Products: products},
		stock,
		&usecase.Storefront{Products: products, Stock: stock},
	)
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestAPI_VariantLifecycle(t *testing.T) {
	h := testHandler(t)

	rr := do(t, h, http.MethodPost, "/api/products", map[string]any{
		"name": "Basic Tee", "basePrice": 20, "attributeNames": []string{"Color", "Size"}, "images": []string{"cover.png"},
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: status=%d body=%s", rr.Code, rr.Body.String())
	}
	if rr.Header().Get("X-Request-Id") == "" {
		t.Error("missing request id header")
	}

	draft := usecase.EditorDraft{
		Attributes: []variant.Attribute{
			{Name: "Color", Values: []string{"Black", "Red"}},
			{Name: "Size", Values: []string{"X", "XL"}},
		},
		ImageAttribute: "Color",
		Assets: map[string]variant.ValueAssets{
			"Black": {Images: []string{"black.png"}, Color: "#000"},
			"Red":   {Images: []string{"red.png"}},
		},
	}
	rr = do(t, h, http.MethodPost, "/api/products/basic-tee/variants/plan", draft)
	if rr.Code != 200 {
		t.Fatalf("plan: status=%d body=%s", rr.Code, rr.Body.String())
	}
	var plan variant.Plan
	_ = json.NewDecoder(rr.Body).Decode(&plan)
	if plan.Created != 4 || len(plan.Orphans) != 0 {
		t.Errorf("plan: %+v", plan)
	}

	rr = do(t, h, http.MethodPost, "/api/products/basic-tee/variants/save", draft)
	if rr.Code != 200 {
		t.Fatalf("save: status=%d body=%s", rr.Code, rr.Body.String())
	}
	var rep usecase.SaveReport
	_ = json.NewDecoder(rr.Body).Decode(&rep)
	if rep.Created != 4 {
		t.Errorf("report: %+v", rep)
	}

	// reload the editor, drop XL and save again
	rr = do(t, h, http.MethodGet, "/api/products/basic-tee/editor", nil)
	if rr.Code != 200 {
		t.Fatalf("editor: status=%d body=%s", rr.Code, rr.Body.String())
	}
	var loaded usecase.EditorDraft
	if err := json.NewDecoder(rr.Body).Decode(&loaded); err != nil {
		t.Fatal(err)
	}
	if len(loaded.Variants) != 4 || loaded.ImageAttribute != "Color" || loaded.Assets["Black"].Color != "#000000" {
		t.Fatalf("loaded editor: %+v", loaded)
	}
	for i, a := range loaded.Attributes {
		if a.Name == "Size" {
			loaded.Attributes[i].Values = []string{"X"}
		}
	}
	rr = do(t, h, http.MethodPost, "/api/products/basic-tee/variants/save", loaded)
	rep = usecase.SaveReport{}
	_ = json.NewDecoder(rr.Body).Decode(&rep)
	if rep.Updated != 2 || rep.Deleted != 2 || rep.Created != 0 {
		t.Errorf("second save: %+v", rep)
	}

	rr = do(t, h, http.MethodPost, "/api/products/basic-tee/selection", map[string]any{"choices": []string{"Red", "X"}})
	if rr.Code != 200 {
		t.Fatalf("selection: status=%d body=%s", rr.Code, rr.Body.String())
	}
	var sel usecase.Selection
	_ = json.NewDecoder(rr.Body).Decode(&sel)
	if sel.View.Selected == nil || sel.View.Selected.Primary != "red.png" {
		t.Errorf("selected: %+v", sel.View.Selected)
	}
	if sel.View.GalleryIndex != 2 {
		t.Errorf("gallery index: %d in %v", sel.View.GalleryIndex, sel.Gallery)
	}

	rr = do(t, h, http.MethodPost, "/api/products/basic-tee/selection", map[string]any{"choices": []string{"Green"}})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("unavailable choice: %d", rr.Code)
	}

	rr = do(t, h, http.MethodGet, "/api/products/basic-tee/stock", nil)
	var stock struct {
		Items []usecase.StockResult `json:"items"`
	}
	_ = json.NewDecoder(rr.Body).Decode(&stock)
	if len(stock.Items) != 2 || !stock.Items[0].Known || stock.Items[0].Quantity != 0 {
		t.Errorf("stock: %+v", stock.Items)
	}

	rr = do(t, h, http.MethodGet, "/api/products/basic-tee/variants.xlsx", nil)
	if rr.Code != 200 || !strings.Contains(rr.Header().Get("Content-Type"), "spreadsheetml") || rr.Body.Len() == 0 {
		t.Errorf("export: status=%d type=%q", rr.Code, rr.Header().Get("Content-Type"))
	}
}

func TestAPI_SingleVariantAndErrors(t *testing.T) {
	h := testHandler(t)
	do(t, h, http.MethodPost, "/api/products", map[string]any{"name": "Mug", "basePrice": 5})

	rr := do(t, h, http.MethodPost, "/api/products/mug/variants", map[string]any{
		"attributes": map[string]string{"Color": "White"}, "sku": "MUG-W", "colorCode": "#FFF",
	})
	if rr.Code != 200 {
		t.Fatalf("upsert: status=%d body=%s", rr.Code, rr.Body.String())
	}
	var v variant.Variant
	_ = json.NewDecoder(rr.Body).Decode(&v)
	if !v.Persisted() || !v.Active || v.Color != "#ffffff" {
		t.Errorf("variant: %+v", v)
	}

	rr = do(t, h, http.MethodGet, "/api/variants/by-sku?sku=MUG-W", nil)
	if rr.Code != 200 {
		t.Errorf("by sku: %d", rr.Code)
	}

	rr = do(t, h, http.MethodDelete, "/api/products/mug/variants/"+v.ID.String(), nil)
	if rr.Code != 200 {
		t.Errorf("delete: %d %s", rr.Code, rr.Body.String())
	}
	rr = do(t, h, http.MethodDelete, "/api/products/mug/variants/"+v.ID.String(), nil)
	if rr.Code != 404 {
		t.Errorf("second delete: %d", rr.Code)
	}

	if rr := do(t, h, http.MethodGet, "/api/products/nope", nil); rr.Code != 404 {
		t.Errorf("unknown product: %d", rr.Code)
	}
	if rr := do(t, h, http.MethodPut, "/api/products/mug/attributes", map[string]any{"names": []string{"Size", "Size"}}); rr.Code != 400 {
		t.Errorf("duplicate names: %d", rr.Code)
	}
	if rr := do(t, h, http.MethodPost, "/api/products/mug/variants/save", map[string]any{"attributes": []any{}, "imageAttribute": "Color"}); rr.Code != 400 {
		t.Errorf("invalid draft: %d", rr.Code)
	}
}

func TestAPI_VariantsStayWithTheirProduct(t *testing.T) {
	h := testHandler(t)
	do(t, h, http.MethodPost, "/api/products", map[string]any{"name": "Tee", "basePrice": 20, "attributeNames": []string{"Color", "Size"}})
	do(t, h, http.MethodPost, "/api/products", map[string]any{"name": "Mug", "basePrice": 5, "attributeNames": []string{"Color"}})

	rr := do(t, h, http.MethodPost, "/api/products/tee/variants", map[string]any{"attributes": map[string]string{"Color": "Red"}})
	if rr.Code != 400 || !strings.Contains(rr.Body.String(), "Size") {
		t.Errorf("incomplete variant: status=%d body=%s", rr.Code, rr.Body.String())
	}
	rr = do(t, h, http.MethodPost, "/api/products/tee/variants", map[string]any{"attributes": map[string]string{"Color": "Red", "Size": " "}})
	if rr.Code != 400 {
		t.Errorf("blank size: status=%d", rr.Code)
	}

	rr = do(t, h, http.MethodPost, "/api/products/mug/variants", map[string]any{"attributes": map[string]string{"Color": "Blue"}, "sku": "MUG-B"})
	if rr.Code != 200 {
		t.Fatalf("mug variant: status=%d body=%s", rr.Code, rr.Body.String())
	}
	var blue variant.Variant
	_ = json.NewDecoder(rr.Body).Decode(&blue)

	if rr := do(t, h, http.MethodDelete, "/api/products/tee/variants/"+blue.ID.String(), nil); rr.Code != 404 {
		t.Errorf("delete through another product: %d", rr.Code)
	}
	rr = do(t, h, http.MethodPut, "/api/products/tee/variants", map[string]any{
		"id": blue.ID.String(), "attributes": map[string]string{"Color": "Blue", "Size": "M"},
	})
	if rr.Code != 404 {
		t.Errorf("update through another product: %d %s", rr.Code, rr.Body.String())
	}

	draft := usecase.EditorDraft{
		Attributes: []variant.Attribute{{Name: "Color", Values: []string{"Blue"}}, {Name: "Size", Values: []string{"M"}}},
		Variants:   []variant.Variant{{ID: blue.ID, Attributes: variant.Combination{"Color": "Blue", "Size": "M"}, Active: true}},
	}
	rr = do(t, h, http.MethodPost, "/api/products/tee/variants/save", draft)
	if rr.Code != 200 {
		t.Fatalf("save: status=%d body=%s", rr.Code, rr.Body.String())
	}
	var rep usecase.SaveReport
	_ = json.NewDecoder(rr.Body).Decode(&rep)
	if rep.Created != 1 || rep.Updated != 0 {
		t.Errorf("report: %+v", rep)
	}

	rr = do(t, h, http.MethodGet, "/api/products/mug/variants", nil)
	var list struct {
		Items []variant.Variant `json:"items"`
	}
	_ = json.NewDecoder(rr.Body).Decode(&list)
	if len(list.Items) != 1 || list.Items[0].ID != blue.ID || list.Items[0].SKU != "MUG-B" {
		t.Errorf("mug variants: %+v", list.Items)
	}

	if rr := do(t, h, http.MethodGet, "/api/variants/by-sku?sku=", nil); rr.Code != 400 {
		t.Errorf("empty sku: %d", rr.Code)
	}
	if rr := do(t, h, http.MethodGet, "/api/variants/by-sku?sku=NOPE", nil); rr.Code != 404 {
		t.Errorf("unknown sku: %d", rr.Code)
	}
}

func TestRecovery(t *testing.T) {
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }), RequestID, Logging, Recovery)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status: %d", rr.Code)
	}
}
