package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/phenrril/catalogo/internal/adapters/export"
	"github.com/phenrril/catalogo/internal/domain"
	"github.com/phenrril/catalogo/internal/usecase"
	"github.com/phenrril/catalogo/internal/variant"
)

type Server struct {
	mux        *http.ServeMux
	products   *usecase.ProductUC
	variants   *usecase.VariantUC
	stock      *usecase.StockUC
	storefront *usecase.Storefront
}

func New(p *usecase.ProductUC, v *usecase.VariantUC, st *usecase.StockUC, sf *usecase.Storefront) http.Handler {
	s := &Server{products: p, variants: v, stock: st, storefront: sf, mux: http.NewServeMux()}
	s.routes()
	return Chain(s.mux,
		RequestID,
		Logging,
		Recovery,
	)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, map[string]any{"status": "ok"})
	})
	s.mux.HandleFunc("/api/products", s.apiProducts)
	s.mux.HandleFunc("/api/products/", s.apiProductByID)
	s.mux.HandleFunc("/api/categories", s.apiCategories)
	s.mux.HandleFunc("/api/variants/by-sku", s.apiVariantBySKU)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

// fail maps usecase and engine errors onto HTTP statuses.
func fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	var missing *variant.MissingAttributeError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, usecase.ErrEmptySlug),
		errors.Is(err, usecase.ErrEmptySKU),
		errors.Is(err, usecase.ErrInvalidDraft),
		errors.As(err, &missing),
		errors.Is(err, variant.ErrValueUnavailable),
		errors.Is(err, variant.ErrStepNotReached),
		errors.Is(err, variant.ErrBlankName),
		errors.Is(err, variant.ErrDuplicateAttribute):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Error().Err(err).Str("request_id", RequestIDFromContext(r.Context())).Str("op", op).Msg("request failed")
		writeError(w, http.StatusInternalServerError, op)
	}
}

func (s *Server) apiProducts(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		qv := r.URL.Query()
		page, _ := strconv.Atoi(qv.Get("page"))
		pageSize, _ := strconv.Atoi(qv.Get("page_size"))
		list, total, err := s.products.List(r.Context(), domain.ProductFilter{
			Category: qv.Get("category"),
			Query:    qv.Get("q"),
			Sort:     qv.Get("sort"),
			Page:     page,
			PageSize: pageSize,
		})
		if err != nil {
			fail(w, r, "list", err)
			return
		}
		writeJSON(w, 200, map[string]any{"items": list, "total": total})
		return
	}
	if r.Method == http.MethodPost {
		var req struct {
			Name           string   `json:"name"`
			Slug           string   `json:"slug"`
			Category       string   `json:"category"`
			ShortDesc      string   `json:"shortDesc"`
			BasePrice      float64  `json:"basePrice"`
			AttributeNames []string `json:"attributeNames"`
			Images         []string `json:"images"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, 400, "json")
			return
		}
		if strings.TrimSpace(req.Name) == "" || req.BasePrice < 0 {
			writeError(w, 400, "name and a non-negative basePrice are required")
			return
		}
		cfg := variant.NewAttributeConfig()
		for _, n := range req.AttributeNames {
			next, err := cfg.AddAttribute(n)
			if err != nil {
				writeError(w, 400, err.Error())
				return
			}
			cfg = next
		}
		p := &domain.Product{
			Name:           strings.TrimSpace(req.Name),
			Slug:           strings.TrimSpace(req.Slug),
			Category:       req.Category,
			ShortDesc:      req.ShortDesc,
			BasePrice:      req.BasePrice,
			AttributeNames: variant.EncodeNames(cfg.Names()),
		}
		if err := s.products.Create(r.Context(), p); err != nil {
			fail(w, r, "create", err)
			return
		}
		if len(req.Images) > 0 {
			imgs := make([]domain.Image, 0, len(req.Images))
			for _, u := range req.Images {
				if u = strings.TrimSpace(u); u != "" {
					imgs = append(imgs, domain.Image{URL: u})
				}
			}
			if err := s.products.AddImages(r.Context(), p.ID, imgs); err != nil {
				fail(w, r, "images", err)
				return
			}
			p.Images = imgs
		}
		writeJSON(w, 201, p)
		return
	}
	writeError(w, 405, "method")
}

func (s *Server) apiCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, 405, "method")
		return
	}
	cats, err := s.products.Categories(r.Context())
	if err != nil {
		fail(w, r, "categories", err)
		return
	}
	writeJSON(w, 200, map[string]any{"items": cats})
}

func (s *Server) apiVariantBySKU(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, 405, "method")
		return
	}
	p, v, err := s.products.SearchBySKU(r.Context(), r.URL.Query().Get("sku"))
	if err != nil {
		fail(w, r, "by-sku", err)
		return
	}
	writeJSON(w, 200, map[string]any{"product": p, "variant": variant.FromRecord(*v)})
}

// apiProductByID routes everything under /api/products/{slug}.
func (s *Server) apiProductByID(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/products/"), "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, 404, "path")
		return
	}
	slug := parts[0]
	if len(parts) == 1 {
		s.apiProduct(w, r, slug)
		return
	}
	switch parts[1] {
	case "attributes":
		s.apiProductAttributes(w, r, slug)
	case "variants":
		s.apiProductVariants(w, r, slug, parts[2:])
	case "variants.xlsx":
		s.apiProductExport(w, r, slug)
	case "editor":
		s.apiProductEditor(w, r, slug)
	case "selection":
		s.apiProductSelection(w, r, slug)
	case "stock":
		s.apiProductStock(w, r, slug)
	default:
		writeError(w, 404, "path")
	}
}

func (s *Server) apiProduct(w http.ResponseWriter, r *http.Request, slug string) {
	switch r.Method {
	case http.MethodGet:
		p, err := s.products.GetBySlug(r.Context(), slug)
		if err != nil {
			fail(w, r, "get", err)
			return
		}
		writeJSON(w, 200, p)
	case http.MethodDelete:
		if err := s.products.DeleteBySlug(r.Context(), slug); err != nil {
			fail(w, r, "delete", err)
			return
		}
		writeJSON(w, 200, map[string]any{"status": "ok", "slug": slug})
	default:
		writeError(w, 405, "method")
	}
}

func (s *Server) apiProductAttributes(w http.ResponseWriter, r *http.Request, slug string) {
	if r.Method != http.MethodPut {
		writeError(w, 405, "method")
		return
	}
	var req struct {
		Names []string `json:"names"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, "json")
		return
	}
	p, err := s.products.GetBySlug(r.Context(), slug)
	if err != nil {
		fail(w, r, "get", err)
		return
	}
	if err := s.products.SetAttributeNames(r.Context(), p.ID, req.Names); err != nil {
		fail(w, r, "attributes", err)
		return
	}
	writeJSON(w, 200, map[string]any{"status": "ok", "names": req.Names})
}

type variantRequest struct {
	ID         string            `json:"id"`
	Attributes map[string]string `json:"attributes"`
	Images     []string          `json:"images"`
	ColorCode  string            `json:"colorCode"`
	Price      *float64          `json:"price"`
	SKU        string            `json:"sku"`
	Active     *bool             `json:"isActive"`
}

func (s *Server) apiProductVariants(w http.ResponseWriter, r *http.Request, slug string, rest []string) {
	if len(rest) == 1 && r.Method == http.MethodPost {
		switch rest[0] {
		case "plan":
			s.apiVariantsPlan(w, r, slug)
			return
		case "save":
			s.apiVariantsSave(w, r, slug)
			return
		}
	}
	p, err := s.products.GetBySlug(r.Context(), slug)
	if err != nil {
		fail(w, r, "get", err)
		return
	}
	// DELETE /api/products/{slug}/variants/{id}
	if r.Method == http.MethodDelete && len(rest) == 1 {
		vid, err := uuid.Parse(rest[0])
		if err != nil {
			writeError(w, 400, "variant")
			return
		}
		if err := s.products.DeleteVariant(r.Context(), p.ID, vid); err != nil {
			fail(w, r, "delete variant", err)
			return
		}
		writeJSON(w, 200, map[string]any{"status": "ok"})
		return
	}
	if len(rest) != 0 {
		writeError(w, 404, "path")
		return
	}
	if r.Method == http.MethodGet {
		list, err := s.products.ListVariants(r.Context(), p.ID)
		if err != nil {
			fail(w, r, "list variants", err)
			return
		}
		writeJSON(w, 200, map[string]any{"items": variant.FromRecords(list)})
		return
	}
	if r.Method == http.MethodPost || r.Method == http.MethodPut {
		var req variantRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, 400, "json")
			return
		}
		if req.Price != nil && *req.Price < 0 {
			writeError(w, 400, "price")
			return
		}
		v := variant.Variant{
			Attributes: variant.Combination(req.Attributes).Clone(),
			Images:     req.Images,
			SKU:        req.SKU,
			Price:      req.Price,
			Active:     req.Active == nil || *req.Active,
		}
		if len(v.Images) > 0 {
			v.Primary = v.Images[0]
		}
		if req.ColorCode != "" {
			c, err := variant.NormalizeColor(req.ColorCode)
			if err != nil {
				writeError(w, 400, err.Error())
				return
			}
			v.Color = c
		}
		if req.ID != "" {
			uid, err := uuid.Parse(req.ID)
			if err != nil {
				writeError(w, 400, "variant")
				return
			}
			v.ID = uid
		}
		rec := variant.ToRecord(p.ID, v)
		if rec.ID == uuid.Nil {
			err = s.products.CreateVariant(r.Context(), &rec)
		} else {
			err = s.products.UpdateVariant(r.Context(), &rec)
		}
		if err != nil {
			fail(w, r, "save variant", err)
			return
		}
		writeJSON(w, 200, variant.FromRecord(rec))
		return
	}
	writeError(w, 405, "method")
}

func (s *Server) apiVariantsPlan(w http.ResponseWriter, r *http.Request, slug string) {
	var d usecase.EditorDraft
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		writeError(w, 400, "json")
		return
	}
	plan, err := s.variants.Plan(r.Context(), slug, d)
	if err != nil {
		fail(w, r, "plan", err)
		return
	}
	writeJSON(w, 200, plan)
}

func (s *Server) apiVariantsSave(w http.ResponseWriter, r *http.Request, slug string) {
	var d usecase.EditorDraft
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		writeError(w, 400, "json")
		return
	}
	rep, err := s.variants.Save(r.Context(), slug, d)
	if err != nil {
		fail(w, r, "save", err)
		return
	}
	code := 200
	if len(rep.Failures) > 0 {
		code = http.StatusMultiStatus
	}
	writeJSON(w, code, rep)
}

func (s *Server) apiProductEditor(w http.ResponseWriter, r *http.Request, slug string) {
	if r.Method != http.MethodGet {
		writeError(w, 405, "method")
		return
	}
	st, _, err := s.variants.LoadEditor(r.Context(), slug)
	if err != nil {
		fail(w, r, "editor", err)
		return
	}
	writeJSON(w, 200, usecase.DraftFromState(st))
}

func (s *Server) apiProductSelection(w http.ResponseWriter, r *http.Request, slug string) {
	if r.Method != http.MethodPost {
		writeError(w, 405, "method")
		return
	}
	var q usecase.SelectQuery
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		writeError(w, 400, "json")
		return
	}
	sel, err := s.storefront.Select(r.Context(), slug, q)
	if err != nil {
		fail(w, r, "selection", err)
		return
	}
	writeJSON(w, 200, sel)
}

func (s *Server) apiProductStock(w http.ResponseWriter, r *http.Request, slug string) {
	if r.Method != http.MethodGet {
		writeError(w, 405, "method")
		return
	}
	p, err := s.products.GetBySlug(r.Context(), slug)
	if err != nil {
		fail(w, r, "get", err)
		return
	}
	var ids []uuid.UUID
	for _, v := range p.Variants {
		if v.Active {
			ids = append(ids, v.ID)
		}
	}
	res := s.stock.Lookup(r.Context(), r.URL.Query().Get("warehouse"), ids)
	writeJSON(w, 200, map[string]any{"items": res})
}

func (s *Server) apiProductExport(w http.ResponseWriter, r *http.Request, slug string) {
	if r.Method != http.MethodGet {
		writeError(w, 405, "method")
		return
	}
	st, p, err := s.variants.LoadEditor(r.Context(), slug)
	if err != nil {
		fail(w, r, "editor", err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+p.Slug+`-variants.xlsx"`)
	if err := export.WriteVariants(w, p, st.Config.Names(), st.Variants); err != nil {
		log.Error().Err(err).Str("product", p.Slug).Msg("export variants")
	}
}
