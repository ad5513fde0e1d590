package httpapi

import (
	"net/http"
	"strconv"
)

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if category := query.Get("category"); category != "" {
		products, err := s.catalog.ProductsByCategory(r.Context(), category)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, r, http.StatusOK, products)
		return
	}

	limit := 0
	if raw := query.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.writeError(w, r, badRequest("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	products, err := s.catalog.Products(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusOK, products)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.catalog.Categories(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusOK, categories)
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	product, err := s.catalog.Product(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusOK, product)
}
