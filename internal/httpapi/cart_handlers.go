package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/nikolayk812/storefront/internal/apimodel"
	"github.com/nikolayk812/storefront/internal/session"
)

const maxBodyBytes = 64 << 10

func (s *Server) handleGetCart(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := s.sessionID(w, r)
	if !ok {
		return
	}

	items, err := s.cart.GetCart(r.Context(), sessionID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusOK, apimodel.ToCartJSON(items))
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := s.sessionID(w, r)
	if !ok {
		return
	}

	var req apimodel.AddItemRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	item, err := s.cart.AddToCart(r.Context(), sessionID, req.Domain())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusCreated, apimodel.ToCartItemJSON(item))
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := s.sessionID(w, r)
	if !ok {
		return
	}

	productID, err := pathInt64(r, "productId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req apimodel.UpdateItemRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	updated, err := s.cart.UpdateCartItem(r.Context(), sessionID, productID, req.Quantity)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusOK, apimodel.UpdatedJSON{Updated: updated})
}

func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := s.sessionID(w, r)
	if !ok {
		return
	}

	productID, err := pathInt64(r, "productId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	removed, err := s.cart.RemoveFromCart(r.Context(), sessionID, productID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusOK, apimodel.RemovedJSON{Removed: &removed})
}

func (s *Server) handleClearCart(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := s.sessionID(w, r)
	if !ok {
		return
	}

	removed, found, err := s.cart.ClearCart(r.Context(), sessionID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := apimodel.RemovedJSON{}
	if found {
		resp.Removed = &removed
	}

	s.writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := session.FromContext(r.Context())
	if !ok {
		s.writeError(w, r, errors.New("session missing from request context"))
		return "", false
	}
	return id, true
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return badRequest("malformed request body")
	}

	return nil
}

func pathInt64(r *http.Request, name string) (int64, error) {
	v, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		return 0, badRequest(name + " must be an integer")
	}
	return v, nil
}
