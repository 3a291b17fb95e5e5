package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/storefront/checkout-service-go/internal/cart"
	"github.com/storefront/checkout-service-go/internal/catalog"
)

// CatalogClient is the narrow slice of the catalog service this handler
// needs: resolve a product so its price can be snapshotted into the cart.
type CatalogClient interface {
	GetProduct(ctx context.Context, id string) (catalog.Product, error)
}

type CartHandler struct {
	stores  *SessionStores
	catalog CatalogClient
}

func NewCartHandler(stores *SessionStores, catalogClient CatalogClient) *CartHandler {
	return &CartHandler{stores: stores, catalog: catalogClient}
}

// cartView is the wire shape for every cart response.
type cartView struct {
	SessionID string          `json:"sessionId"`
	Items     []cart.LineItem `json:"items"`
	Total     float64         `json:"totalAmount"`
	Count     int             `json:"itemCount"`
	PanelOpen bool            `json:"panelOpen"`
}

func viewOf(sessionID string, store *cart.Store) cartView {
	items := store.Items()
	if items == nil {
		items = []cart.LineItem{}
	}
	return cartView{
		SessionID: sessionID,
		Items:     items,
		Total:     store.Total(),
		Count:     store.Count(),
		PanelOpen: store.PanelOpen(),
	}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionId")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "missing sessionId")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	store := h.stores.Get(ctx, sessionID)
	writeJSON(w, http.StatusOK, viewOf(sessionID, store))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionId")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "missing sessionId")
		return
	}

	var body struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if body.ProductID == "" {
		writeError(w, http.StatusBadRequest, "missing productId")
		return
	}
	if body.Quantity <= 0 {
		body.Quantity = 1
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	product, err := h.catalog.GetProduct(ctx, body.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		// catalog fetch failures are retryable from the client's side
		writeError(w, http.StatusBadGateway, "failed to fetch product")
		return
	}

	store := h.stores.Get(ctx, sessionID)
	store.Add(ctx, product.Snapshot(), body.Quantity)

	writeJSON(w, http.StatusOK, viewOf(sessionID, store))
}

func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionId")
	productID := r.PathValue("productId")
	if sessionID == "" || productID == "" {
		writeError(w, http.StatusBadRequest, "missing sessionId or productId")
		return
	}

	var body struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	store := h.stores.Get(ctx, sessionID)
	store.SetQuantity(ctx, productID, body.Quantity)

	writeJSON(w, http.StatusOK, viewOf(sessionID, store))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionId")
	productID := r.PathValue("productId")
	if sessionID == "" || productID == "" {
		writeError(w, http.StatusBadRequest, "missing sessionId or productId")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	store := h.stores.Get(ctx, sessionID)
	store.Remove(ctx, productID)

	writeJSON(w, http.StatusOK, viewOf(sessionID, store))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionId")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "missing sessionId")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	store := h.stores.Get(ctx, sessionID)
	store.Clear(ctx)

	writeJSON(w, http.StatusOK, viewOf(sessionID, store))
}

func (h *CartHandler) SetPanel(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionId")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "missing sessionId")
		return
	}

	var body struct {
		Open bool `json:"open"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	store := h.stores.Get(ctx, sessionID)
	if body.Open {
		store.OpenPanel()
	} else {
		store.ClosePanel()
	}

	writeJSON(w, http.StatusOK, viewOf(sessionID, store))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{
		"error": msg,
	})
}
