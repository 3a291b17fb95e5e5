package http

import (
	"encoding/json"
	"net/http"
)

func NewRouter(cartHandler *CartHandler, checkoutHandler *CheckoutHandler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", healthHandler)

	mux.HandleFunc("GET /api/cart/{sessionId}", cartHandler.GetCart)
	mux.HandleFunc("POST /api/cart/{sessionId}/items", cartHandler.AddItem)
	mux.HandleFunc("PUT /api/cart/{sessionId}/items/{productId}", cartHandler.SetQuantity)
	mux.HandleFunc("DELETE /api/cart/{sessionId}/items/{productId}", cartHandler.RemoveItem)
	mux.HandleFunc("DELETE /api/cart/{sessionId}", cartHandler.ClearCart)
	mux.HandleFunc("POST /api/cart/{sessionId}/panel", cartHandler.SetPanel)

	mux.HandleFunc("POST /api/checkout/{sessionId}", checkoutHandler.Submit)

	return mux
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "ok", "service": "checkout-service"}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
