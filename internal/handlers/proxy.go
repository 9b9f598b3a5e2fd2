package handlers

import (
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/Vivek1819/FinBoard/internal/config"
	"github.com/Vivek1819/FinBoard/internal/errs"
	"github.com/Vivek1819/FinBoard/internal/response"
	"github.com/Vivek1819/FinBoard/pkg/logger"
)

// proxyHandlers forwards widget requests to the upstream market data
// providers, attaching API keys server-side so they never reach clients.
// Responses pass through unenveloped: widgets point at these routes the
// same way they point at any external API.
type proxyHandlers struct {
	ResponseHandler response.ResponseHandler
	Config          *config.Config
	Client          *http.Client
}

func NewProxyHandlers(deps *Deps) *proxyHandlers {
	client := deps.ProxyClient
	if client == nil {
		client = http.DefaultClient
	}
	return &proxyHandlers{
		ResponseHandler: deps.ResponseHandler,
		Config:          deps.Config,
		Client:          client,
	}
}

func (h *proxyHandlers) ProxyRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/finnhub/quote", h.FinnhubQuote)
	r.Get("/finnhub/symbols", h.FinnhubSymbols)
	r.Get("/alpha-vantage", h.AlphaVantage)
	r.Get("/indian-stock/*", h.IndianStock)
	return r
}

// FinnhubQuote proxies GET /quote. Finnhub's quote payload does not
// include the symbol, so it is echoed back into the response for the
// normalizer to pick up.
func (h *proxyHandlers) FinnhubQuote(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("symbol is required"))
		return
	}

	upstream := h.Config.FinnhubBaseURL + "/quote?" + url.Values{
		"symbol": {symbol},
		"token":  {h.Config.FinnhubAPIKey},
	}.Encode()

	body, status, err := h.forward(r, upstream, nil)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	if status != http.StatusOK {
		h.ResponseHandler.HandleError(w, r, errs.NewHTTPError(status))
		return
	}

	body, err = sjson.SetBytes(body, "symbol", symbol)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewExternalServiceError("finnhub", "failed to rewrite quote payload", err))
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *proxyHandlers) FinnhubSymbols(w http.ResponseWriter, r *http.Request) {
	exchange := r.URL.Query().Get("exchange")
	if exchange == "" {
		exchange = "US"
	}

	upstream := h.Config.FinnhubBaseURL + "/stock/symbol?" + url.Values{
		"exchange": {exchange},
		"token":    {h.Config.FinnhubAPIKey},
	}.Encode()

	body, status, err := h.forward(r, upstream, nil)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	if status != http.StatusOK {
		h.ResponseHandler.HandleError(w, r, errs.NewHTTPError(status))
		return
	}
	writeJSON(w, http.StatusOK, body)
}

// AlphaVantage proxies the query endpoint. Alpha Vantage reports rate
// limiting with a 200 response whose body carries a "Note" or
// "Information" key, which is surfaced here as a real 429 so callers
// can back off.
func (h *proxyHandlers) AlphaVantage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("function") == "" {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("function is required"))
		return
	}
	q.Set("apikey", h.Config.AlphaVantageAPIKey)

	body, status, err := h.forward(r, h.Config.AlphaVantageBaseURL+"?"+q.Encode(), nil)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	if status != http.StatusOK {
		h.ResponseHandler.HandleError(w, r, errs.NewHTTPError(status))
		return
	}
	if gjson.GetBytes(body, "Note").Exists() || gjson.GetBytes(body, "Information").Exists() {
		writeJSON(w, http.StatusTooManyRequests, []byte(`{"error":"Rate limit exceeded"}`))
		return
	}
	writeJSON(w, http.StatusOK, body)
}

// IndianStock proxies any sub-path of the Indian stock API, which
// authenticates with an X-Api-Key header.
func (h *proxyHandlers) IndianStock(w http.ResponseWriter, r *http.Request) {
	path := chi.URLParam(r, "*")
	upstream := strings.TrimSuffix(h.Config.IndianAPIBaseURL, "/") + "/" + path
	if r.URL.RawQuery != "" {
		upstream += "?" + r.URL.RawQuery
	}

	body, status, err := h.forward(r, upstream, map[string]string{"X-Api-Key": h.Config.IndianAPIKey})
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	if status != http.StatusOK {
		h.ResponseHandler.HandleError(w, r, errs.NewHTTPError(status))
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *proxyHandlers) forward(r *http.Request, upstream string, headers map[string]string) ([]byte, int, error) {
	log := logger.FromContext(r.Context())

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, upstream, nil)
	if err != nil {
		return nil, 0, errs.NewExternalServiceError("proxy", "invalid upstream URL", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := h.Client.Do(req)
	if err != nil {
		log.Error("upstream request failed", "error", err)
		return nil, 0, errs.NewExternalServiceError("proxy", "upstream request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, errs.NewExternalServiceError("proxy", "failed to read upstream response", err)
	}
	return body, resp.StatusCode, nil
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}
