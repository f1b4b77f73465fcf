// Package rpc exposes the engine's read API over plain net/http + JSON, in
// the style of the wider host's HTTP handlers: a thin writeJSON/writeError
// pair, query-parameter input, no framework.
//
// did_getByString is the primary read operation; this package supplements
// it with the equivalent accessors for the other two registries
// (get_status_list, get_schema).
package rpc

import (
	"encoding/json"
	"net/http"

	"github.com/Quantum-Blockchains/qsb-node/engine"
	"github.com/Quantum-Blockchains/qsb-node/errors"
	"github.com/Quantum-Blockchains/qsb-node/logger"
)

// Handler serves read-only queries against an Engine's current state.
type Handler struct {
	engine *engine.Engine
}

// New builds a Handler over e.
func New(e *engine.Engine) *Handler {
	return &Handler{engine: e}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Errorw("rpc: encode response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// statusForErr maps a registry error to an HTTP status: malformed input is
// a client error, everything else (including "not found", which this
// handler reports as a 200 null body rather than an error) is a server
// error.
func statusForErr(err error) int {
	switch errors.Kind(err) {
	case errors.ErrInvalidDidId.Error(), errors.ErrInvalidStatusListId.Error(), errors.ErrInvalidSchemaId.Error():
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// DidGetByString implements did_getByString: GET /did?id=<did:qsb:...|b58>.
func (h *Handler) DidGetByString(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing id parameter")
		return
	}

	details, ok, err := h.engine.Did.Get(id)
	if err != nil {
		writeError(w, statusForErr(err), err.Error())
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

// GetStatusList implements get_status_list: GET /statuslist?id=<...>.
func (h *Handler) GetStatusList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing id parameter")
		return
	}

	details, ok, err := h.engine.StatusList.Get(id)
	if err != nil {
		writeError(w, statusForErr(err), err.Error())
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

// GetSchema implements get_schema: GET /schema?id=<...>.
func (h *Handler) GetSchema(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing id parameter")
		return
	}

	rec, ok, err := h.engine.Schema.Get(id)
	if err != nil {
		writeError(w, statusForErr(err), err.Error())
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// Routes registers the handler's endpoints on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/did", h.DidGetByString)
	mux.HandleFunc("/statuslist", h.GetStatusList)
	mux.HandleFunc("/schema", h.GetSchema)
}
