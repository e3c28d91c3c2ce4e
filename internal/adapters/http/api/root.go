// Package api declares HTTP contracts and route registration helpers.
package api

import "net/http"

// RootHandler serves the service banner.
type RootHandler struct{}

// NewRootHandler creates a new root handler.
func NewRootHandler() *RootHandler {
	return &RootHandler{}
}

type serviceInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Docs    string `json:"docs"`
}

// HandleRoot handles GET / requests.
func (h *RootHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, serviceInfo{
		Service: "promptelo-community",
		Version: "0.1.0",
		Docs:    "/api/v1",
	})
}
