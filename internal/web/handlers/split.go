package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ru-addr/internal/address"
	"github.com/ru-addr/internal/config"
	"github.com/ru-addr/internal/normalize"
	"github.com/ru-addr/internal/splitter"
)

// SplitHandler serves the splitter over HTTP
type SplitHandler struct {
	Splitter     *splitter.Splitter
	FieldMap     address.FieldMap
	MaxBodyBytes int64
}

// SplitRequest carries either raw input fields, named as in the field map,
// or components keyed by label
type SplitRequest struct {
	Fields     map[string]string `json:"fields,omitempty"`
	Components map[string]string `json:"components,omitempty"`
}

// Component is one labelled value; responses keep component order
type Component struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// SplitResponse is the decomposed record
type SplitResponse struct {
	Components []Component           `json:"components"`
	Row        []string              `json:"row"`
	Verdict    string                `json:"verdict"`
	Steps      []splitter.StepResult `json:"steps"`
}

// HouseNumberRequest is the body of POST /api/house-number
type HouseNumberRequest struct {
	HouseNumber string `json:"house_number"`
}

// HouseNumberResponse reports the house number / unit split
type HouseNumberResponse struct {
	HouseNumber string `json:"house_number"`
	Unit        string `json:"unit,omitempty"`
	Split       bool   `json:"split"`
}

// TokensResponse lists the active configuration
type TokensResponse struct {
	TokenLists config.TokenLists `json:"token_lists"`
	FieldMap   address.FieldMap  `json:"field_map"`
}

// Split decomposes one record
func (h *SplitHandler) Split(w http.ResponseWriter, r *http.Request) {
	var req SplitRequest
	if !h.decode(w, r, &req) {
		return
	}

	cs, err := h.components(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var report splitter.Report
	verdict := h.Splitter.ProcessReport(cs, &report)

	resp := SplitResponse{
		Components: make([]Component, 0, cs.Len()),
		Row:        cs.Row(h.FieldMap.Keys()),
		Verdict:    verdict.String(),
		Steps:      report.Steps,
	}
	for _, k := range cs.Keys() {
		resp.Components = append(resp.Components, Component{Key: string(k), Value: cs.Value(k)})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *SplitHandler) components(req SplitRequest) (*address.ComponentSet, error) {
	switch {
	case len(req.Fields) > 0 && len(req.Components) > 0:
		return nil, fmt.Errorf("send either fields or components, not both")
	case len(req.Fields) > 0:
		return address.Record(req.Fields).Components(h.FieldMap, func(_ address.ComponentKey, v string) string {
			return normalize.TrimValue(v)
		}), nil
	case len(req.Components) > 0:
		for label := range req.Components {
			if _, ok := address.ParseKey(label); !ok {
				return nil, fmt.Errorf("unknown component %q", label)
			}
		}
		return address.FromMap(req.Components), nil
	}
	return nil, fmt.Errorf("fields or components required")
}

// HouseNumber splits a house number value at its unit part
func (h *SplitHandler) HouseNumber(w http.ResponseWriter, r *http.Request) {
	var req HouseNumberRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.HouseNumber == "" {
		http.Error(w, "house_number required", http.StatusBadRequest)
		return
	}

	resp := HouseNumberResponse{HouseNumber: req.HouseNumber}
	if hn, unit, ok := h.Splitter.SplitHouseNumber(req.HouseNumber); ok {
		resp = HouseNumberResponse{HouseNumber: hn, Unit: unit, Split: true}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Tokens returns the token lists and field map in use
func (h *SplitHandler) Tokens(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, TokensResponse{
		TokenLists: h.Splitter.Tokens(),
		FieldMap:   h.FieldMap,
	})
}

// Health reports liveness
func (h *SplitHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *SplitHandler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	body := r.Body
	if h.MaxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, h.MaxBodyBytes)
	}
	if err := json.NewDecoder(body).Decode(v); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
