package handler

import (
	"encoding/json"
	"net/http"
	"slices"
)

type DBAll struct {
	Base
}

func (s *DBAll) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	names, err := s.Storage.Databases(r.Context())
	if err != nil {
		WriteErrorFrom(w, err)
		return
	}

	options := r.URL.Query()
	if boolOption("descending", false, options) {
		slices.Reverse(names)
	}
	skip := int(intOption("skip", 0, options))
	names = names[min(max(skip, 0), len(names)):]
	if limit := int(intOption("limit", -1, options)); limit >= 0 && limit < len(names) {
		names = names[:limit]
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(names) // nolint: errcheck
}
