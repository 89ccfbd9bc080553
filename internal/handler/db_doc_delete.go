package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

type DBDocDelete struct {
	Base
	Prefix string
}

func (s *DBDocDelete) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	db := Database{Base: s.Base}.Do(w, r)
	if db == nil {
		return
	}

	docID := s.Prefix + mux.Vars(r)["docid"]
	rev := r.URL.Query().Get("rev")

	doc, err := Documents{Base: s.Base}.Delete(r.Context(), db, docID, rev)
	if err != nil {
		WriteErrorFrom(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SimpleDocResponse{ // nolint: errcheck
		ID:  doc.ID,
		Ok:  true,
		Rev: doc.Rev,
	})
}
