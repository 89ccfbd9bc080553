package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

type DBDocGet struct {
	Base
	Prefix string
}

func (s *DBDocGet) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	db := Database{Base: s.Base}.Do(w, r)
	if db == nil {
		return
	}

	docID := s.Prefix + mux.Vars(r)["docid"]

	doc, err := db.GetDocument(r.Context(), docID)
	if err != nil {
		WriteErrorFrom(w, err)
		return
	}

	body := doc.Body()
	if boolOption("local_seq", false, r.URL.Query()) {
		body["_local_seq"] = doc.LocalSeq
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(body) // nolint: errcheck
}
