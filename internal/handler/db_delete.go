package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

type DBDelete struct {
	Base
}

func (s *DBDelete) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	dbName := mux.Vars(r)["db"]

	err := s.Views.DeleteDatabase(r.Context(), dbName)
	if err != nil {
		WriteErrorFrom(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(OkResponse{Ok: true}) // nolint: errcheck
}
