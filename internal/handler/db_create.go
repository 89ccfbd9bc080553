package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

type DBCreate struct {
	Base
}

func (s *DBCreate) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	dbName := mux.Vars(r)["db"]
	db, _ := s.Storage.Database(r.Context(), dbName)
	if db != nil {
		WriteError(w, http.StatusConflict, "Database already exists.")
		return
	}

	_, err := s.Storage.CreateDatabase(r.Context(), dbName)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	// start indexing in the background
	_, err = s.Views.Engine(r.Context(), dbName)
	if err != nil {
		WriteErrorFrom(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(OkResponse{Ok: true}) // nolint: errcheck
}

type OkResponse struct {
	Ok bool `json:"ok"`
}
