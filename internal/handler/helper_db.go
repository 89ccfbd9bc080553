package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/goydb/goyview/internal/adapter/storage"
	"github.com/goydb/goyview/internal/controller"
)

type Database struct {
	Base
}

func (c Database) Do(w http.ResponseWriter, r *http.Request) *storage.Database {
	dbName := mux.Vars(r)["db"]
	db, err := c.Storage.Database(r.Context(), dbName)
	if err != nil {
		WriteError(w, http.StatusNotFound, "Database does not exist.")
		return nil
	}
	return db
}

// Views returns the view engine of the database
func (c Database) Views(w http.ResponseWriter, r *http.Request) *controller.ViewEngine {
	engine, err := c.Base.Views.Engine(r.Context(), mux.Vars(r)["db"])
	if err != nil {
		WriteErrorFrom(w, err)
		return nil
	}
	return engine
}
