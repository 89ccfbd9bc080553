package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/goydb/goyview/internal/adapter/storage"
	"github.com/goydb/goyview/pkg/model"
	"github.com/goydb/goyview/pkg/port"
)

type DBDocPut struct {
	Base
	Prefix string
}

func (s *DBDocPut) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	db := Database{Base: s.Base}.Do(w, r)
	if db == nil {
		return
	}

	var data map[string]interface{}
	err := json.NewDecoder(r.Body).Decode(&data)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if data == nil {
		WriteError(w, http.StatusBadRequest, "document must be an object")
		return
	}

	// POST /{db} takes the id from the body
	docID, _ := data["_id"].(string)
	if id, ok := mux.Vars(r)["docid"]; ok {
		docID = s.Prefix + id
	}
	if rev := r.URL.Query().Get("rev"); rev != "" {
		data["_rev"] = rev
	}

	doc, err := Documents{Base: s.Base}.Put(r.Context(), db, docID, data)
	if err != nil {
		WriteErrorFrom(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(SimpleDocResponse{ // nolint: errcheck
		ID:  doc.ID,
		Ok:  true,
		Rev: doc.Rev,
	})
}

type SimpleDocResponse struct {
	ID     string `json:"id"`
	Ok     bool   `json:"ok"`
	Rev    string `json:"rev,omitempty"`
	Error  string `json:"error,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// Documents stores documents and keeps the views of design
// documents in sync.
type Documents struct {
	Base
}

// Put stores the document, a true _deleted field deletes it.
func (c Documents) Put(ctx context.Context, db *storage.Database, docID string, data map[string]interface{}) (*model.Document, error) {
	if deleted, _ := data["_deleted"].(bool); deleted {
		rev, _ := data["_rev"].(string)
		return c.Delete(ctx, db, docID, rev)
	}
	delete(data, "_deleted")

	doc := &model.Document{ID: docID, Data: data}
	if !doc.IsDesignDoc() {
		_, err := db.PutDocument(ctx, doc)
		if err != nil {
			return nil, err
		}
		return doc, nil
	}

	views, err := c.Views.Engine(ctx, db.Name())
	if err != nil {
		return nil, err
	}
	err = views.ValidateDesignDoc(doc)
	if err != nil {
		return nil, &port.InvalidQuerySpecError{Param: "views", Reason: err.Error()}
	}
	_, err = db.PutDocument(ctx, doc)
	if err != nil {
		return nil, err
	}
	err = views.ApplyDesignDoc(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("apply design document %q: %w", doc.ID, err)
	}
	return doc, nil
}

func (c Documents) Delete(ctx context.Context, db *storage.Database, docID, rev string) (*model.Document, error) {
	doc, err := db.DeleteDocument(ctx, docID, rev)
	if err != nil {
		return nil, err
	}
	if !doc.IsDesignDoc() {
		return doc, nil
	}

	views, err := c.Views.Engine(ctx, db.Name())
	if err != nil {
		return nil, err
	}
	err = views.ApplyDesignDoc(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("delete views of %q: %w", doc.ID, err)
	}
	return doc, nil
}
