package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

type DBDocsBulk struct {
	Base
}

func (s *DBDocsBulk) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	db := Database{Base: s.Base}.Do(w, r)
	if db == nil {
		return
	}

	var req BulkDocRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	docs := Documents{Base: s.Base}
	resp := make([]SimpleDocResponse, len(req.Docs))
	for i, data := range req.Docs {
		docID, _ := data["_id"].(string)
		resp[i].ID = docID

		doc, err := docs.Put(r.Context(), db, docID, data)
		if err != nil {
			slog.Debug("bulk document update failed",
				slog.String("docid", docID), slog.Any("error", err))
			status := errorStatus(err)
			resp[i].Error = strings.ReplaceAll(strings.ToLower(http.StatusText(status)), " ", "_")
			resp[i].Reason = err.Error()
			continue
		}
		resp[i].ID = doc.ID
		resp[i].Ok = true
		resp[i].Rev = doc.Rev
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(resp) // nolint: errcheck
}

type BulkDocRequest struct {
	Docs []map[string]interface{} `json:"docs"`
}
