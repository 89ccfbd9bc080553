package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/goydb/goyview/pkg/model"
)

type DBChanges struct {
	Base
}

func (s *DBChanges) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	db := Database{Base: s.Base}.Do(w, r)
	if db == nil {
		return
	}

	query := r.URL.Query()
	includeDocs := boolOption("include_docs", false, query)
	since, err := strconv.ParseUint(strings.ReplaceAll(stringOption("since", "", query), `"`, ""), 10, 64)
	if err != nil && query.Has("since") && query.Get("since") != "now" {
		WriteError(w, http.StatusBadRequest, "invalid since sequence")
		return
	}
	if query.Get("since") == "now" {
		since, err = db.Sequence(r.Context())
		if err != nil {
			WriteErrorFrom(w, err)
			return
		}
	}

	changes, err := db.Changes(r.Context(), &model.ChangesOptions{
		Since: since,
		Limit: int(intOption("limit", 1000, query)),
	})
	if err != nil {
		WriteErrorFrom(w, err)
		return
	}

	response := ChangesResponse{
		Results: make([]*ChangeDoc, len(changes)),
		LastSeq: strconv.FormatUint(since, 10),
	}
	for i, doc := range changes {
		cd := &ChangeDoc{
			Seq:     strconv.FormatUint(doc.LocalSeq, 10),
			ID:      doc.ID,
			Deleted: doc.Deleted,
			Changes: []Revisions{
				{Rev: doc.Rev},
			},
		}
		if includeDocs {
			cd.Doc = doc.Body()
		}
		response.Results[i] = cd
		response.LastSeq = cd.Seq
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response) // nolint: errcheck
}

type ChangesResponse struct {
	Results []*ChangeDoc `json:"results"`
	LastSeq string       `json:"last_seq"`
}

type ChangeDoc struct {
	Seq     string                 `json:"seq"`
	ID      string                 `json:"id"`
	Changes []Revisions            `json:"changes"`
	Deleted bool                   `json:"deleted,omitempty"`
	Doc     map[string]interface{} `json:"doc,omitempty"`
}

type Revisions struct {
	Rev string `json:"rev"`
}
