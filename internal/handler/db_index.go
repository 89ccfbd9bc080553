package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
)

type DBIndex struct {
	Base
}

func (s *DBIndex) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	db := Database{Base: s.Base}.Do(w, r)
	if db == nil {
		return
	}

	stats, err := db.Stats(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	count, err := db.DocCount(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	seq, err := db.Sequence(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	response := DBResponse{
		DbName:    db.Name(),
		DocCount:  uint64(count),
		UpdateSeq: strconv.FormatUint(seq, 10),
		Engine:    db.EngineName(),
		Sizes: Sizes{
			File:     stats.Allocated,
			Active:   stats.Used,
			External: stats.Used,
		},
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response) // nolint: errcheck
}

type DBResponse struct {
	DbName    string `json:"db_name"`
	UpdateSeq string `json:"update_seq"`
	Sizes     Sizes  `json:"sizes"`
	DocCount  uint64 `json:"doc_count"`
	Engine    string `json:"engine"`
}

type Sizes struct {
	File     uint64 `json:"file"`
	External uint64 `json:"external"`
	Active   uint64 `json:"active"`
}
