package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/goydb/goyview/pkg/model"
)

type DBViewInfo struct {
	Base
}

func (s *DBViewInfo) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	views := Database{Base: s.Base}.Views(w, r)
	if views == nil {
		return
	}

	name := mux.Vars(r)["docid"]
	docID := model.DesignDocPrefix + name

	response := &ViewInfoResponse{
		Name:  name,
		Views: make(map[string]ViewIndex),
	}
	for _, def := range views.Views() {
		if def.DesignDocID != docID {
			continue
		}
		info, err := views.Info(r.Context(), def.Name)
		if err != nil {
			WriteErrorFrom(w, err)
			return
		}
		ddfn, _ := model.ParseViewName(def.Name)
		response.Views[ddfn.FnName] = ViewIndex{
			Language:   info.Language,
			Signature:  info.Version,
			UpdateSeq:  info.Meta.Seq,
			Generation: info.Meta.Generation,
			Built:      info.Meta.Built,
			Reduce:     info.HasReducer,
			UpdatesPending: UpdatesPending{
				Total: info.Pending(),
			},
			Sizes: ViewSizes{
				File:   info.Stats.Allocated,
				Active: info.Stats.Used,
			},
			Rows:      info.Stats.Keys,
			Documents: info.Stats.Documents,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response) // nolint: errcheck
}

type ViewInfoResponse struct {
	Name  string               `json:"name"`
	Views map[string]ViewIndex `json:"views"`
}
type UpdatesPending struct {
	Total uint64 `json:"total"`
}
type ViewSizes struct {
	File   uint64 `json:"file"`
	Active uint64 `json:"active"`
}
type ViewIndex struct {
	UpdatesPending UpdatesPending `json:"updates_pending"`
	UpdateSeq      uint64         `json:"update_seq"`
	Generation     uint64         `json:"generation"`
	Built          bool           `json:"built"`
	Reduce         bool           `json:"reduce"`
	Rows           uint64         `json:"rows"`
	Documents      uint64         `json:"documents"`
	Sizes          ViewSizes      `json:"sizes"`
	Signature      string         `json:"signature"`
	Language       string         `json:"language"`
}
