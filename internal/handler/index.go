package handler

import (
	"encoding/json"
	"net/http"
)

// Version of the server reported at /
var Version = "0.1.0"

type Index struct{}

func (s *Index) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	response := &Info{
		Couchdb: "Welcome",
		Version: Version,
		Features: []string{
			"views",
			"reduce",
		},
		Vendor: Vendor{
			Name: "goyview",
		},
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response) // nolint: errcheck
}

type Info struct {
	Couchdb  string   `json:"couchdb"`
	Version  string   `json:"version"`
	Features []string `json:"features"`
	Vendor   Vendor   `json:"vendor"`
}

type Vendor struct {
	Name string `json:"name"`
}
