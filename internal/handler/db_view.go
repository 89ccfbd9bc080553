package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"
	"github.com/goydb/goyview/pkg/model"
	"github.com/goydb/goyview/pkg/port"
)

type DBView struct {
	Base
}

func (s *DBView) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	db := Database{Base: s.Base}.Do(w, r)
	if db == nil {
		return
	}
	views := Database{Base: s.Base}.Views(w, r)
	if views == nil {
		return
	}

	q, err := parseViewQuery(r.URL.Query())
	if err != nil {
		WriteErrorFrom(w, err)
		return
	}

	if r.Method == http.MethodPost {
		var body ViewQueryBody
		err := json.NewDecoder(r.Body).Decode(&body)
		if err != nil && err != io.EOF {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		if body.Keys != nil {
			q.SetKeys(body.Keys...)
		}
	}

	ddfn := model.NewViewFn(mux.Vars(r)["docid"], mux.Vars(r)["view"])
	result, err := views.Query(r.Context(), ddfn.ViewName(), q)
	if err != nil {
		WriteErrorFrom(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result) // nolint: errcheck
}

type ViewQueryBody struct {
	Keys []interface{} `json:"keys"`
}

// parseViewQuery reads the CouchDB view parameters, keys are JSON encoded
func parseViewQuery(options url.Values) (*model.ViewQuery, error) {
	q := model.NewViewQuery()
	var err error

	if hasOption("startkey", "start_key", options) {
		key, err := jsonOption("startkey", "start_key", options)
		if err != nil {
			return nil, err
		}
		q.SetStartKey(key)
	}
	if hasOption("endkey", "end_key", options) {
		key, err := jsonOption("endkey", "end_key", options)
		if err != nil {
			return nil, err
		}
		q.SetEndKey(key)
	}
	if hasOption("key", "", options) {
		key, err := jsonOption("key", "", options)
		if err != nil {
			return nil, err
		}
		q.SetKeys(key)
	}
	if hasOption("keys", "", options) {
		keys, err := jsonOption("keys", "", options)
		if err != nil {
			return nil, err
		}
		list, ok := keys.([]interface{})
		if !ok {
			return nil, &port.InvalidQuerySpecError{Param: "keys", Reason: "expected a JSON array"}
		}
		q.SetKeys(list...)
	}

	if q.InclusiveEnd, err = strictBoolOption("inclusive_end", true, options); err != nil {
		return nil, err
	}
	if q.InclusiveStart, err = strictBoolOption("inclusive_start", true, options); err != nil {
		return nil, err
	}
	if q.Descending, err = strictBoolOption("descending", false, options); err != nil {
		return nil, err
	}
	if q.Group, err = strictBoolOption("group", false, options); err != nil {
		return nil, err
	}
	if q.IncludeDocs, err = strictBoolOption("include_docs", false, options); err != nil {
		return nil, err
	}
	if options.Has("reduce") {
		reduce, err := strictBoolOption("reduce", true, options)
		if err != nil {
			return nil, err
		}
		q.SetReduce(reduce)
	}

	if q.Limit, err = strictIntOption("limit", -1, options); err != nil {
		return nil, err
	}
	if q.Skip, err = strictIntOption("skip", 0, options); err != nil {
		return nil, err
	}
	if q.GroupLevel, err = strictIntOption("group_level", 0, options); err != nil {
		return nil, err
	}

	if options.Has("update") {
		q.Update = model.UpdateMode(options.Get("update"))
	}

	return q, nil
}
