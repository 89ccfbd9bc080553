package handler

import (
	"github.com/gorilla/mux"
	"github.com/goydb/goyview/pkg/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Router struct {
	Base
	// Gatherer exposes the metrics at /_metrics if set
	Gatherer prometheus.Gatherer
}

func (router Router) Build(r *mux.Router) error {
	b := router.Base

	r.Methods("GET").Path("/_all_dbs").Handler(&DBAll{Base: b})
	r.Methods("GET").Path("/_active_tasks").Handler(&ActiveTasks{Base: b})
	if router.Gatherer != nil {
		r.Methods("GET").Path("/_metrics").Handler(promhttp.HandlerFor(router.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Methods("GET").Path("/{db}/_changes").Handler(&DBChanges{Base: b})
	r.Methods("POST").Path("/{db}/_bulk_docs").Handler(&DBDocsBulk{Base: b})

	r.Methods("GET", "POST").Path("/{db}/_design/{docid}/_view/{view}").Handler(&DBView{Base: b})
	r.Methods("GET").Path("/{db}/_design/{docid}/_info").Handler(&DBViewInfo{Base: b})
	r.Methods("GET").Path("/{db}/_design/{docid}").Handler(&DBDocGet{Base: b, Prefix: model.DesignDocPrefix})
	r.Methods("PUT").Path("/{db}/_design/{docid}").Handler(&DBDocPut{Base: b, Prefix: model.DesignDocPrefix})
	r.Methods("DELETE").Path("/{db}/_design/{docid}").Handler(&DBDocDelete{Base: b, Prefix: model.DesignDocPrefix})

	r.Methods("GET").Path("/{db}/_local/{docid}").Handler(&DBDocGet{Base: b, Prefix: model.LocalDocPrefix})
	r.Methods("PUT").Path("/{db}/_local/{docid}").Handler(&DBDocPut{Base: b, Prefix: model.LocalDocPrefix})
	r.Methods("DELETE").Path("/{db}/_local/{docid}").Handler(&DBDocDelete{Base: b, Prefix: model.LocalDocPrefix})

	r.Methods("GET").Path("/{db}/{docid}").Handler(&DBDocGet{Base: b})
	r.Methods("PUT").Path("/{db}/{docid}").Handler(&DBDocPut{Base: b})
	r.Methods("DELETE").Path("/{db}/{docid}").Handler(&DBDocDelete{Base: b})

	r.Methods("GET").Path("/{db}/").Handler(&DBIndex{Base: b})
	r.Methods("GET").Path("/{db}").Handler(&DBIndex{Base: b})
	r.Methods("PUT").Path("/{db}").Handler(&DBCreate{Base: b})
	r.Methods("POST").Path("/{db}").Handler(&DBDocPut{Base: b})
	r.Methods("DELETE").Path("/{db}").Handler(&DBDelete{Base: b})

	r.Methods("GET").Path("/").Handler(&Index{})

	return nil
}
