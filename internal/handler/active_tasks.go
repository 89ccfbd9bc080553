package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
)

type ActiveTasks struct {
	Base
}

func (s *ActiveTasks) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	active := s.Views.ActiveTasks()
	tasks := make([]*Task, 0, len(active))
	for _, task := range active {
		tasks = append(tasks, &Task{
			Node:         "nonode@nohost",
			Pid:          fmt.Sprintf("<%d.%d>", os.Getpid(), task.ID),
			ChangesDone:  task.Processed,
			TotalChanges: task.ProcessingTotal,
			Database:     task.DBName,
			View:         task.View,
			Phase:        task.Action.String(),
			Progress:     task.Progress(),
			StartedOn:    int(task.ActiveSince.Unix()),
			Type:         "indexer",
			UpdatedOn:    int(task.UpdatedAt.Unix()),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(tasks) // nolint: errcheck
}

type Task struct {
	Node         string `json:"node"`
	Pid          string `json:"pid"`
	ChangesDone  int    `json:"changes_done"`
	Database     string `json:"database"`
	View         string `json:"view"`
	Phase        string `json:"phase"`
	Progress     int    `json:"progress"`
	StartedOn    int    `json:"started_on"` // unix time
	TotalChanges int    `json:"total_changes"`
	Type         string `json:"type"`
	UpdatedOn    int    `json:"updated_on"` // unix time
}
