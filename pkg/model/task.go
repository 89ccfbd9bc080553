package model

import (
	"strconv"
	"strings"
	"time"
)

type TaskAction int

const (
	ActionUpdateView TaskAction = iota
	ActionRebuildView
)

func (a TaskAction) String() string {
	switch a {
	case ActionUpdateView:
		return "indexer"
	case ActionRebuildView:
		return "view_rebuild"
	}
	return "unknown"
}

// Task describes a running indexing pass of a view.
type Task struct {
	ID          uint64
	ActiveSince time.Time
	Action      TaskAction

	View   string
	DBName string

	UpdatedAt       time.Time
	ProcessingTotal int // total number of things to process
	Processed       int // number of things processed
}

// Progress in percent
func (t Task) Progress() int {
	if t.ProcessingTotal == 0 {
		return 0
	}
	return t.Processed * 100 / t.ProcessingTotal
}

func (t Task) String() string {
	var b strings.Builder
	b.WriteString("<Task ID=")
	b.WriteString(strconv.Itoa(int(t.ID)))
	b.WriteString(" action=")
	b.WriteString(t.Action.String())
	b.WriteString(" db=")
	b.WriteString(t.DBName)
	b.WriteString(" view=\"")
	b.WriteString(t.View)
	b.WriteString("\"")
	b.WriteString(">")
	return b.String()
}
