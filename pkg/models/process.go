package models

import (
	"encoding/json"
	"time"
)

// Process is a recurring or one-off organizational procedure,
// decomposed into a tree of steps rooted at RootStep.
type Process struct {
	ID          string          `json:"id" db:"id"`
	OrgID       string          `json:"orgid" db:"orgid"`
	Title       string          `json:"title" db:"title"`
	Concern     string          `json:"concern" db:"concern"`
	State       State           `json:"state" db:"state"`
	Accountable string          `json:"accountable" db:"accountable"` // role id, empty if none
	RootStep    string          `json:"rootstep" db:"rootstep"`       // step id, empty until initialized
	Repeat      json.RawMessage `json:"repeat" db:"repeat"`           // recurrence rule; opaque to this service
	Short       []string        `json:"short" db:"short"`
	Comments    []string        `json:"comments" db:"comments"`
	When        time.Time       `json:"when" db:"when"`
}

// Step is one node in a process's ordered step tree. Children is the
// ordered list of child step ids; every step except a process's root
// appears in exactly one parent's list. The RACI lists hold role ids.
type Step struct {
	ID          string     `json:"id" db:"id"`
	OrgID       string     `json:"orgid" db:"orgid"`
	ProcessID   string     `json:"processid" db:"processid"` // immutable after creation
	What        string     `json:"what" db:"what"`
	Visibility  Visibility `json:"visibility" db:"visibility"`
	Done        Completion `json:"done" db:"done"`
	Responsible []string   `json:"responsible" db:"responsible"`
	Consulted   []string   `json:"consulted" db:"consulted"`
	Informed    []string   `json:"informed" db:"informed"`
	Children    []string   `json:"children" db:"children"`
}
