package models

import (
	"fmt"
	"strings"
)

// Kind is the hierarchy level of a work item. It is fixed at creation.
type Kind string

const (
	KindEpic  Kind = "Epic"
	KindStory Kind = "Story"
	KindTask  Kind = "Task"
)

// Status is the workflow state of a work item. Every transition is legal.
type Status string

const (
	StatusNew        Status = "New"
	StatusReady      Status = "Ready"
	StatusInProgress Status = "InProgress"
	StatusDone       Status = "Done"
)

// ParseKind parses a kind name case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "epic":
		return KindEpic, nil
	case "story":
		return KindStory, nil
	case "task":
		return KindTask, nil
	}
	return "", fmt.Errorf("unknown work item kind %q", s)
}

// ParseStatus parses a status name case-insensitively.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "new":
		return StatusNew, nil
	case "ready":
		return StatusReady, nil
	case "inprogress", "in_progress":
		return StatusInProgress, nil
	case "done":
		return StatusDone, nil
	}
	return "", fmt.Errorf("unknown work item status %q", s)
}

// ParentKind returns the kind a parent of k must have, or false for Epic.
func (k Kind) ParentKind() (Kind, bool) {
	switch k {
	case KindStory:
		return KindEpic, true
	case KindTask:
		return KindStory, true
	}
	return "", false
}
