package tasks

import "fmt"

// EventKind enumerates reconciliation outcomes worth surfacing to the user.
type EventKind int

const (
	// TaskFailed fires at most once per task when any record lands on error.
	TaskFailed EventKind = iota
	// TaskFinished fires when every record of a task has settled.
	TaskFinished
)

func (k EventKind) String() string {
	switch k {
	case TaskFailed:
		return "task_failed"
	case TaskFinished:
		return "task_finished"
	default:
		return ""
	}
}

// Event is a reconciliation outcome delivered to the CLI or UI layer.
//
// Events are advisory: delivery is non-blocking and a slow consumer drops
// them rather than stalling the poll loops.
type Event struct {
	Kind    EventKind
	TaskID  string
	Message string
}

func failedEvent(taskID, detail string) Event {
	message := "Generation failed"
	if detail != "" {
		message = fmt.Sprintf("Generation failed: %s", detail)
	}
	return Event{Kind: TaskFailed, TaskID: taskID, Message: message}
}

func finishedEvent(taskID string) Event {
	return Event{Kind: TaskFinished, TaskID: taskID, Message: "Generation complete"}
}
