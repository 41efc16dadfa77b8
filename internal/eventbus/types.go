package eventbus

import "time"

// Topic represents an event topic.
type Topic string

const (
	TopicPlanCreated   Topic = "plan_created"
	TopicToolStarting  Topic = "tool_starting"
	TopicToolSucceeded Topic = "tool_succeeded"
	TopicToolFailed    Topic = "tool_failed"
	TopicAnswerReady   Topic = "answer_ready"
	TopicError         Topic = "error"
)

// Event is a message passed through the event bus.
type Event struct {
	Topic     Topic
	Payload   any
	Timestamp time.Time
}

// Handler processes an event.
type Handler func(Event)

// ToolProgress is the payload of the tool_* topics.
type ToolProgress struct {
	QueryID string
	Index   int
	Tool    string
	Error   string
}
