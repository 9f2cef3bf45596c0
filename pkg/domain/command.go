package domain

import "encoding/json"

// CommandType discriminates the Command variants.
type CommandType string

const (
	CommandInit CommandType = "init"
	CommandCall CommandType = "call"
	CommandEmit CommandType = "emit"
)

// Command is one queued instruction for the producer.
// Only the fields of its Type are meaningful.
type Command struct {
	Type     CommandType
	ExecName string

	// Init
	Params        map[string]any
	MergeExisting bool

	// Call
	Action string
	Args   []any
	Kwargs map[string]any

	// Emit
	Event       string
	EventParams map[string]any
	To          string
}

// NewInit builds an Init command.
func NewInit(execName string, params map[string]any, mergeExisting bool) Command {
	return Command{Type: CommandInit, ExecName: execName, Params: params, MergeExisting: mergeExisting}
}

// NewCall builds a Call command.
func NewCall(execName, action string, args []any, kwargs map[string]any) Command {
	return Command{Type: CommandCall, ExecName: execName, Action: action, Args: args, Kwargs: kwargs}
}

// NewEmit builds an Emit command.
func NewEmit(execName, event string, params map[string]any, to string) Command {
	return Command{Type: CommandEmit, ExecName: execName, Event: event, EventParams: params, To: to}
}

// MarshalJSON writes the wire shape of the command variant.
func (c Command) MarshalJSON() ([]byte, error) {
	switch c.Type {
	case CommandInit:
		return json.Marshal(struct {
			Type          CommandType    `json:"type"`
			ExecName      string         `json:"componentExecName"`
			Params        map[string]any `json:"initParams"`
			MergeExisting bool           `json:"mergeExistingParams"`
		}{c.Type, c.ExecName, nonNilMap(c.Params), c.MergeExisting})
	case CommandCall:
		args := c.Args
		if args == nil {
			args = []any{}
		}
		return json.Marshal(struct {
			Type     CommandType    `json:"type"`
			ExecName string         `json:"componentExecName"`
			Action   string         `json:"actionName"`
			Args     []any          `json:"args"`
			Kwargs   map[string]any `json:"kwargs"`
		}{c.Type, c.ExecName, c.Action, args, nonNilMap(c.Kwargs)})
	default:
		var to *string
		if c.To != "" {
			to = &c.To
		}
		return json.Marshal(struct {
			Type     CommandType    `json:"type"`
			ExecName string         `json:"componentExecName"`
			Event    string         `json:"eventName"`
			Params   map[string]any `json:"params"`
			To       *string        `json:"to"`
		}{c.Type, c.ExecName, c.Event, nonNilMap(c.EventParams), to})
	}
}

func nonNilMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
