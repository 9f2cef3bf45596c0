package domain

// ComponentSnapshot is the minimal state sent upstream for one mounted component.
type ComponentSnapshot struct {
	ExecName string         `json:"execName" mapstructure:"execName"`
	State    map[string]any `json:"state" mapstructure:"state"`
}

// Request is the outgoing request body.
type Request struct {
	Components []ComponentSnapshot `json:"components"`
	Commands   []Command           `json:"commands"`
}

// ComponentRecord is one rendered component of a response.
type ComponentRecord struct {
	ExecName   string         `json:"execName" mapstructure:"execName"`
	URL        string         `json:"url" mapstructure:"url"`
	ChangesURL bool           `json:"changesUrl" mapstructure:"changesUrl"`
	State      map[string]any `json:"state" mapstructure:"state"`
	Actions    []string       `json:"actions" mapstructure:"actions"`
	// DOM is nil when the record only updates state and keeps the rendered subtree.
	DOM *string `json:"dom,omitempty" mapstructure:"dom"`
}

// GlobalsRecord carries response-wide directives.
type GlobalsRecord struct {
	RemoveComponents []string `json:"removeComponents" mapstructure:"removeComponents"`
}

// Response is a decoded response body.
type Response struct {
	Components []ComponentRecord
	Remove     []string
}

// ComponentData is the payload of the jmb-data attribute found on initial markup.
type ComponentData struct {
	State      map[string]any `json:"state" mapstructure:"state"`
	URL        string         `json:"url" mapstructure:"url"`
	ChangesURL bool           `json:"changesUrl" mapstructure:"changesUrl"`
	Actions    []string       `json:"actions" mapstructure:"actions"`
}
