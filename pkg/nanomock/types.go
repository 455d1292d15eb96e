package nanomock

// RequestReport is what a mock node has served so far.
type RequestReport struct {
	Total       int            `json:"total"`
	Actions     map[string]int `json:"actions"`
	Unrequested []string       `json:"unrequested,omitempty"`
}
