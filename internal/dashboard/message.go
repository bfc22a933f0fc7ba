package dashboard

import "github.com/pgguard/pgguard/pkg/pgregistry"

// message is the wire shape pushed over the dashboard WebSocket for one
// query's validation outcome.
type message struct {
	Type   string   `json:"type"`
	Query  string   `json:"query"`
	SQL    string   `json:"sql"`
	OK     bool     `json:"ok"`
	Errors []string `json:"errors,omitempty"`
}

func toMessage(f pgregistry.Finding) message {
	m := message{Type: "result", Query: f.Query, SQL: f.SQL, OK: len(f.Errors) == 0}
	for _, e := range f.Errors {
		m.Errors = append(m.Errors, e.Error())
	}
	return m
}
