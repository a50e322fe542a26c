package backend

import "encoding/json"

type query struct {
	Method    string `json:"method"`
	Attribute string `json:"attribute,omitempty"`
	Values    []any  `json:"values,omitempty"`
}

func (q query) String() string {
	b, _ := json.Marshal(q)
	return string(b)
}

// Limit caps the number of results in a page.
func Limit(n int) string {
	return query{Method: "limit", Values: []any{n}}.String()
}

// Offset skips the first n results.
func Offset(n int) string {
	return query{Method: "offset", Values: []any{n}}.String()
}

// CursorAfter returns results after the document or file with the given id.
func CursorAfter(id string) string {
	return query{Method: "cursorAfter", Values: []any{id}}.String()
}

// Equal matches documents whose attribute equals any of values.
func Equal(attribute string, values ...any) string {
	return query{Method: "equal", Attribute: attribute, Values: values}.String()
}

// Search matches documents whose attribute contains term.
func Search(attribute, term string) string {
	return query{Method: "search", Attribute: attribute, Values: []any{term}}.String()
}

// OrderAsc sorts by attribute, ascending.
func OrderAsc(attribute string) string {
	return query{Method: "orderAsc", Attribute: attribute}.String()
}

// OrderDesc sorts by attribute, descending.
func OrderDesc(attribute string) string {
	return query{Method: "orderDesc", Attribute: attribute}.String()
}
