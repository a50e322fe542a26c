package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Document is a schemaless record in a collection. System attributes are
// serialized with a "$" prefix next to the user data, the way the hosted
// platform returns them.
type Document struct {
	ID           string
	CollectionID string
	DatabaseID   string
	CreatedAt    string
	UpdatedAt    string
	Data         map[string]any
}

// MarshalJSON flattens Data and the system attributes into one object.
func (d Document) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.Data)+5)
	for k, v := range d.Data {
		out[k] = v
	}
	out["$id"] = d.ID
	out["$collectionId"] = d.CollectionID
	out["$databaseId"] = d.DatabaseID
	out["$createdAt"] = d.CreatedAt
	out["$updatedAt"] = d.UpdatedAt
	return json.Marshal(out)
}

// UnmarshalJSON splits a flattened document back into system attributes and
// Data. Unknown "$" attributes such as $permissions are dropped.
func (d *Document) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	d.Data = make(map[string]any, len(raw))
	for k, v := range raw {
		switch k {
		case "$id":
			d.ID = asString(v)
		case "$collectionId":
			d.CollectionID = asString(v)
		case "$databaseId":
			d.DatabaseID = asString(v)
		case "$createdAt":
			d.CreatedAt = asString(v)
		case "$updatedAt":
			d.UpdatedAt = asString(v)
		default:
			if strings.HasPrefix(k, "$") {
				continue
			}
			d.Data[k] = v
		}
	}
	return nil
}

// String returns the named attribute as a string. Missing or null attributes
// yield "".
func (d *Document) String(key string) string {
	return asString(d.Data[key])
}

// Float returns the named attribute as a float64, or 0 if it is not numeric.
func (d *Document) Float(key string) float64 {
	switch v := d.Data[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	}
	return 0
}

func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}

// DocumentList is one page of documents plus the collection total.
type DocumentList struct {
	Total     int         `json:"total"`
	Documents []*Document `json:"documents"`
}

// File is a binary object stored in a bucket.
type File struct {
	ID           string `json:"$id"`
	BucketID     string `json:"bucketId"`
	CreatedAt    string `json:"$createdAt"`
	UpdatedAt    string `json:"$updatedAt"`
	Name         string `json:"name"`
	Signature    string `json:"signature"`
	MimeType     string `json:"mimeType"`
	SizeOriginal int64  `json:"sizeOriginal"`
}

// FileList is one page of files plus the bucket total.
type FileList struct {
	Total int     `json:"total"`
	Files []*File `json:"files"`
}

// Query methods understood by list endpoints.
const (
	QueryLimit       = "limit"
	QueryOffset      = "offset"
	QueryCursorAfter = "cursorAfter"
	QueryEqual       = "equal"
	QuerySearch      = "search"
	QueryOrderAsc    = "orderAsc"
	QueryOrderDesc   = "orderDesc"
)

// Filter restricts a listing on one attribute.
type Filter struct {
	Method    string // QueryEqual or QuerySearch
	Attribute string
	Values    []string
}

// ListOpts holds the parameters for listing documents or files.
type ListOpts struct {
	Limit       int
	Offset      int
	CursorAfter string
	Filters     []Filter
	OrderBy     string
	Descending  bool
}
