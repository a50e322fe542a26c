package api

import (
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/khabzox/fast-food/internal/domain"
)

// QueryParam is the repeated URL parameter carrying JSON-encoded queries.
const QueryParam = "queries[]"

// ParseQueries decodes the queries[] parameters of r into list options. Each
// query is a JSON object such as {"method":"limit","values":[25]}.
func ParseQueries(r *http.Request) (domain.ListOpts, error) {
	return parseQueries(r.URL.Query()[QueryParam])
}

func parseQueries(raw []string) (domain.ListOpts, error) {
	var opts domain.ListOpts

	for _, q := range raw {
		if !gjson.Valid(q) {
			return opts, fmt.Errorf("invalid query: %s", q)
		}
		res := gjson.Parse(q)
		method := res.Get("method").String()
		attr := res.Get("attribute").String()
		values := res.Get("values").Array()

		switch method {
		case domain.QueryLimit, domain.QueryOffset, domain.QueryCursorAfter:
			if len(values) != 1 {
				return opts, fmt.Errorf("query %s expects exactly one value", method)
			}
			switch method {
			case domain.QueryLimit:
				opts.Limit = int(values[0].Int())
			case domain.QueryOffset:
				opts.Offset = int(values[0].Int())
			default:
				opts.CursorAfter = values[0].String()
			}
		case domain.QueryEqual, domain.QuerySearch:
			if attr == "" {
				return opts, fmt.Errorf("query %s requires an attribute", method)
			}
			f := domain.Filter{Method: method, Attribute: attr}
			for _, v := range values {
				f.Values = append(f.Values, v.String())
			}
			opts.Filters = append(opts.Filters, f)
		case domain.QueryOrderAsc, domain.QueryOrderDesc:
			if attr == "" {
				return opts, fmt.Errorf("query %s requires an attribute", method)
			}
			opts.OrderBy = attr
			opts.Descending = method == domain.QueryOrderDesc
		default:
			return opts, fmt.Errorf("unsupported query method %q", method)
		}
	}

	return opts, nil
}
