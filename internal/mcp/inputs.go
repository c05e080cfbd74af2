package mcp

import (
	"regexp"
	"slices"

	"github.com/tidwall/gjson"
)

var inputRefPattern = regexp.MustCompile(`\$\{input:([^}]*)\}`)

// InputRef formats the placeholder that references input id.
func InputRef(id string) string {
	return "${input:" + id + "}"
}

// ExtractInputRefs returns the distinct input ids referenced by
// ${input:<id>} placeholders in any of the server's string values, sorted.
func ExtractInputRefs(s *Server) []string {
	if s == nil {
		return nil
	}
	seen := make(map[string]struct{})
	scan := func(v string) {
		for _, m := range inputRefPattern.FindAllStringSubmatch(v, -1) {
			seen[m[1]] = struct{}{}
		}
	}

	scan(s.Description)
	for _, r := range s.Roots {
		scan(r)
	}

	switch ep := s.Endpoint.(type) {
	case *StdioEndpoint:
		scan(ep.Command)
		scan(ep.EnvFile)
		for _, a := range ep.Args {
			scan(a)
		}
		for k, v := range ep.Env {
			scan(k)
			scan(v)
		}
	case *SSEEndpoint:
		scan(ep.URL)
		scanHeaders(ep.Headers, scan)
	case *SSEVariantEndpoint:
		scan(ep.ServerURL)
		scanHeaders(ep.Headers, scan)
	case *HTTPEndpoint:
		scan(ep.URL)
		scanHeaders(ep.Headers, scan)
	case nil:
	}

	for k, raw := range s.Extra {
		scan(k)
		scanJSON(gjson.ParseBytes(raw), scan)
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// scanJSON visits every string and object key in a passthrough value.
func scanJSON(v gjson.Result, scan func(string)) {
	switch {
	case v.IsObject():
		v.ForEach(func(key, value gjson.Result) bool {
			scan(key.String())
			scanJSON(value, scan)
			return true
		})
	case v.IsArray():
		v.ForEach(func(_, value gjson.Result) bool {
			scanJSON(value, scan)
			return true
		})
	case v.Type == gjson.String:
		scan(v.String())
	}
}

func scanHeaders(h map[string]string, scan func(string)) {
	for k, v := range h {
		scan(k)
		scan(v)
	}
}
