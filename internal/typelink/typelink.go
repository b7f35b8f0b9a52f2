// Package typelink resolves inline type signatures such as {string|Buffer[]}
// to HTML links pointing at their reference documentation.
package typelink

import (
	_ "embed"
	"fmt"
	"html"
	"maps"
	"os"
	"regexp"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/apidoc/internal/foundation/errors"
)

const (
	jsDocPrefix        = "https://developer.mozilla.org/en-US/docs/Web/JavaScript/"
	jsDataStructures   = jsDocPrefix + "Data_structures"
	jsGlobalObjectsURL = jsDocPrefix + "Reference/Global_Objects/"
)

var jsPrimitives = map[string]string{
	"boolean":   "Boolean",
	"integer":   "Number",
	"null":      "Null",
	"number":    "Number",
	"string":    "String",
	"symbol":    "Symbol",
	"undefined": "Undefined",
}

var jsGlobalTypes = []string{
	"Array", "ArrayBuffer", "DataView", "Date", "Error", "EvalError", "Function",
	"Map", "Object", "Promise", "RangeError", "ReferenceError", "RegExp", "Set",
	"SharedArrayBuffer", "SyntaxError", "TypeError", "TypedArray", "URIError",
	"Uint8Array",
}

const restPrefix = "..."

var (
	arraySuffix   = regexp.MustCompile(`(?:\[\])+$`)
	genericSuffix = regexp.MustCompile(`<.*>$`)
)

//go:embed types.yaml
var defaultTypes []byte

// Resolver maps type names to documentation URLs. It is immutable after
// construction and safe for concurrent use.
type Resolver struct {
	custom map[string]string
}

// NewResolver returns a resolver over the built-in type table merged with
// extra, whose entries win on conflict.
func NewResolver(extra map[string]string) (*Resolver, error) {
	custom := make(map[string]string)
	if err := yaml.Unmarshal(defaultTypes, &custom); err != nil {
		return nil, fmt.Errorf("decode built-in types: %w", err)
	}
	for name, url := range extra {
		custom[name] = url
	}
	return &Resolver{custom: custom}, nil
}

// LoadTypes reads an additional name → URL table from a YAML file.
func LoadTypes(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "read types file").
			WithContext("path", path).Build()
	}
	out := make(map[string]string)
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "decode types file").
			WithContext("path", path).Build()
	}
	return out, nil
}

// Table returns a copy of the name → URL table, built-in entries merged
// with the extra ones.
func (r *Resolver) Table() map[string]string {
	if r == nil {
		return nil
	}
	return maps.Clone(r.custom)
}

// URL returns the documentation URL for a single type name. A rest prefix
// ("...any"), array suffixes and type arguments ("Promise<string>") are
// ignored for the lookup.
func (r *Resolver) URL(name string) (string, bool) {
	name = strings.TrimPrefix(name, restPrefix)
	name = arraySuffix.ReplaceAllString(name, "")
	name = genericSuffix.ReplaceAllString(name, "")
	if prim, ok := jsPrimitives[name]; ok {
		return jsDataStructures + "#" + prim + "_type", true
	}
	if slices.Contains(jsGlobalTypes, name) {
		return jsGlobalObjectsURL + name, true
	}
	if url, ok := r.custom[name]; ok && url != "" {
		return url, true
	}
	return "", false
}

// Link renders a brace-delimited signature as one link per alternative,
// joined by " | ". An unknown type or an empty alternative is an error.
func (r *Resolver) Link(signature string) (string, error) {
	input := strings.Replace(strings.Replace(signature, "{", "", 1), "}", "", 1)
	var links []string
	for _, alt := range alternatives(input) {
		full := strings.TrimSpace(alt)
		if full == "" {
			return "", ferrors.MarkdownError("empty type slot").
				WithContext("signature", signature).Build()
		}
		url, ok := r.URL(full)
		if !ok {
			return "", ferrors.MarkdownError(fmt.Sprintf("unrecognized type: %q", full)).
				WithContext("signature", signature).Build()
		}
		links = append(links, fmt.Sprintf(`<a href="%s" class="type">&lt;%s&gt;</a>`, url, html.EscapeString(full)))
	}
	return strings.Join(links, " | "), nil
}

// alternatives splits a signature on the "|" separators outside type
// arguments, so "Promise<string|Buffer>|null" has two alternatives.
func alternatives(sig string) []string {
	var out []string
	depth, start := 0, 0
	for i, c := range sig {
		switch c {
		case '<':
			depth++
		case '>':
			depth--
		case '|':
			if depth == 0 {
				out = append(out, sig[start:i])
				start = i + 1
			}
		}
	}
	return append(out, sig[start:])
}
