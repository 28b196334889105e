package generator

import (
	"fmt"
	"sort"
	"strings"
)

// Member is one rendered property of an input interface or object literal.
type Member struct {
	Comment  string
	Name     string
	Optional bool
	Type     string
}

// TypeExpr maps a JSON Schema value to a TypeScript type expression. The
// mapping is pure and total: anything outside the supported subset comes
// back as unknown rather than an error.
func TypeExpr(schema interface{}) string {
	node, ok := schema.(map[string]interface{})
	if !ok {
		return "unknown"
	}

	if values, ok := node["enum"].([]interface{}); ok {
		return enumExpr(values)
	}
	if variants, ok := node["anyOf"].([]interface{}); ok {
		return unionExpr(variants)
	}
	if variants, ok := node["oneOf"].([]interface{}); ok {
		return unionExpr(variants)
	}
	if types, ok := node["type"].([]interface{}); ok {
		return typeUnionExpr(node, types)
	}

	switch typeName(node) {
	case "string":
		return "string"
	case "number", "integer":
		return "number"
	case "boolean":
		return "boolean"
	case "null":
		return "null"
	case "array":
		return arrayExpr(node)
	case "object":
		return objectExpr(node)
	default:
		// A bare properties block is an object in practice.
		if _, ok := node["properties"]; ok {
			return objectExpr(node)
		}
		return "unknown"
	}
}

// Members returns the rendered properties of an object schema, sorted by
// property name. Required versus optional is preserved exactly as declared.
func Members(node map[string]interface{}) []Member {
	props, ok := node["properties"].(map[string]interface{})
	if !ok || len(props) == 0 {
		return nil
	}

	required := requiredSet(node["required"])

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	members := make([]Member, 0, len(names))
	for _, name := range names {
		member := Member{
			Name:     propertyName(name),
			Optional: !required[name],
			Type:     TypeExpr(props[name]),
		}
		if prop, ok := props[name].(map[string]interface{}); ok {
			if description, ok := prop["description"].(string); ok {
				member.Comment = commentText(description)
			}
		}
		members = append(members, member)
	}
	return members
}

// indexSignature returns the index signature type for a schema's
// additionalProperties, or "" when the object is closed or unspecified.
func indexSignature(node map[string]interface{}) string {
	switch v := node["additionalProperties"].(type) {
	case bool:
		if v {
			return "unknown"
		}
		return ""
	case map[string]interface{}:
		return TypeExpr(v)
	default:
		return ""
	}
}

func typeName(node map[string]interface{}) string {
	name, _ := node["type"].(string)
	return name
}

func enumExpr(values []interface{}) string {
	if len(values) == 0 {
		return "unknown"
	}
	literals := make([]string, 0, len(values))
	for _, value := range values {
		switch v := value.(type) {
		case string:
			literals = append(literals, quoteString(v))
		case bool:
			literals = append(literals, fmt.Sprintf("%t", v))
		case float64:
			literals = append(literals, fmt.Sprintf("%g", v))
		default:
			literals = append(literals, "unknown")
		}
	}
	return strings.Join(dedupe(literals), " | ")
}

func unionExpr(variants []interface{}) string {
	if len(variants) == 0 {
		return "unknown"
	}
	exprs := make([]string, 0, len(variants))
	for _, variant := range variants {
		exprs = append(exprs, TypeExpr(variant))
	}
	return strings.Join(dedupe(exprs), " | ")
}

// typeUnionExpr handles "type": ["string", "null"] style declarations by
// mapping each named type against the same node.
func typeUnionExpr(node map[string]interface{}, types []interface{}) string {
	exprs := make([]string, 0, len(types))
	for _, t := range types {
		name, ok := t.(string)
		if !ok {
			exprs = append(exprs, "unknown")
			continue
		}
		variant := make(map[string]interface{}, len(node))
		for key, value := range node {
			variant[key] = value
		}
		variant["type"] = name
		exprs = append(exprs, TypeExpr(variant))
	}
	if len(exprs) == 0 {
		return "unknown"
	}
	return strings.Join(dedupe(exprs), " | ")
}

func arrayExpr(node map[string]interface{}) string {
	item := TypeExpr(node["items"])
	if strings.ContainsAny(item, " |") {
		return "(" + item + ")[]"
	}
	return item + "[]"
}

func objectExpr(node map[string]interface{}) string {
	members := Members(node)
	extra := indexSignature(node)

	if len(members) == 0 {
		if extra != "" {
			return "Record<string, " + extra + ">"
		}
		if closed, ok := node["additionalProperties"].(bool); ok && !closed {
			return "Record<string, never>"
		}
		return "Record<string, unknown>"
	}

	parts := make([]string, 0, len(members)+1)
	for _, member := range members {
		optional := ""
		if member.Optional {
			optional = "?"
		}
		parts = append(parts, member.Name+optional+": "+member.Type)
	}
	if extra != "" {
		parts = append(parts, "[key: string]: "+extra)
	}
	return "{ " + strings.Join(parts, "; ") + " }"
}

// requiredSet accepts the two shapes a required list arrives in: []string
// from the typed MCP schema, []interface{} from raw JSON.
func requiredSet(v interface{}) map[string]bool {
	set := make(map[string]bool)
	switch list := v.(type) {
	case []string:
		for _, name := range list {
			set[name] = true
		}
	case []interface{}:
		for _, item := range list {
			if name, ok := item.(string); ok {
				set[name] = true
			}
		}
	}
	return set
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := values[:0]
	for _, value := range values {
		if seen[value] {
			continue
		}
		seen[value] = true
		out = append(out, value)
	}
	return out
}
