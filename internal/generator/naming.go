package generator

import (
	"regexp"
	"strings"
)

// tsReservedWords are ECMAScript reserved words that cannot name a function.
// A tool whose camel-cased name collides gets a trailing underscore.
var tsReservedWords = map[string]bool{
	"await": true, "break": true, "case": true, "catch": true, "class": true,
	"const": true, "continue": true, "debugger": true, "default": true,
	"delete": true, "do": true, "else": true, "enum": true, "export": true,
	"extends": true, "false": true, "finally": true, "for": true,
	"function": true, "if": true, "import": true, "in": true,
	"instanceof": true, "new": true, "null": true, "return": true,
	"super": true, "switch": true, "this": true, "throw": true, "true": true,
	"try": true, "typeof": true, "var": true, "void": true, "while": true,
	"with": true, "yield": true,
}

var tsIdentifierPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// pascalCase converts a snake_case or kebab-case tool name to PascalCase.
func pascalCase(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-' || r == ' ' || r == '.'
	})
	var b strings.Builder
	for _, part := range parts {
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}

// functionName derives the wrapper function name for a tool.
func functionName(tool string) string {
	name := pascalCase(tool)
	if name == "" {
		return "call_"
	}
	name = strings.ToLower(name[:1]) + name[1:]
	if tsReservedWords[name] {
		name += "_"
	}
	return name
}

// interfaceName derives the input interface name for a tool.
func interfaceName(tool string) string {
	name := pascalCase(tool)
	if name == "" {
		name = "Tool"
	}
	return name + "Input"
}

// propertyName renders a schema property as a TypeScript member name,
// quoting it when it is not a plain identifier.
func propertyName(name string) string {
	if tsIdentifierPattern.MatchString(name) {
		return name
	}
	return quoteString(name)
}

// quoteString renders a double-quoted TypeScript string literal.
func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// commentText flattens a description onto one line and keeps it from
// terminating the surrounding block comment.
func commentText(s string) string {
	flat := strings.Join(strings.Fields(s), " ")
	return strings.ReplaceAll(flat, "*/", "*\\/")
}

// commentLines splits a description into block comment lines, each kept from
// terminating the comment.
func commentLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(s), "\n") {
		lines = append(lines, strings.ReplaceAll(strings.TrimRight(line, " \t"), "*/", "*\\/"))
	}
	return lines
}

// safeToolName rejects tool names that cannot become file names inside the
// server directory.
func safeToolName(name string) bool {
	return name != "" && name != "." && name != ".." &&
		!strings.ContainsAny(name, `/\`) && !strings.HasPrefix(name, ".")
}
