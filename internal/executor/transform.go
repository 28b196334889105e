package executor

import (
	"regexp"
	"strings"
)

var (
	awaitToken = regexp.MustCompile(`\bawait\b`)
	asyncToken = regexp.MustCompile(`\basync\b`)
)

// modulePrefixes open statements that must stay at module scope so module
// resolution keeps working after the wrap.
var modulePrefixes = []string{
	"import ", "import{", `import"`, "import'",
	"export ", "export{",
}

// WrapTopLevelAwait rewrites TypeScript source that suspends at module
// scope, which the interpreter mode rejects. Import and export statements
// are kept at module scope; every other statement moves into an async
// closure whose rejection is printed to stderr and exits non-zero, so a
// failed awaited call surfaces as a runtime failure.
//
// Detection is token-based, not a parse: code already containing the async
// keyword anywhere is assumed to handle its own wrapping, an await inside a
// string literal or comment can trigger the transformation, and a
// multi-line import statement is only recognized by its first line. Code
// needing exact semantics should wrap itself in an async function.
func WrapTopLevelAwait(code string) string {
	if !needsAsyncWrap(code) {
		return code
	}

	var moduleLines, bodyLines []string
	for _, line := range strings.Split(code, "\n") {
		if isModuleScopeLine(line) {
			moduleLines = append(moduleLines, line)
		} else {
			bodyLines = append(bodyLines, line)
		}
	}

	var b strings.Builder
	if len(moduleLines) > 0 {
		b.WriteString(strings.Join(moduleLines, "\n"))
		b.WriteString("\n\n")
	}
	b.WriteString("(async () => {\n")
	b.WriteString(strings.Join(bodyLines, "\n"))
	b.WriteString("\n})().catch((err) => {\n")
	b.WriteString("  console.error(err);\n")
	b.WriteString("  process.exit(1);\n")
	b.WriteString("});\n")
	return b.String()
}

func needsAsyncWrap(code string) bool {
	return awaitToken.MatchString(code) && !asyncToken.MatchString(code)
}

func isModuleScopeLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	for _, prefix := range modulePrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	return false
}
