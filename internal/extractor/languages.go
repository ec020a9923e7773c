package extractor

import (
	"path/filepath"
	"regexp"
	"strings"
)

// lineClass is the classification a rule assigns to a source line.
type lineClass string

const (
	classImport    lineClass = "import"
	classClass     lineClass = "class"
	classFunction  lineClass = "function"
	classComment   lineClass = "comment"
	classDecorator lineClass = "decorator"
)

// rule matches one line class. Rules are evaluated in order; the first
// match wins.
type rule struct {
	class lineClass
	re    *regexp.Regexp
}

// languageRules maps a language tag to its ordered classification table.
// A language with no table yields records with a line count but no
// fragments.
var languageRules = map[string][]rule{
	"go": {
		{classComment, regexp.MustCompile(`^\s*//`)},
		{classImport, regexp.MustCompile(`^import\b`)},
		{classClass, regexp.MustCompile(`^type\s+\w+\s+(struct|interface)\b`)},
		{classFunction, regexp.MustCompile(`^func\b`)},
	},
	"python": {
		{classDecorator, regexp.MustCompile(`^\s*@\w`)},
		{classComment, regexp.MustCompile(`^\s*#|^\s*("""|''')`)},
		{classImport, regexp.MustCompile(`^\s*(import|from)\s+\w`)},
		{classClass, regexp.MustCompile(`^\s*class\s+\w+`)},
		{classFunction, regexp.MustCompile(`^\s*(async\s+)?def\s+\w+`)},
	},
	"javascript": {
		{classComment, regexp.MustCompile(`^\s*(//|/\*|\*)`)},
		{classImport, regexp.MustCompile(`^\s*import\s|^\s*(const|let|var)\s+.*=\s*require\(`)},
		{classClass, regexp.MustCompile(`^\s*(export\s+)?(default\s+)?class\s+\w+`)},
		{classFunction, regexp.MustCompile(`^\s*(export\s+)?(default\s+)?(async\s+)?function\b|^\s*(export\s+)?(const|let|var)\s+\w+\s*=\s*(async\s+)?\(.*=>`)},
	},
	"typescript": {
		{classDecorator, regexp.MustCompile(`^\s*@\w`)},
		{classComment, regexp.MustCompile(`^\s*(//|/\*|\*)`)},
		{classImport, regexp.MustCompile(`^\s*import\s|^\s*export\s+.*\bfrom\b`)},
		{classClass, regexp.MustCompile(`^\s*(export\s+)?(default\s+)?(abstract\s+)?class\s+\w+`)},
		{classFunction, regexp.MustCompile(`^\s*(export\s+)?(default\s+)?(async\s+)?function\b|^\s*(export\s+)?(const|let)\s+\w+\s*=\s*(async\s+)?\(.*=>`)},
	},
	"rust": {
		{classDecorator, regexp.MustCompile(`^\s*#\[`)},
		{classComment, regexp.MustCompile(`^\s*(//|/\*)`)},
		{classImport, regexp.MustCompile(`^\s*use\s`)},
		{classClass, regexp.MustCompile(`^\s*(pub(\(\w+\))?\s+)?(struct|enum|trait|impl)\b`)},
		{classFunction, regexp.MustCompile(`^\s*(pub(\(\w+\))?\s+)?(async\s+)?fn\s+\w`)},
	},
	"java": {
		{classDecorator, regexp.MustCompile(`^\s*@\w`)},
		{classComment, regexp.MustCompile(`^\s*(//|/\*|\*)`)},
		{classImport, regexp.MustCompile(`^\s*import\s`)},
		{classClass, regexp.MustCompile(`^\s*(public\s+|private\s+|protected\s+)?(final\s+|abstract\s+|static\s+)*(class|interface|enum)\s+\w`)},
		{classFunction, regexp.MustCompile(`^\s*(public|private|protected)\s+(static\s+|final\s+|synchronized\s+)*[\w<>\[\],\s]+\s+\w+\s*\(`)},
	},
	"shell": {
		{classComment, regexp.MustCompile(`^\s*#`)},
		{classImport, regexp.MustCompile(`^\s*(source|\.)\s`)},
		{classFunction, regexp.MustCompile(`^\s*function\s+\w+|^\s*\w+\s*\(\)\s*\{`)},
	},
}

// extLanguages infers a language tag from a file extension when the dump
// section carries no fence tag.
var extLanguages = map[string]string{
	".go":   "go",
	".py":   "python",
	".js":   "javascript",
	".jsx":  "javascript",
	".mjs":  "javascript",
	".ts":   "typescript",
	".tsx":  "typescript",
	".rs":   "rust",
	".java": "java",
	".sh":   "shell",
	".bash": "shell",
}

// inferLanguage returns the language for a dump section: the fence tag if
// present, otherwise a lookup on the path's extension. Unknown extensions
// yield an empty language.
func inferLanguage(tag, path string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag != "" {
		return tag
	}
	return extLanguages[strings.ToLower(filepath.Ext(path))]
}

// classify returns the class of a line under the given rule table, or
// false when the line is unclassified body text.
func classify(rules []rule, line string) (lineClass, bool) {
	for _, r := range rules {
		if r.re.MatchString(line) {
			return r.class, true
		}
	}
	return "", false
}
