package activity

import (
	"strings"

	"github.com/rohankatakam/insightify/internal/models"
)

// UnknownLanguage is reported when a repository declares no language.
const UnknownLanguage = "Unknown"

type extensionRule struct {
	ext      string
	language string
}

// languageTable is matched in order; the first suffix that fits wins.
var languageTable = []extensionRule{
	{".py", "Python"},
	{".java", "Java"},
	{".js", "JavaScript"},
	{".ts", "TypeScript"},
	{".jsx", "JavaScript"},
	{".tsx", "TypeScript"},
	{".cpp", "C++"},
	{".c", "C"},
	{".h", "C/C++"},
	{".hpp", "C++"},
	{".cs", "C#"},
	{".go", "Go"},
	{".rs", "Rust"},
	{".rb", "Ruby"},
	{".php", "PHP"},
	{".swift", "Swift"},
	{".kt", "Kotlin"},
	{".scala", "Scala"},
	{".r", "R"},
	{".m", "Objective-C"},
	{".sh", "Shell"},
	{".bash", "Bash"},
	{".ps1", "PowerShell"},
	{".html", "HTML"},
	{".css", "CSS"},
	{".scss", "SCSS"},
	{".sass", "Sass"},
	{".less", "Less"},
	{".xml", "XML"},
	{".json", "JSON"},
	{".yml", "YAML"},
	{".yaml", "YAML"},
	{".sql", "SQL"},
	{".md", "Markdown"},
	{".tex", "LaTeX"},
}

// DetectLanguage maps a file path to a language label by extension.
func DetectLanguage(path string) (string, bool) {
	lower := strings.ToLower(path)
	for _, rule := range languageTable {
		if strings.HasSuffix(lower, rule.ext) {
			return rule.language, true
		}
	}
	return "", false
}

// CommitLanguages returns the distinct languages among files, in the order
// first encountered.
func CommitLanguages(files []string) []string {
	seen := make(map[string]bool)
	var langs []string
	for _, f := range files {
		lang, ok := DetectLanguage(f)
		if !ok || seen[lang] {
			continue
		}
		seen[lang] = true
		langs = append(langs, lang)
	}
	return langs
}

// PrimaryLanguage normalises a declared repository language.
func PrimaryLanguage(declared string) string {
	if declared == "" {
		return UnknownLanguage
	}
	return declared
}

// ClassifyRepository counts, per language, the distinct commits that touched
// it. Commits without file data contribute nothing. When no language is
// detected at all for a repository with commits, the whole count goes to the
// declared primary language; partial results are never mixed with that
// fallback.
func ClassifyRepository(commits []models.Commit, primary string) map[string]int {
	shas := make(map[string]map[string]struct{})
	for _, c := range commits {
		if c.Files == nil {
			continue
		}
		for _, lang := range CommitLanguages(c.Files) {
			if shas[lang] == nil {
				shas[lang] = make(map[string]struct{})
			}
			shas[lang][c.SHA] = struct{}{}
		}
	}

	counts := make(map[string]int, len(shas))
	for lang, set := range shas {
		counts[lang] = len(set)
	}

	if len(counts) == 0 && len(commits) > 0 {
		counts[PrimaryLanguage(primary)] = len(commits)
	}
	return counts
}
