package repository

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// likeEscape quotes the LIKE wildcards in s; use with ESCAPE '\'.
func likeEscape(s string) string {
	return likeEscaper.Replace(s)
}

// containsPattern is a lowercased LIKE pattern matching s anywhere.
func containsPattern(s string) string {
	return "%" + likeEscape(strings.ToLower(strings.TrimSpace(s))) + "%"
}

// words splits a search text into lowercased words.
func words(text string) []string {
	return strings.Fields(strings.ToLower(text))
}
