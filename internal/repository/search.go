package repository

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching search as a literal
// substring. Backslash is the postgres default LIKE escape character.
func containsPattern(search string) string {
	return "%" + likeEscaper.Replace(search) + "%"
}
