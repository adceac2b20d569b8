package entity

// QueryLanguage selects which executor backend runs a cell's query text.
type QueryLanguage string

const (
	LanguageSQL             QueryLanguage = "SQL"
	LanguageGraphQL         QueryLanguage = "GraphQL"
	LanguageNaturalLanguage QueryLanguage = "NaturalLanguage"
)

func (l QueryLanguage) IsValid() bool {
	switch l {
	case LanguageSQL, LanguageGraphQL, LanguageNaturalLanguage:
		return true
	}
	return false
}
