package intl

import (
	"golang.org/x/text/language"
)

// Language is a locale the HR screens ship messages for.
type Language struct {
	Code string
	Name string
	Tag  language.Tag
}

var languages = []Language{
	{Code: "en", Name: "English", Tag: language.English},
	{Code: "zh", Name: "中文", Tag: language.Chinese},
}

// Codes lists every shipped locale code, default first.
func Codes() []string {
	out := make([]string, len(languages))
	for i, l := range languages {
		out[i] = l.Code
	}
	return out
}

// Languages keeps the shipped locales named in codes, in shipping order.
// An empty list means all of them.
func Languages(codes []string) []Language {
	if len(codes) == 0 {
		return languages
	}
	out := make([]Language, 0, len(codes))
	for _, l := range languages {
		for _, c := range codes {
			if c == l.Code {
				out = append(out, l)
				break
			}
		}
	}
	return out
}

// Supported returns the tags of Languages(codes) for matching.
func Supported(codes []string) []language.Tag {
	langs := Languages(codes)
	tags := make([]language.Tag, len(langs))
	for i, l := range langs {
		tags[i] = l.Tag
	}
	return tags
}
