package utils

import (
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile("[^a-z0-9]+")

// Slugify lowercases s and collapses every run of other characters into sep.
func Slugify(s, sep string) string {
	s = strings.ToLower(s)
	s = nonAlnum.ReplaceAllString(s, sep)
	return strings.Trim(s, sep)
}

// FileSlug is the slug used in export filenames, falling back when s has no
// usable characters.
func FileSlug(s, fallback string) string {
	if slug := Slugify(s, "_"); slug != "" {
		return slug
	}
	return fallback
}
