// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the research assistant.
// Covers references exchanged with search collaborators, generated
// documents, chat sessions, and configuration.
package types

import "strings"

// NoDate is the year recorded for a reference whose publication year is unknown.
const NoDate = "n.d."

// Reference is a bibliographic record produced by a search backend or typed
// in by the user. Absent fields are empty strings, except Year which holds
// NoDate when unknown.
type Reference struct {
	// Author is the free-text author list (e.g. "García, M., & Pérez, A.").
	Author string `json:"author" yaml:"author"`

	// Year is the publication year, or NoDate.
	Year string `json:"year" yaml:"year"`

	// Title is the work's title.
	Title string `json:"title" yaml:"title"`

	// Venue is the journal, conference, or publisher.
	Venue string `json:"venue" yaml:"venue"`

	// URL points at the work's landing page or DOI resolver.
	URL string `json:"url" yaml:"url"`

	// SourceName identifies where the record came from (e.g. "Semantic Scholar").
	SourceName string `json:"source_name" yaml:"source_name"`
}

// YearOrNoDate returns the trimmed year, or NoDate when it is blank.
func (r Reference) YearOrNoDate() string {
	if y := strings.TrimSpace(r.Year); y != "" {
		return y
	}
	return NoDate
}

// ReferencesFile is the on-disk shape of a references.yaml file.
type ReferencesFile struct {
	// Style is the citation style the references are usually rendered in.
	Style string `json:"style,omitempty" yaml:"style,omitempty"`

	// References lists every collected reference in insertion order.
	References []Reference `json:"references" yaml:"references"`
}
