package station

import "strings"

// Field is a set of record fields whose change requires a row refresh.
type Field uint8

const (
	FieldName Field = 1 << iota
	FieldPlaybackState
	FieldImage
	FieldMetadata
	FieldStream
)

// FieldNone is the empty set.
const FieldNone Field = 0

// Has reports whether every field in f2 is part of f.
func (f Field) Has(f2 Field) bool {
	return f&f2 == f2 && f2 != FieldNone
}

func (f Field) String() string {
	if f == FieldNone {
		return "none"
	}
	var parts []string
	if f.Has(FieldName) {
		parts = append(parts, "name")
	}
	if f.Has(FieldPlaybackState) {
		parts = append(parts, "playbackState")
	}
	if f.Has(FieldImage) {
		parts = append(parts, "image")
	}
	if f.Has(FieldMetadata) {
		parts = append(parts, "metadata")
	}
	if f.Has(FieldStream) {
		parts = append(parts, "stream")
	}
	return strings.Join(parts, "|")
}

// Changed compares the content of two records with the same identity.
func Changed(prev, next Record) Field {
	var f Field
	if prev.StreamURI != next.StreamURI {
		f |= FieldStream
	}
	if prev.Name != next.Name {
		f |= FieldName
	}
	if prev.PlaybackState != next.PlaybackState {
		f |= FieldPlaybackState
	}
	if prev.ImageRef != next.ImageRef {
		f |= FieldImage
	}
	if prev.Metadata != next.Metadata {
		f |= FieldMetadata
	}
	return f
}
