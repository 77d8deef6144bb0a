package typemeta

import (
	"github.com/pkg/errors"
)

// StaticReader serves metadata from memory. It backs tests and synthetic
// types contributed by libraries that are not loaded from source.
type StaticReader struct {
	types map[string]*TypeMetadata
}

// NewStaticReader creates a reader holding the given types.
func NewStaticReader(mds ...*TypeMetadata) *StaticReader {
	r := &StaticReader{types: make(map[string]*TypeMetadata)}
	r.Add(mds...)
	return r
}

// Add registers types, replacing earlier entries with the same name.
func (r *StaticReader) Add(mds ...*TypeMetadata) {
	for _, md := range mds {
		r.types[md.Name] = md
	}
}

// Metadata implements Reader.
func (r *StaticReader) Metadata(name string) (*TypeMetadata, error) {
	md, ok := r.types[OriginName(name)]
	if !ok {
		return nil, errors.Wrap(ErrTypeNotFound, name)
	}
	return md, nil
}

// TypesIn implements Lister. Results are ordered by name.
func (r *StaticReader) TypesIn(basePackage string) ([]*TypeMetadata, error) {
	var found []*TypeMetadata
	for _, md := range r.types {
		if InPackage(md.PackagePath(), basePackage) {
			found = append(found, md)
		}
	}
	SortByName(found)
	return found, nil
}

// Remove drops the named types.
func (r *StaticReader) Remove(names ...string) {
	for _, name := range names {
		delete(r.types, OriginName(name))
	}
}
