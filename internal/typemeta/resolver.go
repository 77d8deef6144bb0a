package typemeta

// Resolver turns recorded type names into type handles. Names are kept as
// strings until a resolution boundary calls Resolve.
type Resolver interface {
	Resolve(name string) (*TypeMetadata, error)
}

// TypeNotPresentError reports a recorded type name that cannot be resolved.
type TypeNotPresentError struct {
	Name string
	Err  error
}

func (e *TypeNotPresentError) Error() string {
	if e.Err == nil {
		return "type not present: " + e.Name
	}
	return "type not present: " + e.Name + ": " + e.Err.Error()
}

func (e *TypeNotPresentError) Unwrap() error { return e.Err }

// ReaderResolver resolves names through a metadata Reader.
type ReaderResolver struct {
	reader Reader
}

// NewResolver creates a resolver backed by reader.
func NewResolver(reader Reader) *ReaderResolver {
	return &ReaderResolver{reader: reader}
}

// Resolve implements Resolver. Any failure, including an empty name, is a
// *TypeNotPresentError.
func (r *ReaderResolver) Resolve(name string) (*TypeMetadata, error) {
	if name == "" {
		return nil, &TypeNotPresentError{Name: name}
	}
	md, err := r.reader.Metadata(name)
	if err != nil {
		return nil, &TypeNotPresentError{Name: name, Err: err}
	}
	return md, nil
}
