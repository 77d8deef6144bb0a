package typemeta

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
)

// DefaultCacheSize bounds the number of cached type descriptions.
const DefaultCacheSize = 1024

// CachingReader memoizes successful metadata reads of a delegate reader.
// Failed reads are not cached so that a later retry observes fixes on disk.
type CachingReader struct {
	delegate Reader
	cache    *lru.Cache[string, *TypeMetadata]
}

// NewCachingReader wraps delegate with an LRU cache of the given size
// (DefaultCacheSize when size <= 0).
func NewCachingReader(delegate Reader, size int) (*CachingReader, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, *TypeMetadata](size)
	if err != nil {
		return nil, errors.Wrap(err, "create metadata cache")
	}
	return &CachingReader{delegate: delegate, cache: cache}, nil
}

// Metadata implements Reader.
func (r *CachingReader) Metadata(name string) (*TypeMetadata, error) {
	key := OriginName(name)
	if md, ok := r.cache.Get(key); ok {
		return md, nil
	}
	md, err := r.delegate.Metadata(key)
	if err != nil {
		return nil, err
	}
	r.cache.Add(key, md)
	return md, nil
}

// TypesIn implements Lister when the delegate does, priming the cache with
// every listed type.
func (r *CachingReader) TypesIn(basePackage string) ([]*TypeMetadata, error) {
	lister, ok := r.delegate.(Lister)
	if !ok {
		return nil, errors.Errorf("metadata reader %T cannot list packages", r.delegate)
	}
	mds, err := lister.TypesIn(basePackage)
	if err != nil {
		return nil, err
	}
	for _, md := range mds {
		r.cache.Add(md.Name, md)
	}
	return mds, nil
}

// Len reports the number of cached entries.
func (r *CachingReader) Len() int {
	return r.cache.Len()
}
