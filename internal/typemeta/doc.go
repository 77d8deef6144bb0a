// Package typemeta reads descriptive metadata about named Go types (kind,
// embedded interfaces, method results and //repokit: directives) without
// requiring the described packages to be linked into the reading program.
//
// Names are qualified as "import/path.TypeName". Generic instantiations keep
// their type arguments in brackets ("pkg.Repository[app.User, int64]") and are
// reduced to their origin with OriginName before lookup.
package typemeta
