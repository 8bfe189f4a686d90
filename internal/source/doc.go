// Package source loads and memoizes raw module source for physical
// locations.
//
// Byte retrieval is delegated to a Reader collaborator; this package ships
// a filesystem Reader (afero) and an HTTP Reader (resty) but accepts any
// implementation. Every distinct location is read at most once per Cache:
// concurrent requests share one in-flight read, and both successes and
// failures settle permanently.
package source
