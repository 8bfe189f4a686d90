// Package strategy chooses how an already-resolved module gets loaded.
//
// A Dispatcher starts in the Auto state and probes host capabilities in a
// fixed order: native asynchronous, native synchronous, then a custom
// loader. The first mechanism that is actually available gets attempted;
// its outcome, success or failure, pins the dispatcher to that strategy for
// every later call. Pinning is one-time and irreversible.
package strategy
