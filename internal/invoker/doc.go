// Package invoker executes module bodies against the runtime's
// dependency-injection protocol.
//
// A module body is an HCL document. Its top-level attributes, evaluated in
// source order, become the module's exports; the accessors require() and
// await() hand back the exports of other modules; an optional define block
// registers a factory whose result supersedes the plain exports.
//
// When a body requests a dependency that is not yet in the per-invocation
// module table, the attempt stops and reports which identifier it needs.
// The retry driver loads that dependency through the pluggable ModuleLoader
// and re-executes the whole body from the top. Bodies are therefore
// implicitly required to tolerate re-execution up to the point of their
// first unresolved dependency, and two modules that synchronously require
// each other will retry without bound; both are documented limitations of
// the protocol, not defects to paper over here.
package invoker
