// Package scan discovers probe providers in Go source.
//
// A provider is an interface type declaration carrying a //usdt:provider
// marker comment; every method of the interface becomes one probe. The
// scanner works on syntax alone, the way the originating annotation is
// written: parameter types are resolved by spelling, first against the named
// type table and then against the predeclared basic types. Whatever does not
// resolve is passed through unresolved and rejected by the signature encoder,
// keeping the hard failure in one place.
//
// Scanning produces the fully resolved, ordered provider batch the emission
// driver consumes. Problems found here (bad names, variadic or returning
// methods) are recorded in the report engine rather than aborting the scan,
// so one run names every violation.
package scan
