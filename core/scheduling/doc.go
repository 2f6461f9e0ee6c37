// Package scheduling builds the crew scheduling constraint model and runs
// the two-phase solve: first the smallest number of drivers able to cover
// the catalog, then the assignment with the least idle time for that count.
//
// Each driver's day is modeled as a path source -> shifts -> sink assembled
// from exactly-one constraints over arc literals. Arc literals enforce the
// start and end of the day and propagate two accumulators, the cumulative
// driving time and the driving time since the last qualifying break.
package scheduling
