// Package report describes the provenance of a computed schema identifier:
// which schema it belongs to, which process computed it, when that process
// started, and which tracking settings were in force.
//
// Reports are what consumers persist next to fingerprinted data. When two
// runs disagree about an identifier, the report's settings snapshot answers
// the first question: were the two engines even configured to track the same
// things?
package report
