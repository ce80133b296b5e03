// Package precedence orders slash commands by their declared yield relation.
//
// A command may declare that it yields to other commands, meaning it is
// listed after them whenever both are present. Sort produces a total order
// that respects those edges and otherwise keeps input order. Cycles never
// fail the call: the back-edge is dropped and a warning goes to the
// configured logger.
//
// AnalyzeCycles is the static counterpart used by catalog validation. It
// reports every strongly connected component of the yield graph so authors
// can see the full loop, not just the edge Sort happened to drop.
package precedence
