// Package experiment drives the descriptor and resonance model over labeled
// datasets. Descriptors are built in parallel, training runs strictly in
// sample order, and testing fans out across workers because model reads and
// the success counter are safe for concurrent use.
package experiment
