// Package resonance implements a supervised, online variant of ART-1 clustering
// over descriptor vectors.
//
// A Model owns an append-only list of clusters. Each cluster holds a prototype
// vector, a class label and a local vigilance that starts at the model's
// global vigilance and only ever rises.
//
// # Training
//
// TrainSupervised offers the input to every cluster. A cluster with the same
// label accepts it when the similarity exceeds its local vigilance and drifts
// toward it by the learning rate. A cluster with another label that is that
// similar raises its local vigilance to the similarity instead. When nobody
// accepts, a new cluster seeded with the input is appended.
//
// # Testing
//
// TestSupervised scores the input against every cluster, ignoring scores that
// do not exceed a cluster's local vigilance, and counts a success when the best
// scoring cluster carries the query label. Testing never mutates clusters.
//
// # Concurrency
//
// Training is serialized by an exclusive lock: acceptance and creation depend
// on the state of every cluster at call time. Testing takes a shared lock and
// the success counter is atomic, so tests may run in parallel with each other.
package resonance
