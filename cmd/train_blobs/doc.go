// Package main trains the blob classifier on a collected corpus and writes
// the compressed model used by play_blobs. The success rate on the holdout
// split is printed when training finishes.
package main
