// Package main collects a labeled corpus from the challenge service. Every
// challenge is answered with its first candidate, and the blob is stored
// under the answer the service reports, ready for train_blobs.
package main
