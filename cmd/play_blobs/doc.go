// Package main plays the challenge with a trained model: it fetches blobs,
// predicts their label among the offered candidates and submits the guess
// until the service hands out the winning hash or the round budget is spent.
package main
