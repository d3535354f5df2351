// Package features turns raw binary blobs into fixed-length tf-idf vectors.
//
// A blob is tokenized into overlapping byte n-grams which are hashed into a
// prime sized bucket table. Fit learns which buckets form the vocabulary and
// how much each of them weighs; Transform projects any blob onto that
// vocabulary. Both go through Tokens, so training and inference can not
// tokenize differently.
package features
