// Package pitch provides batched pitch-contour containers and the per-token
// pitch target computation used by duration-driven speech synthesis models.
//
// A [Contour] holds per-frame fundamental-frequency values for one or more
// utterances (batch rows) and one or more parallel formant channels; the
// value 0 marks an unvoiced frame. [AveragePitch] reduces a contour to one
// value per token, averaging only the voiced frames inside each token's frame
// span as given by a [Durations] sequence.
//
// The remaining functions prepare contours for model consumption: voiced-frame
// statistics, mean/variance normalization, and unvoiced-gap interpolation.
package pitch
