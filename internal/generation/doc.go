// Package generation requests card images from an external image model.
//
// It separates a single provider call (Backend, implemented under
// internal/platform) from the policy around it (Client): prompt synthesis,
// the credential precondition, and a bounded retry budget with linear
// backoff. A card whose budget is exhausted yields ErrGenerationFailed; the
// caller records that as a missing image and carries on with the other cards.
package generation
