// Package intent receives recognized utterances from the dialogue manager
// and answers them.
//
// The dispatcher subscribes to Hermes-style subjects on NATS
// (hermes.intent.<name>), hands each decoded intent to the matching
// handler, and ends the spoken session with the rendered sentence on
// hermes.dialogueManager.endSession.
package intent
