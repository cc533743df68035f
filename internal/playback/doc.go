// Package playback maps detected notes to something a client can play.
//
// Two outputs are offered. SoundKey and SoundBank name the per-letter sample
// files that ship with the drawing client (ga, gb, ... gg). MIDIKey and
// WriteSMF produce MIDI, one quarter note per detected note, for clients that
// would rather synthesise.
package playback
