// Package memory provides a mutex-guarded in-memory implementation of every
// goShield store interface. It backs tests and the runnable examples; nothing
// survives a restart, so it is not for production use.
package memory
