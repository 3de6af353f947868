// Package memory provides the in-memory key-value store for kvstore.
//
// The store maps string keys to typed domain.Values. It lives for the
// lifetime of the process and is lost on restart; there is no persistence.
package memory
