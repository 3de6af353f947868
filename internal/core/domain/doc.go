// Package domain defines the core domain models for kvstore.
//
// Domain models are pure values without any IO dependencies or
// framework coupling. This package contains:
//
//   - Value: the typed value held by the store (Integer or RawString)
//   - Type-prefix encoding shared by SET arguments and GET replies
//   - Errors: coded protocol and decode errors
package domain
