// Package output renders kvstore replies for kvstore-cli.
//
// A raw reply line is parsed into a Result and printed as text, json or yaml.
// The text format mirrors what an interactive user expects:
//
//	(nil)
//	(integer) 42
//	"hello"
//	(error) KV-PROT-4001 unknown operation
package output
