// Package connection provides the kvstore-cli connection to a kvstore server.
//
// Requests and replies are single lines terminated by a carriage return.
// One Client holds one TCP connection and issues requests in order.
package connection
