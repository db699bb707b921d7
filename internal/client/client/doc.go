// Package client is the terminal client's view of the timesheet gRPC
// service: typed calls, token handling and error mapping.
package client
