// Package `relaysrv` implements line relay server over TCP.
//
// Every line sent by any connected client is written back to all connected clients.
//
// To compile relay server locally, run from package directory:
//
//	go install .
//
// Server reads listen port from TOML file (config.toml by default):
//
//	central_ip_port = 4000
//
// Or quickly launch server with command:
//
//	go run . -c ./config.toml
package main
