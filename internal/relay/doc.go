// Package relay implements TCP line relay server.
//
// Server accepts connections and hands them to broker.Broker, which attaches
// each of them to the single hub.Hub: lines read from any client are
// delivered to every connected client, the sender included.
package relay
