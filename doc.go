// Package tacttiles provides the communication core for Tact-Tiles
// haptic glove devices.
//
// The frame compiler is in package 'frame', the message dispatcher in
// 'device', and the gesture drawing engine in 'glove'.  Relay
// transports live in 'relay', and some command-line tools are in
// 'cmd'.
package tacttiles
