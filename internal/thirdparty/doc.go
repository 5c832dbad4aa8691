// Package thirdparty tests the codec against other WebSocket implementations.
package thirdparty
