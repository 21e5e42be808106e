// Package handlers implements the Huma operations of the empire-watcher API.
package handlers
